package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/codesolution/pmt/internal/dto"
	"github.com/codesolution/pmt/internal/services"
)

func TestUserHandler_GetUser(t *testing.T) {
	env := setupAuthTestEnv(t)

	user, err := env.authService.Register(services.RegisterInput{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "supersecret",
	})
	require.NoError(t, err)

	handler := NewUserHandler(env.authService)
	r := gin.New()
	r.GET("/api/users/:id", handler.GetUser)

	req := httptest.NewRequest(http.MethodGet, "/api/users/"+user.ID.String(), nil)
	w := httptest.NewRecorder()

	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var response dto.UserDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.Equal(t, user.ID, response.ID)
	require.Equal(t, "alice", response.Username)
	require.Equal(t, "alice@example.com", response.Email)
}

func TestUserHandler_GetUser_NotFound(t *testing.T) {
	env := setupAuthTestEnv(t)

	handler := NewUserHandler(env.authService)
	r := gin.New()
	r.GET("/api/users/:id", handler.GetUser)

	req := httptest.NewRequest(http.MethodGet, "/api/users/"+uuid.NewString(), nil)
	w := httptest.NewRecorder()

	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestUserHandler_GetUser_MalformedID(t *testing.T) {
	env := setupAuthTestEnv(t)

	handler := NewUserHandler(env.authService)
	r := gin.New()
	r.GET("/api/users/:id", handler.GetUser)

	req := httptest.NewRequest(http.MethodGet, "/api/users/not-a-uuid", nil)
	w := httptest.NewRecorder()

	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
}
