package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/codesolution/pmt/internal/database"
	"github.com/codesolution/pmt/internal/dto"
	"github.com/codesolution/pmt/internal/models"
	"github.com/codesolution/pmt/internal/repository"
	"github.com/codesolution/pmt/internal/services"
)

type authTestEnv struct {
	db          *gorm.DB
	handler     *AuthHandler
	authService *services.AuthService
}

func setupAuthTestEnv(t *testing.T) authTestEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&models.User{},
		&models.Project{},
		&models.ProjectMember{},
	)
	require.NoError(t, err)

	database.SetDB(db)

	userRepo := repository.NewUserRepository(db)
	authService := services.NewAuthService(userRepo)
	handler := NewAuthHandler(authService)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	return authTestEnv{
		db:          db,
		handler:     handler,
		authService: authService,
	}
}

func TestAuthHandler_Register(t *testing.T) {
	env := setupAuthTestEnv(t)

	r := gin.New()
	r.POST("/api/auth/register", env.handler.Register)

	payload := map[string]string{
		"username": "newuser",
		"email":    "newuser@example.com",
		"password": "supersecret",
	}
	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/register", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)

	var response dto.AuthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.Equal(t, payload["username"], response.Username)
	require.Equal(t, payload["email"], response.Email)
	require.NotEmpty(t, response.UserID)
}

func TestAuthHandler_Register_DuplicateEmail(t *testing.T) {
	env := setupAuthTestEnv(t)

	_, err := env.authService.Register(services.RegisterInput{
		Username: "existing",
		Email:    "taken@example.com",
		Password: "supersecret",
	})
	require.NoError(t, err)

	r := gin.New()
	r.POST("/api/auth/register", env.handler.Register)

	payload := map[string]string{
		"username": "someoneelse",
		"email":    "taken@example.com",
		"password": "supersecret",
	}
	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/register", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusConflict, w.Code)
}

func TestAuthHandler_Register_ShortPassword(t *testing.T) {
	env := setupAuthTestEnv(t)

	r := gin.New()
	r.POST("/api/auth/register", env.handler.Register)

	payload := map[string]string{
		"username": "newuser",
		"email":    "newuser@example.com",
		"password": "short",
	}
	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/register", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAuthHandler_Login(t *testing.T) {
	env := setupAuthTestEnv(t)

	_, err := env.authService.Register(services.RegisterInput{
		Username: "existing",
		Email:    "existing@example.com",
		Password: "supersecret",
	})
	require.NoError(t, err)

	r := gin.New()
	r.POST("/api/auth/login", env.handler.Login)

	payload := map[string]string{
		"email":    "existing@example.com",
		"password": "supersecret",
	}
	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var response dto.AuthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.Equal(t, "existing", response.Username)
}

func TestAuthHandler_Login_WrongPassword(t *testing.T) {
	env := setupAuthTestEnv(t)

	_, err := env.authService.Register(services.RegisterInput{
		Username: "existing",
		Email:    "existing@example.com",
		Password: "supersecret",
	})
	require.NoError(t, err)

	r := gin.New()
	r.POST("/api/auth/login", env.handler.Login)

	payload := map[string]string{
		"email":    "existing@example.com",
		"password": "wrongpassword",
	}
	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusUnauthorized, w.Code)
}
