package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// requestLog counts requests per method+path so tests can assert on exactly
// how many calls a workflow issued.
type requestLog struct {
	mu     sync.Mutex
	counts map[string]int
}

func newRequestLog() *requestLog {
	return &requestLog{counts: make(map[string]int)}
}

func (l *requestLog) record(r *http.Request) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.counts[r.Method+" "+r.URL.Path]++
}

func (l *requestLog) count(key string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.counts[key]
}

func (l *requestLog) total() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for _, c := range l.counts {
		n += c
	}
	return n
}

type boardEnv struct {
	board  *Board
	log    *requestLog
	server *httptest.Server
}

// setupBoard starts a stub backend and returns a board with an authenticated
// session for user "U1". The handler runs after the request is logged.
func setupBoard(t *testing.T, handler http.HandlerFunc) boardEnv {
	t.Helper()

	log := newRequestLog()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log.record(r)
		handler(w, r)
	}))
	t.Cleanup(server.Close)

	sessions := NewSessionStore(filepath.Join(t.TempDir(), "session.json"))
	require.NoError(t, sessions.Set(Session{UserID: "U1", Username: "alice", Email: "alice@example.com"}))

	return boardEnv{
		board:  NewBoard(New(server.URL, sessions)),
		log:    log,
		server: server,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// projectBackend serves a minimal project P1 with task T1 and two members.
func projectBackend(t *testing.T) http.HandlerFunc {
	t.Helper()
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method + " " + r.URL.Path {
		case "GET /tasks/project/P1":
			writeJSON(w, http.StatusOK, []Task{{ID: "T1", Name: "Task one", Status: "TODO", Priority: "MEDIUM", ProjectID: "P1"}})
		case "GET /projects/P1/members":
			writeJSON(w, http.StatusOK, []map[string]string{
				{"userId": "U1", "role": "ADMIN"},
				{"userId": "U2", "role": "MEMBER"},
			})
		case "POST /tasks/T1/assign":
			writeJSON(w, http.StatusOK, Task{ID: "T1", Name: "Task one", Status: "TODO", Priority: "MEDIUM", ProjectID: "P1"})
		case "PUT /tasks/T1":
			writeJSON(w, http.StatusOK, Task{ID: "T1", Name: "Renamed", Status: "TODO", Priority: "MEDIUM", ProjectID: "P1"})
		case "GET /tasks/T1/history":
			writeJSON(w, http.StatusOK, []HistoryEntry{{ID: "H1", TaskID: "T1", FieldName: "name"}})
		default:
			http.NotFound(w, r)
		}
	}
}

func TestLoadProject_JoinsTasksAndMembers(t *testing.T) {
	env := setupBoard(t, projectBackend(t))

	require.NoError(t, env.board.LoadProject(context.Background(), "P1"))

	assert.Len(t, env.board.Tasks("P1"), 1)
	assert.Len(t, env.board.Members("P1"), 2)
	assert.Equal(t, 1, env.log.count("GET /tasks/project/P1"))
	assert.Equal(t, 1, env.log.count("GET /projects/P1/members"))

	isAdmin, isMember := env.board.Roles("P1")
	assert.True(t, isAdmin)
	assert.True(t, isMember)
}

func TestLoadProject_NotAuthenticated(t *testing.T) {
	env := setupBoard(t, projectBackend(t))
	require.NoError(t, env.board.client.Sessions().Clear())

	err := env.board.LoadProject(context.Background(), "P1")
	assert.ErrorIs(t, err, ErrNotAuthenticated)
	assert.Equal(t, 0, env.log.total())
}

func TestAssign_EmptyMemberIsNoOp(t *testing.T) {
	env := setupBoard(t, projectBackend(t))

	require.NoError(t, env.board.Assign(context.Background(), "T1", "P1"))

	assert.Equal(t, 0, env.log.total())
	state := env.board.State("T1")
	assert.False(t, state.Assigning)
	assert.Empty(t, state.Err)
}

func TestAssign_Success(t *testing.T) {
	env := setupBoard(t, projectBackend(t))
	require.NoError(t, env.board.LoadProject(context.Background(), "P1"))

	// A stale error from an earlier failure must be cleared on success
	env.board.mu.Lock()
	env.board.stateLocked("T1").Err = "old failure"
	env.board.mu.Unlock()

	env.board.SelectMember("T1", "U2")
	require.NoError(t, env.board.Assign(context.Background(), "T1", "P1"))

	state := env.board.State("T1")
	assert.Empty(t, state.Err)
	assert.Equal(t, assignedNotice, state.Notice)
	assert.False(t, state.Assigning)

	// The task list was refetched exactly once on top of the initial load
	assert.Equal(t, 2, env.log.count("GET /tasks/project/P1"))
	// The history cache was invalidated and reloaded
	assert.Equal(t, 1, env.log.count("GET /tasks/T1/history"))
	assert.True(t, state.HistoryLoaded)
	assert.Len(t, state.History, 1)
}

func TestAssign_FailureWithBackendMessage(t *testing.T) {
	env := setupBoard(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			writeJSON(w, http.StatusBadRequest, map[string]string{"message": "the user is not a member of this project"})
			return
		}
		http.NotFound(w, r)
	})

	env.board.SelectMember("T1", "U9")
	err := env.board.Assign(context.Background(), "T1", "P1")
	require.Error(t, err)

	state := env.board.State("T1")
	assert.Equal(t, "the user is not a member of this project", state.Err)
	assert.False(t, state.Assigning)
	// No reconciliation happens on failure
	assert.Equal(t, 0, env.log.count("GET /tasks/project/P1"))
	assert.Equal(t, 0, env.log.count("GET /tasks/T1/history"))
}

func TestAssign_FailureWithPlainStringBody(t *testing.T) {
	env := setupBoard(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("database unavailable"))
	})

	env.board.SelectMember("T1", "U2")
	err := env.board.Assign(context.Background(), "T1", "P1")
	require.Error(t, err)

	assert.Equal(t, "database unavailable", env.board.State("T1").Err)
}

func TestAssign_FailureWithoutMessageUsesGenericFallback(t *testing.T) {
	env := setupBoard(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	env.board.SelectMember("T1", "U2")
	err := env.board.Assign(context.Background(), "T1", "P1")
	require.Error(t, err)

	state := env.board.State("T1")
	assert.Equal(t, genericErrorMessage, state.Err)
	assert.False(t, state.Assigning)
}

func TestAssign_FailureIsScopedToOneTask(t *testing.T) {
	env := setupBoard(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	env.board.SelectMember("T1", "U2")
	require.Error(t, env.board.Assign(context.Background(), "T1", "P1"))

	assert.NotEmpty(t, env.board.State("T1").Err)
	assert.Empty(t, env.board.State("T2").Err)
}

func TestHistory_FetchedAtMostOnce(t *testing.T) {
	env := setupBoard(t, projectBackend(t))

	require.NoError(t, env.board.OpenHistory(context.Background(), "T1"))
	require.NoError(t, env.board.OpenHistory(context.Background(), "T1"))
	require.NoError(t, env.board.OpenHistory(context.Background(), "T1"))

	assert.Equal(t, 1, env.log.count("GET /tasks/T1/history"))
	assert.Equal(t, TabHistory, env.board.State("T1").Tab)

	// A forced reload bypasses the cache
	require.NoError(t, env.board.LoadHistory(context.Background(), "T1", true))
	assert.Equal(t, 2, env.log.count("GET /tasks/T1/history"))
}

func TestHistory_ForbiddenMapsToPermissionMessage(t *testing.T) {
	env := setupBoard(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusForbidden, map[string]string{"message": "you are not a member of this project"})
	})

	err := env.board.OpenHistory(context.Background(), "T1")
	require.Error(t, err)

	state := env.board.State("T1")
	assert.Equal(t, permissionDeniedMessage, state.HistoryErr)
	// The cache holds an empty list so the empty state renders
	assert.NotNil(t, state.History)
	assert.Empty(t, state.History)
	assert.True(t, state.HistoryLoaded)
}

func TestHistory_NotFoundMapsToNotFoundMessage(t *testing.T) {
	env := setupBoard(t, func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	err := env.board.OpenHistory(context.Background(), "T1")
	require.Error(t, err)

	assert.Equal(t, historyNotFoundMessage, env.board.State("T1").HistoryErr)
}

func TestHistory_OtherErrorSurfacesBackendMessage(t *testing.T) {
	env := setupBoard(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "history table is on fire"})
	})

	err := env.board.OpenHistory(context.Background(), "T1")
	require.Error(t, err)

	assert.Equal(t, "history table is on fire", env.board.State("T1").HistoryErr)
}

func TestEdit_InvalidFormSendsNoRequest(t *testing.T) {
	env := setupBoard(t, projectBackend(t))
	require.NoError(t, env.board.LoadProject(context.Background(), "P1"))
	before := env.log.total()

	require.NoError(t, env.board.StartEdit("T1", "P1"))
	env.board.UpdateForm("T1", TaskForm{Name: "", Status: "TODO", Priority: "MEDIUM"})

	err := env.board.SubmitEdit(context.Background(), "T1", "P1")
	assert.ErrorIs(t, err, ErrInvalidForm)

	state := env.board.State("T1")
	assert.Contains(t, state.FormErrors, "name")
	assert.Equal(t, TabEdit, state.Tab)
	assert.Equal(t, before, env.log.total())
}

func TestEdit_SuccessReturnsToDetails(t *testing.T) {
	env := setupBoard(t, projectBackend(t))
	require.NoError(t, env.board.LoadProject(context.Background(), "P1"))

	require.NoError(t, env.board.StartEdit("T1", "P1"))
	env.board.UpdateForm("T1", TaskForm{Name: "Renamed", Status: "TODO", Priority: "MEDIUM", DueDate: "2026-10-01"})

	require.NoError(t, env.board.SubmitEdit(context.Background(), "T1", "P1"))

	state := env.board.State("T1")
	assert.Equal(t, TabDetails, state.Tab)
	assert.Nil(t, state.Form)
	assert.Empty(t, state.Err)
	assert.Equal(t, savedNotice, state.Notice)

	// Same reconciliation as assignment: one task-list refetch plus history
	assert.Equal(t, 2, env.log.count("GET /tasks/project/P1"))
	assert.Equal(t, 1, env.log.count("GET /tasks/T1/history"))
}

func TestEdit_FailureKeepsEdits(t *testing.T) {
	env := setupBoard(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.Method + " " + r.URL.Path {
		case "GET /tasks/project/P1":
			writeJSON(w, http.StatusOK, []Task{{ID: "T1", Name: "Task one", Status: "TODO", Priority: "MEDIUM", ProjectID: "P1"}})
		case "GET /projects/P1/members":
			writeJSON(w, http.StatusOK, []map[string]string{{"userId": "U1", "role": "ADMIN"}})
		case "PUT /tasks/T1":
			writeJSON(w, http.StatusForbidden, map[string]string{"message": "you must be a member or administrator of the project to modify tasks"})
		default:
			http.NotFound(w, r)
		}
	})
	require.NoError(t, env.board.LoadProject(context.Background(), "P1"))

	require.NoError(t, env.board.StartEdit("T1", "P1"))
	env.board.UpdateForm("T1", TaskForm{Name: "My careful edit", Status: "DONE", Priority: "HIGH"})

	err := env.board.SubmitEdit(context.Background(), "T1", "P1")
	require.Error(t, err)

	state := env.board.State("T1")
	assert.Equal(t, "you must be a member or administrator of the project to modify tasks", state.Err)
	assert.False(t, state.Saving)
	assert.Equal(t, TabEdit, state.Tab)
	require.NotNil(t, state.Form)
	assert.Equal(t, "My careful edit", state.Form.Name)
}

func TestStartEdit_TruncatesDatesToDateOnly(t *testing.T) {
	env := setupBoard(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.Method + " " + r.URL.Path {
		case "GET /tasks/project/P1":
			writeJSON(w, http.StatusOK, []json.RawMessage{json.RawMessage(
				`{"id":"T1","name":"Task one","status":"TODO","priority":"MEDIUM","projectId":"P1","dueDate":"2026-10-01T15:04:05Z"}`,
			)})
		case "GET /projects/P1/members":
			writeJSON(w, http.StatusOK, []map[string]string{{"userId": "U1", "role": "ADMIN"}})
		default:
			http.NotFound(w, r)
		}
	})
	require.NoError(t, env.board.LoadProject(context.Background(), "P1"))

	require.NoError(t, env.board.StartEdit("T1", "P1"))

	state := env.board.State("T1")
	require.NotNil(t, state.Form)
	assert.Equal(t, "2026-10-01", state.Form.DueDate)
	assert.Empty(t, state.Form.EndDate)
}

func TestTabs_HistoryReachableFromEdit(t *testing.T) {
	env := setupBoard(t, projectBackend(t))
	require.NoError(t, env.board.LoadProject(context.Background(), "P1"))

	require.NoError(t, env.board.StartEdit("T1", "P1"))
	assert.Equal(t, TabEdit, env.board.State("T1").Tab)

	require.NoError(t, env.board.OpenHistory(context.Background(), "T1"))
	assert.Equal(t, TabHistory, env.board.State("T1").Tab)

	env.board.ShowDetails("T1")
	assert.Equal(t, TabDetails, env.board.State("T1").Tab)
}

func TestReload_DropsStateForVanishedTasks(t *testing.T) {
	var gone bool
	var mu sync.Mutex
	env := setupBoard(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.Method + " " + r.URL.Path {
		case "GET /tasks/project/P1":
			mu.Lock()
			defer mu.Unlock()
			if gone {
				writeJSON(w, http.StatusOK, []Task{})
				return
			}
			writeJSON(w, http.StatusOK, []Task{{ID: "T1", Name: "Task one", Status: "TODO", Priority: "MEDIUM", ProjectID: "P1"}})
		case "GET /projects/P1/members":
			writeJSON(w, http.StatusOK, []map[string]string{{"userId": "U1", "role": "ADMIN"}})
		default:
			http.NotFound(w, r)
		}
	})

	require.NoError(t, env.board.LoadProject(context.Background(), "P1"))
	env.board.SelectMember("T1", "U2")
	require.NotEmpty(t, env.board.State("T1").SelectedMemberID)

	mu.Lock()
	gone = true
	mu.Unlock()
	require.NoError(t, env.board.LoadProject(context.Background(), "P1"))

	// T1 vanished, so its keyed state was invalidated
	assert.Empty(t, env.board.Tasks("P1"))
	assert.Empty(t, env.board.State("T1").SelectedMemberID)
}
