package client

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionStore_SetAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")

	store := NewSessionStore(path)
	assert.False(t, store.IsAuthenticated())

	require.NoError(t, store.Set(Session{UserID: "U1", Username: "alice", Email: "alice@example.com"}))
	assert.True(t, store.IsAuthenticated())

	// A fresh store on the same file sees the persisted session
	reloaded := NewSessionStore(path)
	session, ok := reloaded.Current()
	require.True(t, ok)
	assert.Equal(t, "U1", session.UserID)
	assert.Equal(t, "alice", session.Username)
}

func TestSessionStore_Clear(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")

	store := NewSessionStore(path)
	require.NoError(t, store.Set(Session{UserID: "U1"}))
	require.NoError(t, store.Clear())

	assert.False(t, store.IsAuthenticated())
	assert.False(t, NewSessionStore(path).IsAuthenticated())

	// Clearing an already-clear store is fine
	require.NoError(t, store.Clear())
}

func TestSessionStore_Subscribe(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	store := NewSessionStore(path)

	ch, cancel := store.Subscribe()
	defer cancel()

	require.NoError(t, store.Set(Session{UserID: "U1"}))

	select {
	case session := <-ch:
		require.NotNil(t, session)
		assert.Equal(t, "U1", session.UserID)
	case <-time.After(time.Second):
		t.Fatal("expected a session notification")
	}

	require.NoError(t, store.Clear())

	select {
	case session := <-ch:
		assert.Nil(t, session)
	case <-time.After(time.Second):
		t.Fatal("expected a logout notification")
	}
}

func TestSessionStore_SlowSubscriberSeesLatest(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	store := NewSessionStore(path)

	ch, cancel := store.Subscribe()
	defer cancel()

	require.NoError(t, store.Set(Session{UserID: "U1"}))
	require.NoError(t, store.Set(Session{UserID: "U2"}))

	session := <-ch
	require.NotNil(t, session)
	assert.Equal(t, "U2", session.UserID)
}
