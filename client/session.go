package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Session is the client-held record of the currently authenticated identity.
type Session struct {
	UserID   string  `json:"userId"`
	Username string  `json:"username"`
	Email    string  `json:"email"`
	Token    *string `json:"token,omitempty"`
}

// SessionStore holds the current session, persisted to a single JSON file,
// and notifies subscribers whenever it changes. A nil session means logged
// out.
type SessionStore struct {
	path string

	mu      sync.Mutex
	current *Session
	subs    map[int]chan *Session
	nextSub int
}

// NewSessionStore creates a store backed by the given file. An existing
// session file is loaded; a missing or unreadable one leaves the store
// logged out.
func NewSessionStore(path string) *SessionStore {
	s := &SessionStore{
		path: path,
		subs: make(map[int]chan *Session),
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return s
	}
	var session Session
	if err := json.Unmarshal(data, &session); err != nil || session.UserID == "" {
		return s
	}
	s.current = &session
	return s
}

// Set replaces the current session and persists it.
func (s *SessionStore) Set(session Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to serialize session: %w", err)
	}

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create session directory: %w", err)
		}
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("failed to persist session: %w", err)
	}

	s.mu.Lock()
	s.current = &session
	s.notifyLocked()
	s.mu.Unlock()
	return nil
}

// Clear logs out: the session file is removed and subscribers are notified
// with a nil session.
func (s *SessionStore) Clear() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove session file: %w", err)
	}

	s.mu.Lock()
	s.current = nil
	s.notifyLocked()
	s.mu.Unlock()
	return nil
}

// Current returns a copy of the current session, if any.
func (s *SessionStore) Current() (Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return Session{}, false
	}
	return *s.current, true
}

// IsAuthenticated reports whether a session is present.
func (s *SessionStore) IsAuthenticated() bool {
	_, ok := s.Current()
	return ok
}

// Subscribe returns a channel that receives the new session (nil on logout)
// after every change, plus a cancel function. Slow subscribers miss
// intermediate values rather than blocking the store.
func (s *SessionStore) Subscribe() (<-chan *Session, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextSub
	s.nextSub++
	ch := make(chan *Session, 1)
	s.subs[id] = ch

	cancel := func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if _, ok := s.subs[id]; ok {
			delete(s.subs, id)
			close(ch)
		}
	}
	return ch, cancel
}

func (s *SessionStore) notifyLocked() {
	for _, ch := range s.subs {
		var value *Session
		if s.current != nil {
			copied := *s.current
			value = &copied
		}
		select {
		case ch <- value:
		default:
			select {
			case <-ch:
			default:
			}
			ch <- value
		}
	}
}
