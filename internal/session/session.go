// ABOUTME: In-process session holding the current auth token and user id.
// ABOUTME: Token and user id are always set and cleared together under one lock.
package session

import (
	"errors"
	"fmt"
	"sync"
)

// ErrNotAuthenticated is returned when an operation needs a logged-in user.
var ErrNotAuthenticated = errors.New("not authenticated")

// Session is an immutable view of the current identity.
// Token and UserID are both empty when logged out.
type Session struct {
	Token  string
	UserID int64
}

// LoggedIn reports whether the view carries an identity.
func (s Session) LoggedIn() bool {
	return s.Token != "" && s.UserID > 0
}

// Store owns the identity for one running app instance.
// The zero value is a logged-out store ready for use.
type Store struct {
	mu      sync.RWMutex
	current Session
}

// New returns a logged-out Store.
func New() *Store {
	return &Store{}
}

// Save replaces the identity. Switching users is allowed at any time.
func (s *Store) Save(token string, userID int64) error {
	if token == "" {
		return fmt.Errorf("save session: empty token")
	}
	if userID <= 0 {
		return fmt.Errorf("save session: invalid user id %d", userID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = Session{Token: token, UserID: userID}
	return nil
}

// Clear logs out.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = Session{}
}

// IsLoggedIn reports whether a token and user id are present.
func (s *Store) IsLoggedIn() bool {
	return s.Snapshot().LoggedIn()
}

// CurrentUserID returns the logged-in user's id.
func (s *Store) CurrentUserID() (int64, error) {
	cur := s.Snapshot()
	if !cur.LoggedIn() {
		return 0, ErrNotAuthenticated
	}
	return cur.UserID, nil
}

// Token returns the bearer token, if any.
func (s *Store) Token() (string, bool) {
	cur := s.Snapshot()
	return cur.Token, cur.LoggedIn()
}

// Snapshot returns both fields read under a single lock.
func (s *Store) Snapshot() Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}
