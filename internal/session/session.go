// Package session holds the identity of the one authenticated actor.
//
// A Session is created once per process and injected into every controller as
// a Reader. Only the auth flows call Establish and Clear; everything else only
// reads the token. The identity is persisted through a Store so it survives
// restarts, the way the browser client kept it in local storage.
package session

import (
	"context"
	"fmt"
	"sync"

	"printshop/internal/logging"
)

// Role tags the kind of actor that logged in.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// Identity is the bearer token plus display data for the current actor.
type Identity struct {
	Token  string
	Name   string
	Role   Role
	UserID string
}

// IsZero reports whether no one is logged in.
func (i Identity) IsZero() bool { return i.Token == "" }

// Reader is the read-only view of the session handed to controllers.
type Reader interface {
	Current() Identity
	Token() (string, bool)
}

// Session is the process-wide single active identity.
type Session struct {
	mu      sync.RWMutex
	current Identity
	store   Store
}

// New creates a session and restores any identity persisted in store.
// A nil store keeps the identity in memory only.
func New(ctx context.Context, store Store) (*Session, error) {
	if store == nil {
		store = NewMemoryStore()
	}
	s := &Session{store: store}

	id, err := store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to restore session: %w", err)
	}
	if !id.IsZero() && !id.Role.Valid() {
		logging.Get(logging.CategorySession).Warn("Discarding persisted session with unknown role %q", id.Role)
		if err := store.Clear(ctx); err != nil {
			return nil, fmt.Errorf("failed to clear invalid session: %w", err)
		}
		id = Identity{}
	}
	s.current = id
	if !id.IsZero() {
		logging.Session("Restored session for %s (role=%s)", id.Name, id.Role)
	}
	return s, nil
}

// Current returns a copy of the active identity (zero if logged out).
func (s *Session) Current() Identity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Token returns the bearer token and whether one is set.
func (s *Session) Token() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.Token, s.current.Token != ""
}

// Authenticated reports whether an identity is active.
func (s *Session) Authenticated() bool {
	_, ok := s.Token()
	return ok
}

// Establish replaces the active identity and persists it.
func (s *Session) Establish(ctx context.Context, id Identity) error {
	if id.Token == "" {
		return fmt.Errorf("cannot establish session without a token")
	}
	if !id.Role.Valid() {
		return fmt.Errorf("cannot establish session with role %q", id.Role)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.store.Save(ctx, id); err != nil {
		return fmt.Errorf("failed to persist session: %w", err)
	}
	s.current = id
	logging.Session("Session established for %s (role=%s)", id.Name, id.Role)
	return nil
}

// Clear logs out and removes the persisted identity.
func (s *Session) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.store.Clear(ctx); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	s.current = Identity{}
	logging.Session("Session cleared")
	return nil
}
