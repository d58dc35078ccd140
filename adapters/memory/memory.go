// Package memory provides an in-process Storage implementation for
// development and tests. Data does not survive a restart; use the pgx
// or redis adapters for durable sessions.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/opendeck/portal/core"
)

type Store struct {
	mu       sync.RWMutex
	sessions map[string]*core.Session // key: client id
	users    map[string]*core.User    // key: user id
	tokens   map[string]string        // key: token hash, value: user id
}

var _ core.Storage = (*Store)(nil)

func New() *Store {
	return &Store{
		sessions: make(map[string]*core.Session),
		users:    make(map[string]*core.User),
		tokens:   make(map[string]string),
	}
}

// ============================================
// SESSION STORAGE
// ============================================

func (s *Store) GetSession(ctx context.Context, clientID string) (*core.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.sessions[clientID]
	if !ok {
		return nil, core.ErrSessionNotFound
	}

	// Copy so callers cannot mutate the stored session in place.
	out := *session
	if session.User != nil {
		user := *session.User
		out.User = &user
	}
	return &out, nil
}

func (s *Store) SetSession(ctx context.Context, clientID, token string, user *core.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := &core.Session{Token: token}
	if user != nil {
		u := *user
		stored.User = &u
	}
	s.sessions[clientID] = stored
	return nil
}

func (s *Store) ClearSession(ctx context.Context, clientID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, clientID)
	return nil
}

// ============================================
// USER STORAGE
// ============================================

func (s *Store) UpsertUser(ctx context.Context, u *core.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	existing, ok := s.users[u.ID]
	if !ok {
		stored := *u
		stored.CreatedAt = now
		stored.UpdatedAt = now
		s.users[u.ID] = &stored
		return nil
	}

	// Refresh identity fields and flags; local credentials stay.
	existing.Username = u.Username
	existing.IsAdmin = u.IsAdmin
	existing.IsWhitelisted = u.IsWhitelisted
	existing.HasPassword = u.HasPassword
	existing.HasDiscord = u.HasDiscord
	existing.TermsAccepted = u.TermsAccepted
	existing.UpdatedAt = now
	return nil
}

func (s *Store) GetUserByID(ctx context.Context, id string) (*core.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[id]
	if !ok {
		return nil, core.ErrUserNotFound
	}
	out := *user
	return &out, nil
}

func (s *Store) GetUserByTokenHash(ctx context.Context, tokenHash string) (*core.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	userID, ok := s.tokens[tokenHash]
	if !ok {
		return nil, core.ErrUserNotFound
	}
	user, ok := s.users[userID]
	if !ok {
		return nil, core.ErrUserNotFound
	}
	out := *user
	return &out, nil
}

func (s *Store) UpdateUser(ctx context.Context, u *core.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[u.ID]; !ok {
		return core.ErrUserNotFound
	}
	stored := *u
	stored.UpdatedAt = time.Now()
	s.users[u.ID] = &stored
	return nil
}

func (s *Store) RegisterToken(ctx context.Context, tokenHash, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[tokenHash] = userID
	return nil
}

func (s *Store) RevokeToken(ctx context.Context, tokenHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tokens, tokenHash)
	return nil
}
