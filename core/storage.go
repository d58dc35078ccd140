package core

import (
	"context"
	"time"
)

// Ports define interfaces for external dependencies

// ============================================
// SESSION STORAGE PORT
// ============================================

// SessionStorage is the durable key/value holder for the bearer token
// and last-known profile, keyed by the stable client id (one session per
// browser client). It is the sole persistence path for identity; UI-level
// code never touches it directly.
type SessionStorage interface {
	// GetSession returns the stored session or ErrSessionNotFound.
	GetSession(ctx context.Context, clientID string) (*Session, error)

	// SetSession stores token and profile together.
	SetSession(ctx context.Context, clientID, token string, user *Profile) error

	// ClearSession removes token and profile together. It is the single
	// operation invoked when the backend reports the token invalid.
	ClearSession(ctx context.Context, clientID string) error
}

// ============================================
// USER STORAGE PORT
// ============================================

// User is the persisted member record behind the identity fetch.
//
// The onboarding flags mirror Profile: a provider callback may assert a
// step complete (e.g. a backend-managed password) without the portal
// holding the underlying credential, so the flags are stored explicitly
// rather than derived from PasswordHash and friends.
type User struct {
	ID              string
	Username        string
	IsAdmin         bool
	IsWhitelisted   *bool
	HasPassword     *bool
	HasDiscord      *bool
	TermsAccepted   *bool
	PasswordHash    string
	DiscordID       string
	TermsAcceptedAt *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Profile maps the record to the wire-level profile snapshot.
func (u *User) Profile() *Profile {
	return &Profile{
		ID:            u.ID,
		Username:      u.Username,
		IsAdmin:       u.IsAdmin,
		IsWhitelisted: u.IsWhitelisted,
		HasPassword:   u.HasPassword,
		HasDiscord:    u.HasDiscord,
		TermsAccepted: u.TermsAccepted,
	}
}

// UserFromProfile builds a record from a provider-asserted snapshot.
func UserFromProfile(p *Profile) *User {
	return &User{
		ID:            p.ID,
		Username:      p.Username,
		IsAdmin:       p.IsAdmin,
		IsWhitelisted: p.IsWhitelisted,
		HasPassword:   p.HasPassword,
		HasDiscord:    p.HasDiscord,
		TermsAccepted: p.TermsAccepted,
	}
}

// UserStorage defines member-record database operations.
type UserStorage interface {
	// UpsertUser creates the record or refreshes its identity fields and
	// flags from a newer provider snapshot. Locally held credentials
	// (PasswordHash, DiscordID, TermsAcceptedAt) are preserved.
	UpsertUser(ctx context.Context, u *User) error

	GetUserByID(ctx context.Context, id string) (*User, error)
	GetUserByTokenHash(ctx context.Context, tokenHash string) (*User, error)

	UpdateUser(ctx context.Context, u *User) error

	// RegisterToken binds a bearer token hash to a user.
	RegisterToken(ctx context.Context, tokenHash, userID string) error
	RevokeToken(ctx context.Context, tokenHash string) error
}

// Storage combines every persistence port the portal needs.
type Storage interface {
	SessionStorage
	UserStorage
}

// ============================================
// PROFILE CACHE PORT
// ============================================

// ProfileCache caches identity-fetch results keyed by token hash.
type ProfileCache interface {
	Get(tokenHash string) (*Profile, error)
	Set(tokenHash string, profile *Profile) error
	Delete(tokenHash string) error
	Clear() error
}
