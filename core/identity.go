package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/opendeck/portal/pkg/crypto"
)

// IdentityProvider is the identity-fetch collaborator: one operation,
// "get current profile", returning the profile or ErrUnauthorized.
type IdentityProvider interface {
	CurrentProfile(ctx context.Context, token string) (*Profile, error)
}

// IdentityService resolves bearer tokens to profiles through storage,
// with a cache-aside layer keyed by token hash. The token itself is an
// opaque credential; it is hashed before it touches storage or cache.
type IdentityService struct {
	storage UserStorage
	cache   ProfileCache
	logger  *slog.Logger
}

var _ IdentityProvider = (*IdentityService)(nil)
var _ IdentityRegistrar = (*IdentityService)(nil)

// NewIdentityService builds the identity service. Cache may be nil to
// disable caching; logger may be nil for silence.
func NewIdentityService(storage UserStorage, cache ProfileCache, logger *slog.Logger) *IdentityService {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &IdentityService{storage: storage, cache: cache, logger: logger}
}

// CurrentProfile returns the profile behind the token. Any condition in
// which the token cannot be resolved to a member is ErrUnauthorized; the
// caller treats that as equivalent to an empty session.
func (s *IdentityService) CurrentProfile(ctx context.Context, token string) (*Profile, error) {
	if token == "" {
		return nil, ErrUnauthorized
	}

	tokenHash := crypto.HashToken(token)

	if s.cache != nil {
		if profile, err := s.cache.Get(tokenHash); err == nil && profile != nil {
			return profile, nil
		}
	}

	user, err := s.storage.GetUserByTokenHash(ctx, tokenHash)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrUnauthorized
		}
		return nil, fmt.Errorf("failed to fetch profile: %w", err)
	}

	profile := user.Profile()
	if s.cache != nil {
		s.cache.Set(tokenHash, profile)
	}

	return profile, nil
}

// Register records a provider-asserted identity: the member record is
// upserted, the token is bound to it, and the cached profile for the
// token is invalidated synchronously so the next fetch is fresh.
func (s *IdentityService) Register(ctx context.Context, token string, user *Profile) error {
	tokenHash := crypto.HashToken(token)

	if err := s.storage.UpsertUser(ctx, UserFromProfile(user)); err != nil {
		return fmt.Errorf("failed to upsert user: %w", err)
	}
	if err := s.storage.RegisterToken(ctx, tokenHash, user.ID); err != nil {
		return fmt.Errorf("failed to register token: %w", err)
	}

	if s.cache != nil {
		s.cache.Delete(tokenHash)
	}

	s.logger.DebugContext(ctx, "identity registered", "user_id", user.ID)
	return nil
}

// Invalidate drops every cached profile. Called after a state-changing
// action so the next identity fetch returns the updated profile.
func (s *IdentityService) Invalidate() {
	if s.cache != nil {
		s.cache.Clear()
	}
}

// Revoke unbinds a token and drops its cached profile.
func (s *IdentityService) Revoke(ctx context.Context, token string) error {
	tokenHash := crypto.HashToken(token)
	if s.cache != nil {
		s.cache.Delete(tokenHash)
	}
	return s.storage.RevokeToken(ctx, tokenHash)
}
