package core

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/opendeck/portal/pkg/crypto"
)

const (
	minPasswordLength = 8
	maxPasswordLength = 128
)

// AccountService implements the state-changing onboarding operations.
// Each mutation invalidates cached profiles before returning, so the
// next identity fetch observes the updated record.
type AccountService struct {
	storage  UserStorage
	hasher   crypto.PasswordHandler
	identity *IdentityService
	logger   *slog.Logger
}

// NewAccountService builds the account service.
func NewAccountService(storage UserStorage, hasher crypto.PasswordHandler, identity *IdentityService, logger *slog.Logger) *AccountService {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &AccountService{storage: storage, hasher: hasher, identity: identity, logger: logger}
}

// CreatePassword completes the password onboarding step.
func (s *AccountService) CreatePassword(ctx context.Context, userID, password string) error {
	switch {
	case password == "":
		return ErrPasswordRequired
	case len(password) < minPasswordLength:
		return ErrPasswordTooShort
	case len(password) > maxPasswordLength:
		return ErrPasswordTooLong
	}

	user, err := s.storage.GetUserByID(ctx, userID)
	if err != nil {
		return err
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	done := true
	user.PasswordHash = hash
	user.HasPassword = &done

	if err := s.storage.UpdateUser(ctx, user); err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}

	s.identity.Invalidate()
	s.logger.InfoContext(ctx, "password created", "user_id", userID)
	return nil
}

// LinkDiscord completes the Discord onboarding step.
func (s *AccountService) LinkDiscord(ctx context.Context, userID, discordID string) error {
	if discordID == "" {
		return ErrDiscordIDRequired
	}

	user, err := s.storage.GetUserByID(ctx, userID)
	if err != nil {
		return err
	}

	done := true
	user.DiscordID = discordID
	user.HasDiscord = &done

	if err := s.storage.UpdateUser(ctx, user); err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}

	s.identity.Invalidate()
	s.logger.InfoContext(ctx, "discord linked", "user_id", userID)
	return nil
}

// AcceptTerms completes the terms onboarding step. Accepting twice is a
// no-op that keeps the original timestamp.
func (s *AccountService) AcceptTerms(ctx context.Context, userID string) error {
	user, err := s.storage.GetUserByID(ctx, userID)
	if err != nil {
		return err
	}

	if !flagSet(user.TermsAccepted) {
		now := time.Now()
		done := true
		user.TermsAcceptedAt = &now
		user.TermsAccepted = &done

		if err := s.storage.UpdateUser(ctx, user); err != nil {
			return fmt.Errorf("failed to update user: %w", err)
		}
	}

	s.identity.Invalidate()
	return nil
}

// SetWhitelisted grants or revokes the administrator-approved gate.
// Only admins may call it.
func (s *AccountService) SetWhitelisted(ctx context.Context, actorID, userID string, whitelisted bool) error {
	if userID == "" {
		return ErrUserIDRequired
	}

	actor, err := s.storage.GetUserByID(ctx, actorID)
	if err != nil {
		return err
	}
	if !actor.IsAdmin {
		return ErrAdminRequired
	}

	user, err := s.storage.GetUserByID(ctx, userID)
	if err != nil {
		return err
	}

	user.IsWhitelisted = &whitelisted

	if err := s.storage.UpdateUser(ctx, user); err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}

	s.identity.Invalidate()
	s.logger.InfoContext(ctx, "whitelist changed", "actor_id", actorID, "user_id", userID, "whitelisted", whitelisted)
	return nil
}
