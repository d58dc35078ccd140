// Package redis provides Redis-backed session storage. Each client's
// session lives in one hash so the token and profile fields are always
// written and deleted together.
package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/opendeck/portal/core"
)

const keyPrefix = "portal:session:"

type Store struct {
	client *redis.Client
}

var _ core.SessionStorage = (*Store)(nil)

// New connects to Redis from a URL and verifies the connection.
func New(ctx context.Context, url string) (*Store, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &Store{client: client}, nil
}

// NewWithClient wraps an existing client, mainly for tests.
func NewWithClient(client *redis.Client) *Store {
	return &Store{client: client}
}

func (s *Store) GetSession(ctx context.Context, clientID string) (*core.Session, error) {
	fields, err := s.client.HGetAll(ctx, keyPrefix+clientID).Result()
	if err != nil {
		return nil, err
	}

	token, ok := fields["token"]
	if !ok || token == "" {
		return nil, core.ErrSessionNotFound
	}

	session := &core.Session{Token: token}
	if rawUser := fields["user"]; rawUser != "" {
		profile := &core.Profile{}
		if err := json.Unmarshal([]byte(rawUser), profile); err != nil {
			return nil, fmt.Errorf("failed to decode stored profile: %w", err)
		}
		session.User = profile
	}
	return session, nil
}

func (s *Store) SetSession(ctx context.Context, clientID, token string, user *core.Profile) error {
	rawUser, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("failed to encode profile: %w", err)
	}

	return s.client.HSet(ctx, keyPrefix+clientID,
		"token", token,
		"user", string(rawUser),
	).Err()
}

func (s *Store) ClearSession(ctx context.Context, clientID string) error {
	return s.client.Del(ctx, keyPrefix+clientID).Err()
}

// Health checks the Redis connection.
func (s *Store) Health(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close closes the underlying client.
func (s *Store) Close() error {
	return s.client.Close()
}
