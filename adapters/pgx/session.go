package pgx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/opendeck/portal/core"
)

func (a *Adapter) GetSession(ctx context.Context, clientID string) (*core.Session, error) {
	q := `SELECT token, profile FROM public.portal_sessions WHERE client_id = $1`

	var token string
	var rawProfile []byte
	err := a.pool.QueryRow(ctx, q, clientID).Scan(&token, &rawProfile)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, core.ErrSessionNotFound
		}
		return nil, err
	}

	session := &core.Session{Token: token}
	if len(rawProfile) > 0 {
		profile := &core.Profile{}
		if err := json.Unmarshal(rawProfile, profile); err != nil {
			return nil, fmt.Errorf("failed to decode stored profile: %w", err)
		}
		session.User = profile
	}
	return session, nil
}

func (a *Adapter) SetSession(ctx context.Context, clientID, token string, user *core.Profile) error {
	rawProfile, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("failed to encode profile: %w", err)
	}

	q := `INSERT INTO public.portal_sessions (client_id, token, profile, updated_at)
	      VALUES ($1, $2, $3, now())
	      ON CONFLICT (client_id) DO UPDATE SET token = $2, profile = $3, updated_at = now()`
	_, err = a.pool.Exec(ctx, q, clientID, token, rawProfile)
	return err
}

func (a *Adapter) ClearSession(ctx context.Context, clientID string) error {
	_, err := a.pool.Exec(ctx, `DELETE FROM public.portal_sessions WHERE client_id = $1`, clientID)
	return err
}
