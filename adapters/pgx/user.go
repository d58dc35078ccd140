package pgx

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/opendeck/portal/core"
)

// Columns are qualified with the users alias because GetUserByTokenHash
// selects them over a join with portal_tokens, which shares column names.
const userColumns = `u.id, u.username, u.is_admin, u.is_whitelisted, u.has_password, u.has_discord,
	u.terms_accepted, u.password_hash, u.discord_id, u.terms_accepted_at, u.created_at, u.updated_at`

func scanUser(row pgx.Row) (*core.User, error) {
	user := &core.User{}
	err := row.Scan(
		&user.ID,
		&user.Username,
		&user.IsAdmin,
		&user.IsWhitelisted,
		&user.HasPassword,
		&user.HasDiscord,
		&user.TermsAccepted,
		&user.PasswordHash,
		&user.DiscordID,
		&user.TermsAcceptedAt,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, core.ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (a *Adapter) UpsertUser(ctx context.Context, u *core.User) error {
	// Identity fields and flags come from the provider snapshot; locally
	// held credentials are never overwritten here.
	q := `INSERT INTO public.portal_users (id, username, is_admin, is_whitelisted, has_password, has_discord, terms_accepted)
	      VALUES ($1, $2, $3, $4, $5, $6, $7)
	      ON CONFLICT (id) DO UPDATE SET
	        username = $2, is_admin = $3, is_whitelisted = $4,
	        has_password = $5, has_discord = $6, terms_accepted = $7,
	        updated_at = now()`
	_, err := a.pool.Exec(ctx, q,
		u.ID, u.Username, u.IsAdmin, u.IsWhitelisted, u.HasPassword, u.HasDiscord, u.TermsAccepted)
	return err
}

func (a *Adapter) GetUserByID(ctx context.Context, id string) (*core.User, error) {
	q := `SELECT ` + userColumns + ` FROM public.portal_users u WHERE u.id = $1`
	return scanUser(a.pool.QueryRow(ctx, q, id))
}

func (a *Adapter) GetUserByTokenHash(ctx context.Context, tokenHash string) (*core.User, error) {
	q := `SELECT ` + userColumns + ` FROM public.portal_users u
	      JOIN public.portal_tokens t ON t.user_id = u.id
	      WHERE t.token_hash = $1`
	return scanUser(a.pool.QueryRow(ctx, q, tokenHash))
}

func (a *Adapter) UpdateUser(ctx context.Context, u *core.User) error {
	q := `UPDATE public.portal_users SET
	        username = $2, is_admin = $3, is_whitelisted = $4,
	        has_password = $5, has_discord = $6, terms_accepted = $7,
	        password_hash = $8, discord_id = $9, terms_accepted_at = $10,
	        updated_at = now()
	      WHERE id = $1`
	tag, err := a.pool.Exec(ctx, q,
		u.ID, u.Username, u.IsAdmin, u.IsWhitelisted, u.HasPassword, u.HasDiscord,
		u.TermsAccepted, u.PasswordHash, u.DiscordID, u.TermsAcceptedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return core.ErrUserNotFound
	}
	return nil
}

func (a *Adapter) RegisterToken(ctx context.Context, tokenHash, userID string) error {
	q := `INSERT INTO public.portal_tokens (token_hash, user_id)
	      VALUES ($1, $2)
	      ON CONFLICT (token_hash) DO UPDATE SET user_id = $2`
	_, err := a.pool.Exec(ctx, q, tokenHash, userID)
	return err
}

func (a *Adapter) RevokeToken(ctx context.Context, tokenHash string) error {
	_, err := a.pool.Exec(ctx, `DELETE FROM public.portal_tokens WHERE token_hash = $1`, tokenHash)
	return err
}
