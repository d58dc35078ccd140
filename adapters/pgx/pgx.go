// Package pgx provides PostgreSQL-backed storage for the portal.
package pgx

import (
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/opendeck/portal/core"
)

type Adapter struct {
	pool *pgxpool.Pool
}

var _ core.Storage = (*Adapter)(nil)

func New(pool *pgxpool.Pool) *Adapter {
	return &Adapter{
		pool: pool,
	}
}
