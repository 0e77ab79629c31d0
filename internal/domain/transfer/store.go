package transfer

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Querier is the subset of pgx's query surface the executor uses.
// *pgxpool.Pool and pgx.Tx both satisfy it; the executor's helpers take a
// pgx.Tx directly rather than this interface.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Beginner starts a new database transaction. *pgxpool.Pool implements
// this directly.
type Beginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// DB is the executor's full dependency on the store: open transactions,
// each exposing the Querier surface.
type DB interface {
	Beginner
}
