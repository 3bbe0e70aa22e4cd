// README: Postgres connection pool initialization using pgxpool.
package infra

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// NewDB opens a pool and verifies the database is reachable, so a bad DSN
// fails at startup instead of on the first query.
func NewDB(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("infra: open db: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("infra: ping db: %w", err)
	}
	return pool, nil
}
