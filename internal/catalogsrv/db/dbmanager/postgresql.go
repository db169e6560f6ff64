// Package dbmanager provides functionality for managing the PostgreSQL
// database connection pool used by the catalog store.
package dbmanager

import (
	"context"
	"database/sql"
	"time"

	"github.com/avast/retry-go/v4"
	_ "github.com/jackc/pgx/v4/stdlib"
	"github.com/rs/zerolog/log"
)

// NewPostgresqlDb opens a connection pool against the given DSN. Every
// session carries bounded statement and lock timeouts so a stuck backend
// fails the request visibly instead of hanging it. The initial ping is
// retried briefly to ride out a database that is still coming up.
func NewPostgresqlDb(ctx context.Context, dsn string) (*sql.DB, error) {
	sqlDB, err := sql.Open("pgx", dsn+" options='-c statement_timeout=5s -c lock_timeout=5s'")
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("failed to open db")
		return nil, err
	}

	sqlDB.SetMaxOpenConns(16)
	sqlDB.SetMaxIdleConns(4)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	err = retry.Do(
		func() error {
			pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			defer cancel()
			return sqlDB.PingContext(pingCtx)
		},
		retry.Context(ctx),
		retry.Attempts(5),
		retry.Delay(500*time.Millisecond),
		retry.OnRetry(func(n uint, err error) {
			log.Ctx(ctx).Warn().Uint("attempt", n).Err(err).Msg("db ping failed, retrying")
		}),
	)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("failed to ping db")
		sqlDB.Close()
		return nil, err
	}

	return sqlDB, nil
}
