// Package postgresql implements db.CatalogStore on PostgreSQL. Each entity
// kind has its own file mirroring the table it manages. Uniqueness is
// enforced by unique indexes; racing creates resolve in the database, the
// losers observing dberror.ErrAlreadyExists.
package postgresql

import (
	"context"
	"database/sql"

	"github.com/edushelf/edushelf/internal/catalogsrv/catcommon"
	"github.com/edushelf/edushelf/internal/catalogsrv/db"
	"github.com/edushelf/edushelf/internal/common/apperrors"
)

type catalogStore struct {
	pool *sql.DB
}

// New wraps an open connection pool as a CatalogStore.
func New(pool *sql.DB) db.CatalogStore {
	return &catalogStore{pool: pool}
}

func (cs *catalogStore) conn() *sql.DB {
	return cs.pool
}

func (cs *catalogStore) Close() {
	cs.pool.Close()
}

// Migrate applies pending schema steps against the pool. Used by the admin
// CLI before the server or seed tooling touch the tables.
func Migrate(ctx context.Context, pool *sql.DB) apperrors.Error {
	cs := &catalogStore{pool: pool}
	return cs.Migrate(ctx)
}

// refForms returns the candidate key forms for a lookup, literal first,
// then the normalized UUID form when it differs. Data written under either
// historical identifier encoding stays reachable this way.
func refForms(ref catcommon.Ref) []string {
	forms := []string{ref.Raw()}
	if typed, ok := ref.Typed(); ok {
		forms = append(forms, typed)
	}
	return forms
}
