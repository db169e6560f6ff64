package postgresql

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/edushelf/edushelf/internal/catalogsrv/db/dberror"
	"github.com/edushelf/edushelf/internal/common/apperrors"
)

// Schema history. Each step runs inside its own transaction; a step either
// lands completely or not at all. Step 2 is the semester key migration: the
// old (college_id, number) index is dropped and the (course_id, number)
// index created in the same transaction, so at no point are two uniqueness
// constraints live on semesters at once.

type migration struct {
	version int
	name    string
	apply   func(ctx context.Context, tx *sql.Tx) error
}

var migrations = []migration{
	{
		version: 1,
		name:    "base tables",
		apply: func(ctx context.Context, tx *sql.Tx) error {
			_, err := tx.ExecContext(ctx, schemaV1)
			return err
		},
	},
	{
		version: 2,
		name:    "semester uniqueness moves from (college_id, number) to (course_id, number)",
		apply:   migrateSemesterKey,
	},
}

const schemaV1 = `
CREATE TABLE IF NOT EXISTS colleges (
	id          TEXT PRIMARY KEY,
	name        VARCHAR(512) NOT NULL,
	info        JSONB,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE UNIQUE INDEX IF NOT EXISTS colleges_name_key ON colleges (name);

CREATE TABLE IF NOT EXISTS courses (
	id          TEXT PRIMARY KEY,
	name        VARCHAR(512) NOT NULL,
	code        VARCHAR(64),
	college_id  TEXT NOT NULL REFERENCES colleges (id),
	info        JSONB,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE UNIQUE INDEX IF NOT EXISTS courses_college_id_name_key ON courses (college_id, name);

CREATE TABLE IF NOT EXISTS semesters (
	id          TEXT PRIMARY KEY,
	college_id  TEXT REFERENCES colleges (id),
	course_id   TEXT REFERENCES courses (id),
	number      INTEGER NOT NULL CHECK (number >= 1),
	name        VARCHAR(128),
	info        JSONB,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE UNIQUE INDEX IF NOT EXISTS semesters_college_id_number_key ON semesters (college_id, number);

CREATE TABLE IF NOT EXISTS subjects (
	id           TEXT PRIMARY KEY,
	semester_id  TEXT NOT NULL REFERENCES semesters (id),
	name         VARCHAR(512) NOT NULL,
	code         VARCHAR(64),
	info         JSONB,
	created_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE UNIQUE INDEX IF NOT EXISTS subjects_semester_id_name_key ON subjects (semester_id, name);

CREATE TABLE IF NOT EXISTS units (
	id           TEXT PRIMARY KEY,
	subject_id   TEXT NOT NULL REFERENCES subjects (id),
	name         VARCHAR(512) NOT NULL,
	number       INTEGER NOT NULL CHECK (number >= 1),
	source_kind  TEXT NOT NULL DEFAULT '',
	source_ref   TEXT NOT NULL DEFAULT '',
	description  TEXT NOT NULL DEFAULT '',
	info         JSONB,
	created_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE UNIQUE INDEX IF NOT EXISTS units_subject_id_number_key ON units (subject_id, number);

CREATE TABLE IF NOT EXISTS users (
	id             TEXT PRIMARY KEY,
	name           VARCHAR(256) NOT NULL DEFAULT '',
	email          VARCHAR(320) NOT NULL,
	password_hash  TEXT NOT NULL,
	college_id     TEXT REFERENCES colleges (id),
	created_at     TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at     TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE UNIQUE INDEX IF NOT EXISTS users_email_key ON users (email);
`

// migrateSemesterKey swaps the semester uniqueness constraint. It refuses
// to run while rows exist that would collide under the new key; those have
// to be reconciled by an operator first, reporting is all we can do safely.
func migrateSemesterKey(ctx context.Context, tx *sql.Tx) error {
	rows, err := tx.QueryContext(ctx, `
		SELECT course_id, number, COUNT(*)
		FROM semesters
		WHERE course_id IS NOT NULL
		GROUP BY course_id, number
		HAVING COUNT(*) > 1;
	`)
	if err != nil {
		return err
	}
	defer rows.Close()
	var dups []string
	for rows.Next() {
		var courseID string
		var number, count int
		if err := rows.Scan(&courseID, &number, &count); err != nil {
			return err
		}
		dups = append(dups, fmt.Sprintf("course=%s number=%d count=%d", courseID, number, count))
	}
	if err := rows.Err(); err != nil {
		return err
	}
	if len(dups) > 0 {
		return fmt.Errorf("cannot apply (course_id, number) uniqueness, duplicate rows exist: %v", dups)
	}

	if _, err := tx.ExecContext(ctx, `DROP INDEX IF EXISTS semesters_college_id_number_key;`); err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx, `CREATE UNIQUE INDEX semesters_course_id_number_key ON semesters (course_id, number);`)
	return err
}

// Migrate applies all pending schema steps in order.
func (cs *catalogStore) Migrate(ctx context.Context) apperrors.Error {
	_, err := cs.conn().ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version     INTEGER PRIMARY KEY,
			name        TEXT NOT NULL,
			applied_at  TIMESTAMPTZ NOT NULL DEFAULT now()
		);
	`)
	if err != nil {
		return dberror.ErrDatabase.Err(err)
	}

	for _, m := range migrations {
		applied, aerr := cs.migrationApplied(ctx, m.version)
		if aerr != nil {
			return aerr
		}
		if applied {
			continue
		}
		tx, err := cs.conn().BeginTx(ctx, &sql.TxOptions{})
		if err != nil {
			return dberror.ErrDatabase.Err(err)
		}
		if err := m.apply(ctx, tx); err != nil {
			tx.Rollback()
			log.Ctx(ctx).Error().Err(err).Int("version", m.version).Msg("migration failed")
			return dberror.ErrDatabase.MsgErr(fmt.Sprintf("migration %d (%s) failed", m.version, m.name), err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO schema_migrations (version, name) VALUES ($1, $2);`, m.version, m.name); err != nil {
			tx.Rollback()
			return dberror.ErrDatabase.Err(err)
		}
		if err := tx.Commit(); err != nil {
			return dberror.ErrDatabase.Err(err)
		}
		log.Ctx(ctx).Info().Int("version", m.version).Str("name", m.name).Msg("applied migration")
	}
	return nil
}

func (cs *catalogStore) migrationApplied(ctx context.Context, version int) (bool, apperrors.Error) {
	var v int
	err := cs.conn().QueryRowContext(ctx,
		`SELECT version FROM schema_migrations WHERE version = $1;`, version).Scan(&v)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, dberror.ErrDatabase.Err(err)
	}
	return true, nil
}
