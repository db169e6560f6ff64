package postgresql

import (
	"context"
	"database/sql"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgtype"
	"github.com/rs/zerolog/log"

	"github.com/edushelf/edushelf/internal/catalogsrv/catcommon"
	"github.com/edushelf/edushelf/internal/catalogsrv/db/dberror"
	"github.com/edushelf/edushelf/internal/catalogsrv/db/models"
	"github.com/edushelf/edushelf/internal/common/apperrors"
)

func nullableJSONB(j pgtype.JSONB) pgtype.JSONB {
	if j.Status == pgtype.Undefined {
		j.Status = pgtype.Null
	}
	return j
}

// CreateCollege inserts a new college. If a college with the same name
// already exists the insertion is skipped and ErrAlreadyExists returned.
func (cs *catalogStore) CreateCollege(ctx context.Context, college *models.College) apperrors.Error {
	if college.Name == "" {
		return dberror.ErrInvalidInput.Msg("college name cannot be empty")
	}
	if college.ID == "" {
		college.ID = catcommon.NewID()
	}

	query := `
		INSERT INTO colleges (id, name, info)
		VALUES ($1, $2, $3)
		ON CONFLICT (name) DO NOTHING
		RETURNING id, created_at, updated_at;
	`
	row := cs.conn().QueryRowContext(ctx, query, college.ID, college.Name, nullableJSONB(college.Info))
	err := row.Scan(&college.ID, &college.CreatedAt, &college.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			log.Ctx(ctx).Info().Str("name", college.Name).Msg("college already exists")
			return dberror.ErrAlreadyExists.Msg("college already exists")
		}
		log.Ctx(ctx).Error().Err(err).Str("name", college.Name).Msg("failed to insert college")
		return dberror.ErrDatabase.Err(err)
	}
	return nil
}

// GetCollege retrieves a college by identifier. The literal identifier is
// tried first, then the normalized UUID form when the literal matches
// nothing.
func (cs *catalogStore) GetCollege(ctx context.Context, ref catcommon.Ref) (*models.College, apperrors.Error) {
	if ref.IsZero() {
		return nil, dberror.ErrInvalidInput.Msg("college id must be provided")
	}
	query := `
		SELECT id, name, info, created_at, updated_at
		FROM colleges
		WHERE id = $1;
	`
	for _, form := range refForms(ref) {
		college := &models.College{}
		err := cs.conn().QueryRowContext(ctx, query, form).
			Scan(&college.ID, &college.Name, &college.Info, &college.CreatedAt, &college.UpdatedAt)
		if err == sql.ErrNoRows {
			continue
		}
		if err != nil {
			log.Ctx(ctx).Error().Err(err).Msg("failed to retrieve college")
			return nil, dberror.ErrDatabase.Err(err)
		}
		return college, nil
	}
	return nil, dberror.ErrNotFound.Msg("college not found")
}

// ListColleges returns all colleges ordered by name.
func (cs *catalogStore) ListColleges(ctx context.Context) ([]*models.College, apperrors.Error) {
	query := `
		SELECT id, name, info, created_at, updated_at
		FROM colleges
		ORDER BY name ASC;
	`
	rows, err := cs.conn().QueryContext(ctx, query)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("failed to list colleges")
		return nil, dberror.ErrDatabase.Err(err)
	}
	defer rows.Close()

	colleges := []*models.College{}
	for rows.Next() {
		college := &models.College{}
		if err := rows.Scan(&college.ID, &college.Name, &college.Info, &college.CreatedAt, &college.UpdatedAt); err != nil {
			return nil, dberror.ErrDatabase.Err(err)
		}
		colleges = append(colleges, college)
	}
	if err := rows.Err(); err != nil {
		return nil, dberror.ErrDatabase.Err(err)
	}
	return colleges, nil
}

func (cs *catalogStore) getCollegeByName(ctx context.Context, name string) (*models.College, apperrors.Error) {
	query := `
		SELECT id, name, info, created_at, updated_at
		FROM colleges
		WHERE name = $1;
	`
	college := &models.College{}
	err := cs.conn().QueryRowContext(ctx, query, name).
		Scan(&college.ID, &college.Name, &college.Info, &college.CreatedAt, &college.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, dberror.ErrNotFound.Msg("college not found")
	}
	if err != nil {
		return nil, dberror.ErrDatabase.Err(err)
	}
	return college, nil
}

// UpsertCollege creates the college when absent, keyed by name. Import
// tooling re-runs against partially populated data, so a lost create race
// is recovered by falling back to the lookup.
func (cs *catalogStore) UpsertCollege(ctx context.Context, college *models.College) apperrors.Error {
	if college.Name == "" {
		return dberror.ErrInvalidInput.Msg("college name cannot be empty")
	}
	existing, err := cs.getCollegeByName(ctx, college.Name)
	if err == nil {
		*college = *existing
		return nil
	}
	if !err.Is(dberror.ErrNotFound) {
		return err
	}
	err = cs.CreateCollege(ctx, college)
	if err == nil {
		return nil
	}
	if err.Is(dberror.ErrAlreadyExists) {
		existing, gerr := cs.getCollegeByName(ctx, college.Name)
		if gerr != nil {
			return gerr
		}
		*college = *existing
		return nil
	}
	return err
}

func mapPgError(ctx context.Context, err error, entity string) apperrors.Error {
	if pgErr, ok := err.(*pgconn.PgError); ok {
		switch pgErr.Code {
		case "23505": // unique violation
			log.Ctx(ctx).Info().Str("constraint", pgErr.ConstraintName).Msgf("%s already exists", entity)
			return dberror.ErrAlreadyExists.Msg(entity + " already exists")
		case "23503": // foreign key violation
			log.Ctx(ctx).Info().Str("constraint", pgErr.ConstraintName).Msgf("%s parent not found", entity)
			return dberror.ErrInvalidInput.Msg(entity + " parent not found")
		case "23514": // check violation
			log.Ctx(ctx).Error().Str("constraint", pgErr.ConstraintName).Msgf("invalid %s value", entity)
			return dberror.ErrInvalidInput.Msg("invalid " + entity + " value")
		}
	}
	log.Ctx(ctx).Error().Err(err).Msgf("failed to store %s", entity)
	return dberror.ErrDatabase.Err(err)
}
