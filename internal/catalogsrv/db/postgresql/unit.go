package postgresql

import (
	"context"
	"database/sql"

	"github.com/rs/zerolog/log"

	"github.com/edushelf/edushelf/internal/catalogsrv/catcommon"
	"github.com/edushelf/edushelf/internal/catalogsrv/db/dberror"
	"github.com/edushelf/edushelf/internal/catalogsrv/db/models"
	"github.com/edushelf/edushelf/internal/common/apperrors"
)

const unitColumns = `
	id, subject_id, name, number, source_kind, source_ref, description,
	info, created_at, updated_at
`

func scanUnit(row interface{ Scan(...any) error }) (*models.Unit, error) {
	u := &models.Unit{}
	err := row.Scan(&u.ID, &u.SubjectID, &u.Name, &u.Number, &u.SourceKind,
		&u.SourceRef, &u.Description, &u.Info, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

// CreateUnit inserts a new unit under its subject. Uniqueness is
// (subject_id, number).
func (cs *catalogStore) CreateUnit(ctx context.Context, unit *models.Unit) apperrors.Error {
	if unit.Name == "" {
		return dberror.ErrInvalidInput.Msg("unit name cannot be empty")
	}
	if unit.SubjectID == "" {
		return dberror.ErrInvalidInput.Msg("unit subject cannot be empty")
	}
	if unit.Number < 1 {
		return dberror.ErrInvalidInput.Msg("unit number must be positive")
	}
	if unit.ID == "" {
		unit.ID = catcommon.NewID()
	}

	query := `
		INSERT INTO units (id, subject_id, name, number, source_kind, source_ref, description, info)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (subject_id, number) DO NOTHING
		RETURNING id, created_at, updated_at;
	`
	row := cs.conn().QueryRowContext(ctx, query,
		unit.ID, unit.SubjectID, unit.Name, unit.Number,
		string(unit.SourceKind), unit.SourceRef, unit.Description, nullableJSONB(unit.Info))
	err := row.Scan(&unit.ID, &unit.CreatedAt, &unit.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			log.Ctx(ctx).Info().Str("subject", unit.SubjectID).Int("number", unit.Number).
				Msg("unit already exists")
			return dberror.ErrAlreadyExists.Msg("unit already exists")
		}
		return mapPgError(ctx, err, "unit")
	}
	return nil
}

// GetUnit retrieves a unit by identifier, literal form first.
func (cs *catalogStore) GetUnit(ctx context.Context, ref catcommon.Ref) (*models.Unit, apperrors.Error) {
	if ref.IsZero() {
		return nil, dberror.ErrInvalidInput.Msg("unit id must be provided")
	}
	query := `SELECT ` + unitColumns + ` FROM units WHERE id = $1;`
	for _, form := range refForms(ref) {
		unit, err := scanUnit(cs.conn().QueryRowContext(ctx, query, form))
		if err == sql.ErrNoRows {
			continue
		}
		if err != nil {
			log.Ctx(ctx).Error().Err(err).Msg("failed to retrieve unit")
			return nil, dberror.ErrDatabase.Err(err)
		}
		return unit, nil
	}
	return nil, dberror.ErrNotFound.Msg("unit not found")
}

// ListUnitsBySubject returns the units of a subject ordered by number.
func (cs *catalogStore) ListUnitsBySubject(ctx context.Context, subject catcommon.Ref) ([]*models.Unit, apperrors.Error) {
	if subject.IsZero() {
		return nil, dberror.ErrInvalidInput.Msg("subject id must be provided")
	}
	query := `
		SELECT ` + unitColumns + `
		FROM units
		WHERE subject_id = $1
		ORDER BY number ASC, created_at ASC;
	`
	for _, form := range refForms(subject) {
		rows, err := cs.conn().QueryContext(ctx, query, form)
		if err != nil {
			log.Ctx(ctx).Error().Err(err).Msg("failed to list units")
			return nil, dberror.ErrDatabase.Err(err)
		}
		units, uerr := collectUnits(rows)
		if uerr != nil {
			return nil, dberror.ErrDatabase.Err(uerr)
		}
		if len(units) > 0 {
			return units, nil
		}
	}
	return []*models.Unit{}, nil
}

func collectUnits(rows *sql.Rows) ([]*models.Unit, error) {
	defer rows.Close()
	units := []*models.Unit{}
	for rows.Next() {
		unit, err := scanUnit(rows)
		if err != nil {
			return nil, err
		}
		units = append(units, unit)
	}
	return units, rows.Err()
}

func (cs *catalogStore) getUnitBySubjectAndNumber(ctx context.Context, subjectID string, number int) (*models.Unit, apperrors.Error) {
	query := `SELECT ` + unitColumns + ` FROM units WHERE subject_id = $1 AND number = $2;`
	unit, err := scanUnit(cs.conn().QueryRowContext(ctx, query, subjectID, number))
	if err == sql.ErrNoRows {
		return nil, dberror.ErrNotFound.Msg("unit not found")
	}
	if err != nil {
		return nil, dberror.ErrDatabase.Err(err)
	}
	return unit, nil
}

// UpsertUnit creates the unit when absent and otherwise overwrites its
// mutable attributes, keyed by (subject_id, number). Re-running an import
// with a corrected document reference repairs the stored one.
func (cs *catalogStore) UpsertUnit(ctx context.Context, unit *models.Unit) apperrors.Error {
	if unit.Name == "" {
		return dberror.ErrInvalidInput.Msg("unit name cannot be empty")
	}
	if unit.SubjectID == "" {
		return dberror.ErrInvalidInput.Msg("unit subject cannot be empty")
	}
	if unit.Number < 1 {
		return dberror.ErrInvalidInput.Msg("unit number must be positive")
	}
	existing, err := cs.getUnitBySubjectAndNumber(ctx, unit.SubjectID, unit.Number)
	if err != nil {
		if !err.Is(dberror.ErrNotFound) {
			return err
		}
		cerr := cs.CreateUnit(ctx, unit)
		if cerr == nil {
			return nil
		}
		if !cerr.Is(dberror.ErrAlreadyExists) {
			return cerr
		}
		existing, err = cs.getUnitBySubjectAndNumber(ctx, unit.SubjectID, unit.Number)
		if err != nil {
			return err
		}
	}
	return cs.updateUnit(ctx, existing.ID, unit)
}

func (cs *catalogStore) updateUnit(ctx context.Context, id string, unit *models.Unit) apperrors.Error {
	query := `
		UPDATE units
		SET name = $2, source_kind = $3, source_ref = $4, description = $5,
			info = $6, updated_at = now()
		WHERE id = $1
		RETURNING ` + unitColumns + `;
	`
	updated, err := scanUnit(cs.conn().QueryRowContext(ctx, query, id,
		unit.Name, string(unit.SourceKind), unit.SourceRef, unit.Description, nullableJSONB(unit.Info)))
	if err == sql.ErrNoRows {
		return dberror.ErrNotFound.Msg("unit not found")
	}
	if err != nil {
		return mapPgError(ctx, err, "unit")
	}
	*unit = *updated
	return nil
}
