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

// CreateSubject inserts a new subject under its semester. Uniqueness is
// (semester_id, name).
func (cs *catalogStore) CreateSubject(ctx context.Context, subject *models.Subject) apperrors.Error {
	if subject.Name == "" {
		return dberror.ErrInvalidInput.Msg("subject name cannot be empty")
	}
	if subject.SemesterID == "" {
		return dberror.ErrInvalidInput.Msg("subject semester cannot be empty")
	}
	if subject.ID == "" {
		subject.ID = catcommon.NewID()
	}

	query := `
		INSERT INTO subjects (id, semester_id, name, code, info)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (semester_id, name) DO NOTHING
		RETURNING id, created_at, updated_at;
	`
	row := cs.conn().QueryRowContext(ctx, query,
		subject.ID, subject.SemesterID, subject.Name, subject.Code, nullableJSONB(subject.Info))
	err := row.Scan(&subject.ID, &subject.CreatedAt, &subject.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			log.Ctx(ctx).Info().Str("name", subject.Name).Str("semester", subject.SemesterID).
				Msg("subject already exists")
			return dberror.ErrAlreadyExists.Msg("subject already exists")
		}
		return mapPgError(ctx, err, "subject")
	}
	return nil
}

// GetSubject retrieves a subject by identifier, literal form first.
func (cs *catalogStore) GetSubject(ctx context.Context, ref catcommon.Ref) (*models.Subject, apperrors.Error) {
	if ref.IsZero() {
		return nil, dberror.ErrInvalidInput.Msg("subject id must be provided")
	}
	query := `
		SELECT id, semester_id, name, COALESCE(code, ''), info, created_at, updated_at
		FROM subjects
		WHERE id = $1;
	`
	for _, form := range refForms(ref) {
		subject := &models.Subject{}
		err := cs.conn().QueryRowContext(ctx, query, form).
			Scan(&subject.ID, &subject.SemesterID, &subject.Name, &subject.Code,
				&subject.Info, &subject.CreatedAt, &subject.UpdatedAt)
		if err == sql.ErrNoRows {
			continue
		}
		if err != nil {
			log.Ctx(ctx).Error().Err(err).Msg("failed to retrieve subject")
			return nil, dberror.ErrDatabase.Err(err)
		}
		return subject, nil
	}
	return nil, dberror.ErrNotFound.Msg("subject not found")
}

// ListSubjectsBySemester returns the subjects of a semester ordered by name.
func (cs *catalogStore) ListSubjectsBySemester(ctx context.Context, semester catcommon.Ref) ([]*models.Subject, apperrors.Error) {
	if semester.IsZero() {
		return nil, dberror.ErrInvalidInput.Msg("semester id must be provided")
	}
	query := `
		SELECT id, semester_id, name, COALESCE(code, ''), info, created_at, updated_at
		FROM subjects
		WHERE semester_id = $1
		ORDER BY name ASC;
	`
	for _, form := range refForms(semester) {
		rows, err := cs.conn().QueryContext(ctx, query, form)
		if err != nil {
			log.Ctx(ctx).Error().Err(err).Msg("failed to list subjects")
			return nil, dberror.ErrDatabase.Err(err)
		}
		subjects, serr := collectSubjects(rows)
		if serr != nil {
			return nil, dberror.ErrDatabase.Err(serr)
		}
		if len(subjects) > 0 {
			return subjects, nil
		}
	}
	return []*models.Subject{}, nil
}

func collectSubjects(rows *sql.Rows) ([]*models.Subject, error) {
	defer rows.Close()
	subjects := []*models.Subject{}
	for rows.Next() {
		subject := &models.Subject{}
		if err := rows.Scan(&subject.ID, &subject.SemesterID, &subject.Name, &subject.Code,
			&subject.Info, &subject.CreatedAt, &subject.UpdatedAt); err != nil {
			return nil, err
		}
		subjects = append(subjects, subject)
	}
	return subjects, rows.Err()
}

func (cs *catalogStore) getSubjectBySemesterAndName(ctx context.Context, semesterID, name string) (*models.Subject, apperrors.Error) {
	query := `
		SELECT id, semester_id, name, COALESCE(code, ''), info, created_at, updated_at
		FROM subjects
		WHERE semester_id = $1 AND name = $2;
	`
	subject := &models.Subject{}
	err := cs.conn().QueryRowContext(ctx, query, semesterID, name).
		Scan(&subject.ID, &subject.SemesterID, &subject.Name, &subject.Code,
			&subject.Info, &subject.CreatedAt, &subject.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, dberror.ErrNotFound.Msg("subject not found")
	}
	if err != nil {
		return nil, dberror.ErrDatabase.Err(err)
	}
	return subject, nil
}

// UpsertSubject creates the subject when absent and otherwise refreshes its
// mutable attributes, keyed by (semester_id, name).
func (cs *catalogStore) UpsertSubject(ctx context.Context, subject *models.Subject) apperrors.Error {
	if subject.Name == "" {
		return dberror.ErrInvalidInput.Msg("subject name cannot be empty")
	}
	if subject.SemesterID == "" {
		return dberror.ErrInvalidInput.Msg("subject semester cannot be empty")
	}
	existing, err := cs.getSubjectBySemesterAndName(ctx, subject.SemesterID, subject.Name)
	if err != nil {
		if !err.Is(dberror.ErrNotFound) {
			return err
		}
		cerr := cs.CreateSubject(ctx, subject)
		if cerr == nil {
			return nil
		}
		if !cerr.Is(dberror.ErrAlreadyExists) {
			return cerr
		}
		existing, err = cs.getSubjectBySemesterAndName(ctx, subject.SemesterID, subject.Name)
		if err != nil {
			return err
		}
	}
	return cs.updateSubject(ctx, existing.ID, subject)
}

func (cs *catalogStore) updateSubject(ctx context.Context, id string, subject *models.Subject) apperrors.Error {
	query := `
		UPDATE subjects
		SET code = $2, info = $3, updated_at = now()
		WHERE id = $1
		RETURNING id, semester_id, name, COALESCE(code, ''), info, created_at, updated_at;
	`
	err := cs.conn().QueryRowContext(ctx, query, id, subject.Code, nullableJSONB(subject.Info)).
		Scan(&subject.ID, &subject.SemesterID, &subject.Name, &subject.Code,
			&subject.Info, &subject.CreatedAt, &subject.UpdatedAt)
	if err == sql.ErrNoRows {
		return dberror.ErrNotFound.Msg("subject not found")
	}
	if err != nil {
		return mapPgError(ctx, err, "subject")
	}
	return nil
}
