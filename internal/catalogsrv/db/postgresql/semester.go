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

const semesterColumns = `
	id, COALESCE(college_id, ''), COALESCE(course_id, ''), number,
	COALESCE(name, ''), info, created_at, updated_at
`

func scanSemester(row interface{ Scan(...any) error }) (*models.Semester, error) {
	s := &models.Semester{}
	err := row.Scan(&s.ID, &s.CollegeID, &s.CourseID, &s.Number,
		&s.Name, &s.Info, &s.CreatedAt, &s.UpdatedAt)
	return s, err
}

// CreateSemester inserts a new semester under its course. Uniqueness is
// (course_id, number).
func (cs *catalogStore) CreateSemester(ctx context.Context, semester *models.Semester) apperrors.Error {
	if semester.CourseID == "" {
		return dberror.ErrInvalidInput.Msg("semester course cannot be empty")
	}
	if semester.Number < 1 {
		return dberror.ErrInvalidInput.Msg("semester number must be positive")
	}
	if semester.ID == "" {
		semester.ID = catcommon.NewID()
	}

	query := `
		INSERT INTO semesters (id, college_id, course_id, number, name, info)
		VALUES ($1, NULLIF($2, ''), $3, $4, NULLIF($5, ''), $6)
		ON CONFLICT (course_id, number) DO NOTHING
		RETURNING id, created_at, updated_at;
	`
	row := cs.conn().QueryRowContext(ctx, query,
		semester.ID, semester.CollegeID, semester.CourseID, semester.Number,
		semester.Name, nullableJSONB(semester.Info))
	err := row.Scan(&semester.ID, &semester.CreatedAt, &semester.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			log.Ctx(ctx).Info().Str("course", semester.CourseID).Int("number", semester.Number).
				Msg("semester already exists")
			return dberror.ErrAlreadyExists.Msg("semester already exists")
		}
		return mapPgError(ctx, err, "semester")
	}
	return nil
}

// GetSemester retrieves a semester by identifier, literal form first.
func (cs *catalogStore) GetSemester(ctx context.Context, ref catcommon.Ref) (*models.Semester, apperrors.Error) {
	if ref.IsZero() {
		return nil, dberror.ErrInvalidInput.Msg("semester id must be provided")
	}
	query := `SELECT ` + semesterColumns + ` FROM semesters WHERE id = $1;`
	for _, form := range refForms(ref) {
		semester, err := scanSemester(cs.conn().QueryRowContext(ctx, query, form))
		if err == sql.ErrNoRows {
			continue
		}
		if err != nil {
			log.Ctx(ctx).Error().Err(err).Msg("failed to retrieve semester")
			return nil, dberror.ErrDatabase.Err(err)
		}
		return semester, nil
	}
	return nil, dberror.ErrNotFound.Msg("semester not found")
}

// ListSemestersByCourse returns the semesters of a course ordered by number.
func (cs *catalogStore) ListSemestersByCourse(ctx context.Context, course catcommon.Ref) ([]*models.Semester, apperrors.Error) {
	if course.IsZero() {
		return nil, dberror.ErrInvalidInput.Msg("course id must be provided")
	}
	query := `
		SELECT ` + semesterColumns + `
		FROM semesters
		WHERE course_id = $1
		ORDER BY number ASC, created_at ASC;
	`
	for _, form := range refForms(course) {
		semesters, err := cs.querySemesters(ctx, query, form)
		if err != nil {
			return nil, err
		}
		if len(semesters) > 0 {
			return semesters, nil
		}
	}
	return []*models.Semester{}, nil
}

// ListSemestersByCollege is the legacy view: every semester whose course
// belongs to the college, plus pre-migration rows attached to the college
// directly. With two courses of eight semesters each this returns sixteen
// rows, which is exactly what the old clients expect to page through.
func (cs *catalogStore) ListSemestersByCollege(ctx context.Context, college catcommon.Ref) ([]*models.Semester, apperrors.Error) {
	if college.IsZero() {
		return nil, dberror.ErrInvalidInput.Msg("college id must be provided")
	}
	query := `
		SELECT s.id, COALESCE(s.college_id, ''), COALESCE(s.course_id, ''), s.number,
			COALESCE(s.name, ''), s.info, s.created_at, s.updated_at
		FROM semesters s
		LEFT JOIN courses c ON s.course_id = c.id
		WHERE c.college_id = $1 OR s.college_id = $1
		ORDER BY s.number ASC, s.created_at ASC;
	`
	for _, form := range refForms(college) {
		semesters, err := cs.querySemesters(ctx, query, form)
		if err != nil {
			return nil, err
		}
		if len(semesters) > 0 {
			return semesters, nil
		}
	}
	return []*models.Semester{}, nil
}

func (cs *catalogStore) querySemesters(ctx context.Context, query string, args ...any) ([]*models.Semester, apperrors.Error) {
	rows, err := cs.conn().QueryContext(ctx, query, args...)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("failed to list semesters")
		return nil, dberror.ErrDatabase.Err(err)
	}
	defer rows.Close()

	semesters := []*models.Semester{}
	for rows.Next() {
		semester, err := scanSemester(rows)
		if err != nil {
			return nil, dberror.ErrDatabase.Err(err)
		}
		semesters = append(semesters, semester)
	}
	if err := rows.Err(); err != nil {
		return nil, dberror.ErrDatabase.Err(err)
	}
	return semesters, nil
}

func (cs *catalogStore) getSemesterByCourseAndNumber(ctx context.Context, courseID string, number int) (*models.Semester, apperrors.Error) {
	query := `SELECT ` + semesterColumns + ` FROM semesters WHERE course_id = $1 AND number = $2;`
	semester, err := scanSemester(cs.conn().QueryRowContext(ctx, query, courseID, number))
	if err == sql.ErrNoRows {
		return nil, dberror.ErrNotFound.Msg("semester not found")
	}
	if err != nil {
		return nil, dberror.ErrDatabase.Err(err)
	}
	return semester, nil
}

// UpsertSemester creates the semester when absent and otherwise refreshes
// its mutable attributes, keyed by (course_id, number). Identity and
// numbering never change on the update path.
func (cs *catalogStore) UpsertSemester(ctx context.Context, semester *models.Semester) apperrors.Error {
	if semester.CourseID == "" {
		return dberror.ErrInvalidInput.Msg("semester course cannot be empty")
	}
	if semester.Number < 1 {
		return dberror.ErrInvalidInput.Msg("semester number must be positive")
	}
	existing, err := cs.getSemesterByCourseAndNumber(ctx, semester.CourseID, semester.Number)
	if err != nil {
		if !err.Is(dberror.ErrNotFound) {
			return err
		}
		cerr := cs.CreateSemester(ctx, semester)
		if cerr == nil {
			return nil
		}
		if !cerr.Is(dberror.ErrAlreadyExists) {
			return cerr
		}
		existing, err = cs.getSemesterByCourseAndNumber(ctx, semester.CourseID, semester.Number)
		if err != nil {
			return err
		}
	}
	return cs.updateSemester(ctx, existing.ID, semester)
}

func (cs *catalogStore) updateSemester(ctx context.Context, id string, semester *models.Semester) apperrors.Error {
	query := `
		UPDATE semesters
		SET name = NULLIF($2, ''), info = $3, updated_at = now()
		WHERE id = $1
		RETURNING ` + semesterColumns + `;
	`
	updated, err := scanSemester(cs.conn().QueryRowContext(ctx, query, id, semester.Name, nullableJSONB(semester.Info)))
	if err == sql.ErrNoRows {
		return dberror.ErrNotFound.Msg("semester not found")
	}
	if err != nil {
		return mapPgError(ctx, err, "semester")
	}
	*semester = *updated
	return nil
}
