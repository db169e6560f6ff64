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

// CreateCourse inserts a new course under its college. Duplicate
// (college_id, name) pairs return ErrAlreadyExists; an unknown college
// surfaces as ErrInvalidInput via the foreign key.
func (cs *catalogStore) CreateCourse(ctx context.Context, course *models.Course) apperrors.Error {
	if course.Name == "" {
		return dberror.ErrInvalidInput.Msg("course name cannot be empty")
	}
	if course.CollegeID == "" {
		return dberror.ErrInvalidInput.Msg("course college cannot be empty")
	}
	if course.ID == "" {
		course.ID = catcommon.NewID()
	}

	query := `
		INSERT INTO courses (id, name, code, college_id, info)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (college_id, name) DO NOTHING
		RETURNING id, created_at, updated_at;
	`
	row := cs.conn().QueryRowContext(ctx, query,
		course.ID, course.Name, course.Code, course.CollegeID, nullableJSONB(course.Info))
	err := row.Scan(&course.ID, &course.CreatedAt, &course.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			log.Ctx(ctx).Info().Str("name", course.Name).Str("college", course.CollegeID).Msg("course already exists")
			return dberror.ErrAlreadyExists.Msg("course already exists")
		}
		return mapPgError(ctx, err, "course")
	}
	return nil
}

// GetCourse retrieves a course by identifier, literal form first.
func (cs *catalogStore) GetCourse(ctx context.Context, ref catcommon.Ref) (*models.Course, apperrors.Error) {
	if ref.IsZero() {
		return nil, dberror.ErrInvalidInput.Msg("course id must be provided")
	}
	query := `
		SELECT id, name, COALESCE(code, ''), college_id, info, created_at, updated_at
		FROM courses
		WHERE id = $1;
	`
	for _, form := range refForms(ref) {
		course := &models.Course{}
		err := cs.conn().QueryRowContext(ctx, query, form).
			Scan(&course.ID, &course.Name, &course.Code, &course.CollegeID,
				&course.Info, &course.CreatedAt, &course.UpdatedAt)
		if err == sql.ErrNoRows {
			continue
		}
		if err != nil {
			log.Ctx(ctx).Error().Err(err).Msg("failed to retrieve course")
			return nil, dberror.ErrDatabase.Err(err)
		}
		return course, nil
	}
	return nil, dberror.ErrNotFound.Msg("course not found")
}

// ListCoursesByCollege returns the courses under a college ordered by name.
// An unknown college yields an empty list, not an error.
func (cs *catalogStore) ListCoursesByCollege(ctx context.Context, college catcommon.Ref) ([]*models.Course, apperrors.Error) {
	if college.IsZero() {
		return nil, dberror.ErrInvalidInput.Msg("college id must be provided")
	}
	query := `
		SELECT id, name, COALESCE(code, ''), college_id, info, created_at, updated_at
		FROM courses
		WHERE college_id = $1
		ORDER BY name ASC;
	`
	for _, form := range refForms(college) {
		courses, err := cs.queryCourses(ctx, query, form)
		if err != nil {
			return nil, err
		}
		if len(courses) > 0 {
			return courses, nil
		}
	}
	return []*models.Course{}, nil
}

func (cs *catalogStore) queryCourses(ctx context.Context, query string, args ...any) ([]*models.Course, apperrors.Error) {
	rows, err := cs.conn().QueryContext(ctx, query, args...)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("failed to list courses")
		return nil, dberror.ErrDatabase.Err(err)
	}
	defer rows.Close()

	courses := []*models.Course{}
	for rows.Next() {
		course := &models.Course{}
		if err := rows.Scan(&course.ID, &course.Name, &course.Code, &course.CollegeID,
			&course.Info, &course.CreatedAt, &course.UpdatedAt); err != nil {
			return nil, dberror.ErrDatabase.Err(err)
		}
		courses = append(courses, course)
	}
	if err := rows.Err(); err != nil {
		return nil, dberror.ErrDatabase.Err(err)
	}
	return courses, nil
}

func (cs *catalogStore) getCourseByParentAndName(ctx context.Context, collegeID, name string) (*models.Course, apperrors.Error) {
	query := `
		SELECT id, name, COALESCE(code, ''), college_id, info, created_at, updated_at
		FROM courses
		WHERE college_id = $1 AND name = $2;
	`
	course := &models.Course{}
	err := cs.conn().QueryRowContext(ctx, query, collegeID, name).
		Scan(&course.ID, &course.Name, &course.Code, &course.CollegeID,
			&course.Info, &course.CreatedAt, &course.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, dberror.ErrNotFound.Msg("course not found")
	}
	if err != nil {
		return nil, dberror.ErrDatabase.Err(err)
	}
	return course, nil
}

// UpsertCourse creates the course when absent and otherwise refreshes its
// mutable attributes, keyed by (college_id, name).
func (cs *catalogStore) UpsertCourse(ctx context.Context, course *models.Course) apperrors.Error {
	if course.Name == "" {
		return dberror.ErrInvalidInput.Msg("course name cannot be empty")
	}
	if course.CollegeID == "" {
		return dberror.ErrInvalidInput.Msg("course college cannot be empty")
	}
	existing, err := cs.getCourseByParentAndName(ctx, course.CollegeID, course.Name)
	if err != nil {
		if !err.Is(dberror.ErrNotFound) {
			return err
		}
		cerr := cs.CreateCourse(ctx, course)
		if cerr == nil {
			return nil
		}
		if !cerr.Is(dberror.ErrAlreadyExists) {
			return cerr
		}
		existing, err = cs.getCourseByParentAndName(ctx, course.CollegeID, course.Name)
		if err != nil {
			return err
		}
	}
	return cs.updateCourse(ctx, existing.ID, course)
}

func (cs *catalogStore) updateCourse(ctx context.Context, id string, course *models.Course) apperrors.Error {
	query := `
		UPDATE courses
		SET code = $2, info = $3, updated_at = now()
		WHERE id = $1
		RETURNING id, name, COALESCE(code, ''), college_id, info, created_at, updated_at;
	`
	err := cs.conn().QueryRowContext(ctx, query, id, course.Code, nullableJSONB(course.Info)).
		Scan(&course.ID, &course.Name, &course.Code, &course.CollegeID,
			&course.Info, &course.CreatedAt, &course.UpdatedAt)
	if err == sql.ErrNoRows {
		return dberror.ErrNotFound.Msg("course not found")
	}
	if err != nil {
		return mapPgError(ctx, err, "course")
	}
	return nil
}
