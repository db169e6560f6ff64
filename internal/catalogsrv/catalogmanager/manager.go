// Package catalogmanager implements the catalog read model on top of the
// store: tree navigation, the legacy college-scoped semester view, and the
// one mutation end users own, selecting their college. Parent references
// are resolved before children are listed, so an unknown parent is a not
// found error rather than an empty list.
package catalogmanager

import (
	"context"

	"github.com/edushelf/edushelf/internal/catalogsrv/catcommon"
	"github.com/edushelf/edushelf/internal/catalogsrv/db"
	"github.com/edushelf/edushelf/internal/catalogsrv/db/models"
	"github.com/edushelf/edushelf/internal/common/apperrors"
)

func store(ctx context.Context) (db.CatalogStore, apperrors.Error) {
	s := db.DB(ctx)
	if s == nil {
		return nil, ErrCatalog.Msg("no catalog store in context")
	}
	return s, nil
}

// ListColleges returns every college in the catalog.
func ListColleges(ctx context.Context) ([]*models.College, apperrors.Error) {
	s, err := store(ctx)
	if err != nil {
		return nil, err
	}
	return s.ListColleges(ctx)
}

// GetCollege resolves a college reference.
func GetCollege(ctx context.Context, ref catcommon.Ref) (*models.College, apperrors.Error) {
	s, err := store(ctx)
	if err != nil {
		return nil, err
	}
	return s.GetCollege(ctx, ref)
}

// ListCourses returns the courses under a college. The college reference
// is resolved first, so an unknown college fails with not found.
func ListCourses(ctx context.Context, college catcommon.Ref) ([]*models.Course, apperrors.Error) {
	s, err := store(ctx)
	if err != nil {
		return nil, err
	}
	c, err := s.GetCollege(ctx, college)
	if err != nil {
		return nil, err
	}
	return s.ListCoursesByCollege(ctx, catcommon.ParseRef(c.ID))
}

// GetCourse resolves a course reference.
func GetCourse(ctx context.Context, ref catcommon.Ref) (*models.Course, apperrors.Error) {
	s, err := store(ctx)
	if err != nil {
		return nil, err
	}
	return s.GetCourse(ctx, ref)
}

// ListSemesters returns the semesters of a course ordered by number.
func ListSemesters(ctx context.Context, course catcommon.Ref) ([]*models.Semester, apperrors.Error) {
	s, err := store(ctx)
	if err != nil {
		return nil, err
	}
	c, err := s.GetCourse(ctx, course)
	if err != nil {
		return nil, err
	}
	return s.ListSemestersByCourse(ctx, catcommon.ParseRef(c.ID))
}

// ListSemestersForCollege is the legacy view kept for old clients: every
// semester under every course of the college, plus rows still attached to
// the college directly.
func ListSemestersForCollege(ctx context.Context, college catcommon.Ref) ([]*models.Semester, apperrors.Error) {
	s, err := store(ctx)
	if err != nil {
		return nil, err
	}
	c, err := s.GetCollege(ctx, college)
	if err != nil {
		return nil, err
	}
	return s.ListSemestersByCollege(ctx, catcommon.ParseRef(c.ID))
}

// ListSemestersForUser returns the legacy semester view for the caller's
// selected college. Callers that never selected a college get
// ErrNoCollegeSelected, not an empty list.
func ListSemestersForUser(ctx context.Context) ([]*models.Semester, apperrors.Error) {
	uc := catcommon.GetUserContext(ctx)
	if uc == nil {
		return nil, ErrUnauthenticated
	}
	if uc.CollegeID == "" {
		return nil, ErrNoCollegeSelected
	}
	return ListSemestersForCollege(ctx, catcommon.ParseRef(uc.CollegeID))
}

// GetSemester resolves a semester reference.
func GetSemester(ctx context.Context, ref catcommon.Ref) (*models.Semester, apperrors.Error) {
	s, err := store(ctx)
	if err != nil {
		return nil, err
	}
	return s.GetSemester(ctx, ref)
}

// ListSubjects returns the subjects of a semester ordered by name.
func ListSubjects(ctx context.Context, semester catcommon.Ref) ([]*models.Subject, apperrors.Error) {
	s, err := store(ctx)
	if err != nil {
		return nil, err
	}
	sem, err := s.GetSemester(ctx, semester)
	if err != nil {
		return nil, err
	}
	return s.ListSubjectsBySemester(ctx, catcommon.ParseRef(sem.ID))
}

// GetSubject resolves a subject reference.
func GetSubject(ctx context.Context, ref catcommon.Ref) (*models.Subject, apperrors.Error) {
	s, err := store(ctx)
	if err != nil {
		return nil, err
	}
	return s.GetSubject(ctx, ref)
}

// ListUnits returns the units of a subject ordered by number.
func ListUnits(ctx context.Context, subject catcommon.Ref) ([]*models.Unit, apperrors.Error) {
	s, err := store(ctx)
	if err != nil {
		return nil, err
	}
	sub, err := s.GetSubject(ctx, subject)
	if err != nil {
		return nil, err
	}
	return s.ListUnitsBySubject(ctx, catcommon.ParseRef(sub.ID))
}

// GetUnit resolves a unit reference.
func GetUnit(ctx context.Context, ref catcommon.Ref) (*models.Unit, apperrors.Error) {
	s, err := store(ctx)
	if err != nil {
		return nil, err
	}
	return s.GetUnit(ctx, ref)
}

// SelectCollege records the caller's college choice and returns the
// updated user record. Selecting the same college again is a no-op that
// still succeeds; the operation is idempotent from the client's side.
func SelectCollege(ctx context.Context, college catcommon.Ref) (*models.User, apperrors.Error) {
	uc := catcommon.GetUserContext(ctx)
	if uc == nil {
		return nil, ErrUnauthenticated
	}
	s, err := store(ctx)
	if err != nil {
		return nil, err
	}
	c, err := s.GetCollege(ctx, college)
	if err != nil {
		return nil, err
	}
	user, err := s.SetUserCollege(ctx, uc.UserID, c.ID)
	if err != nil {
		return nil, err
	}
	uc.CollegeID = user.CollegeID
	return user, nil
}
