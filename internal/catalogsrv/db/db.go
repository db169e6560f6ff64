// Package db defines the CatalogStore interface: durable storage and
// retrieval of the five catalog entity kinds with parent-scoped queries,
// stable sort orders, and idempotent upserts keyed by natural
// (parent, key) pairs. Implementations live in db/postgresql (production)
// and db/inmem (tests).
package db

import (
	"context"

	"github.com/edushelf/edushelf/internal/catalogsrv/catcommon"
	"github.com/edushelf/edushelf/internal/catalogsrv/db/models"
	"github.com/edushelf/edushelf/internal/common/apperrors"
)

// CatalogStore is the persistence surface for the college → course →
// semester → subject → unit tree plus the user records.
//
// List operations return an empty slice, never an error, when the parent
// has no children. Get operations return dberror.ErrNotFound for unknown
// or malformed identifiers. Create operations surface
// dberror.ErrAlreadyExists when a uniqueness invariant is violated; the
// store serializes racing creates so exactly one creator wins. Upsert
// operations are idempotent: keyed by the natural (parent, key) pair, they
// create when absent and otherwise overwrite mutable attributes while
// preserving identity and numbering.
type CatalogStore interface {
	// College
	CreateCollege(ctx context.Context, c *models.College) apperrors.Error
	GetCollege(ctx context.Context, ref catcommon.Ref) (*models.College, apperrors.Error)
	ListColleges(ctx context.Context) ([]*models.College, apperrors.Error)
	UpsertCollege(ctx context.Context, c *models.College) apperrors.Error

	// Course
	CreateCourse(ctx context.Context, c *models.Course) apperrors.Error
	GetCourse(ctx context.Context, ref catcommon.Ref) (*models.Course, apperrors.Error)
	ListCoursesByCollege(ctx context.Context, college catcommon.Ref) ([]*models.Course, apperrors.Error)
	UpsertCourse(ctx context.Context, c *models.Course) apperrors.Error

	// Semester. Uniqueness is (course_id, number); the college-scoped list
	// is the legacy union view across all courses under the college.
	CreateSemester(ctx context.Context, s *models.Semester) apperrors.Error
	GetSemester(ctx context.Context, ref catcommon.Ref) (*models.Semester, apperrors.Error)
	ListSemestersByCourse(ctx context.Context, course catcommon.Ref) ([]*models.Semester, apperrors.Error)
	ListSemestersByCollege(ctx context.Context, college catcommon.Ref) ([]*models.Semester, apperrors.Error)
	UpsertSemester(ctx context.Context, s *models.Semester) apperrors.Error

	// Subject
	CreateSubject(ctx context.Context, s *models.Subject) apperrors.Error
	GetSubject(ctx context.Context, ref catcommon.Ref) (*models.Subject, apperrors.Error)
	ListSubjectsBySemester(ctx context.Context, semester catcommon.Ref) ([]*models.Subject, apperrors.Error)
	UpsertSubject(ctx context.Context, s *models.Subject) apperrors.Error

	// Unit
	CreateUnit(ctx context.Context, u *models.Unit) apperrors.Error
	GetUnit(ctx context.Context, ref catcommon.Ref) (*models.Unit, apperrors.Error)
	ListUnitsBySubject(ctx context.Context, subject catcommon.Ref) ([]*models.Unit, apperrors.Error)
	UpsertUnit(ctx context.Context, u *models.Unit) apperrors.Error

	// User
	CreateUser(ctx context.Context, u *models.User) apperrors.Error
	GetUser(ctx context.Context, ref catcommon.Ref) (*models.User, apperrors.Error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, apperrors.Error)
	SetUserCollege(ctx context.Context, userID, collegeID string) (*models.User, apperrors.Error)

	Close()
}

type ctxKeyType string

const dbCtxKey ctxKeyType = "CatalogStore"

// SetCatalogStore attaches a store to the context.
func SetCatalogStore(ctx context.Context, s CatalogStore) context.Context {
	return context.WithValue(ctx, dbCtxKey, s)
}

// DB retrieves the store from the context. It is nil when no store was
// attached, which is a programming error on the caller's side.
func DB(ctx context.Context) CatalogStore {
	if s, ok := ctx.Value(dbCtxKey).(CatalogStore); ok {
		return s
	}
	return nil
}
