package catalogmanager

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edushelf/edushelf/internal/catalogsrv/catcommon"
	"github.com/edushelf/edushelf/internal/catalogsrv/db"
	"github.com/edushelf/edushelf/internal/catalogsrv/db/dberror"
	"github.com/edushelf/edushelf/internal/catalogsrv/db/inmem"
	"github.com/edushelf/edushelf/internal/catalogsrv/db/models"
)

type fixture struct {
	ctx     context.Context
	store   db.CatalogStore
	college *models.College
	course  *models.Course
	sem     *models.Semester
	subject *models.Subject
	unit    *models.Unit
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := inmem.New()
	ctx := db.SetCatalogStore(context.Background(), store)

	f := &fixture{ctx: ctx, store: store}
	f.college = &models.College{Name: "Central Engineering College"}
	require.NoError(t, store.CreateCollege(ctx, f.college))
	f.course = &models.Course{Name: "BTech CSE", CollegeID: f.college.ID}
	require.NoError(t, store.CreateCourse(ctx, f.course))
	f.sem = &models.Semester{CourseID: f.course.ID, Number: 1}
	require.NoError(t, store.CreateSemester(ctx, f.sem))
	f.subject = &models.Subject{SemesterID: f.sem.ID, Name: "Data Structures"}
	require.NoError(t, store.CreateSubject(ctx, f.subject))
	f.unit = &models.Unit{
		SubjectID: f.subject.ID, Name: "Unit 1", Number: 1,
		SourceKind: models.SourceLocal, SourceRef: "cse/ds/unit1.pdf",
	}
	require.NoError(t, store.CreateUnit(ctx, f.unit))
	return f
}

func TestTreeNavigation(t *testing.T) {
	f := newFixture(t)

	colleges, err := ListColleges(f.ctx)
	require.Nil(t, err)
	require.Len(t, colleges, 1)

	courses, err := ListCourses(f.ctx, catcommon.ParseRef(f.college.ID))
	require.Nil(t, err)
	require.Len(t, courses, 1)

	sems, err := ListSemesters(f.ctx, catcommon.ParseRef(f.course.ID))
	require.Nil(t, err)
	require.Len(t, sems, 1)
	assert.Equal(t, "Semester 1", sems[0].DisplayName())

	subjects, err := ListSubjects(f.ctx, catcommon.ParseRef(f.sem.ID))
	require.Nil(t, err)
	require.Len(t, subjects, 1)

	units, err := ListUnits(f.ctx, catcommon.ParseRef(f.subject.ID))
	require.Nil(t, err)
	require.Len(t, units, 1)
	assert.True(t, units[0].HasDocument())
}

func TestListCoursesUnknownCollege(t *testing.T) {
	f := newFixture(t)

	_, err := ListCourses(f.ctx, catcommon.ParseRef("no-such-college"))
	require.Error(t, err)
	assert.True(t, err.Is(dberror.ErrNotFound))
}

func TestListSemestersForUser(t *testing.T) {
	f := newFixture(t)

	// Unauthenticated callers are rejected outright.
	_, err := ListSemestersForUser(f.ctx)
	require.Error(t, err)
	assert.True(t, err.Is(ErrUnauthenticated))

	user := &models.User{Name: "Asha", Email: "asha@example.edu", PasswordHash: "x"}
	require.NoError(t, f.store.CreateUser(f.ctx, user))
	ctx := catcommon.SetUserContext(f.ctx, &catcommon.UserContext{UserID: user.ID})

	// Authenticated but no college selected yet.
	_, err = ListSemestersForUser(ctx)
	require.Error(t, err)
	assert.True(t, err.Is(ErrNoCollegeSelected))

	updated, serr := SelectCollege(ctx, catcommon.ParseRef(f.college.ID))
	require.Nil(t, serr)
	assert.Equal(t, f.college.ID, updated.CollegeID)

	sems, lerr := ListSemestersForUser(ctx)
	require.Nil(t, lerr)
	assert.Len(t, sems, 1)
}

func TestSelectCollegeIdempotent(t *testing.T) {
	f := newFixture(t)

	user := &models.User{Name: "Asha", Email: "asha@example.edu", PasswordHash: "x"}
	require.NoError(t, f.store.CreateUser(f.ctx, user))
	ctx := catcommon.SetUserContext(f.ctx, &catcommon.UserContext{UserID: user.ID})

	first, err := SelectCollege(ctx, catcommon.ParseRef(f.college.ID))
	require.Nil(t, err)
	second, err := SelectCollege(ctx, catcommon.ParseRef(f.college.ID))
	require.Nil(t, err)
	assert.Equal(t, first.CollegeID, second.CollegeID)

	_, err = SelectCollege(ctx, catcommon.ParseRef("missing"))
	require.Error(t, err)
	assert.True(t, err.Is(dberror.ErrNotFound))
}

func TestLegacyCollegeSemesterView(t *testing.T) {
	f := newFixture(t)

	// A second course under the same college. The college view unions
	// both courses' semesters.
	other := &models.Course{Name: "BTech ECE", CollegeID: f.college.ID}
	require.NoError(t, f.store.CreateCourse(f.ctx, other))
	for n := 1; n <= 8; n++ {
		require.NoError(t, f.store.CreateSemester(f.ctx, &models.Semester{CourseID: other.ID, Number: n}))
	}

	sems, err := ListSemestersForCollege(f.ctx, catcommon.ParseRef(f.college.ID))
	require.Nil(t, err)
	assert.Len(t, sems, 9)
}
