package inmem

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edushelf/edushelf/internal/catalogsrv/catcommon"
	"github.com/edushelf/edushelf/internal/catalogsrv/db/dberror"
	"github.com/edushelf/edushelf/internal/catalogsrv/db/models"
)

func TestCollegeCreateAndDuplicate(t *testing.T) {
	ctx := context.Background()
	store := New()

	college := &models.College{Name: "Central Engineering College"}
	require.NoError(t, store.CreateCollege(ctx, college))
	assert.NotEmpty(t, college.ID)

	dup := &models.College{Name: "Central Engineering College"}
	err := store.CreateCollege(ctx, dup)
	require.Error(t, err)
	assert.True(t, err.Is(dberror.ErrAlreadyExists))

	got, gerr := store.GetCollege(ctx, catcommon.ParseRef(college.ID))
	require.Nil(t, gerr)
	assert.Equal(t, college.Name, got.Name)
}

func TestGetFallsBackToLegacyId(t *testing.T) {
	ctx := context.Background()
	store := New()

	// A row imported with a non-UUID identifier must stay reachable.
	college := &models.College{ID: "5f8d04b2ab3c4e001c9d4a11", Name: "Imported College"}
	require.NoError(t, store.CreateCollege(ctx, college))

	got, err := store.GetCollege(ctx, catcommon.ParseRef("5f8d04b2ab3c4e001c9d4a11"))
	require.Nil(t, err)
	assert.Equal(t, "Imported College", got.Name)

	_, err = store.GetCollege(ctx, catcommon.ParseRef("does-not-exist"))
	require.Error(t, err)
	assert.True(t, err.Is(dberror.ErrNotFound))
}

func TestCourseScopedUnderCollege(t *testing.T) {
	ctx := context.Background()
	store := New()

	college := &models.College{Name: "Northside"}
	require.NoError(t, store.CreateCollege(ctx, college))

	orphan := &models.Course{Name: "BSc Physics", CollegeID: "missing"}
	err := store.CreateCourse(ctx, orphan)
	require.Error(t, err)
	assert.True(t, err.Is(dberror.ErrInvalidInput))

	course := &models.Course{Name: "BSc Physics", CollegeID: college.ID}
	require.NoError(t, store.CreateCourse(ctx, course))

	// Same name under the same college collides.
	dup := &models.Course{Name: "BSc Physics", CollegeID: college.ID}
	err = store.CreateCourse(ctx, dup)
	require.Error(t, err)
	assert.True(t, err.Is(dberror.ErrAlreadyExists))

	other := &models.College{Name: "Southside"}
	require.NoError(t, store.CreateCollege(ctx, other))
	sameName := &models.Course{Name: "BSc Physics", CollegeID: other.ID}
	require.NoError(t, store.CreateCourse(ctx, sameName))

	courses, lerr := store.ListCoursesByCollege(ctx, catcommon.ParseRef(college.ID))
	require.Nil(t, lerr)
	assert.Len(t, courses, 1)
}

func TestSemesterLegacyCollegeListing(t *testing.T) {
	ctx := context.Background()
	store := New()

	college := &models.College{Name: "Central"}
	require.NoError(t, store.CreateCollege(ctx, college))

	// Two courses of eight semesters each. The college view is the union
	// across courses, so old clients see all sixteen.
	for _, name := range []string{"BTech CSE", "BTech ECE"} {
		course := &models.Course{Name: name, CollegeID: college.ID}
		require.NoError(t, store.CreateCourse(ctx, course))
		for n := 1; n <= 8; n++ {
			sem := &models.Semester{CourseID: course.ID, Number: n}
			require.NoError(t, store.CreateSemester(ctx, sem))
		}
	}

	sems, err := store.ListSemestersByCollege(ctx, catcommon.ParseRef(college.ID))
	require.Nil(t, err)
	assert.Len(t, sems, 16)
	for i := 1; i < len(sems); i++ {
		assert.GreaterOrEqual(t, sems[i].Number, sems[i-1].Number)
	}

	// A pre-migration row attached directly to the college shows up too.
	course := &models.Course{Name: "BTech MECH", CollegeID: college.ID}
	require.NoError(t, store.CreateCourse(ctx, course))
	legacy := &models.Semester{CollegeID: college.ID, CourseID: course.ID, Number: 1}
	require.NoError(t, store.CreateSemester(ctx, legacy))
	sems, err = store.ListSemestersByCollege(ctx, catcommon.ParseRef(college.ID))
	require.Nil(t, err)
	assert.Len(t, sems, 17)
}

func TestSemesterDuplicateNumberRejected(t *testing.T) {
	ctx := context.Background()
	store := New()

	college := &models.College{Name: "Central"}
	require.NoError(t, store.CreateCollege(ctx, college))
	course := &models.Course{Name: "BCom", CollegeID: college.ID}
	require.NoError(t, store.CreateCourse(ctx, course))

	first := &models.Semester{CourseID: course.ID, Number: 3}
	require.NoError(t, store.CreateSemester(ctx, first))
	second := &models.Semester{CourseID: course.ID, Number: 3}
	err := store.CreateSemester(ctx, second)
	require.Error(t, err)
	assert.True(t, err.Is(dberror.ErrAlreadyExists))

	bad := &models.Semester{CourseID: course.ID, Number: 0}
	err = store.CreateSemester(ctx, bad)
	require.Error(t, err)
	assert.True(t, err.Is(dberror.ErrInvalidInput))
}

func TestUpsertsAreIdempotent(t *testing.T) {
	ctx := context.Background()
	store := New()

	seedTree := func() {
		college := &models.College{Name: "Central"}
		require.NoError(t, store.UpsertCollege(ctx, college))
		course := &models.Course{Name: "BTech CSE", Code: "CSE", CollegeID: college.ID}
		require.NoError(t, store.UpsertCourse(ctx, course))
		sem := &models.Semester{CourseID: course.ID, Number: 1}
		require.NoError(t, store.UpsertSemester(ctx, sem))
		subject := &models.Subject{SemesterID: sem.ID, Name: "Data Structures", Code: "CS201"}
		require.NoError(t, store.UpsertSubject(ctx, subject))
		unit := &models.Unit{
			SubjectID:  subject.ID,
			Name:       "Unit 1",
			Number:     1,
			SourceKind: models.SourceLocal,
			SourceRef:  "cse/ds/unit1.pdf",
		}
		require.NoError(t, store.UpsertUnit(ctx, unit))
	}

	seedTree()
	seedTree()

	colleges, err := store.ListColleges(ctx)
	require.Nil(t, err)
	require.Len(t, colleges, 1)
	courses, err := store.ListCoursesByCollege(ctx, catcommon.ParseRef(colleges[0].ID))
	require.Nil(t, err)
	require.Len(t, courses, 1)
	sems, err := store.ListSemestersByCourse(ctx, catcommon.ParseRef(courses[0].ID))
	require.Nil(t, err)
	require.Len(t, sems, 1)
	subjects, err := store.ListSubjectsBySemester(ctx, catcommon.ParseRef(sems[0].ID))
	require.Nil(t, err)
	require.Len(t, subjects, 1)
	units, err := store.ListUnitsBySubject(ctx, catcommon.ParseRef(subjects[0].ID))
	require.Nil(t, err)
	require.Len(t, units, 1)
}

func TestUpsertUnitRepairsSourceRef(t *testing.T) {
	ctx := context.Background()
	store := New()

	college := &models.College{Name: "Central"}
	require.NoError(t, store.CreateCollege(ctx, college))
	course := &models.Course{Name: "BTech CSE", CollegeID: college.ID}
	require.NoError(t, store.CreateCourse(ctx, course))
	sem := &models.Semester{CourseID: course.ID, Number: 1}
	require.NoError(t, store.CreateSemester(ctx, sem))
	subject := &models.Subject{SemesterID: sem.ID, Name: "Algorithms"}
	require.NoError(t, store.CreateSubject(ctx, subject))

	unit := &models.Unit{
		SubjectID: subject.ID, Name: "Unit 1", Number: 1,
		SourceKind: models.SourceLocal, SourceRef: "algo/unit1-old.pdf",
	}
	require.NoError(t, store.CreateUnit(ctx, unit))
	firstID := unit.ID

	repaired := &models.Unit{
		SubjectID: subject.ID, Name: "Unit 1 (revised)", Number: 1,
		SourceKind: models.SourceRemote, SourceRef: "materials/algo/unit1.pdf",
	}
	require.NoError(t, store.UpsertUnit(ctx, repaired))
	assert.Equal(t, firstID, repaired.ID)

	got, err := store.GetUnit(ctx, catcommon.ParseRef(firstID))
	require.Nil(t, err)
	assert.Equal(t, models.SourceRemote, got.SourceKind)
	assert.Equal(t, "materials/algo/unit1.pdf", got.SourceRef)
	assert.Equal(t, "Unit 1 (revised)", got.Name)
}

func TestListReturnsEmptyNotError(t *testing.T) {
	ctx := context.Background()
	store := New()

	courses, err := store.ListCoursesByCollege(ctx, catcommon.ParseRef("nope"))
	require.Nil(t, err)
	assert.Empty(t, courses)

	units, err := store.ListUnitsBySubject(ctx, catcommon.ParseRef("nope"))
	require.Nil(t, err)
	assert.Empty(t, units)
}

func TestUserLifecycle(t *testing.T) {
	ctx := context.Background()
	store := New()

	user := &models.User{Name: "Asha", Email: "asha@example.edu", PasswordHash: "x"}
	require.NoError(t, store.CreateUser(ctx, user))

	dup := &models.User{Name: "Asha 2", Email: "asha@example.edu", PasswordHash: "y"}
	err := store.CreateUser(ctx, dup)
	require.Error(t, err)
	assert.True(t, err.Is(dberror.ErrAlreadyExists))

	got, gerr := store.GetUserByEmail(ctx, "asha@example.edu")
	require.Nil(t, gerr)
	assert.Equal(t, user.ID, got.ID)

	college := &models.College{Name: "Central"}
	require.NoError(t, store.CreateCollege(ctx, college))

	updated, uerr := store.SetUserCollege(ctx, user.ID, college.ID)
	require.Nil(t, uerr)
	assert.Equal(t, college.ID, updated.CollegeID)

	// Selecting again is a no-op, not an error.
	updated, uerr = store.SetUserCollege(ctx, user.ID, college.ID)
	require.Nil(t, uerr)
	assert.Equal(t, college.ID, updated.CollegeID)

	_, uerr = store.SetUserCollege(ctx, user.ID, "missing")
	require.Error(t, uerr)
	assert.True(t, uerr.Is(dberror.ErrInvalidInput))
}

func TestListCollegesSorted(t *testing.T) {
	ctx := context.Background()
	store := New()

	for _, name := range []string{"Zeta", "Alpha", "Mid"} {
		require.NoError(t, store.CreateCollege(ctx, &models.College{Name: name}))
	}
	colleges, err := store.ListColleges(ctx)
	require.Nil(t, err)
	require.Len(t, colleges, 3)
	assert.Equal(t, []string{"Alpha", "Mid", "Zeta"},
		[]string{colleges[0].Name, colleges[1].Name, colleges[2].Name})
}

func TestListUnitsOrderedByNumber(t *testing.T) {
	ctx := context.Background()
	store := New()

	college := &models.College{Name: "Central"}
	require.NoError(t, store.CreateCollege(ctx, college))
	course := &models.Course{Name: "BSc Math", CollegeID: college.ID}
	require.NoError(t, store.CreateCourse(ctx, course))
	sem := &models.Semester{CourseID: course.ID, Number: 1}
	require.NoError(t, store.CreateSemester(ctx, sem))
	subject := &models.Subject{SemesterID: sem.ID, Name: "Calculus"}
	require.NoError(t, store.CreateSubject(ctx, subject))

	for _, n := range []int{3, 1, 2} {
		unit := &models.Unit{SubjectID: subject.ID, Name: fmt.Sprintf("Unit %d", n), Number: n}
		require.NoError(t, store.CreateUnit(ctx, unit))
	}
	units, err := store.ListUnitsBySubject(ctx, catcommon.ParseRef(subject.ID))
	require.Nil(t, err)
	require.Len(t, units, 3)
	for i, u := range units {
		assert.Equal(t, i+1, u.Number)
	}
}
