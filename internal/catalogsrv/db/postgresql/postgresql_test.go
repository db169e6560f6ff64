package postgresql

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edushelf/edushelf/internal/catalogsrv/catcommon"
	"github.com/edushelf/edushelf/internal/catalogsrv/db"
	"github.com/edushelf/edushelf/internal/catalogsrv/db/dberror"
	"github.com/edushelf/edushelf/internal/catalogsrv/db/dbmanager"
	"github.com/edushelf/edushelf/internal/catalogsrv/db/models"
)

// Integration tests run only when EDUSHELF_TEST_DSN points at a disposable
// database, e.g.
//
//	EDUSHELF_TEST_DSN="host=localhost user=postgres dbname=edushelf_test sslmode=disable"
func testStore(t *testing.T) db.CatalogStore {
	t.Helper()
	dsn := os.Getenv("EDUSHELF_TEST_DSN")
	if dsn == "" {
		t.Skip("EDUSHELF_TEST_DSN not set")
	}
	ctx := context.Background()
	pool, err := dbmanager.NewPostgresqlDb(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(func() {
		pool.Exec(`DROP TABLE IF EXISTS units, subjects, semesters, courses, users, colleges, schema_migrations CASCADE;`)
		pool.Close()
	})
	require.Nil(t, Migrate(ctx, pool))
	return New(pool)
}

func TestPostgresTreeLifecycle(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	college := &models.College{Name: "Central Engineering College"}
	require.Nil(t, store.CreateCollege(ctx, college))

	dup := &models.College{Name: "Central Engineering College"}
	err := store.CreateCollege(ctx, dup)
	require.Error(t, err)
	assert.True(t, err.Is(dberror.ErrAlreadyExists))

	course := &models.Course{Name: "BTech CSE", Code: "CSE", CollegeID: college.ID}
	require.Nil(t, store.CreateCourse(ctx, course))

	sem := &models.Semester{CourseID: course.ID, Number: 1}
	require.Nil(t, store.CreateSemester(ctx, sem))

	clash := &models.Semester{CourseID: course.ID, Number: 1}
	err = store.CreateSemester(ctx, clash)
	require.Error(t, err)
	assert.True(t, err.Is(dberror.ErrAlreadyExists))

	subject := &models.Subject{SemesterID: sem.ID, Name: "Data Structures"}
	require.Nil(t, store.CreateSubject(ctx, subject))

	unit := &models.Unit{
		SubjectID: subject.ID, Name: "Unit 1", Number: 1,
		SourceKind: models.SourceLocal, SourceRef: "cse/ds/unit1.pdf",
	}
	require.Nil(t, store.CreateUnit(ctx, unit))

	got, gerr := store.GetUnit(ctx, catcommon.ParseRef(unit.ID))
	require.Nil(t, gerr)
	assert.Equal(t, "cse/ds/unit1.pdf", got.SourceRef)

	sems, lerr := store.ListSemestersByCollege(ctx, catcommon.ParseRef(college.ID))
	require.Nil(t, lerr)
	assert.Len(t, sems, 1)
}

func TestPostgresUpsertIdempotence(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		college := &models.College{Name: "Upsert College"}
		require.Nil(t, store.UpsertCollege(ctx, college))
		course := &models.Course{Name: "BSc Maths", CollegeID: college.ID}
		require.Nil(t, store.UpsertCourse(ctx, course))
		sem := &models.Semester{CourseID: course.ID, Number: 1}
		require.Nil(t, store.UpsertSemester(ctx, sem))
	}

	colleges, err := store.ListColleges(ctx)
	require.Nil(t, err)
	count := 0
	for _, c := range colleges {
		if c.Name == "Upsert College" {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func TestPostgresLegacyIdLookup(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	college := &models.College{ID: "5f8d04b2ab3c4e001c9d4a11", Name: "Imported College"}
	require.Nil(t, store.CreateCollege(ctx, college))

	got, err := store.GetCollege(ctx, catcommon.ParseRef("5f8d04b2ab3c4e001c9d4a11"))
	require.Nil(t, err)
	assert.Equal(t, "Imported College", got.Name)
}
