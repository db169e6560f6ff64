package apis_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edushelf/edushelf/internal/catalogsrv/db"
	"github.com/edushelf/edushelf/internal/catalogsrv/db/inmem"
	"github.com/edushelf/edushelf/internal/catalogsrv/db/models"
	"github.com/edushelf/edushelf/internal/catalogsrv/docstore"
	"github.com/edushelf/edushelf/internal/catalogsrv/server"
)

type testEnv struct {
	srv     *server.CatalogServer
	store   db.CatalogStore
	root    string
	college *models.College
	course  *models.Course
	sem     *models.Semester
	subject *models.Subject
	unit    *models.Unit
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	env := &testEnv{
		store: inmem.New(),
		root:  t.TempDir(),
	}
	env.srv = server.NewWithStores(env.store, docstore.NewLocal(env.root))
	env.srv.MountHandlers()

	ctx := context.Background()
	env.college = &models.College{Name: "Central Engineering College"}
	require.NoError(t, env.store.CreateCollege(ctx, env.college))
	env.course = &models.Course{Name: "BTech CSE", CollegeID: env.college.ID}
	require.NoError(t, env.store.CreateCourse(ctx, env.course))
	env.sem = &models.Semester{CourseID: env.course.ID, Number: 1}
	require.NoError(t, env.store.CreateSemester(ctx, env.sem))
	env.subject = &models.Subject{SemesterID: env.sem.ID, Name: "Data Structures"}
	require.NoError(t, env.store.CreateSubject(ctx, env.subject))

	require.NoError(t, os.MkdirAll(filepath.Join(env.root, "cse"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(env.root, "cse", "unit1.pdf"),
		[]byte("%PDF-1.4 unit one"), 0o644))
	env.unit = &models.Unit{
		SubjectID: env.subject.ID, Name: "Unit 1", Number: 1,
		SourceKind: models.SourceLocal, SourceRef: "cse/unit1.pdf",
	}
	require.NoError(t, env.store.CreateUnit(ctx, env.unit))
	return env
}

func (env *testEnv) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	r := httptest.NewRequest(method, path, &buf)
	if token != "" {
		r.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	env.srv.Router.ServeHTTP(w, r)
	return w
}

func (env *testEnv) register(t *testing.T, email string) string {
	t.Helper()
	w := env.do(t, http.MethodPost, "/auth/register", "", map[string]string{
		"name": "Asha", "email": email, "password": "s3cret-password",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var rsp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rsp))
	require.NotEmpty(t, rsp.Token)
	return rsp.Token
}

func TestVersionIsPublic(t *testing.T) {
	env := newTestEnv(t)
	w := env.do(t, http.MethodGet, "/version", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "serverVersion")
}

func TestCatalogRequiresAuth(t *testing.T) {
	env := newTestEnv(t)
	w := env.do(t, http.MethodGet, "/colleges", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRegisterValidation(t *testing.T) {
	env := newTestEnv(t)
	w := env.do(t, http.MethodPost, "/auth/register", "", map[string]string{
		"name": "Asha", "email": "not-an-email", "password": "s3cret-password",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodPost, "/auth/register", "", map[string]string{
		"name": "Asha", "email": "asha@example.edu", "password": "short",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLoginFlow(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "asha@example.edu")

	w := env.do(t, http.MethodPost, "/auth/login", "", map[string]string{
		"email": "asha@example.edu", "password": "s3cret-password",
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, http.MethodPost, "/auth/login", "", map[string]string{
		"email": "asha@example.edu", "password": "wrong-password",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestTreeNavigationEndToEnd(t *testing.T) {
	env := newTestEnv(t)
	token := env.register(t, "asha@example.edu")

	w := env.do(t, http.MethodGet, "/colleges", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var colleges []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &colleges))
	require.Len(t, colleges, 1)
	assert.Equal(t, env.college.ID, colleges[0]["id"])

	w = env.do(t, http.MethodGet, "/colleges/"+env.college.ID+"/courses", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, http.MethodGet, "/courses/"+env.course.ID+"/semesters", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var sems []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &sems))
	require.Len(t, sems, 1)

	w = env.do(t, http.MethodGet, "/semesters/"+env.sem.ID+"/subjects", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, http.MethodGet, "/subjects/"+env.subject.ID+"/units", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var units []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &units))
	require.Len(t, units, 1)
	// The stored reference never reaches the client.
	_, leaked := units[0]["sourceRef"]
	assert.False(t, leaked)

	w = env.do(t, http.MethodGet, "/colleges/no-such-college", token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSelectCollegeGatesUserSemesters(t *testing.T) {
	env := newTestEnv(t)
	token := env.register(t, "asha@example.edu")

	// No college selected yet.
	w := env.do(t, http.MethodGet, "/semesters", token, nil)
	assert.Equal(t, http.StatusPreconditionFailed, w.Code)

	w = env.do(t, http.MethodPost, "/colleges/"+env.college.ID+"/select", token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var user map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &user))
	assert.Equal(t, env.college.ID, user["collegeId"])

	// The selection sticks across requests.
	w = env.do(t, http.MethodGet, "/semesters", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var sems []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &sems))
	assert.Len(t, sems, 1)

	w = env.do(t, http.MethodGet, "/auth/me", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &user))
	assert.Equal(t, env.college.ID, user["collegeId"])

	// Selecting again succeeds.
	w = env.do(t, http.MethodPost, "/colleges/"+env.college.ID+"/select", token, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, http.MethodPost, "/colleges/missing/select", token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUnitDocumentStreamsLocalFile(t *testing.T) {
	env := newTestEnv(t)
	token := env.register(t, "asha@example.edu")

	w := env.do(t, http.MethodGet, "/units/"+env.unit.ID+"/document", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))
	assert.Equal(t, "%PDF-1.4 unit one", w.Body.String())
}

func TestUnitDocumentErrors(t *testing.T) {
	env := newTestEnv(t)
	token := env.register(t, "asha@example.edu")
	ctx := context.Background()

	bare := &models.Unit{SubjectID: env.subject.ID, Name: "Unit 2", Number: 2}
	require.NoError(t, env.store.CreateUnit(ctx, bare))
	w := env.do(t, http.MethodGet, fmt.Sprintf("/units/%s/document", bare.ID), token, nil)
	assert.Equal(t, http.StatusPreconditionFailed, w.Code)

	stale := &models.Unit{
		SubjectID: env.subject.ID, Name: "Unit 3", Number: 3,
		SourceKind: models.SourceLocal, SourceRef: "cse/missing.pdf",
	}
	require.NoError(t, env.store.CreateUnit(ctx, stale))
	w = env.do(t, http.MethodGet, fmt.Sprintf("/units/%s/document", stale.ID), token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = env.do(t, http.MethodGet, "/units/no-such-unit/document", token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
