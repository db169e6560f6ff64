package apis

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/edushelf/edushelf/internal/catalogsrv/catalogmanager"
	"github.com/edushelf/edushelf/internal/catalogsrv/catcommon"
	"github.com/edushelf/edushelf/internal/common/httpx"
)

func refParam(r *http.Request, name string) catcommon.Ref {
	return catcommon.ParseRef(chi.URLParam(r, name))
}

func listColleges(r *http.Request) (*httpx.Response, error) {
	colleges, err := catalogmanager.ListColleges(r.Context())
	if err != nil {
		return nil, err
	}
	return &httpx.Response{StatusCode: http.StatusOK, Response: colleges}, nil
}

func listCourses(r *http.Request) (*httpx.Response, error) {
	courses, err := catalogmanager.ListCourses(r.Context(), refParam(r, "collegeRef"))
	if err != nil {
		return nil, err
	}
	return &httpx.Response{StatusCode: http.StatusOK, Response: courses}, nil
}

// listCollegeSemesters is the legacy route: all semesters under the
// college regardless of course.
func listCollegeSemesters(r *http.Request) (*httpx.Response, error) {
	sems, err := catalogmanager.ListSemestersForCollege(r.Context(), refParam(r, "collegeRef"))
	if err != nil {
		return nil, err
	}
	return &httpx.Response{StatusCode: http.StatusOK, Response: sems}, nil
}

func listCourseSemesters(r *http.Request) (*httpx.Response, error) {
	sems, err := catalogmanager.ListSemesters(r.Context(), refParam(r, "courseRef"))
	if err != nil {
		return nil, err
	}
	return &httpx.Response{StatusCode: http.StatusOK, Response: sems}, nil
}

// listUserSemesters serves the session-scoped view over the caller's
// selected college.
func listUserSemesters(r *http.Request) (*httpx.Response, error) {
	sems, err := catalogmanager.ListSemestersForUser(r.Context())
	if err != nil {
		return nil, err
	}
	return &httpx.Response{StatusCode: http.StatusOK, Response: sems}, nil
}

func listSubjects(r *http.Request) (*httpx.Response, error) {
	subjects, err := catalogmanager.ListSubjects(r.Context(), refParam(r, "semesterRef"))
	if err != nil {
		return nil, err
	}
	return &httpx.Response{StatusCode: http.StatusOK, Response: subjects}, nil
}

func listUnits(r *http.Request) (*httpx.Response, error) {
	units, err := catalogmanager.ListUnits(r.Context(), refParam(r, "subjectRef"))
	if err != nil {
		return nil, err
	}
	return &httpx.Response{StatusCode: http.StatusOK, Response: units}, nil
}
