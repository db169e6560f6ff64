package apis

import (
	"net/http"

	"github.com/edushelf/edushelf/internal/catalogsrv/catalogmanager"
	"github.com/edushelf/edushelf/internal/common/httpx"
)

func getCollege(r *http.Request) (*httpx.Response, error) {
	college, err := catalogmanager.GetCollege(r.Context(), refParam(r, "collegeRef"))
	if err != nil {
		return nil, err
	}
	return &httpx.Response{StatusCode: http.StatusOK, Response: college}, nil
}

func getCourse(r *http.Request) (*httpx.Response, error) {
	course, err := catalogmanager.GetCourse(r.Context(), refParam(r, "courseRef"))
	if err != nil {
		return nil, err
	}
	return &httpx.Response{StatusCode: http.StatusOK, Response: course}, nil
}

func getSemester(r *http.Request) (*httpx.Response, error) {
	sem, err := catalogmanager.GetSemester(r.Context(), refParam(r, "semesterRef"))
	if err != nil {
		return nil, err
	}
	return &httpx.Response{StatusCode: http.StatusOK, Response: sem}, nil
}

func getSubject(r *http.Request) (*httpx.Response, error) {
	subject, err := catalogmanager.GetSubject(r.Context(), refParam(r, "subjectRef"))
	if err != nil {
		return nil, err
	}
	return &httpx.Response{StatusCode: http.StatusOK, Response: subject}, nil
}

func getUnit(r *http.Request) (*httpx.Response, error) {
	unit, err := catalogmanager.GetUnit(r.Context(), refParam(r, "unitRef"))
	if err != nil {
		return nil, err
	}
	return &httpx.Response{StatusCode: http.StatusOK, Response: unit}, nil
}
