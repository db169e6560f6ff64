// Package apis wires the HTTP surface of the catalog service: account
// endpoints, the tree navigation reads, the college selection, and unit
// document delivery.
package apis

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/edushelf/edushelf/internal/catalogsrv/auth"
	"github.com/edushelf/edushelf/internal/common/httpx"
)

var accountHandlers = []httpx.ResponseHandlerParam{
	{
		Method:  http.MethodPost,
		Path:    "/auth/register",
		Handler: registerUser,
	},
	{
		Method:  http.MethodPost,
		Path:    "/auth/login",
		Handler: loginUser,
	},
}

var catalogHandlers = []httpx.ResponseHandlerParam{
	{
		Method:  http.MethodGet,
		Path:    "/auth/me",
		Handler: currentUser,
	},
	{
		Method:  http.MethodGet,
		Path:    "/colleges",
		Handler: listColleges,
	},
	{
		Method:  http.MethodGet,
		Path:    "/colleges/{collegeRef}",
		Handler: getCollege,
	},
	{
		Method:  http.MethodPost,
		Path:    "/colleges/{collegeRef}/select",
		Handler: selectCollege,
	},
	{
		Method:  http.MethodGet,
		Path:    "/colleges/{collegeRef}/courses",
		Handler: listCourses,
	},
	{
		Method:  http.MethodGet,
		Path:    "/colleges/{collegeRef}/semesters",
		Handler: listCollegeSemesters,
	},
	{
		Method:  http.MethodGet,
		Path:    "/courses/{courseRef}",
		Handler: getCourse,
	},
	{
		Method:  http.MethodGet,
		Path:    "/courses/{courseRef}/semesters",
		Handler: listCourseSemesters,
	},
	{
		Method:  http.MethodGet,
		Path:    "/semesters",
		Handler: listUserSemesters,
	},
	{
		Method:  http.MethodGet,
		Path:    "/semesters/{semesterRef}",
		Handler: getSemester,
	},
	{
		Method:  http.MethodGet,
		Path:    "/semesters/{semesterRef}/subjects",
		Handler: listSubjects,
	},
	{
		Method:  http.MethodGet,
		Path:    "/subjects/{subjectRef}",
		Handler: getSubject,
	},
	{
		Method:  http.MethodGet,
		Path:    "/subjects/{subjectRef}/units",
		Handler: listUnits,
	},
	{
		Method:  http.MethodGet,
		Path:    "/units/{unitRef}",
		Handler: getUnit,
	},
	{
		Method:  http.MethodGet,
		Path:    "/units/{unitRef}/document",
		Handler: getUnitDocument,
	},
}

// Router mounts the API. Account endpoints are public; everything else
// sits behind the bearer token.
func Router(r chi.Router) {
	for _, handler := range accountHandlers {
		r.Method(handler.Method, handler.Path, httpx.WrapHttpRsp(handler.Handler))
	}
	r.Group(func(r chi.Router) {
		r.Use(auth.Authenticate)
		for _, handler := range catalogHandlers {
			r.Method(handler.Method, handler.Path, httpx.WrapHttpRsp(handler.Handler))
		}
	})
}
