package catalogmanager

import (
	"net/http"

	"github.com/edushelf/edushelf/internal/common/apperrors"
)

var (
	ErrCatalog apperrors.Error = apperrors.New("catalog error").
			SetStatusCode(http.StatusInternalServerError)
	ErrValidation apperrors.Error = ErrCatalog.New("validation failed").
			SetStatusCode(http.StatusBadRequest)
	// ErrNoCollegeSelected gates the session-scoped views: the caller has
	// to pick a college before asking for "their" semesters.
	ErrNoCollegeSelected apperrors.Error = ErrCatalog.New("no college selected").
				SetStatusCode(http.StatusPreconditionFailed)
	ErrUnauthenticated apperrors.Error = ErrCatalog.New("not authenticated").
				SetStatusCode(http.StatusUnauthorized)
)
