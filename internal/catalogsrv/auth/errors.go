package auth

import (
	"net/http"

	"github.com/edushelf/edushelf/internal/common/apperrors"
)

var (
	ErrAuth apperrors.Error = apperrors.New("authentication error").
		SetStatusCode(http.StatusUnauthorized)
	ErrMissingToken       apperrors.Error = ErrAuth.New("missing bearer token")
	ErrInvalidToken       apperrors.Error = ErrAuth.New("invalid or expired token")
	ErrInvalidCredentials apperrors.Error = ErrAuth.New("invalid email or password")
	ErrTokenSigning       apperrors.Error = ErrAuth.New("failed to sign token").
				SetStatusCode(http.StatusInternalServerError)
)
