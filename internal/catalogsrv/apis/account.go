package apis

import (
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/edushelf/edushelf/internal/catalogsrv/auth"
	"github.com/edushelf/edushelf/internal/catalogsrv/catalogmanager"
	"github.com/edushelf/edushelf/internal/catalogsrv/catcommon"
	"github.com/edushelf/edushelf/internal/catalogsrv/db"
	"github.com/edushelf/edushelf/internal/common/httpx"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

type registerRequest struct {
	Name     string `json:"name" validate:"required,max=256"`
	Email    string `json:"email" validate:"required,email,max=320"`
	Password string `json:"password" validate:"required,min=8,max=128"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type sessionResponse struct {
	Token string         `json:"token"`
	User  map[string]any `json:"user"`
}

func registerUser(r *http.Request) (*httpx.Response, error) {
	var req registerRequest
	if err := httpx.GetRequestData(r, &req); err != nil {
		return nil, err
	}
	if err := validate.Struct(&req); err != nil {
		return nil, httpx.ErrInvalidRequest(err.Error())
	}

	user, aerr := auth.RegisterUser(r.Context(), req.Name, req.Email, req.Password)
	if aerr != nil {
		return nil, aerr
	}
	token, terr := auth.IssueToken(user.ID)
	if terr != nil {
		return nil, terr
	}
	return &httpx.Response{
		StatusCode: http.StatusCreated,
		Response:   sessionResponse{Token: token, User: user.Projection()},
	}, nil
}

func loginUser(r *http.Request) (*httpx.Response, error) {
	var req loginRequest
	if err := httpx.GetRequestData(r, &req); err != nil {
		return nil, err
	}
	if err := validate.Struct(&req); err != nil {
		return nil, httpx.ErrInvalidRequest(err.Error())
	}

	token, user, aerr := auth.Login(r.Context(), req.Email, req.Password)
	if aerr != nil {
		return nil, aerr
	}
	return &httpx.Response{
		StatusCode: http.StatusOK,
		Response:   sessionResponse{Token: token, User: user.Projection()},
	}, nil
}

func currentUser(r *http.Request) (*httpx.Response, error) {
	ctx := r.Context()
	uc := catcommon.GetUserContext(ctx)
	if uc == nil {
		return nil, httpx.ErrUnAuthorized()
	}
	user, err := db.DB(ctx).GetUser(ctx, catcommon.ParseRef(uc.UserID))
	if err != nil {
		return nil, err
	}
	return &httpx.Response{StatusCode: http.StatusOK, Response: user.Projection()}, nil
}

// selectCollege records the caller's college. Repeating the selection is
// fine, clients retry this on app start.
func selectCollege(r *http.Request) (*httpx.Response, error) {
	user, err := catalogmanager.SelectCollege(r.Context(), refParam(r, "collegeRef"))
	if err != nil {
		return nil, err
	}
	return &httpx.Response{StatusCode: http.StatusOK, Response: user.Projection()}, nil
}
