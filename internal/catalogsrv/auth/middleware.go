package auth

import (
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/edushelf/edushelf/internal/catalogsrv/catcommon"
	"github.com/edushelf/edushelf/internal/catalogsrv/db"
	"github.com/edushelf/edushelf/internal/common/httpx"
)

// Authenticate validates the bearer token and loads the caller's user
// context, including their currently selected college, before passing the
// request on. Requests without a valid token are rejected with 401.
func Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		header := r.Header.Get("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			httpx.ErrUnAuthorized("missing bearer token").Send(w)
			return
		}
		tokenStr := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))

		userID, err := parseToken(tokenStr)
		if err != nil {
			httpx.ErrUnAuthorized("invalid or expired token").Send(w)
			return
		}

		user, gerr := db.DB(ctx).GetUser(ctx, catcommon.ParseRef(userID))
		if gerr != nil {
			log.Ctx(ctx).Info().Str("user", userID).Msg("token for unknown user")
			httpx.ErrUnAuthorized("invalid or expired token").Send(w)
			return
		}

		ctx = catcommon.SetUserContext(ctx, &catcommon.UserContext{
			UserID:    user.ID,
			CollegeID: user.CollegeID,
		})
		ctx = log.Ctx(ctx).With().Str("user", user.ID).Logger().WithContext(ctx)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
