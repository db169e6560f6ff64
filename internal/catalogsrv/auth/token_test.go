package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edushelf/edushelf/internal/catalogsrv/catcommon"
	"github.com/edushelf/edushelf/internal/catalogsrv/db"
	"github.com/edushelf/edushelf/internal/catalogsrv/db/dberror"
	"github.com/edushelf/edushelf/internal/catalogsrv/db/inmem"
)

func TestTokenRoundTrip(t *testing.T) {
	token, err := IssueToken("user-123")
	require.Nil(t, err)
	require.NotEmpty(t, token)

	userID, perr := parseToken(token)
	require.Nil(t, perr)
	assert.Equal(t, "user-123", userID)
}

func TestParseTokenRejectsGarbage(t *testing.T) {
	_, err := parseToken("not-a-token")
	require.Error(t, err)
	assert.True(t, err.Is(ErrInvalidToken))

	_, err = parseToken("")
	require.Error(t, err)
}

func TestRegisterAndLogin(t *testing.T) {
	ctx := db.SetCatalogStore(context.Background(), inmem.New())

	user, err := RegisterUser(ctx, "Asha", "asha@example.edu", "s3cret-password")
	require.Nil(t, err)
	assert.NotEmpty(t, user.ID)
	assert.NotEqual(t, "s3cret-password", user.PasswordHash)

	// Same email cannot register twice.
	_, err = RegisterUser(ctx, "Asha 2", "asha@example.edu", "other")
	require.Error(t, err)
	assert.True(t, err.Is(dberror.ErrAlreadyExists))

	token, got, lerr := Login(ctx, "asha@example.edu", "s3cret-password")
	require.Nil(t, lerr)
	assert.NotEmpty(t, token)
	assert.Equal(t, user.ID, got.ID)

	_, _, lerr = Login(ctx, "asha@example.edu", "wrong")
	require.Error(t, lerr)
	assert.True(t, lerr.Is(ErrInvalidCredentials))

	// Unknown email fails the same way as a wrong password.
	_, _, lerr = Login(ctx, "nobody@example.edu", "whatever")
	require.Error(t, lerr)
	assert.True(t, lerr.Is(ErrInvalidCredentials))
}

func TestAuthenticateMiddleware(t *testing.T) {
	store := inmem.New()
	baseCtx := db.SetCatalogStore(context.Background(), store)

	user, err := RegisterUser(baseCtx, "Asha", "asha@example.edu", "pw")
	require.Nil(t, err)
	token, terr := IssueToken(user.ID)
	require.Nil(t, terr)

	var seen *catcommon.UserContext
	handler := Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = catcommon.GetUserContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	t.Run("valid token", func(t *testing.T) {
		seen = nil
		r := httptest.NewRequest(http.MethodGet, "/colleges", nil).WithContext(baseCtx)
		r.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, r)
		assert.Equal(t, http.StatusOK, w.Code)
		require.NotNil(t, seen)
		assert.Equal(t, user.ID, seen.UserID)
		assert.Empty(t, seen.CollegeID)
	})

	t.Run("missing token", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/colleges", nil).WithContext(baseCtx)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, r)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("bogus token", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/colleges", nil).WithContext(baseCtx)
		r.Header.Set("Authorization", "Bearer nope")
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, r)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("token for deleted user", func(t *testing.T) {
		ghost, gerr := IssueToken("ghost-user")
		require.Nil(t, gerr)
		r := httptest.NewRequest(http.MethodGet, "/colleges", nil).WithContext(baseCtx)
		r.Header.Set("Authorization", "Bearer "+ghost)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, r)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}
