// Package auth issues and validates the session tokens that gate the
// catalog API, and carries the account operations behind register and
// login. Tokens are HS256 JWTs holding only the user id; everything else
// is loaded fresh from the store on each request, so a college selected in
// one request is visible in the next without reissuing the token.
package auth

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog/log"

	"github.com/edushelf/edushelf/internal/catalogsrv/catcommon"
	"github.com/edushelf/edushelf/internal/catalogsrv/config"
	"github.com/edushelf/edushelf/internal/catalogsrv/db"
	"github.com/edushelf/edushelf/internal/catalogsrv/db/models"
	"github.com/edushelf/edushelf/internal/common/apperrors"
)

const tokenIssuer = "edushelf"

// IssueToken mints a session token for the given user id.
func IssueToken(userID string) (string, apperrors.Error) {
	cfg := config.Config().Auth
	validity, err := cfg.TokenDuration()
	if err != nil {
		validity = 24 * time.Hour
	}
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Issuer:    tokenIssuer,
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(validity)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(cfg.TokenSigningKey))
	if err != nil {
		return "", ErrTokenSigning.Err(err)
	}
	return signed, nil
}

// parseToken validates a session token and returns the user id it was
// issued for.
func parseToken(tokenStr string) (string, apperrors.Error) {
	cfg := config.Config().Auth
	token, err := jwt.ParseWithClaims(tokenStr, &jwt.RegisteredClaims{},
		func(t *jwt.Token) (any, error) {
			return []byte(cfg.TokenSigningKey), nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !token.Valid {
		return "", ErrInvalidToken
	}
	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || claims.Subject == "" {
		return "", ErrInvalidToken
	}
	return claims.Subject, nil
}

// RegisterUser creates an account and returns the stored record.
func RegisterUser(ctx context.Context, name, email, password string) (*models.User, apperrors.Error) {
	hash, err := catcommon.HashPassword(password)
	if err != nil {
		return nil, ErrTokenSigning.MsgErr("failed to hash password", err)
	}
	user := &models.User{Name: name, Email: email, PasswordHash: hash}
	if err := db.DB(ctx).CreateUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Login verifies credentials and returns a fresh session token with the
// user record. Unknown emails and wrong passwords are indistinguishable to
// the caller.
func Login(ctx context.Context, email, password string) (string, *models.User, apperrors.Error) {
	user, err := db.DB(ctx).GetUserByEmail(ctx, email)
	if err != nil {
		log.Ctx(ctx).Info().Str("email", email).Msg("login for unknown email")
		return "", nil, ErrInvalidCredentials
	}
	if !catcommon.VerifyPassword(password, user.PasswordHash) {
		log.Ctx(ctx).Info().Str("email", email).Msg("login with wrong password")
		return "", nil, ErrInvalidCredentials
	}
	token, terr := IssueToken(user.ID)
	if terr != nil {
		return "", nil, terr
	}
	return token, user, nil
}
