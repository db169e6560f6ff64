package postgresql

import (
	"context"
	"database/sql"

	"github.com/rs/zerolog/log"

	"github.com/edushelf/edushelf/internal/catalogsrv/catcommon"
	"github.com/edushelf/edushelf/internal/catalogsrv/db/dberror"
	"github.com/edushelf/edushelf/internal/catalogsrv/db/models"
	"github.com/edushelf/edushelf/internal/common/apperrors"
)

const userColumns = `
	id, name, email, password_hash, COALESCE(college_id, ''), created_at, updated_at
`

func scanUser(row interface{ Scan(...any) error }) (*models.User, error) {
	u := &models.User{}
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash,
		&u.CollegeID, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

// CreateUser inserts a new user account. Email is the uniqueness key.
func (cs *catalogStore) CreateUser(ctx context.Context, user *models.User) apperrors.Error {
	if user.Email == "" {
		return dberror.ErrInvalidInput.Msg("user email cannot be empty")
	}
	if user.PasswordHash == "" {
		return dberror.ErrInvalidInput.Msg("user password hash cannot be empty")
	}
	if user.ID == "" {
		user.ID = catcommon.NewID()
	}

	query := `
		INSERT INTO users (id, name, email, password_hash, college_id)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''))
		ON CONFLICT (email) DO NOTHING
		RETURNING id, created_at, updated_at;
	`
	row := cs.conn().QueryRowContext(ctx, query,
		user.ID, user.Name, user.Email, user.PasswordHash, user.CollegeID)
	err := row.Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			log.Ctx(ctx).Info().Str("email", user.Email).Msg("user already exists")
			return dberror.ErrAlreadyExists.Msg("user already exists")
		}
		return mapPgError(ctx, err, "user")
	}
	return nil
}

// GetUser retrieves a user by identifier, literal form first.
func (cs *catalogStore) GetUser(ctx context.Context, ref catcommon.Ref) (*models.User, apperrors.Error) {
	if ref.IsZero() {
		return nil, dberror.ErrInvalidInput.Msg("user id must be provided")
	}
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1;`
	for _, form := range refForms(ref) {
		user, err := scanUser(cs.conn().QueryRowContext(ctx, query, form))
		if err == sql.ErrNoRows {
			continue
		}
		if err != nil {
			log.Ctx(ctx).Error().Err(err).Msg("failed to retrieve user")
			return nil, dberror.ErrDatabase.Err(err)
		}
		return user, nil
	}
	return nil, dberror.ErrNotFound.Msg("user not found")
}

// GetUserByEmail retrieves a user by their login email.
func (cs *catalogStore) GetUserByEmail(ctx context.Context, email string) (*models.User, apperrors.Error) {
	if email == "" {
		return nil, dberror.ErrInvalidInput.Msg("email must be provided")
	}
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1;`
	user, err := scanUser(cs.conn().QueryRowContext(ctx, query, email))
	if err == sql.ErrNoRows {
		return nil, dberror.ErrNotFound.Msg("user not found")
	}
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("failed to retrieve user by email")
		return nil, dberror.ErrDatabase.Err(err)
	}
	return user, nil
}

// SetUserCollege records the user's selected college and returns the
// updated record. The foreign key rejects a college that does not exist.
func (cs *catalogStore) SetUserCollege(ctx context.Context, userID, collegeID string) (*models.User, apperrors.Error) {
	if userID == "" {
		return nil, dberror.ErrInvalidInput.Msg("user id must be provided")
	}
	query := `
		UPDATE users
		SET college_id = NULLIF($2, ''), updated_at = now()
		WHERE id = $1
		RETURNING ` + userColumns + `;
	`
	user, err := scanUser(cs.conn().QueryRowContext(ctx, query, userID, collegeID))
	if err == sql.ErrNoRows {
		return nil, dberror.ErrNotFound.Msg("user not found")
	}
	if err != nil {
		return nil, mapPgError(ctx, err, "user")
	}
	return user, nil
}
