package db

import (
	"context"
	"errors"

	"github.com/crushd/backend/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store is the credential store. It is constructed once at process start and
// shares a single bounded pool across all concurrent requests.
type Store struct {
	Pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{Pool: pool}
}

const userColumns = `id, email, username, password_hash, first_name, last_name,
	date_of_birth, profile_picture_url, bio, location, is_verified, is_active,
	last_login, created_at, updated_at`

func scanUser(row pgx.Row) (*model.User, error) {
	var user model.User
	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.Username,
		&user.PasswordHash,
		&user.FirstName,
		&user.LastName,
		&user.DateOfBirth,
		&user.ProfilePictureURL,
		&user.Bio,
		&user.Location,
		&user.IsVerified,
		&user.IsActive,
		&user.LastLogin,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// CreateUser inserts a new account. Email/username uniqueness is ultimately
// enforced by the table constraints; a violation surfaces as a pgconn error
// with code 23505.
func (s *Store) CreateUser(ctx context.Context, params model.CreateUserParams) (*model.User, error) {
	query := `
		INSERT INTO users (
			id, email, username, password_hash, first_name, last_name,
			date_of_birth, is_verified, is_active, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, FALSE, TRUE, NOW(), NOW())
		RETURNING ` + userColumns
	row := s.Pool.QueryRow(ctx, query,
		uuid.NewString(),
		params.Email,
		params.Username,
		params.PasswordHash,
		params.FirstName,
		params.LastName,
		params.DateOfBirth,
	)
	return scanUser(row)
}

// GetUserByEmail returns the full record, hash included, for credential
// checks. Inactive accounts are invisible here.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1 AND is_active = TRUE`
	return scanUser(s.Pool.QueryRow(ctx, query, email))
}

func (s *Store) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1 AND is_active = TRUE`
	return scanUser(s.Pool.QueryRow(ctx, query, username))
}

func (s *Store) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1 AND is_active = TRUE`
	return scanUser(s.Pool.QueryRow(ctx, query, id))
}

// TouchLastLogin stamps last_login and updated_at. Runs before a login call
// reports success.
func (s *Store) TouchLastLogin(ctx context.Context, id string) error {
	query := `UPDATE users SET last_login = NOW(), updated_at = NOW() WHERE id = $1`
	_, err := s.Pool.Exec(ctx, query, id)
	return err
}

// EmailExists ignores the active filter so a deactivated account still
// reserves its email.
func (s *Store) EmailExists(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := s.Pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE email = $1)`, email).Scan(&exists)
	return exists, err
}

func (s *Store) UsernameExists(ctx context.Context, username string) (bool, error) {
	var exists bool
	err := s.Pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE username = $1)`, username).Scan(&exists)
	return exists, err
}

// UpdateProfile overwrites the provided profile scalars, leaving nil fields
// untouched, and returns the fresh row.
func (s *Store) UpdateProfile(ctx context.Context, id string, params model.UpdateProfileParams) (*model.User, error) {
	query := `
		UPDATE users SET
			first_name = COALESCE($2, first_name),
			last_name = COALESCE($3, last_name),
			bio = COALESCE($4, bio),
			location = COALESCE($5, location),
			profile_picture_url = COALESCE($6, profile_picture_url),
			updated_at = NOW()
		WHERE id = $1 AND is_active = TRUE
		RETURNING ` + userColumns
	row := s.Pool.QueryRow(ctx, query,
		id,
		params.FirstName,
		params.LastName,
		params.Bio,
		params.Location,
		params.ProfilePictureURL,
	)
	return scanUser(row)
}

func IsNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}
