package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/crushd/backend/internal/db"
	"github.com/crushd/backend/internal/model"
	"github.com/jackc/pgx/v5/pgconn"
)

// UserStore is the credential-store surface the auth service depends on.
// Implemented by *db.Store.
type UserStore interface {
	CreateUser(ctx context.Context, params model.CreateUserParams) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	TouchLastLogin(ctx context.Context, id string) error
	EmailExists(ctx context.Context, email string) (bool, error)
	UsernameExists(ctx context.Context, username string) (bool, error)
	UpdateProfile(ctx context.Context, id string, params model.UpdateProfileParams) (*model.User, error)
}

type AuthService struct {
	store  UserStore
	tokens *TokenIssuer
}

func NewAuthService(store UserStore, tokens *TokenIssuer) *AuthService {
	return &AuthService{store: store, tokens: tokens}
}

func (s *AuthService) Tokens() *TokenIssuer {
	return s.tokens
}

// Register validates the request (collecting every failing field), checks
// identifier uniqueness, hashes the password and inserts the account. The
// existence pre-checks give friendly field-level errors; the unique
// constraints on the table remain the backstop when two registrations race.
func (s *AuthService) Register(ctx context.Context, req model.RegisterRequest) (*model.User, model.TokenPair, error) {
	fields, dob := validateRegistration(req, time.Now())
	if len(fields) > 0 {
		return nil, model.TokenPair{}, &ValidationError{Fields: fields}
	}

	email := normalizeEmail(req.Email)
	username := strings.TrimSpace(req.Username)

	if exists, err := s.store.EmailExists(ctx, email); err != nil {
		return nil, model.TokenPair{}, err
	} else if exists {
		return nil, model.TokenPair{}, &ConflictError{Field: "email", Message: "Email already registered"}
	}

	if exists, err := s.store.UsernameExists(ctx, username); err != nil {
		return nil, model.TokenPair{}, err
	} else if exists {
		return nil, model.TokenPair{}, &ConflictError{Field: "username", Message: "Username already taken"}
	}

	hash, err := HashPassword(req.Password)
	if err != nil {
		return nil, model.TokenPair{}, err
	}

	user, err := s.store.CreateUser(ctx, model.CreateUserParams{
		Email:        email,
		Username:     username,
		PasswordHash: hash,
		FirstName:    optionalString(req.FirstName),
		LastName:     optionalString(req.LastName),
		DateOfBirth:  dob,
	})
	if err != nil {
		if conflict := conflictFromPgError(err); conflict != nil {
			return nil, model.TokenPair{}, conflict
		}
		return nil, model.TokenPair{}, err
	}

	pair, err := s.tokens.Issue(user)
	if err != nil {
		return nil, model.TokenPair{}, err
	}
	return user, pair, nil
}

// Login authenticates by normalized email. A missing account and a wrong
// password return the identical error so the two cases are
// indistinguishable from outside.
func (s *AuthService) Login(ctx context.Context, req model.LoginRequest) (*model.User, model.TokenPair, error) {
	var fields []model.FieldError
	if strings.TrimSpace(req.Email) == "" {
		fields = append(fields, model.FieldError{Field: "email", Message: "Email is required"})
	}
	if req.Password == "" {
		fields = append(fields, model.FieldError{Field: "password", Message: "Password is required"})
	}
	if len(fields) > 0 {
		return nil, model.TokenPair{}, &ValidationError{Fields: fields}
	}

	user, err := s.store.GetUserByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		if db.IsNoRows(err) {
			return nil, model.TokenPair{}, ErrInvalidCredentials
		}
		return nil, model.TokenPair{}, err
	}

	if !CheckPassword(req.Password, user.PasswordHash) {
		return nil, model.TokenPair{}, ErrInvalidCredentials
	}

	if err := s.store.TouchLastLogin(ctx, user.ID); err != nil {
		return nil, model.TokenPair{}, err
	}

	pair, err := s.tokens.Issue(user)
	if err != nil {
		return nil, model.TokenPair{}, err
	}
	return user, pair, nil
}

// Refresh verifies the refresh token against the refresh secret, resolves its
// claims to a still-active account and mints a brand-new pair. The old
// refresh token stays valid until it expires: there is no server-side
// revocation store.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (model.TokenPair, error) {
	claims, err := s.tokens.VerifyRefresh(refreshToken)
	if err != nil {
		return model.TokenPair{}, err
	}

	user, err := s.store.GetUserByID(ctx, claims.UserID)
	if err != nil {
		if db.IsNoRows(err) {
			return model.TokenPair{}, ErrNotFound
		}
		return model.TokenPair{}, err
	}

	return s.tokens.Issue(user)
}

// GetByID returns the account behind an authenticated identity.
func (s *AuthService) GetByID(ctx context.Context, id string) (*model.User, error) {
	user, err := s.store.GetUserByID(ctx, id)
	if err != nil {
		if db.IsNoRows(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return user, nil
}

// GetByUsername resolves an active account by its exact username.
func (s *AuthService) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	user, err := s.store.GetUserByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if db.IsNoRows(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return user, nil
}

// UpdateProfile validates and persists the mutable profile scalars.
func (s *AuthService) UpdateProfile(ctx context.Context, id string, req model.UpdateProfileRequest) (*model.User, error) {
	if fields := validateProfileUpdate(req); len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}

	user, err := s.store.UpdateProfile(ctx, id, model.UpdateProfileParams{
		FirstName:         req.FirstName,
		LastName:          req.LastName,
		Bio:               req.Bio,
		Location:          req.Location,
		ProfilePictureURL: req.ProfilePictureURL,
	})
	if err != nil {
		if db.IsNoRows(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return user, nil
}

// conflictFromPgError maps a unique-constraint violation (23505) raised by a
// racing insert onto the same ConflictError the pre-checks produce.
func conflictFromPgError(err error) *ConflictError {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != "23505" {
		return nil
	}
	if strings.Contains(pgErr.ConstraintName, "username") {
		return &ConflictError{Field: "username", Message: "Username already taken"}
	}
	return &ConflictError{Field: "email", Message: "Email already registered"}
}
