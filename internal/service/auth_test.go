package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/crushd/backend/internal/config"
	"github.com/crushd/backend/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStore mimics the users table, including its unique constraints and the
// is_active lookup filter.
type fakeStore struct {
	mu      sync.Mutex
	users   map[string]*model.User
	touched map[string]int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:   make(map[string]*model.User),
		touched: make(map[string]int),
	}
}

func (f *fakeStore) CreateUser(_ context.Context, params model.CreateUserParams) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, u := range f.users {
		if u.Email == params.Email {
			return nil, &pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"}
		}
		if u.Username == params.Username {
			return nil, &pgconn.PgError{Code: "23505", ConstraintName: "users_username_key"}
		}
	}

	now := time.Now()
	user := &model.User{
		ID:           uuid.NewString(),
		Email:        params.Email,
		Username:     params.Username,
		PasswordHash: params.PasswordHash,
		FirstName:    params.FirstName,
		LastName:     params.LastName,
		DateOfBirth:  params.DateOfBirth,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	f.users[user.ID] = user
	return user, nil
}

func (f *fakeStore) GetUserByEmail(_ context.Context, email string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email && u.IsActive {
			return u, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeStore) GetUserByUsername(_ context.Context, username string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Username == username && u.IsActive {
			return u, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeStore) GetUserByID(_ context.Context, id string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.users[id]; ok && u.IsActive {
		return u, nil
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeStore) TouchLastLogin(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.touched[id]++
	now := time.Now()
	if u, ok := f.users[id]; ok {
		u.LastLogin = &now
		u.UpdatedAt = now
	}
	return nil
}

func (f *fakeStore) EmailExists(_ context.Context, email string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStore) UsernameExists(_ context.Context, username string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Username == username {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStore) UpdateProfile(_ context.Context, id string, params model.UpdateProfileParams) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok || !u.IsActive {
		return nil, pgx.ErrNoRows
	}
	if params.FirstName != nil {
		u.FirstName = params.FirstName
	}
	if params.LastName != nil {
		u.LastName = params.LastName
	}
	if params.Bio != nil {
		u.Bio = params.Bio
	}
	if params.Location != nil {
		u.Location = params.Location
	}
	if params.ProfilePictureURL != nil {
		u.ProfilePictureURL = params.ProfilePictureURL
	}
	u.UpdatedAt = time.Now()
	return u, nil
}

func (f *fakeStore) deactivate(id string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.users[id]; ok {
		u.IsActive = false
	}
}

func newAuthService(t *testing.T) (*AuthService, *fakeStore) {
	t.Helper()
	issuer, err := NewTokenIssuer(config.AuthConfig{
		JWTSecret:        "access-secret",
		JWTRefreshSecret: "refresh-secret",
		AccessExpiry:     "15m",
		RefreshExpiry:    "168h",
	})
	require.NoError(t, err)
	store := newFakeStore()
	return NewAuthService(store, issuer), store
}

func TestRegisterThenLogin(t *testing.T) {
	t.Parallel()

	svc, store := newAuthService(t)
	ctx := context.Background()

	user, pair, err := svc.Register(ctx, validRegistration())
	require.NoError(t, err)
	require.NotEmpty(t, user.ID)
	assert.Equal(t, "alice@example.com", user.Email)
	assert.False(t, user.IsVerified)
	assert.True(t, user.IsActive)
	assert.NotEqual(t, "Sup3r$ecret", user.PasswordHash)

	claims, err := svc.Tokens().VerifyAccess(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)

	loggedIn, loginPair, err := svc.Login(ctx, model.LoginRequest{
		Email:    "alice@example.com",
		Password: "Sup3r$ecret",
	})
	require.NoError(t, err)
	assert.Equal(t, user.ID, loggedIn.ID)
	assert.Equal(t, 1, store.touched[user.ID])

	loginClaims, err := svc.Tokens().VerifyAccess(loginPair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, loginClaims.UserID)
}

func TestRegisterValidationFailure(t *testing.T) {
	t.Parallel()

	svc, _ := newAuthService(t)
	_, _, err := svc.Register(context.Background(), model.RegisterRequest{
		Email:    "nope",
		Username: "x",
		Password: "weak",
	})

	var validation *ValidationError
	require.ErrorAs(t, err, &validation)
	assert.Len(t, validation.Fields, 3)
}

func TestRegisterOverlongPassword(t *testing.T) {
	t.Parallel()

	svc, _ := newAuthService(t)

	// Passes every character-class check but exceeds what bcrypt accepts, so
	// it must come back as a field error rather than a hashing failure.
	req := validRegistration()
	req.Password = "Aa1@" + strings.Repeat("x", 80)
	_, _, err := svc.Register(context.Background(), req)

	var validation *ValidationError
	require.ErrorAs(t, err, &validation)
	require.Len(t, validation.Fields, 1)
	assert.Equal(t, "password", validation.Fields[0].Field)
}

func TestRegisterConflictNormalizedEmail(t *testing.T) {
	t.Parallel()

	svc, _ := newAuthService(t)
	ctx := context.Background()

	_, _, err := svc.Register(ctx, validRegistration())
	require.NoError(t, err)

	// Same address differing only by case and whitespace.
	second := validRegistration()
	second.Email = "  ALICE@example.COM "
	second.Username = "other_name"
	_, _, err = svc.Register(ctx, second)

	var conflict *ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, "email", conflict.Field)
}

func TestRegisterConflictUsername(t *testing.T) {
	t.Parallel()

	svc, _ := newAuthService(t)
	ctx := context.Background()

	_, _, err := svc.Register(ctx, validRegistration())
	require.NoError(t, err)

	second := validRegistration()
	second.Email = "bob@example.com"
	_, _, err = svc.Register(ctx, second)

	var conflict *ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, "username", conflict.Field)
}

func TestLoginNoEnumerationSignal(t *testing.T) {
	t.Parallel()

	svc, _ := newAuthService(t)
	ctx := context.Background()

	_, _, err := svc.Register(ctx, validRegistration())
	require.NoError(t, err)

	_, _, wrongPassword := svc.Login(ctx, model.LoginRequest{
		Email:    "alice@example.com",
		Password: "Wr0ng$password",
	})
	_, _, noSuchUser := svc.Login(ctx, model.LoginRequest{
		Email:    "nobody@example.com",
		Password: "Wr0ng$password",
	})

	require.ErrorIs(t, wrongPassword, ErrInvalidCredentials)
	require.ErrorIs(t, noSuchUser, ErrInvalidCredentials)
	assert.Equal(t, wrongPassword.Error(), noSuchUser.Error())
}

func TestLoginMissingFields(t *testing.T) {
	t.Parallel()

	svc, _ := newAuthService(t)
	_, _, err := svc.Login(context.Background(), model.LoginRequest{})

	var validation *ValidationError
	require.ErrorAs(t, err, &validation)
	assert.Len(t, validation.Fields, 2)
}

func TestRefreshIssuesNewPair(t *testing.T) {
	t.Parallel()

	svc, _ := newAuthService(t)
	ctx := context.Background()

	user, pair, err := svc.Register(ctx, validRegistration())
	require.NoError(t, err)

	newPair, err := svc.Refresh(ctx, pair.RefreshToken)
	require.NoError(t, err)

	claims, err := svc.Tokens().VerifyAccess(newPair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)

	_, err = svc.Tokens().VerifyRefresh(newPair.RefreshToken)
	require.NoError(t, err)
}

func TestRefreshDeactivatedAccount(t *testing.T) {
	t.Parallel()

	svc, store := newAuthService(t)
	ctx := context.Background()

	user, pair, err := svc.Register(ctx, validRegistration())
	require.NoError(t, err)

	store.deactivate(user.ID)

	_, err = svc.Refresh(ctx, pair.RefreshToken)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRefreshRejectsAccessToken(t *testing.T) {
	t.Parallel()

	svc, _ := newAuthService(t)
	ctx := context.Background()

	_, pair, err := svc.Register(ctx, validRegistration())
	require.NoError(t, err)

	_, err = svc.Refresh(ctx, pair.AccessToken)
	assert.ErrorIs(t, err, ErrTokenMalformed)
}

func TestGetByIDNotFound(t *testing.T) {
	t.Parallel()

	svc, _ := newAuthService(t)
	_, err := svc.GetByID(context.Background(), uuid.NewString())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGetByUsername(t *testing.T) {
	t.Parallel()

	svc, store := newAuthService(t)
	ctx := context.Background()

	user, _, err := svc.Register(ctx, validRegistration())
	require.NoError(t, err)

	found, err := svc.GetByUsername(ctx, "alice_w")
	require.NoError(t, err)
	assert.Equal(t, user.ID, found.ID)

	_, err = svc.GetByUsername(ctx, "nobody")
	assert.ErrorIs(t, err, ErrNotFound)

	// Deactivated accounts are invisible to the lookup.
	store.deactivate(user.ID)
	_, err = svc.GetByUsername(ctx, "alice_w")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateProfile(t *testing.T) {
	t.Parallel()

	svc, _ := newAuthService(t)
	ctx := context.Background()

	user, _, err := svc.Register(ctx, validRegistration())
	require.NoError(t, err)

	bio := "Coffee first."
	location := "Berlin"
	updated, err := svc.UpdateProfile(ctx, user.ID, model.UpdateProfileRequest{
		Bio:      &bio,
		Location: &location,
	})
	require.NoError(t, err)
	require.NotNil(t, updated.Bio)
	assert.Equal(t, "Coffee first.", *updated.Bio)
	require.NotNil(t, updated.Location)
	assert.Equal(t, "Berlin", *updated.Location)
}

func TestConcurrentRegistrationSameEmail(t *testing.T) {
	t.Parallel()

	svc, _ := newAuthService(t)
	ctx := context.Background()

	const attempts = 50
	results := make(chan error, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			req := validRegistration()
			req.Username = fmt.Sprintf("racer_%02d", i)
			_, _, err := svc.Register(ctx, req)
			results <- err
		}(i)
	}
	wg.Wait()
	close(results)

	var successes, conflicts int
	for err := range results {
		switch {
		case err == nil:
			successes++
		default:
			var conflict *ConflictError
			require.ErrorAs(t, err, &conflict)
			assert.True(t, strings.Contains(conflict.Message, "Email"))
			conflicts++
		}
	}

	assert.Equal(t, 1, successes)
	assert.Equal(t, attempts-1, conflicts)
}
