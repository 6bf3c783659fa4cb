package model

import "time"

// User is the full users row, including the password hash. It is only handed
// to the auth service for credential checks and never serialized.
type User struct {
	ID                string
	Email             string
	Username          string
	PasswordHash      string
	FirstName         *string
	LastName          *string
	DateOfBirth       *time.Time
	ProfilePictureURL *string
	Bio               *string
	Location          *string
	IsVerified        bool
	IsActive          bool
	LastLogin         *time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// UserResponse is the public projection of a user account.
type UserResponse struct {
	ID                string     `json:"id"`
	Email             string     `json:"email,omitempty"`
	Username          string     `json:"username"`
	FirstName         *string    `json:"first_name,omitempty"`
	LastName          *string    `json:"last_name,omitempty"`
	DateOfBirth       *time.Time `json:"date_of_birth,omitempty"`
	ProfilePictureURL *string    `json:"profile_picture_url,omitempty"`
	Bio               *string    `json:"bio,omitempty"`
	Location          *string    `json:"location,omitempty"`
	IsVerified        bool       `json:"is_verified"`
	IsActive          bool       `json:"is_active"`
	LastLogin         *time.Time `json:"last_login,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// Public strips the password hash from a full user record.
func (u *User) Public() UserResponse {
	return UserResponse{
		ID:                u.ID,
		Email:             u.Email,
		Username:          u.Username,
		FirstName:         u.FirstName,
		LastName:          u.LastName,
		DateOfBirth:       u.DateOfBirth,
		ProfilePictureURL: u.ProfilePictureURL,
		Bio:               u.Bio,
		Location:          u.Location,
		IsVerified:        u.IsVerified,
		IsActive:          u.IsActive,
		LastLogin:         u.LastLogin,
		CreatedAt:         u.CreatedAt,
		UpdatedAt:         u.UpdatedAt,
	}
}

// CreateUserParams carries the already-validated, already-hashed fields for a
// new users row.
type CreateUserParams struct {
	Email        string
	Username     string
	PasswordHash string
	FirstName    *string
	LastName     *string
	DateOfBirth  *time.Time
}

// UpdateProfileParams carries the mutable profile scalars. Nil fields are left
// unchanged.
type UpdateProfileParams struct {
	FirstName         *string
	LastName          *string
	Bio               *string
	Location          *string
	ProfilePictureURL *string
}
