package model

type RegisterRequest struct {
	Email       string `json:"email"`
	Username    string `json:"username"`
	Password    string `json:"password"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	DateOfBirth string `json:"date_of_birth"` // ISO date, YYYY-MM-DD
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type UpdateProfileRequest struct {
	FirstName         *string `json:"first_name"`
	LastName          *string `json:"last_name"`
	Bio               *string `json:"bio"`
	Location          *string `json:"location"`
	ProfilePictureURL *string `json:"profile_picture_url"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

type ResetPasswordRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"newPassword"`
}

// TokenPair holds both signed tokens. The refresh token only ever travels in
// the http-only cookie, never in a JSON body.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

type AuthData struct {
	User        UserResponse `json:"user"`
	AccessToken string       `json:"accessToken"`
}

type RefreshData struct {
	AccessToken string `json:"accessToken"`
}
