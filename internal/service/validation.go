package service

import (
	"regexp"
	"strings"
	"time"

	"github.com/crushd/backend/internal/model"
)

const (
	minAge = 18
	maxAge = 100

	// bcrypt rejects inputs over 72 bytes, so the policy has to stop longer
	// passwords before they reach the hasher.
	maxPasswordLength = 72
)

var (
	emailPattern    = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_]{3,30}$`)
)

// normalizeEmail lower-cases and trims so that case/whitespace variants of an
// address resolve to the same account.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// validPassword requires length >= 8 plus one uppercase, one lowercase, one
// digit and one special character. Go's regexp has no lookahead, so each class
// is checked on its own.
func validPassword(password string) bool {
	if len(password) < 8 {
		return false
	}
	var upper, lower, digit, special bool
	for _, r := range password {
		switch {
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= 'a' && r <= 'z':
			lower = true
		case r >= '0' && r <= '9':
			digit = true
		case strings.ContainsRune("@$!%*?&", r):
			special = true
		}
	}
	return upper && lower && digit && special
}

// ageOn computes a calendar-aware age: subtract the years, then one more if
// the birthday has not yet occurred this year. Not a 365-day approximation.
func ageOn(birth, now time.Time) int {
	age := now.Year() - birth.Year()
	if now.Month() < birth.Month() || (now.Month() == birth.Month() && now.Day() < birth.Day()) {
		age--
	}
	return age
}

// validateRegistration runs every check and reports all failing fields at
// once. Returns the parsed date of birth when one was supplied.
func validateRegistration(req model.RegisterRequest, now time.Time) ([]model.FieldError, *time.Time) {
	var fields []model.FieldError

	email := normalizeEmail(req.Email)
	switch {
	case email == "":
		fields = append(fields, model.FieldError{Field: "email", Message: "Email is required"})
	case len(email) > 255:
		fields = append(fields, model.FieldError{Field: "email", Message: "Email must be less than 255 characters"})
	case !emailPattern.MatchString(email):
		fields = append(fields, model.FieldError{Field: "email", Message: "Please provide a valid email address"})
	}

	username := strings.TrimSpace(req.Username)
	if !usernamePattern.MatchString(username) {
		fields = append(fields, model.FieldError{
			Field:   "username",
			Message: "Username must be 3-30 characters long and can only contain letters, numbers, and underscores",
		})
	}

	switch {
	case !validPassword(req.Password):
		fields = append(fields, model.FieldError{
			Field:   "password",
			Message: "Password must be at least 8 characters long and contain at least one uppercase letter, one lowercase letter, one number, and one special character",
		})
	case len(req.Password) > maxPasswordLength:
		fields = append(fields, model.FieldError{
			Field:   "password",
			Message: "Password must be at most 72 characters long",
		})
	}

	if msg := nameError(req.FirstName); msg != "" {
		fields = append(fields, model.FieldError{Field: "first_name", Message: "First name " + msg})
	}
	if msg := nameError(req.LastName); msg != "" {
		fields = append(fields, model.FieldError{Field: "last_name", Message: "Last name " + msg})
	}

	var dob *time.Time
	if strings.TrimSpace(req.DateOfBirth) != "" {
		parsed, err := time.Parse("2006-01-02", strings.TrimSpace(req.DateOfBirth))
		if err != nil {
			fields = append(fields, model.FieldError{
				Field:   "date_of_birth",
				Message: "Date of birth must be a valid date in ISO format (YYYY-MM-DD)",
			})
		} else {
			age := ageOn(parsed, now)
			switch {
			case age < minAge:
				fields = append(fields, model.FieldError{
					Field:   "date_of_birth",
					Message: "You must be at least 18 years old to use Crushd",
				})
			case age > maxAge:
				fields = append(fields, model.FieldError{
					Field:   "date_of_birth",
					Message: "Please enter a valid date of birth",
				})
			default:
				dob = &parsed
			}
		}
	}

	return fields, dob
}

func validateProfileUpdate(req model.UpdateProfileRequest) []model.FieldError {
	var fields []model.FieldError

	if req.FirstName != nil {
		if msg := nameError(*req.FirstName); msg != "" {
			fields = append(fields, model.FieldError{Field: "first_name", Message: "First name " + msg})
		}
	}
	if req.LastName != nil {
		if msg := nameError(*req.LastName); msg != "" {
			fields = append(fields, model.FieldError{Field: "last_name", Message: "Last name " + msg})
		}
	}
	if req.Bio != nil && len(strings.TrimSpace(*req.Bio)) > 1000 {
		fields = append(fields, model.FieldError{Field: "bio", Message: "Bio must be less than 1000 characters"})
	}
	if req.Location != nil && len(strings.TrimSpace(*req.Location)) > 255 {
		fields = append(fields, model.FieldError{Field: "location", Message: "Location must be less than 255 characters"})
	}

	return fields
}

// nameError validates an optional display-name field. Empty means "not
// provided" and passes.
func nameError(name string) string {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return ""
	}
	if len(trimmed) > 100 {
		return "must be between 1 and 100 characters"
	}
	return ""
}

// optionalString trims an input field and maps empty to nil for nullable
// columns.
func optionalString(value string) *string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
