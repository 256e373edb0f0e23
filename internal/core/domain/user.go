package domain

import (
	"errors"
	"time"
)

const (
	// GoogleAuthHash is stored instead of a password hash for accounts whose
	// identity was established by Google sign-in.
	GoogleAuthHash = "google_auth"

	// PlaceholderHash is the pre-migration value some seeded rows still carry.
	PlaceholderHash = "placeholder_hash"
)

var (
	ErrUserExists         = errors.New("email already registered")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrTokenInvalid       = errors.New("token is invalid")
	ErrTokenExpired       = errors.New("token has expired")
)

// User models an authenticated actor in the system.
type User struct {
	ID              string    `json:"id"`
	Email           string    `json:"email"`
	PasswordHash    string    `json:"-"`
	FullName        string    `json:"full_name"`
	IsGoogleAccount bool      `json:"is_google_account"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// Public returns a copy of u with the password hash cleared.
func (u *User) Public() *User {
	if u == nil {
		return nil
	}
	clone := *u
	clone.PasswordHash = ""
	return &clone
}

// AuthResult is returned by a successful registration or login.
type AuthResult struct {
	User  *User  `json:"user"`
	Token string `json:"token"`
}
