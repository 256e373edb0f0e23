package ports

import (
	"context"

	"github.com/cargolive/cargolive-api/internal/core/domain"
)

// RegisterInput is the DTO passed from the transport layer to AuthService.Register.
type RegisterInput struct {
	Email           string
	Password        string
	FullName        string
	IsGoogleAccount bool
}

type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*domain.AuthResult, error)
	Login(ctx context.Context, email, password string) (*domain.AuthResult, error)
	// Lookup returns (nil, false, nil) when the user does not exist.
	Lookup(ctx context.Context, userID string) (*domain.User, bool, error)
	Authenticator
}

// Authenticator resolves a bearer token to the user it was issued for.
// It is the only dependency the route guard needs.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*domain.User, error)
}

// PasswordHasher hashes and verifies user passwords.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, encoded string) bool
	NeedsRehash(encoded string) bool
}

// TokenService issues and verifies session tokens.
type TokenService interface {
	Issue(userID, email string) (string, error)
	Verify(token string) (string, error)
}
