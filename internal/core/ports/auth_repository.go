package ports

import (
	"context"

	"github.com/cargolive/cargolive-api/internal/core/domain"
)

// UserRepository defines the persistence operations on the users table.
//
// Implementations return domain.ErrUserNotFound when no row matches and
// domain.ErrUserExists when a write violates the unique email constraint.
type UserRepository interface {
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	UpdatePasswordHash(ctx context.Context, id, passwordHash string) error
}
