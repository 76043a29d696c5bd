package ports

import (
	"context"

	"github.com/verifactor/auth-service/internal/core/domain"
)

// CredentialStore defines the persistence interface for user records.
// Create must enforce uniqueness of username and email atomically and
// return domain.ErrUserExists on a violation, leaving no partial record.
type CredentialStore interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
}
