package ports

import (
	"context"

	"github.com/verifactor/auth-service/internal/core/domain"
)

// Enrollment is the one-time artifact returned by Register: the created
// user's id and the otpauth URI the client renders as a scannable code.
// The shared secret travels to the user only through this artifact.
type Enrollment struct {
	UserID string
	URI    string
}

type AuthService interface {
	Register(ctx context.Context, username, email, password string) (*Enrollment, error)
	Login(ctx context.Context, email, password string) (*domain.User, error)
	VerifySecondFactor(ctx context.Context, userID, code string) (*domain.User, error)
}
