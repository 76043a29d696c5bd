package ports

import (
	"context"

	"github.com/verifactor/auth-service/internal/core/domain"
)

// SessionStore persists sessions server-side, keyed by the opaque id the
// client carries in its cookie. Get returns domain.ErrSessionNotFound for
// unknown or expired ids. Save both creates and refreshes (the TTL restarts
// on every save).
type SessionStore interface {
	Get(ctx context.Context, id string) (*domain.Session, error)
	Save(ctx context.Context, session *domain.Session) error
	Delete(ctx context.Context, id string) error
}
