package ports

import "context"

// PasswordHasher is the one-way salted hash capability. Hash is slow by
// design; Compare is constant-time with respect to the password and reports
// a mismatch as false, never as an error. The context covers time spent
// queued when the implementation bounds concurrency.
type PasswordHasher interface {
	Hash(ctx context.Context, password string) (string, error)
	Compare(ctx context.Context, password, hash string) (bool, error)
}
