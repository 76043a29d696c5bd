package crypto

import (
	"context"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

const (
	defaultWorkers = 4
	defaultCost    = 10
)

// Hasher hashes and verifies passwords with bcrypt behind a bounded worker
// pool, so a burst of logins cannot monopolise every CPU. Hashing is
// deterministic given its inputs and keeps no shared mutable state; the pool
// is purely a throughput bound. Callers block while queued and honor context
// cancellation there.
type Hasher struct {
	cost  int
	slots chan struct{}
}

// NewHasher creates a Hasher with at most workers concurrent bcrypt
// operations. Non-positive arguments fall back to the defaults.
func NewHasher(cost, workers int) *Hasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = defaultCost
	}
	if workers <= 0 {
		workers = defaultWorkers
	}
	return &Hasher{cost: cost, slots: make(chan struct{}, workers)}
}

// Hash derives a salted bcrypt hash of password.
func (h *Hasher) Hash(ctx context.Context, password string) (string, error) {
	if err := h.acquire(ctx); err != nil {
		return "", err
	}
	defer h.release()

	hash, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", fmt.Errorf("bcrypt hash: %w", err)
	}
	return string(hash), nil
}

// Compare reports whether password matches hash. A mismatch is a false
// result, not an error; bcrypt's comparison is constant-time over the
// derived key.
func (h *Hasher) Compare(ctx context.Context, password, hash string) (bool, error) {
	if err := h.acquire(ctx); err != nil {
		return false, err
	}
	defer h.release()

	switch err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err {
	case nil:
		return true, nil
	case bcrypt.ErrMismatchedHashAndPassword:
		return false, nil
	default:
		// Malformed stored hash. Treat as a mismatch rather than a server
		// failure so a corrupt record cannot crash the login path.
		return false, nil
	}
}

func (h *Hasher) acquire(ctx context.Context) error {
	select {
	case h.slots <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (h *Hasher) release() {
	<-h.slots
}
