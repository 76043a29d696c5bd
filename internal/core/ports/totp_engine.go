package ports

// TOTPEngine generates shared secrets and verifies time-step codes.
// Verify reads wall-clock time itself (injected in the implementation) and
// must never mutate the secret. It accepts codes from adjacent time steps
// within the engine's configured skew to absorb clock drift.
type TOTPEngine interface {
	GenerateSecret() (string, error)
	EnrollmentURI(secret, accountLabel string) string
	Verify(secret, code string) bool
}
