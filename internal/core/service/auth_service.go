package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/verifactor/auth-service/internal/core/domain"
	"github.com/verifactor/auth-service/internal/core/ports"
)

// AuthService implements the two-stage authentication flow: registration
// with TOTP enrollment, password verification (stage 1), and proof of
// possession of the TOTP secret (stage 2).
//
// Verification only reads the stored secret. A code that already matched is
// accepted again within the same time-step window; nothing here marks codes
// as consumed.
type AuthService struct {
	store  ports.CredentialStore
	hasher ports.PasswordHasher
	totp   ports.TOTPEngine
	log    zerolog.Logger
}

func NewAuthService(store ports.CredentialStore, hasher ports.PasswordHasher, totp ports.TOTPEngine, log zerolog.Logger) *AuthService {
	return &AuthService{store: store, hasher: hasher, totp: totp, log: log}
}

// Register validates input, generates a fresh TOTP secret, hashes the
// password and persists the user. On a username/email collision the store
// reports domain.ErrUserExists and no record is written.
func (s *AuthService) Register(ctx context.Context, username, email, password string) (*ports.Enrollment, error) {
	if username == "" || email == "" || password == "" {
		return nil, domain.ErrMissingFields
	}

	secret, err := s.totp.GenerateSecret()
	if err != nil {
		return nil, fmt.Errorf("generate totp secret: %w", err)
	}

	hash, err := s.hasher.Hash(ctx, password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now().UTC()
	user := &domain.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		TOTPSecret:   secret,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	created, err := s.store.Create(ctx, user)
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Str("user_id", created.ID).
		Str("email", created.Email).
		Msg("user registered")

	return &ports.Enrollment{
		UserID: created.ID,
		URI:    s.totp.EnrollmentURI(secret, created.Username),
	}, nil
}

// Login performs the stage-1 password check. An unknown email and a wrong
// password surface as distinct sentinels for logs and metrics, but the
// boundary maps both to the same user-facing message.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.User, error) {
	if email == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	user, err := s.store.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	ok, err := s.hasher.Compare(ctx, password, user.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("compare password: %w", err)
	}
	if !ok {
		s.log.Debug().Str("user_id", user.ID).Msg("password mismatch")
		return nil, domain.ErrInvalidCredentials
	}

	s.log.Info().Str("user_id", user.ID).Msg("password verified, second factor pending")
	return user, nil
}

// VerifySecondFactor performs the stage-2 TOTP check against the user's
// stored secret. A wrong code returns domain.ErrInvalidTOTPCode so the
// caller re-presents the same challenge; it never touches the secret or the
// user record.
func (s *AuthService) VerifySecondFactor(ctx context.Context, userID, code string) (*domain.User, error) {
	user, err := s.store.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if !s.totp.Verify(user.TOTPSecret, code) {
		s.log.Debug().Str("user_id", user.ID).Msg("totp verification failed")
		return nil, domain.ErrInvalidTOTPCode
	}

	s.log.Info().Str("user_id", user.ID).Msg("second factor confirmed")
	return user, nil
}
