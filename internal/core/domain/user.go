package domain

import (
	"errors"
	"time"
)

// User models a registered account: login identity plus both credential
// factors. The plaintext password never appears here, and TOTPSecret is
// surfaced to the outside exactly once, through the enrollment artifact
// returned at registration time.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	TOTPSecret   string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

var ErrMissingFields = errors.New("all fields are required")
var ErrUserExists = errors.New("user already exists")
var ErrUserNotFound = errors.New("user not found")
var ErrInvalidCredentials = errors.New("invalid credentials")
var ErrInvalidTOTPCode = errors.New("invalid verification code")
var ErrSessionNotFound = errors.New("session not found")
var ErrStageTransition = errors.New("invalid authentication stage transition")
