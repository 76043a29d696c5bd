// Package totp implements the shared-secret second factor: secret
// generation, otpauth enrollment URIs, QR rendering and windowed code
// verification, compatible with Google Authenticator style apps.
package totp

import (
	"bytes"
	"crypto/rand"
	"encoding/base32"
	"fmt"
	"image/png"
	"net/url"
	"strconv"
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

const (
	secretBytes = 20
	period      = 30
	digits      = otp.DigitsSix

	// skew is the tolerance window in adjacent time steps, absorbing small
	// clock drift between the server and the authenticator device.
	skew = 1
)

var b32 = base32.StdEncoding.WithPadding(base32.NoPadding)

// Engine issues and checks time-based one-time passwords. The clock is an
// injected input so verification never caches wall time and tests can pin it.
type Engine struct {
	issuer string
	now    func() time.Time
}

// NewEngine creates an Engine labelling enrollments with issuer.
func NewEngine(issuer string) *Engine {
	return &Engine{issuer: issuer, now: time.Now}
}

// NewEngineAt is NewEngine with an explicit clock, for tests.
func NewEngineAt(issuer string, now func() time.Time) *Engine {
	return &Engine{issuer: issuer, now: now}
}

// GenerateSecret returns a fresh random shared secret, base32-encoded
// without padding (the alphabet authenticator apps expect).
func (e *Engine) GenerateSecret() (string, error) {
	raw := make([]byte, secretBytes)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("generate secret: %w", err)
	}
	return b32.EncodeToString(raw), nil
}

// EnrollmentURI builds the otpauth:// URI embedding the secret, the account
// label and the issuer, suitable for rendering as a scannable code.
func (e *Engine) EnrollmentURI(secret, accountLabel string) string {
	v := url.Values{}
	v.Set("secret", secret)
	v.Set("issuer", e.issuer)
	v.Set("period", strconv.Itoa(period))
	v.Set("digits", digits.String())
	v.Set("algorithm", otp.AlgorithmSHA1.String())

	return "otpauth://totp/" + url.PathEscape(e.issuer+":"+accountLabel) + "?" + v.Encode()
}

// Verify reports whether code matches the current time-step code for secret,
// accepting codes up to skew steps away. The comparison inside the otp
// library is constant-time; secret is only read.
func (e *Engine) Verify(secret, code string) bool {
	ok, err := totp.ValidateCustom(code, secret, e.now().UTC(), totp.ValidateOpts{
		Period:    period,
		Skew:      skew,
		Digits:    digits,
		Algorithm: otp.AlgorithmSHA1,
	})
	return err == nil && ok
}

// QRCode renders an enrollment URI as a PNG of size x size pixels.
func QRCode(uri string, size int) ([]byte, error) {
	key, err := otp.NewKeyFromURL(uri)
	if err != nil {
		return nil, fmt.Errorf("parse enrollment uri: %w", err)
	}

	img, err := key.Image(size, size)
	if err != nil {
		return nil, fmt.Errorf("render qr image: %w", err)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode qr png: %w", err)
	}
	return buf.Bytes(), nil
}
