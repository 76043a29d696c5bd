package handler

import (
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/verifactor/auth-service/internal/api/metrics"
	"github.com/verifactor/auth-service/internal/api/middleware"
	"github.com/verifactor/auth-service/internal/core/domain"
	"github.com/verifactor/auth-service/internal/core/ports"
)

// AuthHandler translates the form/redirect surface into the authentication
// flow. Redirect targets follow the contract: stage-1 success lands on the
// second-factor challenge, stage-2 success on the protected page, and every
// recoverable failure re-presents the same form with an error message.
type AuthHandler struct {
	auth       ports.AuthService
	sessions   ports.SessionStore
	sessionTTL time.Duration
}

func NewAuthHandler(auth ports.AuthService, sessions ports.SessionStore, sessionTTL time.Duration) *AuthHandler {
	return &AuthHandler{auth: auth, sessions: sessions, sessionTTL: sessionTTL}
}

type registerRequest struct {
	Username string `form:"username" json:"username" validate:"required"`
	Email    string `form:"email"    json:"email"    validate:"required,email"`
	Password string `form:"password" json:"password" validate:"required"`
}

type loginRequest struct {
	Email    string `form:"email"    json:"email"    validate:"required,email"`
	Password string `form:"password" json:"password" validate:"required"`
}

type verifyRequest struct {
	Token string `form:"token" json:"token" validate:"required,numeric,len=6"`
}

// Register creates a user with a fresh TOTP secret and redirects to the
// one-time enrollment page. Validation failures never reach the store.
func (h *AuthHandler) Register(c echo.Context) error {
	timer := prometheus.NewTimer(metrics.StageDuration.WithLabelValues("register"))
	defer timer.ObserveDuration()

	var req registerRequest
	if err := c.Bind(&req); err != nil {
		metrics.RegistrationsTotal.WithLabelValues("invalid").Inc()
		return redirectWithError(c, "/register", "invalid form submission")
	}
	if err := c.Validate(&req); err != nil {
		metrics.RegistrationsTotal.WithLabelValues("invalid").Inc()
		return redirectWithError(c, "/register", err.Error())
	}

	enrollment, err := h.auth.Register(c.Request().Context(), req.Username, req.Email, req.Password)
	switch {
	case errors.Is(err, domain.ErrMissingFields):
		metrics.RegistrationsTotal.WithLabelValues("invalid").Inc()
		return redirectWithError(c, "/register", "all fields are required")
	case errors.Is(err, domain.ErrUserExists):
		metrics.RegistrationsTotal.WithLabelValues("conflict").Inc()
		return redirectWithError(c, "/register", "username or email already taken")
	case err != nil:
		return err
	}

	// Park the enrollment URI in a fresh session so /enroll can show it
	// exactly once. The session is not authenticated at this point.
	session := h.freshSession(c)
	session.EnrollmentURI = enrollment.URI
	if err := h.sessions.Save(c.Request().Context(), session); err != nil {
		return err
	}
	middleware.WriteSessionCookie(c, session.ID, h.sessionTTL)

	metrics.RegistrationsTotal.WithLabelValues("created").Inc()
	return c.Redirect(http.StatusSeeOther, "/enroll")
}

// Login runs the stage-1 password check and, on success, advances the
// session to the pending-second-factor state and redirects to the challenge.
// Unknown email and wrong password both redirect with the same message.
func (h *AuthHandler) Login(c echo.Context) error {
	timer := prometheus.NewTimer(metrics.StageDuration.WithLabelValues("login"))
	defer timer.ObserveDuration()

	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return redirectWithError(c, "/login", "invalid form submission")
	}
	if err := c.Validate(&req); err != nil {
		return redirectWithError(c, "/login", err.Error())
	}

	user, err := h.auth.Login(c.Request().Context(), req.Email, req.Password)
	switch {
	case errors.Is(err, domain.ErrUserNotFound):
		metrics.LoginsTotal.WithLabelValues("unknown_user").Inc()
		return redirectWithError(c, "/login", "login failed")
	case errors.Is(err, domain.ErrInvalidCredentials):
		metrics.LoginsTotal.WithLabelValues("bad_password").Inc()
		return redirectWithError(c, "/login", "login failed")
	case err != nil:
		return err
	}

	session := h.freshSession(c)
	session.PasswordVerified(user.ID)
	if err := h.sessions.Save(c.Request().Context(), session); err != nil {
		return err
	}
	middleware.WriteSessionCookie(c, session.ID, h.sessionTTL)

	metrics.LoginsTotal.WithLabelValues("success").Inc()
	return c.Redirect(http.StatusSeeOther, "/verify_2fa/"+url.PathEscape(user.ID))
}

// Verify2FA runs the stage-2 TOTP check. A wrong code re-presents the same
// challenge without touching the session; success binds the session to the
// user, marks the second factor confirmed and redirects to the protected
// page.
func (h *AuthHandler) Verify2FA(c echo.Context) error {
	timer := prometheus.NewTimer(metrics.StageDuration.WithLabelValues("verify"))
	defer timer.ObserveDuration()

	userID := c.Param("userId")
	challenge := "/verify_2fa/" + url.PathEscape(userID)

	var req verifyRequest
	if err := c.Bind(&req); err != nil {
		return redirectWithError(c, challenge, "invalid form submission")
	}
	if err := c.Validate(&req); err != nil {
		return redirectWithError(c, challenge, err.Error())
	}

	session := middleware.GetSession(c)
	if session == nil {
		return redirectWithError(c, "/login", "session expired, please log in again")
	}

	user, err := h.auth.VerifySecondFactor(c.Request().Context(), userID, req.Token)
	switch {
	case errors.Is(err, domain.ErrUserNotFound):
		metrics.SecondFactorTotal.WithLabelValues("unknown_user").Inc()
		return redirectWithError(c, "/login", "user not found")
	case errors.Is(err, domain.ErrInvalidTOTPCode):
		metrics.SecondFactorTotal.WithLabelValues("invalid_code").Inc()
		return redirectWithError(c, challenge, "invalid verification code")
	case err != nil:
		return err
	}

	if err := session.ConfirmSecondFactor(user.ID); err != nil {
		// The session never passed stage 1 for this user. Restart the flow.
		return redirectWithError(c, "/login", "please log in first")
	}
	if err := h.sessions.Save(c.Request().Context(), session); err != nil {
		return err
	}

	metrics.SecondFactorTotal.WithLabelValues("success").Inc()
	metrics.SessionsEstablishedTotal.Inc()
	return c.Redirect(http.StatusSeeOther, "/success")
}

// Logout destroys the server-side session and clears the cookie.
func (h *AuthHandler) Logout(c echo.Context) error {
	if session := middleware.GetSession(c); session != nil {
		if err := h.sessions.Delete(c.Request().Context(), session.ID); err != nil {
			return err
		}
	}
	middleware.ClearSessionCookie(c)
	return c.Redirect(http.StatusSeeOther, "/login")
}

// freshSession returns the request's session reset to the anonymous stage,
// or a brand new one when the client has none. Reusing the id keeps one
// cookie per client; resetting discards any prior progress.
func (h *AuthHandler) freshSession(c echo.Context) *domain.Session {
	if session := middleware.GetSession(c); session != nil {
		session.Reset()
		return session
	}
	return &domain.Session{ID: uuid.NewString()}
}

func redirectWithError(c echo.Context, target, msg string) error {
	return c.Redirect(http.StatusSeeOther, target+"?error="+url.QueryEscape(msg))
}
