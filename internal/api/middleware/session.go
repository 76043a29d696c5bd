package middleware

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/verifactor/auth-service/internal/core/domain"
	"github.com/verifactor/auth-service/internal/core/ports"
)

// SessionCookieName is the cookie carrying the opaque session id.
const SessionCookieName = "session_id"

// contextKeySession is where the loaded session lives in the echo context.
const contextKeySession = "session"

// LoadSession resolves the session cookie against the store and injects the
// session into the request context. Requests without a cookie, or with an id
// the store no longer knows, proceed without a session; gating is left to
// RequireAuthenticated so public pages stay reachable.
func LoadSession(store ports.SessionStore) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id := ReadSessionID(c)
			if id == "" {
				return next(c)
			}

			session, err := store.Get(c.Request().Context(), id)
			if err != nil {
				// Expired or unknown id: drop the stale cookie.
				ClearSessionCookie(c)
				return next(c)
			}

			c.Set(contextKeySession, session)
			return next(c)
		}
	}
}

// RequireAuthenticated is the session gate: it admits a request if and only
// if the session exists, has a user bound, and the second factor has been
// confirmed. Everything else is sent back to the entry point of the flow.
// The gate is a pure predicate over session state; it performs no I/O.
func RequireAuthenticated() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			session := GetSession(c)
			if session == nil || !session.Authenticated() {
				return c.Redirect(http.StatusSeeOther, "/login")
			}
			return next(c)
		}
	}
}

// GetSession retrieves the session loaded by LoadSession, or nil.
func GetSession(c echo.Context) *domain.Session {
	session, _ := c.Get(contextKeySession).(*domain.Session)
	return session
}

// ReadSessionID returns the session id from the request cookie, or "".
func ReadSessionID(c echo.Context) string {
	cookie, err := c.Cookie(SessionCookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}

// WriteSessionCookie hands the opaque session id to the client. HttpOnly
// keeps it away from scripts; SameSite=Lax covers the redirect flow.
func WriteSessionCookie(c echo.Context, id string, ttl time.Duration) {
	c.SetCookie(&http.Cookie{
		Name:     SessionCookieName,
		Value:    id,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearSessionCookie expires the session cookie immediately.
func ClearSessionCookie(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
