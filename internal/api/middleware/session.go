package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/dynamicfusion/expense-portal/internal/core/domain"
	"github.com/dynamicfusion/expense-portal/internal/core/ports"
)

// CookieName is the portal session cookie. It carries an opaque store ID,
// never the backend token itself.
const CookieName = "portal_session"

const sessionKey = "session"

// ResolveSession looks the session cookie up in the store and injects the
// live session into the echo context. Requests without a valid session pass
// through unauthenticated; page handlers and RequireAuth decide what that
// means.
func ResolveSession(store ports.SessionStore) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cookie, err := c.Cookie(CookieName)
			if err == nil && cookie.Value != "" {
				if sess, ok := store.Get(cookie.Value); ok {
					c.Set(sessionKey, sess)
				}
			}
			return next(c)
		}
	}
}

// RequireAuth redirects unauthenticated requests to the login section.
// Any navigation target resolves to login when signed out.
func RequireAuth() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if CurrentSession(c) == nil {
				return c.Redirect(http.StatusFound, "/login")
			}
			return next(c)
		}
	}
}

// RequireRole gates a section by role. The check runs before the handler,
// so a disallowed request never triggers a backend call. The decoded role
// is a rendering hint; the backend still enforces authorization on every
// privileged endpoint.
func RequireRole(allowedRoles ...string) echo.MiddlewareFunc {
	allowed := make(map[string]struct{}, len(allowedRoles))
	for _, r := range allowedRoles {
		allowed[r] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			sess := CurrentSession(c)
			if sess == nil {
				return c.Redirect(http.StatusFound, "/login")
			}
			if _, ok := allowed[sess.Role]; !ok {
				return domain.ErrForbidden
			}
			return next(c)
		}
	}
}

// CurrentSession returns the session injected by ResolveSession, or nil.
func CurrentSession(c echo.Context) *domain.Session {
	sess, _ := c.Get(sessionKey).(*domain.Session)
	return sess
}

// SetSessionCookie installs the session cookie. HttpOnly keeps the opaque
// ID away from page scripts; MaxAge mirrors the store's own TTL.
func SetSessionCookie(c echo.Context, sessionID string, maxAge int) {
	c.SetCookie(&http.Cookie{
		Name:     CookieName,
		Value:    sessionID,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// ExpireSessionCookie overwrites the session cookie with an immediately
// expiring one.
func ExpireSessionCookie(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
