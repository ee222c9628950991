package handler

import (
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/dynamicfusion/expense-portal/internal/api/metrics"
	"github.com/dynamicfusion/expense-portal/internal/api/middleware"
	"github.com/dynamicfusion/expense-portal/internal/core/domain"
	"github.com/dynamicfusion/expense-portal/internal/core/ports"
)

const (
	msgBadCredentials   = "Login failed. Incorrect username or password."
	msgLoginUnavailable = "Login failed. The server could not be reached. Please try again."
)

// AuthHandler drives the sign-in and sign-out flows.
type AuthHandler struct {
	auth       ports.AuthService
	sessionTTL time.Duration
	logger     zerolog.Logger
}

func NewAuthHandler(auth ports.AuthService, sessionTTL time.Duration, logger zerolog.Logger) *AuthHandler {
	return &AuthHandler{auth: auth, sessionTTL: sessionTTL, logger: logger}
}

// LoginPage renders the sign-in screen. A browser that is already signed
// in goes straight to home.
func (h *AuthHandler) LoginPage(c echo.Context) error {
	if middleware.CurrentSession(c) != nil {
		return c.Redirect(http.StatusFound, "/home")
	}
	return c.Render(http.StatusOK, "login", NewPage(c, "Sign In", ""))
}

// Login exchanges the submitted credentials for a session. Failures come
// back to the form as a flash message; nothing about the failure is stored.
func (h *AuthHandler) Login(c echo.Context) error {
	var form loginForm
	if err := c.Bind(&form); err != nil {
		return RedirectWithError(c, "/login", msgBadCredentials)
	}
	if err := c.Validate(&form); err != nil {
		return RedirectWithError(c, "/login", msgBadCredentials)
	}

	sessionID, sess, err := h.auth.Login(c.Request().Context(), form.Username, form.Password)
	switch {
	case errors.Is(err, domain.ErrInvalidCredentials):
		metrics.LoginsTotal.WithLabelValues("failure").Inc()
		return RedirectWithError(c, "/login", msgBadCredentials)
	case err != nil:
		metrics.LoginsTotal.WithLabelValues("failure").Inc()
		h.logger.Error().Err(err).Msg("login failed against backend")
		return RedirectWithError(c, "/login", msgLoginUnavailable)
	}

	middleware.SetSessionCookie(c, sessionID, int(h.sessionTTL.Seconds()))
	metrics.LoginsTotal.WithLabelValues("success").Inc()
	h.logger.Info().Str("username", sess.Username).Str("role", sess.Role).Msg("user signed in")
	return c.Redirect(http.StatusFound, "/home")
}

// Logout destroys the session unconditionally and returns to sign-in.
// A stale or missing cookie logs out just the same.
func (h *AuthHandler) Logout(c echo.Context) error {
	if cookie, err := c.Cookie(middleware.CookieName); err == nil && cookie.Value != "" {
		h.auth.Logout(cookie.Value)
	}
	middleware.ExpireSessionCookie(c)
	return c.Redirect(http.StatusFound, "/login")
}

// RedirectWithError sends the browser to target with a one-shot flash
// message in the query string.
func RedirectWithError(c echo.Context, target, msg string) error {
	return c.Redirect(http.StatusFound, withFlash(target, "error", msg))
}

// RedirectWithMessage is the success-flash counterpart of RedirectWithError.
func RedirectWithMessage(c echo.Context, target, msg string) error {
	return c.Redirect(http.StatusFound, withFlash(target, "message", msg))
}

func withFlash(target, key, msg string) string {
	sep := "?"
	if strings.ContainsRune(target, '?') {
		sep = "&"
	}
	return target + sep + key + "=" + url.QueryEscape(msg)
}
