package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/dynamicfusion/expense-portal/internal/api/handler"
	"github.com/dynamicfusion/expense-portal/internal/api/metrics"
	"github.com/dynamicfusion/expense-portal/internal/api/middleware"
	"github.com/dynamicfusion/expense-portal/internal/core/domain"
	"github.com/dynamicfusion/expense-portal/internal/core/ports"
)

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Treats a backend 401 on any authenticated call as a dead token:
//     the session is destroyed, the cookie expired, and the browser sent
//     back to the sign-in screen.
//   - Maps known domain errors to their HTML error pages.
//   - Logs unexpected errors internally without leaking details to the user.
func NewHTTPErrorHandler(store ports.SessionStore, log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		// Backend no longer honors the token. One uniform reaction
		// wherever it surfaces: drop the session and start over.
		if errors.Is(err, domain.ErrUnauthorized) {
			if cookie, cerr := c.Cookie(middleware.CookieName); cerr == nil && cookie.Value != "" {
				store.Delete(cookie.Value)
			}
			middleware.ExpireSessionCookie(c)
			metrics.ForcedLogoutsTotal.Inc()
			log.Warn().
				Str("path", c.Path()).
				Msg("backend rejected session token, forcing logout")
			_ = c.Redirect(http.StatusFound, "/login")
			return
		}

		code, title, detail := resolveError(err, log, c)
		page := handler.ErrorPage{Page: handler.NewPage(c, title, ""), Detail: detail}
		page.Error, page.Message = "", ""
		if rerr := c.Render(code, "error", page); rerr != nil {
			// Renderer itself failed; fall back to plain text.
			_ = c.String(code, detail)
		}
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, string, string) {
	// Echo's own errors (bind failures, 404 from the router, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		if he.Code == http.StatusNotFound {
			return he.Code, "Not Found", "The page you requested does not exist."
		}
		return he.Code, "Request Failed", fmt.Sprintf("%v", he.Message)
	}

	switch {
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, "Access Denied", "Your account does not have access to this section."
	case errors.Is(err, domain.ErrRequestNotFound):
		return http.StatusNotFound, "Not Found", "That request does not exist."
	case errors.Is(err, domain.ErrBackendUnavailable):
		return http.StatusBadGateway, "Service Unavailable", "The server could not be reached. Please try again in a moment."
	}

	var apiErr *domain.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status, "Request Failed", apiErr.Message
	}

	// Unexpected error: log the real cause, show a generic page.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, "Something Went Wrong", "An unexpected error occurred. Please try again."
}
