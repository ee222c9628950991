package handler

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/dynamicfusion/expense-portal/internal/api/metrics"
	"github.com/dynamicfusion/expense-portal/internal/api/middleware"
	"github.com/dynamicfusion/expense-portal/internal/core/domain"
	"github.com/dynamicfusion/expense-portal/internal/core/ports"
)

// AttachmentHandler serves proof files. Proof links on rendered pages
// point at View, which mints a short-lived capability token and redirects
// to Fetch. Fetch alone accepts the token, so the resulting URL works for
// a few minutes in any tab without carrying the session cookie's power.
type AttachmentHandler struct {
	backend  ports.BackendClient
	sessions ports.SessionStore
	tokens   ports.AttachmentTokenStore
	logger   zerolog.Logger
}

func NewAttachmentHandler(
	backend ports.BackendClient,
	sessions ports.SessionStore,
	tokens ports.AttachmentTokenStore,
	logger zerolog.Logger,
) *AttachmentHandler {
	return &AttachmentHandler{backend: backend, sessions: sessions, tokens: tokens, logger: logger}
}

// View requires a signed-in session, issues a capability token bound to
// this session and filename, and redirects to the token URL.
func (h *AttachmentHandler) View(c echo.Context) error {
	sess := middleware.CurrentSession(c)
	filename := c.Param("filename")
	if filename == "" {
		return echo.NewHTTPError(http.StatusNotFound, "no such attachment")
	}

	token, err := h.tokens.Issue(c.Request().Context(), sess.ID, filename)
	if err != nil {
		metrics.AttachmentTokensTotal.WithLabelValues("issue", "denied").Inc()
		h.logger.Error().Err(err).Msg("attachment token issue failed")
		return domain.ErrBackendUnavailable
	}
	metrics.AttachmentTokensTotal.WithLabelValues("issue", "ok").Inc()

	target := "/attachments/" + url.PathEscape(filename) + "?st=" + url.QueryEscape(token)
	return c.Redirect(http.StatusFound, target)
}

// Fetch redeems the capability token and streams the file from the
// backend. The token is single-purpose: wrong filename, expired token, or
// a session that has since ended all fail the same way.
func (h *AttachmentHandler) Fetch(c echo.Context) error {
	filename := c.Param("filename")
	token := c.QueryParam("st")
	if filename == "" || token == "" {
		return domain.ErrForbidden
	}

	sessionID, err := h.tokens.Redeem(c.Request().Context(), token, filename)
	if err != nil {
		metrics.AttachmentTokensTotal.WithLabelValues("redeem", "denied").Inc()
		return domain.ErrForbidden
	}
	sess, ok := h.sessions.Get(sessionID)
	if !ok {
		metrics.AttachmentTokensTotal.WithLabelValues("redeem", "denied").Inc()
		return domain.ErrForbidden
	}
	metrics.AttachmentTokensTotal.WithLabelValues("redeem", "ok").Inc()

	att, err := h.backend.Attachment(c.Request().Context(), sess.Token, filename)
	if err != nil {
		if errors.Is(err, domain.ErrUnauthorized) {
			return domain.ErrForbidden
		}
		var apiErr *domain.APIError
		if errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "no such attachment")
		}
		h.logger.Error().Err(err).Str("filename", filename).Msg("attachment fetch failed")
		return domain.ErrBackendUnavailable
	}
	defer att.Content.Close()

	contentType := att.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	if att.ContentLength > 0 {
		c.Response().Header().Set(echo.HeaderContentLength, strconv.FormatInt(att.ContentLength, 10))
	}
	c.Response().Header().Set("Content-Disposition", `inline; filename="`+filename+`"`)
	return c.Stream(http.StatusOK, contentType, att.Content)
}
