package handler

import (
	"errors"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/dynamicfusion/expense-portal/internal/api/metrics"
	"github.com/dynamicfusion/expense-portal/internal/api/middleware"
	"github.com/dynamicfusion/expense-portal/internal/core/domain"
	"github.com/dynamicfusion/expense-portal/internal/core/ports"
)

// ActionHandler forwards the portal's write operations to the backend:
// staff submissions and admin status transitions. The backend remains the
// authority; the portal validates just enough to give a useful message
// without a round trip.
type ActionHandler struct {
	backend ports.BackendClient
	logger  zerolog.Logger
}

func NewActionHandler(backend ports.BackendClient, logger zerolog.Logger) *ActionHandler {
	return &ActionHandler{backend: backend, logger: logger}
}

// Submit handles a staff submission form for either request type. The
// proof file is optional and streamed through without buffering to disk.
func (h *ActionHandler) Submit(c echo.Context) error {
	sess := middleware.CurrentSession(c)
	typ := submitPageType(c.Path())
	back := "/" + string(typ)

	var form submitForm
	if err := c.Bind(&form); err != nil {
		return RedirectWithError(c, back, "Please fill in all required fields.")
	}
	if err := c.Validate(&form); err != nil {
		return RedirectWithError(c, back, err.Error())
	}
	if amount, err := strconv.ParseFloat(form.Amount, 64); err != nil || amount <= 0 {
		return RedirectWithError(c, back, "Amount must be a positive number.")
	}

	in := ports.SubmitRequestInput{
		Type:   typ,
		Date:   form.Date,
		Text:   form.Text,
		Amount: form.Amount,
	}
	if fh, err := c.FormFile("proof"); err == nil && fh != nil {
		src, err := fh.Open()
		if err != nil {
			return RedirectWithError(c, back, "The attached file could not be read.")
		}
		defer src.Close()
		in.ProofName = fh.Filename
		in.Proof = src
	}

	result, err := h.backend.SubmitRequest(c.Request().Context(), sess.Token, in)
	if err != nil {
		return h.actionError(c, back, err, "submit request")
	}

	msg := result.Message
	if msg == "" {
		msg = "Request submitted."
	}
	h.logger.Info().
		Str("type", string(typ)).
		Str("request_id", result.RequestID).
		Str("username", sess.Username).
		Msg("request submitted")
	return RedirectWithMessage(c, back, msg)
}

// UpdateStatus asks the backend for one status transition and re-renders
// the review tab the action came from. Dates are never computed here; the
// refreshed list carries whatever the backend assigned.
func (h *ActionHandler) UpdateStatus(c echo.Context) error {
	sess := middleware.CurrentSession(c)
	requestID := c.Param("id")

	var form statusForm
	if err := c.Bind(&form); err != nil {
		return RedirectWithError(c, "/admin/review", "Unknown action.")
	}
	back := "/admin/review"
	if domain.ValidType(form.Type) {
		back += "?type=" + form.Type
	}

	target := domain.Status(form.Target)
	if !validTarget(target) {
		return RedirectWithError(c, back, "Unknown action.")
	}

	err := h.backend.UpdateStatus(c.Request().Context(), sess.Token, requestID, target)
	if err != nil {
		metrics.StatusUpdatesTotal.WithLabelValues(string(target), "error").Inc()
		if errors.Is(err, domain.ErrRequestNotFound) {
			return RedirectWithError(c, back, "That request no longer exists.")
		}
		return h.actionError(c, back, err, "update status")
	}

	metrics.StatusUpdatesTotal.WithLabelValues(string(target), "ok").Inc()
	h.logger.Info().
		Str("request_id", requestID).
		Str("target", string(target)).
		Str("username", sess.Username).
		Msg("status updated")
	return RedirectWithMessage(c, back, "Request "+requestID+" marked "+string(target)+".")
}

// actionError maps a write failure to a flash on the originating page.
// Backend-authored messages are shown verbatim; a dead token propagates so
// the error handler can tear the session down.
func (h *ActionHandler) actionError(c echo.Context, back string, err error, op string) error {
	if errors.Is(err, domain.ErrUnauthorized) {
		return err
	}
	var apiErr *domain.APIError
	if errors.As(err, &apiErr) {
		return RedirectWithError(c, back, apiErr.Message)
	}
	h.logger.Error().Err(err).Str("op", op).Msg("backend call failed")
	return RedirectWithError(c, back, "The server could not be reached. Please try again.")
}

// validTarget limits transitions to statuses an admin action can request.
func validTarget(s domain.Status) bool {
	switch s {
	case domain.StatusApproved, domain.StatusRejected, domain.StatusPaid:
		return true
	}
	return false
}
