package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/dynamicfusion/expense-portal/internal/api/middleware"
	"github.com/dynamicfusion/expense-portal/internal/core/domain"
	"github.com/dynamicfusion/expense-portal/internal/core/ports"
)

// UserHandler is the admin account-management panel. All account state
// lives in the backend; this handler only displays it and forwards
// create/delete commands.
type UserHandler struct {
	backend ports.BackendClient
	logger  zerolog.Logger
}

func NewUserHandler(backend ports.BackendClient, logger zerolog.Logger) *UserHandler {
	return &UserHandler{backend: backend, logger: logger}
}

type userRow struct {
	Username  string
	Role      string
	Created   string
	CanDelete bool
}

type usersData struct {
	Page
	Users []userRow
}

// Users lists every backend account. The signed-in admin's own row has no
// delete control; self-deletion is refused before it reaches the backend.
func (h *UserHandler) Users(c echo.Context) error {
	sess := middleware.CurrentSession(c)

	accounts, err := h.backend.ListUsers(c.Request().Context(), sess.Token)
	if err != nil {
		return err
	}

	data := usersData{Page: NewPage(c, "Users", "users")}
	data.Users = make([]userRow, 0, len(accounts))
	for _, u := range accounts {
		data.Users = append(data.Users, userRow{
			Username:  u.Username,
			Role:      u.Role,
			Created:   domain.FormatDisplayDate(u.CreatedAt),
			CanDelete: u.Username != sess.Username,
		})
	}
	return c.Render(http.StatusOK, "users", data)
}

// CreateUser forwards a new account to the backend. Rejections (duplicate
// username, weak password rules, whatever the backend enforces) come back
// as the backend's own message.
func (h *UserHandler) CreateUser(c echo.Context) error {
	sess := middleware.CurrentSession(c)

	var form createUserForm
	if err := c.Bind(&form); err != nil {
		return RedirectWithError(c, "/admin/users", "Please fill in all required fields.")
	}
	if err := c.Validate(&form); err != nil {
		return RedirectWithError(c, "/admin/users", err.Error())
	}

	in := ports.CreateUserInput{Username: form.Username, Password: form.Password, Role: form.Role}
	if err := h.backend.CreateUser(c.Request().Context(), sess.Token, in); err != nil {
		return h.userError(c, err, "create user")
	}

	h.logger.Info().Str("username", form.Username).Str("role", form.Role).Msg("user created")
	return RedirectWithMessage(c, "/admin/users", "User "+form.Username+" created.")
}

// DeleteUser removes a backend account. Deleting yourself is refused here
// so an admin cannot lock themselves out mid-session.
func (h *UserHandler) DeleteUser(c echo.Context) error {
	sess := middleware.CurrentSession(c)
	username := c.Param("username")

	if username == sess.Username {
		return RedirectWithError(c, "/admin/users", "You cannot delete your own account.")
	}

	if err := h.backend.DeleteUser(c.Request().Context(), sess.Token, username); err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return RedirectWithError(c, "/admin/users", "That user no longer exists.")
		}
		return h.userError(c, err, "delete user")
	}

	h.logger.Info().Str("username", username).Msg("user deleted")
	return RedirectWithMessage(c, "/admin/users", "User "+username+" deleted.")
}

func (h *UserHandler) userError(c echo.Context, err error, op string) error {
	if errors.Is(err, domain.ErrUnauthorized) {
		return err
	}
	var apiErr *domain.APIError
	if errors.As(err, &apiErr) {
		return RedirectWithError(c, "/admin/users", apiErr.Message)
	}
	h.logger.Error().Err(err).Str("op", op).Msg("backend call failed")
	return RedirectWithError(c, "/admin/users", "The server could not be reached. Please try again.")
}
