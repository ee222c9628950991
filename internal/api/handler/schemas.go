package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/dynamicfusion/expense-portal/internal/api/middleware"
	"github.com/dynamicfusion/expense-portal/internal/core/service"
)

// --- Shared page data ---

// Page carries the fields every template's layout needs: the signed-in
// identity for the nav bar and the one-shot flash messages passed through
// redirect query parameters.
type Page struct {
	Title    string
	Active   string
	LoggedIn bool
	Username string
	IsAdmin  bool
	Error    string
	Message  string
}

// NewPage builds the common layout data from the request context.
func NewPage(c echo.Context, title, active string) Page {
	p := Page{
		Title:   title,
		Active:  active,
		Error:   c.QueryParam("error"),
		Message: c.QueryParam("message"),
	}
	if sess := middleware.CurrentSession(c); sess != nil {
		p.LoggedIn = true
		p.Username = sess.Username
		p.IsAdmin = sess.IsAdmin()
	}
	return p
}

// ErrorPage is the data for the error template.
type ErrorPage struct {
	Page
	Detail string
}

// Table is one rendered request table. LoadFailed marks a backend fetch
// that failed for a reason other than an expired session; the table then
// shows a retry placeholder instead of rows.
type Table struct {
	Rows         []service.RowView
	TypeParam    string
	ShowStaff    bool
	ShowPaidDate bool
	ShowActions  bool
	Empty        string
	LoadFailed   bool
}

// --- Form types ---

type loginForm struct {
	Username string `form:"username" validate:"required"`
	Password string `form:"password" validate:"required"`
}

type submitForm struct {
	Date   string `form:"date" validate:"required"`
	Text   string `form:"text" validate:"required,max=500"`
	Amount string `form:"amount" validate:"required"`
}

type statusForm struct {
	Target string `form:"target" validate:"required"`
	Type   string `form:"type"`
}

type createUserForm struct {
	Username string `form:"username" validate:"required,max=64"`
	Password string `form:"password" validate:"required"`
	Role     string `form:"role" validate:"required,oneof=admin staff"`
}
