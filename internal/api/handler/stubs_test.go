package handler

import (
	"context"
	"io"

	"github.com/labstack/echo/v4"

	"github.com/dynamicfusion/expense-portal/internal/core/domain"
	"github.com/dynamicfusion/expense-portal/internal/core/ports"
)

// stubBackend implements ports.BackendClient with overridable function
// fields. Unset methods return zero values.
type stubBackend struct {
	tokenFn          func(ctx context.Context, username, password string) (string, error)
	submitFn         func(ctx context.Context, token string, in ports.SubmitRequestInput) (*ports.SubmitResult, error)
	myRequestsFn     func(ctx context.Context, token string) ([]domain.Request, error)
	historyFn        func(ctx context.Context, token string) ([]domain.Request, error)
	pendingSummaryFn func(ctx context.Context, token string) (*domain.PendingSummary, error)
	adminRequestsFn  func(ctx context.Context, token string, typ domain.RequestType) ([]domain.Request, error)
	updateStatusFn   func(ctx context.Context, token, requestID string, target domain.Status) error
	paidRecordsFn    func(ctx context.Context, token string) ([]domain.Request, error)
	listUsersFn      func(ctx context.Context, token string) ([]domain.User, error)
	createUserFn     func(ctx context.Context, token string, in ports.CreateUserInput) error
	deleteUserFn     func(ctx context.Context, token, username string) error
	attachmentFn     func(ctx context.Context, token, filename string) (*ports.Attachment, error)
}

func (s *stubBackend) Token(ctx context.Context, username, password string) (string, error) {
	if s.tokenFn != nil {
		return s.tokenFn(ctx, username, password)
	}
	return "", nil
}

func (s *stubBackend) SubmitRequest(ctx context.Context, token string, in ports.SubmitRequestInput) (*ports.SubmitResult, error) {
	if s.submitFn != nil {
		return s.submitFn(ctx, token, in)
	}
	return &ports.SubmitResult{}, nil
}

func (s *stubBackend) MyRequests(ctx context.Context, token string) ([]domain.Request, error) {
	if s.myRequestsFn != nil {
		return s.myRequestsFn(ctx, token)
	}
	return nil, nil
}

func (s *stubBackend) HistoryRequests(ctx context.Context, token string) ([]domain.Request, error) {
	if s.historyFn != nil {
		return s.historyFn(ctx, token)
	}
	return nil, nil
}

func (s *stubBackend) PendingSummary(ctx context.Context, token string) (*domain.PendingSummary, error) {
	if s.pendingSummaryFn != nil {
		return s.pendingSummaryFn(ctx, token)
	}
	return &domain.PendingSummary{}, nil
}

func (s *stubBackend) AdminRequests(ctx context.Context, token string, typ domain.RequestType) ([]domain.Request, error) {
	if s.adminRequestsFn != nil {
		return s.adminRequestsFn(ctx, token, typ)
	}
	return nil, nil
}

func (s *stubBackend) UpdateStatus(ctx context.Context, token, requestID string, target domain.Status) error {
	if s.updateStatusFn != nil {
		return s.updateStatusFn(ctx, token, requestID, target)
	}
	return nil
}

func (s *stubBackend) PaidRecords(ctx context.Context, token string) ([]domain.Request, error) {
	if s.paidRecordsFn != nil {
		return s.paidRecordsFn(ctx, token)
	}
	return nil, nil
}

func (s *stubBackend) ListUsers(ctx context.Context, token string) ([]domain.User, error) {
	if s.listUsersFn != nil {
		return s.listUsersFn(ctx, token)
	}
	return nil, nil
}

func (s *stubBackend) CreateUser(ctx context.Context, token string, in ports.CreateUserInput) error {
	if s.createUserFn != nil {
		return s.createUserFn(ctx, token, in)
	}
	return nil
}

func (s *stubBackend) DeleteUser(ctx context.Context, token, username string) error {
	if s.deleteUserFn != nil {
		return s.deleteUserFn(ctx, token, username)
	}
	return nil
}

func (s *stubBackend) Attachment(ctx context.Context, token, filename string) (*ports.Attachment, error) {
	if s.attachmentFn != nil {
		return s.attachmentFn(ctx, token, filename)
	}
	return nil, domain.ErrRequestNotFound
}

func (s *stubBackend) Health(ctx context.Context) error { return nil }

// captureRenderer records what the handler asked to render so tests can
// assert on the page data directly.
type captureRenderer struct {
	name string
	data any
}

func (r *captureRenderer) Render(w io.Writer, name string, data any, c echo.Context) error {
	r.name = name
	r.data = data
	_, err := io.WriteString(w, name)
	return err
}

// newTestEcho builds an echo instance wired like the router does, minus
// the real templates.
func newTestEcho() (*echo.Echo, *captureRenderer) {
	e := echo.New()
	r := &captureRenderer{}
	e.Renderer = r
	e.Validator = NewValidator()
	return e, r
}

func staffSession() *domain.Session {
	return &domain.Session{ID: "sess-1", Token: "tok-1", Username: "maria", Role: domain.RoleStaff}
}

func adminSession() *domain.Session {
	return &domain.Session{ID: "sess-2", Token: "tok-2", Username: "admin", Role: domain.RoleAdmin}
}
