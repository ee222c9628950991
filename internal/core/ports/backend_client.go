package ports

import (
	"context"
	"io"

	"github.com/dynamicfusion/expense-portal/internal/core/domain"
)

// SubmitRequestInput carries a staff submission to the backend. Text is the
// free-text justification: it is sent as "description" for reimbursements
// and "purpose" for payment requests.
type SubmitRequestInput struct {
	Type      domain.RequestType
	Date      string
	Text      string
	Amount    string
	ProofName string
	Proof     io.Reader // optional attachment content; nil when absent
}

// SubmitResult is the backend's acknowledgement of a submission.
type SubmitResult struct {
	Message   string `json:"message"`
	RequestID string `json:"request_id"`
}

// CreateUserInput carries a new backend account.
type CreateUserInput struct {
	Username string
	Password string
	Role     string
}

// Attachment is a proof file streamed from the backend. Callers own Content
// and must close it.
type Attachment struct {
	Content       io.ReadCloser
	ContentType   string
	ContentLength int64
}

// BackendClient is the portal's only dependency on the outside world: the
// REST API that owns authentication, request storage, status transitions,
// user management and file storage. Every authenticated call that receives
// a 401 returns domain.ErrUnauthorized so the caller can tear the session
// down before doing anything else.
type BackendClient interface {
	// Token exchanges credentials for a bearer token (form-encoded POST).
	Token(ctx context.Context, username, password string) (string, error)

	SubmitRequest(ctx context.Context, token string, in SubmitRequestInput) (*SubmitResult, error)
	MyRequests(ctx context.Context, token string) ([]domain.Request, error)
	HistoryRequests(ctx context.Context, token string) ([]domain.Request, error)

	PendingSummary(ctx context.Context, token string) (*domain.PendingSummary, error)
	AdminRequests(ctx context.Context, token string, typ domain.RequestType) ([]domain.Request, error)
	// UpdateStatus sends only the desired target status; approved/paid dates
	// are backend-assigned and obtained by re-fetching.
	UpdateStatus(ctx context.Context, token, requestID string, target domain.Status) error
	PaidRecords(ctx context.Context, token string) ([]domain.Request, error)

	ListUsers(ctx context.Context, token string) ([]domain.User, error)
	CreateUser(ctx context.Context, token string, in CreateUserInput) error
	DeleteUser(ctx context.Context, token, username string) error

	Attachment(ctx context.Context, token, filename string) (*Attachment, error)

	// Health probes the backend's own health endpoint.
	Health(ctx context.Context) error
}
