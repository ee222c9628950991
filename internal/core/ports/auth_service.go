package ports

import (
	"context"

	"github.com/dynamicfusion/expense-portal/internal/core/domain"
)

// AuthService signs browsers in and out against the backend token endpoint.
type AuthService interface {
	// Login returns the new session ID on success and makes no state change
	// on failure.
	Login(ctx context.Context, username, password string) (string, *domain.Session, error)
	Logout(sessionID string)
}
