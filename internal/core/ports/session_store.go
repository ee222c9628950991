package ports

import "github.com/dynamicfusion/expense-portal/internal/core/domain"

// SessionEvent describes a change to the session store.
type SessionEvent string

const (
	SessionCreated   SessionEvent = "created"
	SessionDestroyed SessionEvent = "destroyed"
)

// SessionStore holds the in-memory sessions of signed-in browsers. It is
// the single source of truth for "is this cookie logged in, and as what
// role". Implementations assign the session ID on Create.
type SessionStore interface {
	Create(sess *domain.Session) (string, error)
	// Get returns the live session for id, or false when unknown or expired.
	Get(id string) (*domain.Session, bool)
	Delete(id string)
	// OnChange registers fn to be invoked after every create and delete.
	// Registration is not safe for concurrent use; do it at startup.
	OnChange(fn func(id string, ev SessionEvent))
}
