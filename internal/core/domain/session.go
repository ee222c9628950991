package domain

import "time"

const (
	RoleAdmin = "admin"
	RoleStaff = "staff"
)

// Session is the portal's in-memory record of a signed-in browser. The role
// is decoded from the backend token's claims without signature verification:
// it drives which sections and controls are rendered, nothing more — the
// backend re-checks authorization on every call.
type Session struct {
	ID        string
	Token     string
	Username  string
	Role      string
	CreatedAt time.Time
}

// IsAdmin reports whether admin sections should be rendered.
func (s *Session) IsAdmin() bool {
	return s != nil && s.Role == RoleAdmin
}

// IsStaff reports whether the submission forms should be rendered.
func (s *Session) IsStaff() bool {
	return s != nil && s.Role == RoleStaff
}
