package domain

import (
	"errors"
	"fmt"
	"strings"
)

// RequestType distinguishes the two kinds of staff requests.
type RequestType string

const (
	TypeReimbursement RequestType = "reimbursement"
	TypePayment       RequestType = "payment"
)

// ValidType reports whether t is one of the two known request types.
func ValidType(t string) bool {
	return t == string(TypeReimbursement) || t == string(TypePayment)
}

// Status represents the review lifecycle state of a request.
// Statuses are assigned by the backend; the portal only asks for transitions.
type Status string

const (
	StatusPending  Status = "Pending"
	StatusApproved Status = "Approved"
	StatusRejected Status = "Rejected"
	StatusPaid     Status = "Paid"
)

// validTransitions defines the allowed state machine transitions.
var validTransitions = map[Status][]Status{
	StatusPending:  {StatusApproved, StatusRejected},
	StatusApproved: {StatusPaid},
}

var ErrInvalidTransition = errors.New("invalid status transition")
var ErrRequestNotFound = errors.New("request not found")
var ErrUnauthorized = errors.New("session expired or unauthorized")
var ErrForbidden = errors.New("access forbidden")
var ErrInvalidCredentials = errors.New("invalid credentials")
var ErrBackendUnavailable = errors.New("backend unavailable")

// APIError is a non-2xx backend response other than 401. Message carries the
// backend's "detail" field verbatim when present, so the user sees the same
// wording the server chose.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("backend responded %d: %s", e.Status, e.Message)
}

// CanTransitionTo reports whether a transition from current status to next is valid.
func (s Status) CanTransitionTo(next Status) bool {
	for _, allowed := range validTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Terminal reports whether no further transition is possible.
func (s Status) Terminal() bool {
	return len(validTransitions[s]) == 0
}

// Action is an admin affordance shown next to a request in the review queue.
// Target is the status the action asks the backend to apply.
type Action struct {
	Label  string
	Target Status
}

// Actions returns the admin actions available for a request in status s,
// in display order. Terminal statuses have none.
func (s Status) Actions() []Action {
	switch s {
	case StatusPending:
		return []Action{
			{Label: "Approve", Target: StatusApproved},
			{Label: "Reject", Target: StatusRejected},
		}
	case StatusApproved:
		return []Action{
			{Label: "Mark Paid", Target: StatusPaid},
		}
	default:
		return nil
	}
}

// Request is a staff expense or payment request as the backend reports it.
// The portal never mutates one locally; every transition is requested from
// the backend and the authoritative record re-fetched afterwards.
type Request struct {
	Type         RequestType `json:"type"`
	RequestID    string      `json:"request_id"`
	StaffName    string      `json:"staffName"`
	Date         string      `json:"date"`
	Description  string      `json:"description,omitempty"`
	Purpose      string      `json:"purpose,omitempty"`
	Amount       float64     `json:"amount"`
	Status       Status      `json:"status"`
	ProofName    string      `json:"proof_filename,omitempty"`
	ProofFullURL string      `json:"proof_full_url,omitempty"`
	CreatedAt    string      `json:"created_at,omitempty"`
	ApprovedDate string      `json:"approved_date,omitempty"`
	PaidDate     string      `json:"paid_date,omitempty"`
}

// Text returns the free-text justification. Reimbursements carry a
// description, payments a purpose; older payment records may have either.
func (r Request) Text() string {
	if r.Type == TypeReimbursement {
		return r.Description
	}
	if r.Purpose != "" {
		return r.Purpose
	}
	return r.Description
}

// HasProof reports whether an attachment affordance should be shown.
func (r Request) HasProof() bool {
	return r.ProofName != "" || r.ProofFullURL != ""
}

// Badge is the styled status label for a request.
type Badge struct {
	Label string
	Class string
}

// StatusBadge returns the display badge for a request. Paid requests embed
// the formatted paid date, e.g. "Complete (07/03/2024)".
func (r Request) StatusBadge() Badge {
	switch r.Status {
	case StatusPaid:
		return Badge{Label: "Complete (" + FormatDisplayDate(r.PaidDate) + ")", Class: "status-paid"}
	case StatusApproved:
		return Badge{Label: string(StatusApproved), Class: "status-approved"}
	case StatusRejected:
		return Badge{Label: string(StatusRejected), Class: "status-rejected"}
	default:
		return Badge{Label: string(r.Status), Class: "status-pending"}
	}
}

// FormatDisplayDate converts an ISO-like date ("2024-03-07" or
// "2024-03-07T12:00:00Z") to D/M/Y form ("07/03/2024"). Anything it cannot
// parse is returned unchanged; empty input yields empty output.
func FormatDisplayDate(s string) string {
	if s == "" {
		return ""
	}
	if i := strings.IndexByte(s, 'T'); i >= 0 {
		s = s[:i]
	}
	parts := strings.Split(s, "-")
	if len(parts) != 3 {
		return s
	}
	return parts[2] + "/" + parts[1] + "/" + parts[0]
}

// PendingSummary is the admin-only aggregate of unreviewed requests by type.
type PendingSummary struct {
	ReimbursementPending int `json:"reimbursement_pending"`
	PaymentPending       int `json:"payment_pending"`
}

// Total is the combined pending count across both types.
func (p PendingSummary) Total() int {
	return p.ReimbursementPending + p.PaymentPending
}
