package service

import (
	"net/url"
	"strconv"

	"github.com/dynamicfusion/expense-portal/internal/core/domain"
)

// ListSpec parameterizes one list context: which type to keep, whether only
// pending rows are wanted, and which affordances the viewer gets. All five
// list views in the portal are projections of this one descriptor.
type ListSpec struct {
	Type        domain.RequestType
	PendingOnly bool
	// History marks the resolved-requests view, which has its own empty text.
	History bool
	// WithActions adds the admin review actions column.
	WithActions bool
	// WithPaidDate adds the paid-date column used by the paid-records table.
	WithPaidDate bool
}

// RowView is one fully formatted table row. Fields are plain text; escaping
// is the template layer's job and happens on every insertion.
type RowView struct {
	Type         string
	RequestID    string
	StaffName    string
	Date         string
	Text         string
	Amount       string
	Badge        domain.Badge
	HasProof     bool
	ProofName    string
	ProofFullURL string
	// ProofHref is the link for the attachment affordance: the portal's
	// own viewer route when a filename is known, else the backend's
	// fully-qualified URL.
	ProofHref string
	PaidDate     string
	Actions      []domain.Action
}

// RequestViewService turns backend records into display rows. It is pure:
// identical input always produces identical rows.
type RequestViewService struct{}

func NewRequestViewService() *RequestViewService {
	return &RequestViewService{}
}

// Project filters records by the spec and maps the survivors to rows,
// preserving backend order.
func (v *RequestViewService) Project(records []domain.Request, spec ListSpec) []RowView {
	rows := make([]RowView, 0, len(records))
	for _, r := range records {
		if r.Type != spec.Type {
			continue
		}
		if spec.PendingOnly && r.Status != domain.StatusPending {
			continue
		}
		rows = append(rows, v.row(r, spec))
	}
	return rows
}

// Find returns the record with the given backend identifier.
func (v *RequestViewService) Find(records []domain.Request, id string) (domain.Request, error) {
	for _, r := range records {
		if r.RequestID == id && id != "" {
			return r, nil
		}
	}
	return domain.Request{}, domain.ErrRequestNotFound
}

// EmptyMessage is the single placeholder row text for an empty list.
func (spec ListSpec) EmptyMessage() string {
	t := string(spec.Type)
	switch {
	case spec.PendingOnly:
		return "No pending " + t + " requests."
	case spec.WithPaidDate:
		return "No paid " + t + " records found."
	case spec.WithActions:
		return "No " + t + " requests found for this month"
	case spec.History:
		return "No " + t + " history found."
	default:
		return "No " + t + " requests yet"
	}
}

func (v *RequestViewService) row(r domain.Request, spec ListSpec) RowView {
	row := RowView{
		Type:         string(r.Type),
		RequestID:    displayID(r.RequestID),
		StaffName:    r.StaffName,
		Date:         domain.FormatDisplayDate(r.Date),
		Text:         r.Text(),
		Amount:       FormatAmount(r.Amount),
		Badge:        r.StatusBadge(),
		HasProof:     r.HasProof(),
		ProofName:    r.ProofName,
		ProofFullURL: r.ProofFullURL,
		ProofHref:    proofHref(r),
	}
	if spec.WithPaidDate {
		row.PaidDate = domain.FormatDisplayDate(r.PaidDate)
	}
	if spec.WithActions {
		row.Actions = r.Status.Actions()
	}
	return row
}

// FormatAmount renders a monetary value with two decimals. The portal does
// no arithmetic on amounts; this is display formatting only.
func FormatAmount(a float64) string {
	return strconv.FormatFloat(a, 'f', 2, 64)
}

func proofHref(r domain.Request) string {
	if r.ProofName != "" {
		return "/attachments/view/" + url.PathEscape(r.ProofName)
	}
	return r.ProofFullURL
}

func displayID(id string) string {
	if id == "" {
		return "N/A"
	}
	return id
}
