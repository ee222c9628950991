package service

import (
	"reflect"
	"testing"

	"github.com/dynamicfusion/expense-portal/internal/core/domain"
)

func sampleRecords() []domain.Request {
	return []domain.Request{
		{
			Type:        domain.TypeReimbursement,
			RequestID:   "PR0001",
			StaffName:   "alice",
			Date:        "2024-01-05",
			Description: "Taxi",
			Amount:      12.5,
			Status:      domain.StatusPending,
		},
		{
			Type:         domain.TypePayment,
			RequestID:    "PR0002",
			StaffName:    "alice",
			Date:         "2024-02-10",
			Purpose:      "Vendor invoice",
			Amount:       300,
			Status:       domain.StatusApproved,
			ProofName:    "alice_1707550000_invoice.pdf",
			ApprovedDate: "2024-02-11",
		},
		{
			Type:        domain.TypeReimbursement,
			RequestID:   "PR0003",
			StaffName:   "bob",
			Date:        "2024-03-01",
			Description: "Printer ink",
			Amount:      45.99,
			Status:      domain.StatusPaid,
			PaidDate:    "2024-03-07",
		},
		{
			Type:        domain.TypeReimbursement,
			RequestID:   "",
			StaffName:   "bob",
			Date:        "2024-03-02T09:30:00Z",
			Description: "Parking",
			Amount:      8,
			Status:      domain.StatusRejected,
		},
	}
}

func TestProject_FiltersByType(t *testing.T) {
	v := NewRequestViewService()
	rows := v.Project(sampleRecords(), ListSpec{Type: domain.TypePayment})
	if len(rows) != 1 {
		t.Fatalf("expected 1 payment row, got %d", len(rows))
	}
	if rows[0].Text != "Vendor invoice" {
		t.Fatalf("payment row must use the purpose field, got %q", rows[0].Text)
	}
	if !rows[0].HasProof || rows[0].ProofName == "" {
		t.Fatalf("proof affordance missing: %+v", rows[0])
	}
}

func TestProject_PendingOnly(t *testing.T) {
	v := NewRequestViewService()
	rows := v.Project(sampleRecords(), ListSpec{Type: domain.TypeReimbursement, PendingOnly: true})
	if len(rows) != 1 {
		t.Fatalf("expected 1 pending reimbursement, got %d", len(rows))
	}
	if rows[0].RequestID != "PR0001" {
		t.Fatalf("unexpected row: %+v", rows[0])
	}
}

func TestProject_ActionSetMatchesStatus(t *testing.T) {
	v := NewRequestViewService()
	rows := v.Project(sampleRecords(), ListSpec{Type: domain.TypeReimbursement, WithActions: true})
	if len(rows) != 3 {
		t.Fatalf("expected 3 reimbursement rows, got %d", len(rows))
	}

	// Pending: Approve and Reject, never Mark Paid.
	pending := rows[0]
	if len(pending.Actions) != 2 ||
		pending.Actions[0].Target != domain.StatusApproved ||
		pending.Actions[1].Target != domain.StatusRejected {
		t.Fatalf("pending actions wrong: %+v", pending.Actions)
	}

	// Paid and Rejected: label only.
	for _, row := range rows[1:] {
		if len(row.Actions) != 0 {
			t.Fatalf("terminal row must have no actions: %+v", row)
		}
	}
}

func TestProject_ApprovedShowsOnlyMarkPaid(t *testing.T) {
	v := NewRequestViewService()
	rows := v.Project(sampleRecords(), ListSpec{Type: domain.TypePayment, WithActions: true})
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	actions := rows[0].Actions
	if len(actions) != 1 || actions[0].Label != "Mark Paid" || actions[0].Target != domain.StatusPaid {
		t.Fatalf("approved actions wrong: %+v", actions)
	}
}

func TestProject_PaidBadgeEmbedsFormattedDate(t *testing.T) {
	v := NewRequestViewService()
	rows := v.Project(sampleRecords(), ListSpec{Type: domain.TypeReimbursement, WithPaidDate: true})
	var paid *RowView
	for i := range rows {
		if rows[i].RequestID == "PR0003" {
			paid = &rows[i]
		}
	}
	if paid == nil {
		t.Fatalf("paid row missing")
	}
	if paid.Badge.Label != "Complete (07/03/2024)" {
		t.Fatalf("badge label = %q", paid.Badge.Label)
	}
	if paid.PaidDate != "07/03/2024" {
		t.Fatalf("paid date column = %q", paid.PaidDate)
	}
}

func TestProject_Formatting(t *testing.T) {
	v := NewRequestViewService()
	rows := v.Project(sampleRecords(), ListSpec{Type: domain.TypeReimbursement})

	if rows[0].Amount != "12.50" {
		t.Fatalf("amount = %q", rows[0].Amount)
	}
	if rows[0].Date != "05/01/2024" {
		t.Fatalf("date = %q", rows[0].Date)
	}
	// Time suffix stripped before D/M/Y conversion.
	if rows[2].Date != "02/03/2024" {
		t.Fatalf("date with time suffix = %q", rows[2].Date)
	}
	// Absent backend identifier renders as N/A.
	if rows[2].RequestID != "N/A" {
		t.Fatalf("missing id rendered as %q", rows[2].RequestID)
	}
	if rows[0].HasProof {
		t.Fatalf("row without proof must not show an attachment affordance")
	}
}

func TestProject_ProofHref(t *testing.T) {
	v := NewRequestViewService()
	records := []domain.Request{
		{
			Type:      domain.TypeReimbursement,
			RequestID: "PR0010",
			Date:      "2024-04-01",
			Status:    domain.StatusPending,
			ProofName: "maria receipt.pdf",
		},
		{
			Type:         domain.TypeReimbursement,
			RequestID:    "PR0011",
			Date:         "2024-04-02",
			Status:       domain.StatusPending,
			ProofFullURL: "http://backend:8000/files/maria_receipt2.pdf",
		},
		{
			Type:      domain.TypeReimbursement,
			RequestID: "PR0012",
			Date:      "2024-04-03",
			Status:    domain.StatusPending,
		},
	}
	rows := v.Project(records, ListSpec{Type: domain.TypeReimbursement})
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}

	// Known filename goes through the portal's own viewer route, escaped.
	if rows[0].ProofHref != "/attachments/view/maria%20receipt.pdf" {
		t.Fatalf("filename href = %q", rows[0].ProofHref)
	}
	// Backend URL without a filename is linked as-is.
	if !rows[1].HasProof || rows[1].ProofHref != "http://backend:8000/files/maria_receipt2.pdf" {
		t.Fatalf("full-url row = %+v", rows[1])
	}
	if rows[2].HasProof || rows[2].ProofHref != "" {
		t.Fatalf("proof-less row must have no href: %+v", rows[2])
	}
}

func TestProject_Idempotent(t *testing.T) {
	v := NewRequestViewService()
	spec := ListSpec{Type: domain.TypeReimbursement, WithActions: true, WithPaidDate: true}
	first := v.Project(sampleRecords(), spec)
	second := v.Project(sampleRecords(), spec)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("projection not idempotent:\n%+v\n%+v", first, second)
	}
}

func TestProject_EmptyInput(t *testing.T) {
	v := NewRequestViewService()
	rows := v.Project(nil, ListSpec{Type: domain.TypePayment})
	if len(rows) != 0 {
		t.Fatalf("expected no rows, got %d", len(rows))
	}
}

func TestListSpec_EmptyMessage(t *testing.T) {
	cases := []struct {
		spec ListSpec
		want string
	}{
		{ListSpec{Type: domain.TypeReimbursement, PendingOnly: true}, "No pending reimbursement requests."},
		{ListSpec{Type: domain.TypePayment, WithPaidDate: true}, "No paid payment records found."},
		{ListSpec{Type: domain.TypeReimbursement, WithActions: true}, "No reimbursement requests found for this month"},
		{ListSpec{Type: domain.TypeReimbursement, History: true}, "No reimbursement history found."},
		{ListSpec{Type: domain.TypePayment}, "No payment requests yet"},
	}
	for _, tc := range cases {
		if got := tc.spec.EmptyMessage(); got != tc.want {
			t.Fatalf("EmptyMessage(%+v) = %q, want %q", tc.spec, got, tc.want)
		}
	}
}

func TestFind(t *testing.T) {
	v := NewRequestViewService()
	records := sampleRecords()

	r, err := v.Find(records, "PR0002")
	if err != nil {
		t.Fatalf("Find returned error: %v", err)
	}
	if r.Type != domain.TypePayment {
		t.Fatalf("wrong record: %+v", r)
	}

	if _, err := v.Find(records, "PR9999"); err != domain.ErrRequestNotFound {
		t.Fatalf("expected ErrRequestNotFound, got %v", err)
	}
	// Empty id must not match records that also lack an id.
	if _, err := v.Find(records, ""); err != domain.ErrRequestNotFound {
		t.Fatalf("empty id must not match, got %v", err)
	}
}
