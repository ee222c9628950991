package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/dynamicfusion/expense-portal/internal/api/middleware"
	"github.com/dynamicfusion/expense-portal/internal/core/domain"
	"github.com/dynamicfusion/expense-portal/internal/core/ports"
	"github.com/dynamicfusion/expense-portal/internal/core/service"
)

// PageHandler renders the portal's read-only views. Every view re-fetches
// from the backend on navigation; nothing is cached between page loads.
type PageHandler struct {
	backend ports.BackendClient
	views   *service.RequestViewService
	logger  zerolog.Logger
}

func NewPageHandler(backend ports.BackendClient, views *service.RequestViewService, logger zerolog.Logger) *PageHandler {
	return &PageHandler{backend: backend, views: views, logger: logger}
}

// --- Page data ---

type homeAdminData struct {
	Page
	Summary *domain.PendingSummary
}

type homeStaffData struct {
	Page
	Reimbursements Table
	Payments       Table
}

type listData struct {
	Page
	TypeParam string
	Table     Table
}

type submitData struct {
	Page
	Heading    string
	FormAction string
	TextLabel  string
	TypeParam  string
	Table      Table
}

type detailData struct {
	Page
	Row          service.RowView
	ApprovedDate string
	ShowActions  bool
	BackURL      string
}

// Home is the landing page. Admins get the pending-counts overview; staff
// get their own pending requests, one table per type.
func (h *PageHandler) Home(c echo.Context) error {
	sess := middleware.CurrentSession(c)
	if sess.IsAdmin() {
		return h.adminHome(c, sess)
	}
	return h.staffHome(c, sess)
}

func (h *PageHandler) adminHome(c echo.Context, sess *domain.Session) error {
	data := homeAdminData{Page: NewPage(c, "Home", "home")}

	// The summary is advisory. If it cannot be fetched the page still
	// renders, minus the cards; only a dead token aborts.
	summary, err := h.backend.PendingSummary(c.Request().Context(), sess.Token)
	switch {
	case errors.Is(err, domain.ErrUnauthorized):
		return err
	case err != nil:
		h.logger.Warn().Err(err).Msg("pending summary unavailable")
	default:
		data.Summary = summary
	}
	return c.Render(http.StatusOK, "home", data)
}

func (h *PageHandler) staffHome(c echo.Context, sess *domain.Session) error {
	records, err := h.backend.MyRequests(c.Request().Context(), sess.Token)
	if errors.Is(err, domain.ErrUnauthorized) {
		return err
	}

	data := homeStaffData{Page: NewPage(c, "Home", "home")}
	data.Reimbursements = h.table(records, err, service.ListSpec{Type: domain.TypeReimbursement, PendingOnly: true}, tableOpts{})
	data.Payments = h.table(records, err, service.ListSpec{Type: domain.TypePayment, PendingOnly: true}, tableOpts{})
	return c.Render(http.StatusOK, "home", data)
}

// SubmitPage renders a submission form plus the caller's own requests of
// that type. Routed once per type.
func (h *PageHandler) SubmitPage(c echo.Context) error {
	sess := middleware.CurrentSession(c)
	typ := submitPageType(c.Path())

	records, err := h.backend.MyRequests(c.Request().Context(), sess.Token)
	if errors.Is(err, domain.ErrUnauthorized) {
		return err
	}

	data := submitData{
		Page:       NewPage(c, submitTitle(typ), string(typ)),
		Heading:    submitTitle(typ),
		FormAction: "/" + string(typ),
		TextLabel:  "Description",
		TypeParam:  string(typ),
	}
	if typ == domain.TypePayment {
		data.TextLabel = "Purpose"
	}
	data.Table = h.table(records, err, service.ListSpec{Type: typ}, tableOpts{})
	return c.Render(http.StatusOK, "submit", data)
}

// History shows the caller's full request history, one type at a time.
func (h *PageHandler) History(c echo.Context) error {
	sess := middleware.CurrentSession(c)
	typ := queryType(c)

	records, err := h.backend.HistoryRequests(c.Request().Context(), sess.Token)
	if errors.Is(err, domain.ErrUnauthorized) {
		return err
	}

	data := listData{Page: NewPage(c, "History", "history"), TypeParam: string(typ)}
	data.Table = h.table(records, err, service.ListSpec{Type: typ, History: true}, tableOpts{ShowStaff: sess.IsAdmin()})
	return c.Render(http.StatusOK, "history", data)
}

// Review is the admin queue. Only the selected type is fetched; switching
// tabs is a fresh request.
func (h *PageHandler) Review(c echo.Context) error {
	sess := middleware.CurrentSession(c)
	typ := queryType(c)

	records, err := h.backend.AdminRequests(c.Request().Context(), sess.Token, typ)
	if errors.Is(err, domain.ErrUnauthorized) {
		return err
	}

	data := listData{Page: NewPage(c, "Review", "review"), TypeParam: string(typ)}
	data.Table = h.table(records, err, service.ListSpec{Type: typ, WithActions: true}, tableOpts{ShowStaff: true})
	return c.Render(http.StatusOK, "review", data)
}

// Records lists fully paid requests with their paid dates.
func (h *PageHandler) Records(c echo.Context) error {
	sess := middleware.CurrentSession(c)
	typ := queryType(c)

	records, err := h.backend.PaidRecords(c.Request().Context(), sess.Token)
	if errors.Is(err, domain.ErrUnauthorized) {
		return err
	}

	data := listData{Page: NewPage(c, "Paid Records", "records"), TypeParam: string(typ)}
	data.Table = h.table(records, err, service.ListSpec{Type: typ, WithPaidDate: true}, tableOpts{ShowStaff: true})
	return c.Render(http.StatusOK, "records", data)
}

// Detail shows one request in full. The record is located in the viewer's
// own reachable lists, so staff cannot inspect other people's requests by
// guessing identifiers.
func (h *PageHandler) Detail(c echo.Context) error {
	sess := middleware.CurrentSession(c)
	id := c.Param("id")

	record, err := h.findRecord(c, sess, id)
	if err != nil {
		return err
	}

	spec := service.ListSpec{Type: record.Type, WithPaidDate: true}
	if sess.IsAdmin() {
		spec.WithActions = true
	}
	rows := h.views.Project([]domain.Request{record}, spec)
	if len(rows) == 0 {
		return domain.ErrRequestNotFound
	}

	data := detailData{
		Page:         NewPage(c, "Request "+rows[0].RequestID, ""),
		Row:          rows[0],
		ApprovedDate: domain.FormatDisplayDate(record.ApprovedDate),
		ShowActions:  sess.IsAdmin() && len(rows[0].Actions) > 0,
		BackURL:      backURL(c),
	}
	return c.Render(http.StatusOK, "detail", data)
}

func (h *PageHandler) findRecord(c echo.Context, sess *domain.Session, id string) (domain.Request, error) {
	ctx := c.Request().Context()

	var lists [][]domain.Request
	if sess.IsAdmin() {
		for _, typ := range []domain.RequestType{domain.TypeReimbursement, domain.TypePayment} {
			records, err := h.backend.AdminRequests(ctx, sess.Token, typ)
			if err != nil {
				return domain.Request{}, err
			}
			lists = append(lists, records)
		}
		paid, err := h.backend.PaidRecords(ctx, sess.Token)
		if err != nil {
			return domain.Request{}, err
		}
		lists = append(lists, paid)
	} else {
		records, err := h.backend.HistoryRequests(ctx, sess.Token)
		if err != nil {
			return domain.Request{}, err
		}
		lists = append(lists, records)
	}

	for _, records := range lists {
		if record, err := h.views.Find(records, id); err == nil {
			return record, nil
		}
	}
	return domain.Request{}, domain.ErrRequestNotFound
}

// --- helpers ---

type tableOpts struct {
	ShowStaff bool
}

// table projects records into a rendered table. A fetch error other than a
// dead token becomes an inline placeholder so the rest of the page stays
// usable.
func (h *PageHandler) table(records []domain.Request, fetchErr error, spec service.ListSpec, opts tableOpts) Table {
	t := Table{
		TypeParam:    string(spec.Type),
		ShowStaff:    opts.ShowStaff,
		ShowPaidDate: spec.WithPaidDate,
		ShowActions:  spec.WithActions,
		Empty:        spec.EmptyMessage(),
	}
	if fetchErr != nil {
		h.logger.Warn().Err(fetchErr).Str("type", string(spec.Type)).Msg("request list unavailable")
		t.LoadFailed = true
		return t
	}
	t.Rows = h.views.Project(records, spec)
	return t
}

// queryType reads the ?type= tab selector, defaulting to reimbursement.
func queryType(c echo.Context) domain.RequestType {
	if t := c.QueryParam("type"); domain.ValidType(t) {
		return domain.RequestType(t)
	}
	return domain.TypeReimbursement
}

func submitPageType(path string) domain.RequestType {
	if strings.HasPrefix(path, "/payment") {
		return domain.TypePayment
	}
	return domain.TypeReimbursement
}

func submitTitle(typ domain.RequestType) string {
	if typ == domain.TypePayment {
		return "Payment Request"
	}
	return "Reimbursement"
}

// backURL returns a safe same-site return target taken from ?from=.
func backURL(c echo.Context) string {
	from := c.QueryParam("from")
	if strings.HasPrefix(from, "/") && !strings.HasPrefix(from, "//") {
		return from
	}
	return "/history"
}
