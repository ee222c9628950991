package handler

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/dynamicfusion/expense-portal/internal/core/domain"
	"github.com/dynamicfusion/expense-portal/internal/core/ports"
)

type stubTokenStore struct {
	issueFn  func(ctx context.Context, sessionID, filename string) (string, error)
	redeemFn func(ctx context.Context, token, filename string) (string, error)
}

func (s *stubTokenStore) Issue(ctx context.Context, sessionID, filename string) (string, error) {
	return s.issueFn(ctx, sessionID, filename)
}

func (s *stubTokenStore) Redeem(ctx context.Context, token, filename string) (string, error) {
	return s.redeemFn(ctx, token, filename)
}

type stubSessions struct {
	sessions map[string]*domain.Session
}

func (s *stubSessions) Create(sess *domain.Session) (string, error) { return "", nil }
func (s *stubSessions) Get(id string) (*domain.Session, bool) {
	sess, ok := s.sessions[id]
	return sess, ok
}
func (s *stubSessions) Delete(id string) {}
func (s *stubSessions) OnChange(fn func(id string, ev ports.SessionEvent)) {}

func TestAttachmentView_IssuesTokenAndRedirects(t *testing.T) {
	tokens := &stubTokenStore{
		issueFn: func(ctx context.Context, sessionID, filename string) (string, error) {
			if sessionID != "sess-1" || filename != "receipt.pdf" {
				t.Fatalf("unexpected binding: %s %s", sessionID, filename)
			}
			return "cap123", nil
		},
	}
	e, _ := newTestEcho()
	req := httptest.NewRequest(http.MethodGet, "/attachments/view/receipt.pdf", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("session", staffSession())
	c.SetParamNames("filename")
	c.SetParamValues("receipt.pdf")

	h := NewAttachmentHandler(&stubBackend{}, &stubSessions{}, tokens, zerolog.Nop())
	if err := h.View(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	loc := rec.Header().Get("Location")
	if loc != "/attachments/receipt.pdf?st=cap123" {
		t.Fatalf("unexpected redirect: %q", loc)
	}
}

func TestAttachmentFetch_StreamsWithValidToken(t *testing.T) {
	backend := &stubBackend{
		attachmentFn: func(ctx context.Context, token, filename string) (*ports.Attachment, error) {
			if token != "tok-1" || filename != "receipt.pdf" {
				t.Fatalf("unexpected fetch: %s %s", token, filename)
			}
			return &ports.Attachment{
				Content:       io.NopCloser(strings.NewReader("pdf-bytes")),
				ContentType:   "application/pdf",
				ContentLength: 9,
			}, nil
		},
	}
	tokens := &stubTokenStore{
		redeemFn: func(ctx context.Context, token, filename string) (string, error) {
			if token != "cap123" {
				return "", domain.ErrForbidden
			}
			return "sess-1", nil
		},
	}
	sessions := &stubSessions{sessions: map[string]*domain.Session{"sess-1": staffSession()}}

	e, _ := newTestEcho()
	req := httptest.NewRequest(http.MethodGet, "/attachments/receipt.pdf?st=cap123", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("filename")
	c.SetParamValues("receipt.pdf")

	h := NewAttachmentHandler(backend, sessions, tokens, zerolog.Nop())
	if err := h.Fetch(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK || rec.Body.String() != "pdf-bytes" {
		t.Fatalf("unexpected response: %d %q", rec.Code, rec.Body.String())
	}
	if got := rec.Header().Get(echo.HeaderContentType); got != "application/pdf" {
		t.Fatalf("unexpected content type %q", got)
	}
}

func TestAttachmentFetch_DeniedOnBadToken(t *testing.T) {
	tokens := &stubTokenStore{
		redeemFn: func(ctx context.Context, token, filename string) (string, error) {
			return "", domain.ErrForbidden
		},
	}
	e, _ := newTestEcho()
	req := httptest.NewRequest(http.MethodGet, "/attachments/receipt.pdf?st=stale", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("filename")
	c.SetParamValues("receipt.pdf")

	h := NewAttachmentHandler(&stubBackend{}, &stubSessions{}, tokens, zerolog.Nop())
	err := h.Fetch(c)
	if !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestAttachmentFetch_DeniedWhenSessionGone(t *testing.T) {
	tokens := &stubTokenStore{
		redeemFn: func(ctx context.Context, token, filename string) (string, error) {
			return "sess-gone", nil
		},
	}
	sessions := &stubSessions{sessions: map[string]*domain.Session{}}

	e, _ := newTestEcho()
	req := httptest.NewRequest(http.MethodGet, "/attachments/receipt.pdf?st=cap123", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("filename")
	c.SetParamValues("receipt.pdf")

	h := NewAttachmentHandler(&stubBackend{}, sessions, tokens, zerolog.Nop())
	err := h.Fetch(c)
	if !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}
