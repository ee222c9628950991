package service

import (
	"context"
	"errors"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"github.com/dynamicfusion/expense-portal/internal/core/domain"
	"github.com/dynamicfusion/expense-portal/internal/core/ports"
)

type stubBackend struct {
	ports.BackendClient

	tokenFn func(ctx context.Context, username, password string) (string, error)
}

func (b *stubBackend) Token(ctx context.Context, username, password string) (string, error) {
	return b.tokenFn(ctx, username, password)
}

type stubSessionStore struct {
	sessions map[string]*domain.Session
	nextID   int
	events   []ports.SessionEvent
	onChange func(id string, ev ports.SessionEvent)
}

func newStubSessionStore() *stubSessionStore {
	return &stubSessionStore{sessions: make(map[string]*domain.Session)}
}

func (s *stubSessionStore) Create(sess *domain.Session) (string, error) {
	s.nextID++
	id := "sess-" + string(rune('0'+s.nextID))
	sess.ID = id
	s.sessions[id] = sess
	s.events = append(s.events, ports.SessionCreated)
	if s.onChange != nil {
		s.onChange(id, ports.SessionCreated)
	}
	return id, nil
}

func (s *stubSessionStore) Get(id string) (*domain.Session, bool) {
	sess, ok := s.sessions[id]
	return sess, ok
}

func (s *stubSessionStore) Delete(id string) {
	if _, ok := s.sessions[id]; !ok {
		return
	}
	delete(s.sessions, id)
	s.events = append(s.events, ports.SessionDestroyed)
	if s.onChange != nil {
		s.onChange(id, ports.SessionDestroyed)
	}
}

func (s *stubSessionStore) OnChange(fn func(id string, ev ports.SessionEvent)) {
	s.onChange = fn
}

func signedToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString([]byte("backend-secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func TestAuthService_Login_Success(t *testing.T) {
	token := signedToken(t, jwt.MapClaims{"sub": "alice", "role": domain.RoleStaff})
	backend := &stubBackend{tokenFn: func(_ context.Context, username, password string) (string, error) {
		if username != "alice" || password != "pw" {
			return "", domain.ErrInvalidCredentials
		}
		return token, nil
	}}
	store := newStubSessionStore()
	svc := NewAuthService(backend, store, zerolog.Nop())

	id, sess, err := svc.Login(context.Background(), "alice", "pw")
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	if id == "" {
		t.Fatalf("expected session id")
	}
	if sess.Username != "alice" || sess.Role != domain.RoleStaff {
		t.Fatalf("unexpected session claims: %+v", sess)
	}
	if sess.Token != token {
		t.Fatalf("session must hold the backend token verbatim")
	}
	if _, ok := store.Get(id); !ok {
		t.Fatalf("session not stored")
	}
}

func TestAuthService_Login_BadCredentials(t *testing.T) {
	backend := &stubBackend{tokenFn: func(context.Context, string, string) (string, error) {
		return "", domain.ErrInvalidCredentials
	}}
	store := newStubSessionStore()
	svc := NewAuthService(backend, store, zerolog.Nop())

	if _, _, err := svc.Login(context.Background(), "alice", "wrong"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if len(store.sessions) != 0 {
		t.Fatalf("failed login must not create a session")
	}
}

func TestAuthService_Login_EmptyInput(t *testing.T) {
	svc := NewAuthService(&stubBackend{}, newStubSessionStore(), zerolog.Nop())
	if _, _, err := svc.Login(context.Background(), "", "pw"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthService_Login_UndecodableToken(t *testing.T) {
	backend := &stubBackend{tokenFn: func(context.Context, string, string) (string, error) {
		return "not-a-jwt", nil
	}}
	store := newStubSessionStore()
	svc := NewAuthService(backend, store, zerolog.Nop())

	if _, _, err := svc.Login(context.Background(), "alice", "pw"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if len(store.sessions) != 0 {
		t.Fatalf("undecodable token must not create a session")
	}
}

func TestAuthService_Login_MissingClaims(t *testing.T) {
	token := signedToken(t, jwt.MapClaims{"sub": "alice"}) // no role
	backend := &stubBackend{tokenFn: func(context.Context, string, string) (string, error) {
		return token, nil
	}}
	svc := NewAuthService(backend, newStubSessionStore(), zerolog.Nop())

	if _, _, err := svc.Login(context.Background(), "alice", "pw"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthService_Logout(t *testing.T) {
	token := signedToken(t, jwt.MapClaims{"sub": "bob", "role": domain.RoleAdmin})
	backend := &stubBackend{tokenFn: func(context.Context, string, string) (string, error) {
		return token, nil
	}}
	store := newStubSessionStore()
	svc := NewAuthService(backend, store, zerolog.Nop())

	id, _, err := svc.Login(context.Background(), "bob", "pw")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}

	svc.Logout(id)
	if _, ok := store.Get(id); ok {
		t.Fatalf("session survived logout")
	}

	// Idempotent for unknown IDs.
	svc.Logout(id)
	svc.Logout("")
}
