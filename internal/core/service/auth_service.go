package service

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"github.com/dynamicfusion/expense-portal/internal/core/domain"
	"github.com/dynamicfusion/expense-portal/internal/core/ports"
)

// AuthService implements login and logout against the backend token endpoint.
type AuthService struct {
	backend  ports.BackendClient
	sessions ports.SessionStore
	logger   zerolog.Logger
}

func NewAuthService(backend ports.BackendClient, sessions ports.SessionStore, logger zerolog.Logger) *AuthService {
	return &AuthService{backend: backend, sessions: sessions, logger: logger}
}

// Login exchanges credentials for a bearer token, decodes the role and
// username claims, and creates a session. On any failure no session exists.
//
// The claims are read with ParseUnverified: the portal has no signing key
// and does not want one. The decoded role is a rendering hint only — the
// backend independently authorizes every privileged call.
func (s *AuthService) Login(ctx context.Context, username, password string) (string, *domain.Session, error) {
	if username == "" || password == "" {
		return "", nil, domain.ErrInvalidCredentials
	}

	token, err := s.backend.Token(ctx, username, password)
	if err != nil {
		return "", nil, err
	}

	role, sub, err := decodeClaims(token)
	if err != nil {
		s.logger.Warn().Err(err).Msg("token claims not decodable")
		return "", nil, domain.ErrInvalidCredentials
	}

	sess := &domain.Session{
		Token:     token,
		Username:  sub,
		Role:      role,
		CreatedAt: time.Now().UTC(),
	}
	id, err := s.sessions.Create(sess)
	if err != nil {
		return "", nil, err
	}

	s.logger.Info().Str("username", sub).Str("role", role).Msg("login")
	return id, sess, nil
}

// Logout destroys the session. Idempotent: unknown IDs are ignored.
func (s *AuthService) Logout(sessionID string) {
	if sessionID == "" {
		return
	}
	s.sessions.Delete(sessionID)
}

// decodeClaims extracts the role and sub claims from the token payload
// without verifying the signature.
func decodeClaims(token string) (role, sub string, err error) {
	claims := jwt.MapClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return "", "", err
	}
	role, _ = claims["role"].(string)
	sub, _ = claims["sub"].(string)
	if role == "" || sub == "" {
		return "", "", errors.New("token missing role or sub claim")
	}
	return role, sub, nil
}
