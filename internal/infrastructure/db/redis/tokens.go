package redis

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dynamicfusion/expense-portal/internal/core/domain"
)

const defaultTokenTTL = 5 * time.Minute

// AttachmentTokenStore mints short-lived capability tokens for attachment
// links, backed by Redis TTL keys.
// Key format: attach:<token> → <session_id>:<filename>
//
// A token is single-filename and single-session: it grants access to exactly
// one proof file through exactly one live session, and disappears on expiry
// without any sweep of ours.
type AttachmentTokenStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewAttachmentTokenStore creates a store wrapping the given Redis client.
// A non-positive ttl falls back to five minutes.
func NewAttachmentTokenStore(client *redis.Client, ttl time.Duration) *AttachmentTokenStore {
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}
	return &AttachmentTokenStore{client: client, ttl: ttl}
}

// Issue mints a token bound to (sessionID, filename).
func (s *AttachmentTokenStore) Issue(ctx context.Context, sessionID, filename string) (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	token := hex.EncodeToString(b)

	if err := s.client.Set(ctx, s.key(token), sessionID+":"+filename, s.ttl).Err(); err != nil {
		return "", fmt.Errorf("issue attachment token: %w", err)
	}
	return token, nil
}

// Redeem validates the token against the requested filename and returns the
// session it was issued for. Unknown, expired, or mismatched tokens are
// forbidden.
func (s *AttachmentTokenStore) Redeem(ctx context.Context, token, filename string) (string, error) {
	val, err := s.client.Get(ctx, s.key(token)).Result()
	if err == redis.Nil {
		return "", domain.ErrForbidden
	}
	if err != nil {
		return "", fmt.Errorf("redeem attachment token: %w", err)
	}

	sessionID, boundName, ok := splitBinding(val)
	if !ok || boundName != filename {
		return "", domain.ErrForbidden
	}
	return sessionID, nil
}

func (s *AttachmentTokenStore) key(token string) string {
	return "attach:" + token
}

// splitBinding separates "<session_id>:<filename>". Session IDs are hex and
// never contain a colon, so the first colon is the divider.
func splitBinding(val string) (sessionID, filename string, ok bool) {
	for i := 0; i < len(val); i++ {
		if val[i] == ':' {
			return val[:i], val[i+1:], i > 0 && i < len(val)-1
		}
	}
	return "", "", false
}
