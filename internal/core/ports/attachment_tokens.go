package ports

import "context"

// AttachmentTokenStore mints and redeems the short-lived capability tokens
// embedded in attachment links. A token is bound to one filename and one
// session and expires on its own; redeeming with the wrong filename or after
// expiry fails.
type AttachmentTokenStore interface {
	Issue(ctx context.Context, sessionID, filename string) (string, error)
	// Redeem returns the session ID the token was issued for.
	Redeem(ctx context.Context, token, filename string) (string, error)
}
