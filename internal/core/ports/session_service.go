package ports

import (
	"context"

	"github.com/inkwell/content-platform/internal/core/domain"
)

// SessionService mints, parses, and continuously revalidates bearer session
// tokens. Tokens move through Minted → Valid(n) → Valid(n+1) → ... and
// terminate by expiry or invalidation; there is no server-side session store.
type SessionService interface {
	// Mint issues the initial token after a successful authentication.
	Mint(principal *domain.Principal, rememberMe bool) (string, *domain.SessionClaims, error)
	// Parse decodes and signature-checks a presented token without touching
	// the account store.
	Parse(token string) (*domain.SessionClaims, error)
	// Revalidate checks the claims against live account state, silently
	// refreshes informational fields, recomputes the sliding expiry, and
	// returns a re-signed token. Stamp mismatch, missing account, or a
	// banned/suspended status yield domain.ErrSessionInvalidated.
	Revalidate(ctx context.Context, claims *domain.SessionClaims) (string, *domain.SessionClaims, error)
	// Refresh merges a client-supplied patch into the claims without
	// re-authenticating, re-resolving permissions when a role change is
	// signaled.
	Refresh(ctx context.Context, claims *domain.SessionClaims, patch domain.SessionPatch) (string, *domain.SessionClaims, error)
}
