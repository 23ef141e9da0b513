package auth

import (
	"context"
	"time"
)

// GuestClientID marks identities that failed (or skipped) verification.
const GuestClientID = "guest"

// Claims carries the Salesforce-specific attributes of an identity.
type Claims struct {
	// UserID and OrgID come from the Salesforce userinfo response
	// (user_id / organization_id).
	UserID string
	OrgID  string
	// Username is preferred_username, falling back to sub.
	Username string
	// InstanceURL is the Salesforce instance this identity was verified
	// against and the one API calls should target.
	InstanceURL string
	// SalesforceToken is the access token for Salesforce API calls.
	// Empty for guests.
	SalesforceToken string
}

// Identity is the immutable per-request result of token verification.
// Verification never fails outright: an unverifiable request yields a
// guest identity so protocol-level discovery still works, and tools that
// need Salesforce access reject the guest themselves.
type Identity struct {
	// Token is the credential presented by the caller, empty for guests.
	Token         string
	ClientID      string
	Scopes        []string
	ExpiresAt     time.Time
	Claims        Claims
	Authenticated bool
}

// GuestIdentity returns the degraded identity used when no valid token is
// presented.
func GuestIdentity(instanceURL string) *Identity {
	return &Identity{
		ClientID: GuestClientID,
		Claims: Claims{
			InstanceURL: instanceURL,
		},
	}
}

// IsGuest reports whether this identity failed or skipped verification.
func (i *Identity) IsGuest() bool {
	return i == nil || !i.Authenticated
}

type identityContextKey struct{}

// ContextWithIdentity attaches an identity to a request context.
func ContextWithIdentity(ctx context.Context, identity *Identity) context.Context {
	return context.WithValue(ctx, identityContextKey{}, identity)
}

// IdentityFromContext extracts the identity placed by the middleware.
// The second return is false when no middleware ran (e.g. stdio transport).
func IdentityFromContext(ctx context.Context) (*Identity, bool) {
	identity, ok := ctx.Value(identityContextKey{}).(*Identity)
	return identity, ok && identity != nil
}
