package domain

import "time"

// Principal is the validated representation of "who is making this request",
// returned by every successful authentication and consumed by the rest of the
// platform.
type Principal struct {
	ID               string
	Email            string
	Name             string
	Bio              string
	AvatarURL        string
	SecurityStamp    string
	Role             RoleSnapshot
	HasPassword      bool
	TwoFactorEnabled bool
}

// SessionClaims is the bearer token payload. It is never persisted: every
// request reconstructs a fresh instance from the presented token and
// revalidates it against live account state.
type SessionClaims struct {
	AccountID        string
	Email            string
	Name             string
	Bio              string
	AvatarURL        string
	SecurityStamp    string
	Role             RoleSnapshot
	HasPassword      bool
	TwoFactorEnabled bool
	RememberMe       bool
	ExpiresAt        time.Time
}

// Principal rebuilds the outward-facing principal from the claims snapshot.
func (c *SessionClaims) Principal() *Principal {
	return &Principal{
		ID:               c.AccountID,
		Email:            c.Email,
		Name:             c.Name,
		Bio:              c.Bio,
		AvatarURL:        c.AvatarURL,
		SecurityStamp:    c.SecurityStamp,
		Role:             c.Role,
		HasPassword:      c.HasPassword,
		TwoFactorEnabled: c.TwoFactorEnabled,
	}
}

// SessionPatch is a client-initiated partial session update. A nil field
// means "leave unchanged"; a non-nil field carries the new value. RoleChanged
// signals that permissions must be re-resolved and the embedded security
// stamp re-snapshotted, so a role change does not force a re-login.
type SessionPatch struct {
	Name        *string
	Bio         *string
	AvatarURL   *string
	RoleChanged bool
}

// PasswordLogin carries one password authentication attempt. TOTPCode and
// BackupCode are optional second factors supplied alongside the password.
type PasswordLogin struct {
	Email      string
	Password   string
	TOTPCode   string
	BackupCode string
	RememberMe bool
}

// FederatedLogin carries an externally verified identity assertion. The
// upstream OAuth/OIDC handshake is an opaque collaborator; by the time this
// struct exists the email has been verified by the provider.
type FederatedLogin struct {
	Provider   string
	SubjectID  string
	Email      string
	Name       string
	AvatarURL  string
	RememberMe bool
}
