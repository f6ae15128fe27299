package domain

import (
	"strings"
	"time"
)

// AccountStatus represents the lifecycle state of an account.
type AccountStatus string

const (
	StatusActive    AccountStatus = "active"
	StatusPending   AccountStatus = "pending" // email not yet verified
	StatusSuspended AccountStatus = "suspended"
	StatusBanned    AccountStatus = "banned"
)

// Account is the durable record the authority authenticates against. The
// account store is the single source of truth for SecurityStamp, Status, and
// backup-code consumption; nothing session-related is cached in process.
type Account struct {
	ID           string
	Email        string // unique, stored lowercased
	Name         string
	Bio          string
	AvatarURL    string
	SocialLinks  map[string]string
	PasswordHash string // empty means password login is impossible
	Status       AccountStatus

	// SecurityStamp is rotated whenever all outstanding sessions must be
	// invalidated (password change, 2FA toggle, forced logout). A session
	// token is valid only while its embedded stamp equals this value.
	SecurityStamp string

	TwoFactorEnabled bool
	TwoFactorSecret  string // AES-GCM ciphertext, base64; set only when enabled

	RoleID string // empty means no elevated permissions

	LastLoginAt     *time.Time
	EmailVerifiedAt *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// HasPassword reports whether password login is possible. Always derived from
// the hash being present, never cached from the login method.
func (a *Account) HasPassword() bool {
	return a.PasswordHash != ""
}

// NormalizeEmail lowercases and trims an email for lookup and storage.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// BackupCode is a single-use credential substituting for a TOTP code.
// Once Used is set it is permanently unusable.
type BackupCode struct {
	ID        string
	AccountID string
	CodeHash  string // sha256, hex
	Used      bool
	UsedAt    *time.Time
	CreatedAt time.Time
}

// LinkedIdentity ties an externally verified (provider, subject-id) pair to a
// local account. At most one account per pair; an account may hold several
// linked identities in addition to a password.
type LinkedIdentity struct {
	ID                string
	AccountID         string
	Provider          string
	ProviderSubjectID string
	Email             string
	CreatedAt         time.Time
}
