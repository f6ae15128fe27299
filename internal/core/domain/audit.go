package domain

import "time"

// AuditImportance grades how noteworthy a security event is. High-importance
// events (backup-code use, forced invalidation) are retained longer and feed
// alerting; low-importance ones are routine activity.
type AuditImportance string

const (
	ImportanceLow      AuditImportance = "low"
	ImportanceStandard AuditImportance = "standard"
	ImportanceHigh     AuditImportance = "high"
)

// Audit actions recorded by the authority.
const (
	AuditLogin            = "login"
	AuditLoginFailed      = "login_failed"
	AuditFederatedLogin   = "federated_login"
	AuditAccountLinked    = "account_linked"
	AuditAccountCreated   = "account_created"
	AuditBackupCodeUsed   = "backup_code_used"
	AuditLogout           = "logout"
	AuditSessionRevoked   = "session_revoked"
	AuditTwoFactorFailure = "two_factor_failed"
)

// AuditEvent is an append-only, best-effort record of a security-relevant
// event. Recording one must never fail or delay the operation that emitted it.
type AuditEvent struct {
	ID            string
	UserID        string
	Action        string
	Entity        string
	Metadata      map[string]string
	Importance    AuditImportance
	RetentionDays int
	CreatedAt     time.Time
}
