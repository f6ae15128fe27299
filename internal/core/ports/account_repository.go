package ports

import (
	"context"
	"time"

	"github.com/inkwell/content-platform/internal/core/domain"
)

// AccountRepository defines the account-store operations the authority needs.
// The storage schema itself is owned by the store.
type AccountRepository interface {
	FindByEmail(ctx context.Context, email string) (*domain.Account, error)
	FindByID(ctx context.Context, id string) (*domain.Account, error)
	Create(ctx context.Context, account *domain.Account) (*domain.Account, error)
	// UpdateLastLogin is best-effort bookkeeping; callers tolerate failure.
	UpdateLastLogin(ctx context.Context, id string, at time.Time) error
	// MarkVerified sets EmailVerifiedAt and promotes a pending account to active.
	MarkVerified(ctx context.Context, id string, at time.Time) error
	// RotateSecurityStamp replaces the stamp, invalidating all outstanding
	// sessions on their next revalidation.
	RotateSecurityStamp(ctx context.Context, id string, stamp string) error
}

// BackupCodeRepository manages single-use backup codes.
type BackupCodeRepository interface {
	ListUnused(ctx context.Context, accountID string) ([]domain.BackupCode, error)
	// Consume atomically flips used from false to true. It returns false when
	// another request already consumed the code; only the winner of that race
	// authenticates.
	Consume(ctx context.Context, codeID string, at time.Time) (bool, error)
}

// LinkedIdentityRepository stores federated (provider, subject-id) links.
type LinkedIdentityRepository interface {
	Find(ctx context.Context, provider, subjectID string) (*domain.LinkedIdentity, error)
	Create(ctx context.Context, identity *domain.LinkedIdentity) error
}

// RoleRepository resolves role references.
type RoleRepository interface {
	FindByID(ctx context.Context, id string) (*domain.Role, error)
	FindByName(ctx context.Context, name string) (*domain.Role, error)
}
