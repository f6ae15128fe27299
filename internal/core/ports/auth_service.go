package ports

import (
	"context"

	"github.com/inkwell/content-platform/internal/core/domain"
)

// AuthService authenticates a principal via password or a federated identity
// assertion. Every terminal outcome, success or failure, is audit-logged.
type AuthService interface {
	AuthenticateWithPassword(ctx context.Context, login domain.PasswordLogin) (*domain.Principal, error)
	AuthenticateWithFederatedIdentity(ctx context.Context, login domain.FederatedLogin) (*domain.Principal, error)
}

// RoleResolver maps an account's role reference to the snapshot embedded in
// session claims. An empty roleID yields the zero snapshot, not an error.
type RoleResolver interface {
	Resolve(ctx context.Context, roleID string) (domain.RoleSnapshot, error)
}
