package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/inkwell/content-platform/internal/core/domain"
	"github.com/inkwell/content-platform/internal/core/ports"
)

type roleResolver struct {
	roles ports.RoleRepository
}

// NewRoleResolver returns the resolver that snapshots role state into session
// claims. It is a pure read with no side effects.
func NewRoleResolver(roles ports.RoleRepository) ports.RoleResolver {
	return &roleResolver{roles: roles}
}

// Resolve returns the snapshot for roleID. An empty roleID is the default
// unprivileged state and yields the zero snapshot without touching the store.
func (r *roleResolver) Resolve(ctx context.Context, roleID string) (domain.RoleSnapshot, error) {
	if roleID == "" {
		return domain.RoleSnapshot{}, nil
	}

	role, err := r.roles.FindByID(ctx, roleID)
	if errors.Is(err, domain.ErrRoleNotFound) {
		// Dangling reference after a role deletion; treat as unprivileged.
		return domain.RoleSnapshot{}, nil
	}
	if err != nil {
		return domain.RoleSnapshot{}, fmt.Errorf("resolve role: %w", err)
	}

	return domain.RoleSnapshot{
		Name:        role.Name,
		Level:       role.Level,
		Permissions: role.Permissions,
	}, nil
}
