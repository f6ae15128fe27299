package handler

import (
	"time"

	"github.com/inkwell/content-platform/internal/core/domain"
)

type loginRequest struct {
	Email      string `json:"email" validate:"required,email"`
	Password   string `json:"password" validate:"required"`
	TOTPCode   string `json:"totp_code,omitempty"`
	BackupCode string `json:"backup_code,omitempty"`
	RememberMe bool   `json:"remember_me"`
}

type federatedLoginRequest struct {
	Provider   string `json:"provider" validate:"required"`
	SubjectID  string `json:"subject_id" validate:"required"`
	Email      string `json:"email" validate:"required,email"`
	Name       string `json:"name,omitempty"`
	AvatarURL  string `json:"avatar_url,omitempty"`
	RememberMe bool   `json:"remember_me"`
}

type principalResponse struct {
	ID               string   `json:"id"`
	Email            string   `json:"email"`
	Name             string   `json:"name,omitempty"`
	Bio              string   `json:"bio,omitempty"`
	AvatarURL        string   `json:"avatar_url,omitempty"`
	RoleName         string   `json:"role_name,omitempty"`
	RoleLevel        int      `json:"role_level"`
	Permissions      []string `json:"permissions,omitempty"`
	HasPassword      bool     `json:"has_password"`
	TwoFactorEnabled bool     `json:"two_factor_enabled"`
}

type sessionResponse struct {
	Token     string            `json:"token"`
	ExpiresAt time.Time         `json:"expires_at"`
	Principal principalResponse `json:"principal"`
}

// sessionPatchRequest mirrors domain.SessionPatch: a nil field means "leave
// unchanged", so the wire format distinguishes absent from empty.
type sessionPatchRequest struct {
	Name        *string `json:"name,omitempty"`
	Bio         *string `json:"bio,omitempty"`
	AvatarURL   *string `json:"avatar_url,omitempty"`
	RoleChanged bool    `json:"role_changed,omitempty"`
}

func toPrincipalResponse(p *domain.Principal) principalResponse {
	return principalResponse{
		ID:               p.ID,
		Email:            p.Email,
		Name:             p.Name,
		Bio:              p.Bio,
		AvatarURL:        p.AvatarURL,
		RoleName:         p.Role.Name,
		RoleLevel:        p.Role.Level,
		Permissions:      p.Role.Permissions,
		HasPassword:      p.HasPassword,
		TwoFactorEnabled: p.TwoFactorEnabled,
	}
}
