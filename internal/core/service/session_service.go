package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"github.com/inkwell/content-platform/internal/core/domain"
	"github.com/inkwell/content-platform/internal/core/ports"
)

// tokenClaims is the JWT wire form of domain.SessionClaims.
type tokenClaims struct {
	jwt.RegisteredClaims
	Email            string   `json:"email"`
	Name             string   `json:"name,omitempty"`
	Bio              string   `json:"bio,omitempty"`
	AvatarURL        string   `json:"avatar_url,omitempty"`
	SecurityStamp    string   `json:"stamp"`
	RoleName         string   `json:"role,omitempty"`
	RoleLevel        int      `json:"role_level,omitempty"`
	Permissions      []string `json:"permissions,omitempty"`
	HasPassword      bool     `json:"has_password"`
	TwoFactorEnabled bool     `json:"two_factor"`
	RememberMe       bool     `json:"remember_me,omitempty"`
}

// SessionService issues and revalidates bearer session tokens. Validity is
// re-derived from a live account fetch on every request instead of a
// server-side session table: rotating the account's security stamp revokes
// every outstanding token at once, with no blacklist.
type SessionService struct {
	accounts      ports.AccountRepository
	resolver      ports.RoleResolver
	secret        []byte
	sessionTTL    time.Duration
	rememberMeTTL time.Duration
	log           zerolog.Logger
}

func NewSessionService(
	accounts ports.AccountRepository,
	resolver ports.RoleResolver,
	jwtSecret string,
	sessionTTL, rememberMeTTL time.Duration,
	log zerolog.Logger,
) *SessionService {
	if sessionTTL <= 0 {
		sessionTTL = 24 * time.Hour
	}
	if rememberMeTTL <= 0 {
		rememberMeTTL = 7 * 24 * time.Hour
	}
	return &SessionService{
		accounts:      accounts,
		resolver:      resolver,
		secret:        []byte(jwtSecret),
		sessionTTL:    sessionTTL,
		rememberMeTTL: rememberMeTTL,
		log:           log,
	}
}

// Mint issues the initial token for a freshly authenticated principal.
func (s *SessionService) Mint(principal *domain.Principal, rememberMe bool) (string, *domain.SessionClaims, error) {
	claims := &domain.SessionClaims{
		AccountID:        principal.ID,
		Email:            principal.Email,
		Name:             principal.Name,
		Bio:              principal.Bio,
		AvatarURL:        principal.AvatarURL,
		SecurityStamp:    principal.SecurityStamp,
		Role:             principal.Role,
		HasPassword:      principal.HasPassword,
		TwoFactorEnabled: principal.TwoFactorEnabled,
		RememberMe:       rememberMe,
		ExpiresAt:        s.nextExpiry(rememberMe),
	}

	token, err := s.sign(claims)
	if err != nil {
		return "", nil, err
	}
	return token, claims, nil
}

// Parse decodes and signature-checks a token. Any malformed, tampered, or
// expired token yields domain.ErrSessionInvalidated; the account store is
// not consulted here.
func (s *SessionService) Parse(token string) (*domain.SessionClaims, error) {
	var tc tokenClaims
	parsed, err := jwt.ParseWithClaims(token, &tc, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return s.secret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, domain.ErrSessionInvalidated
	}

	expiresAt := time.Time{}
	if tc.ExpiresAt != nil {
		expiresAt = tc.ExpiresAt.Time
	}
	return &domain.SessionClaims{
		AccountID:     tc.Subject,
		Email:         tc.Email,
		Name:          tc.Name,
		Bio:           tc.Bio,
		AvatarURL:     tc.AvatarURL,
		SecurityStamp: tc.SecurityStamp,
		Role: domain.RoleSnapshot{
			Name:        tc.RoleName,
			Level:       tc.RoleLevel,
			Permissions: tc.Permissions,
		},
		HasPassword:      tc.HasPassword,
		TwoFactorEnabled: tc.TwoFactorEnabled,
		RememberMe:       tc.RememberMe,
		ExpiresAt:        expiresAt,
	}, nil
}

// Revalidate checks the claims against current account state and returns a
// re-signed token with a recomputed sliding expiry. A missing account, a
// rotated security stamp, or a banned/suspended status all terminate the
// session; HasPassword and TwoFactorEnabled are informational and refresh
// silently instead of invalidating.
func (s *SessionService) Revalidate(ctx context.Context, claims *domain.SessionClaims) (string, *domain.SessionClaims, error) {
	account, err := s.accounts.FindByID(ctx, claims.AccountID)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			s.log.Debug().Str("account_id", claims.AccountID).Msg("session account missing")
			return "", nil, domain.ErrSessionInvalidated
		}
		return "", nil, fmt.Errorf("find account: %w", err)
	}

	if account.SecurityStamp != claims.SecurityStamp {
		s.log.Debug().Str("account_id", account.ID).Msg("security stamp rotated, session invalidated")
		return "", nil, domain.ErrSessionInvalidated
	}
	if account.Status == domain.StatusBanned || account.Status == domain.StatusSuspended {
		return "", nil, domain.ErrSessionInvalidated
	}

	next := *claims
	next.HasPassword = account.HasPassword()
	next.TwoFactorEnabled = account.TwoFactorEnabled
	next.ExpiresAt = s.nextExpiry(next.RememberMe)

	token, err := s.sign(&next)
	if err != nil {
		return "", nil, err
	}
	return token, &next, nil
}

// Refresh merges the supplied patch into the claims. A signaled role change
// re-resolves permissions and re-snapshots the current security stamp, so the
// role change itself does not force a re-login.
func (s *SessionService) Refresh(ctx context.Context, claims *domain.SessionClaims, patch domain.SessionPatch) (string, *domain.SessionClaims, error) {
	next := *claims
	if patch.Name != nil {
		next.Name = *patch.Name
	}
	if patch.Bio != nil {
		next.Bio = *patch.Bio
	}
	if patch.AvatarURL != nil {
		next.AvatarURL = *patch.AvatarURL
	}

	if patch.RoleChanged {
		account, err := s.accounts.FindByID(ctx, claims.AccountID)
		if err != nil {
			if errors.Is(err, domain.ErrAccountNotFound) {
				return "", nil, domain.ErrSessionInvalidated
			}
			return "", nil, fmt.Errorf("find account: %w", err)
		}
		snapshot, err := s.resolver.Resolve(ctx, account.RoleID)
		if err != nil {
			return "", nil, err
		}
		next.Role = snapshot
		next.SecurityStamp = account.SecurityStamp
	}

	next.ExpiresAt = s.nextExpiry(next.RememberMe)

	token, err := s.sign(&next)
	if err != nil {
		return "", nil, err
	}
	return token, &next, nil
}

func (s *SessionService) sign(claims *domain.SessionClaims) (string, error) {
	now := time.Now().UTC()
	tc := tokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   claims.AccountID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(claims.ExpiresAt),
		},
		Email:            claims.Email,
		Name:             claims.Name,
		Bio:              claims.Bio,
		AvatarURL:        claims.AvatarURL,
		SecurityStamp:    claims.SecurityStamp,
		RoleName:         claims.Role.Name,
		RoleLevel:        claims.Role.Level,
		Permissions:      claims.Role.Permissions,
		HasPassword:      claims.HasPassword,
		TwoFactorEnabled: claims.TwoFactorEnabled,
		RememberMe:       claims.RememberMe,
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, tc).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return token, nil
}

// nextExpiry recomputes the sliding window forward from now. An active
// remember-me session used at least once a week never lapses; an inactive
// one does.
func (s *SessionService) nextExpiry(rememberMe bool) time.Time {
	ttl := s.sessionTTL
	if rememberMe {
		ttl = s.rememberMeTTL
	}
	return time.Now().UTC().Add(ttl)
}
