package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/inkwell/content-platform/internal/core/domain"
	"github.com/inkwell/content-platform/internal/core/ports"
)

// LoginLimiter bounds password attempts per email (Redis fixed window).
// Limiter outages fail open: availability beats strictness here, bcrypt and
// the status gate still stand.
type LoginLimiter interface {
	Allow(ctx context.Context, email string) (bool, error)
	RecordFailure(ctx context.Context, email string) error
	Reset(ctx context.Context, email string) error
}

// AuthConfig carries the policy switches the verifier honors.
type AuthConfig struct {
	RequireEmailVerification bool
	AllowAccountLinking      bool
	DefaultRoleName          string
}

// AuthService is the credential verifier and federated identity linker.
type AuthService struct {
	accounts   ports.AccountRepository
	identities ports.LinkedIdentityRepository
	roles      ports.RoleRepository
	resolver   ports.RoleResolver
	twoFactor  *TwoFactorVerifier
	limiter    LoginLimiter
	audit      ports.AuditRecorder
	cfg        AuthConfig
	log        zerolog.Logger
}

func NewAuthService(
	accounts ports.AccountRepository,
	identities ports.LinkedIdentityRepository,
	roles ports.RoleRepository,
	resolver ports.RoleResolver,
	twoFactor *TwoFactorVerifier,
	limiter LoginLimiter,
	audit ports.AuditRecorder,
	cfg AuthConfig,
	log zerolog.Logger,
) *AuthService {
	return &AuthService{
		accounts:   accounts,
		identities: identities,
		roles:      roles,
		resolver:   resolver,
		twoFactor:  twoFactor,
		limiter:    limiter,
		audit:      audit,
		cfg:        cfg,
		log:        log,
	}
}

// AuthenticateWithPassword validates (email, password) and an optional second
// factor, returning a fully populated principal or one of the domain failure
// kinds. The status gate runs before any password comparison so a banned user
// cannot learn whether their password is still correct.
func (s *AuthService) AuthenticateWithPassword(ctx context.Context, login domain.PasswordLogin) (*domain.Principal, error) {
	email := domain.NormalizeEmail(login.Email)

	allowed, err := s.limiter.Allow(ctx, email)
	if err != nil {
		s.log.Warn().Err(err).Msg("login limiter unavailable, proceeding")
	} else if !allowed {
		s.auditFailure(email, "", "rate_limited")
		return nil, domain.ErrLoginRateLimited
	}

	account, err := s.accounts.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			s.recordFailedAttempt(ctx, email)
			s.auditFailure(email, "", "unknown_email")
			return nil, domain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("find account: %w", err)
	}

	if err := statusGate(account.Status); err != nil {
		s.auditFailure(email, account.ID, string(account.Status))
		return nil, err
	}

	if s.cfg.RequireEmailVerification && account.Status == domain.StatusPending {
		s.auditFailure(email, account.ID, "unverified")
		return nil, &domain.UnverifiedError{Email: email}
	}

	// Absent hash and wrong password surface identically; only the audit
	// trail distinguishes them.
	if !account.HasPassword() {
		s.recordFailedAttempt(ctx, email)
		s.auditFailure(email, account.ID, "no_password")
		return nil, domain.ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(login.Password)) != nil {
		s.recordFailedAttempt(ctx, email)
		s.auditFailure(email, account.ID, "wrong_password")
		return nil, domain.ErrInvalidCredentials
	}

	if account.TwoFactorEnabled {
		if login.TOTPCode == "" && login.BackupCode == "" {
			s.auditFailure(email, account.ID, "two_factor_required")
			return nil, domain.ErrTwoFactorRequired
		}
		if err := s.twoFactor.Verify(ctx, account, login.TOTPCode, login.BackupCode); err != nil {
			if errors.Is(err, domain.ErrInvalidTwoFactor) {
				s.recordFailedAttempt(ctx, email)
				s.audit.Record(domain.AuditEvent{
					UserID:     account.ID,
					Action:     domain.AuditTwoFactorFailure,
					Entity:     "account",
					Metadata:   map[string]string{"email": email},
					Importance: domain.ImportanceStandard,
				})
			}
			return nil, err
		}
	}

	now := time.Now().UTC()
	if err := s.accounts.UpdateLastLogin(ctx, account.ID, now); err != nil {
		s.log.Warn().Err(err).Str("account_id", account.ID).Msg("last login update failed")
	}
	if err := s.limiter.Reset(ctx, email); err != nil {
		s.log.Warn().Err(err).Msg("login limiter reset failed")
	}

	principal, err := s.principalFor(ctx, account)
	if err != nil {
		return nil, err
	}

	s.audit.Record(domain.AuditEvent{
		UserID:     account.ID,
		Action:     domain.AuditLogin,
		Entity:     "account",
		Metadata:   map[string]string{"method": "password"},
		Importance: domain.ImportanceLow,
	})
	return principal, nil
}

// AuthenticateWithFederatedIdentity reconciles an externally verified
// (provider, subject-id, email) assertion with a local account, linking or
// creating as needed. There is no password or 2FA step on this path.
func (s *AuthService) AuthenticateWithFederatedIdentity(ctx context.Context, login domain.FederatedLogin) (*domain.Principal, error) {
	email := domain.NormalizeEmail(login.Email)

	account, err := s.accounts.FindByEmail(ctx, email)
	switch {
	case err == nil:
		account, err = s.linkExisting(ctx, account, login, email)
		if err != nil {
			return nil, err
		}
	case errors.Is(err, domain.ErrAccountNotFound):
		account, err = s.provisionAccount(ctx, login, email)
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("find account: %w", err)
	}

	if err := s.accounts.UpdateLastLogin(ctx, account.ID, time.Now().UTC()); err != nil {
		s.log.Warn().Err(err).Str("account_id", account.ID).Msg("last login update failed")
	}

	principal, err := s.principalFor(ctx, account)
	if err != nil {
		return nil, err
	}

	s.audit.Record(domain.AuditEvent{
		UserID:     account.ID,
		Action:     domain.AuditFederatedLogin,
		Entity:     "account",
		Metadata:   map[string]string{"provider": login.Provider, "email": email},
		Importance: domain.ImportanceLow,
	})
	return principal, nil
}

// linkExisting re-applies the status gate, attaches the provider identity if
// not yet linked, and activates a pending account: the provider has already
// verified the email.
func (s *AuthService) linkExisting(ctx context.Context, account *domain.Account, login domain.FederatedLogin, email string) (*domain.Account, error) {
	if err := statusGate(account.Status); err != nil {
		s.auditFailure(email, account.ID, string(account.Status))
		return nil, err
	}

	_, err := s.identities.Find(ctx, login.Provider, login.SubjectID)
	if errors.Is(err, domain.ErrIdentityNotFound) {
		if !s.cfg.AllowAccountLinking {
			s.auditFailure(email, account.ID, "linking_disabled")
			return nil, domain.ErrInvalidCredentials
		}
		identity := &domain.LinkedIdentity{
			AccountID:         account.ID,
			Provider:          login.Provider,
			ProviderSubjectID: login.SubjectID,
			Email:             email,
		}
		if err := s.identities.Create(ctx, identity); err != nil {
			return nil, fmt.Errorf("link identity: %w", err)
		}
		s.audit.Record(domain.AuditEvent{
			UserID:     account.ID,
			Action:     domain.AuditAccountLinked,
			Entity:     "linked_identity",
			Metadata:   map[string]string{"provider": login.Provider},
			Importance: domain.ImportanceStandard,
		})
	} else if err != nil {
		return nil, fmt.Errorf("find identity: %w", err)
	}

	if account.Status == domain.StatusPending {
		now := time.Now().UTC()
		if err := s.accounts.MarkVerified(ctx, account.ID, now); err != nil {
			return nil, fmt.Errorf("mark verified: %w", err)
		}
		account.Status = domain.StatusActive
		account.EmailVerifiedAt = &now
	}
	return account, nil
}

// provisionAccount creates a new active account for a first federated
// sign-in, assigning the default unprivileged role when it exists.
func (s *AuthService) provisionAccount(ctx context.Context, login domain.FederatedLogin, email string) (*domain.Account, error) {
	now := time.Now().UTC()

	roleID := ""
	if s.cfg.DefaultRoleName != "" {
		role, err := s.roles.FindByName(ctx, s.cfg.DefaultRoleName)
		if err == nil {
			roleID = role.ID
		} else if !errors.Is(err, domain.ErrRoleNotFound) {
			return nil, fmt.Errorf("find default role: %w", err)
		}
	}

	account, err := s.accounts.Create(ctx, &domain.Account{
		Email:           email,
		Name:            login.Name,
		AvatarURL:       login.AvatarURL,
		Status:          domain.StatusActive,
		SecurityStamp:   uuid.NewString(),
		RoleID:          roleID,
		EmailVerifiedAt: &now,
		CreatedAt:       now,
		UpdatedAt:       now,
	})
	if err != nil {
		return nil, fmt.Errorf("create account: %w", err)
	}

	if err := s.identities.Create(ctx, &domain.LinkedIdentity{
		AccountID:         account.ID,
		Provider:          login.Provider,
		ProviderSubjectID: login.SubjectID,
		Email:             email,
	}); err != nil {
		return nil, fmt.Errorf("link identity: %w", err)
	}

	s.audit.Record(domain.AuditEvent{
		UserID:     account.ID,
		Action:     domain.AuditAccountCreated,
		Entity:     "account",
		Metadata:   map[string]string{"provider": login.Provider},
		Importance: domain.ImportanceStandard,
	})
	return account, nil
}

func (s *AuthService) principalFor(ctx context.Context, account *domain.Account) (*domain.Principal, error) {
	snapshot, err := s.resolver.Resolve(ctx, account.RoleID)
	if err != nil {
		return nil, err
	}
	return &domain.Principal{
		ID:               account.ID,
		Email:            account.Email,
		Name:             account.Name,
		Bio:              account.Bio,
		AvatarURL:        account.AvatarURL,
		SecurityStamp:    account.SecurityStamp,
		Role:             snapshot,
		HasPassword:      account.HasPassword(),
		TwoFactorEnabled: account.TwoFactorEnabled,
	}, nil
}

// statusGate blocks banned and suspended accounts on every login path.
func statusGate(status domain.AccountStatus) error {
	switch status {
	case domain.StatusBanned:
		return domain.ErrAccountBanned
	case domain.StatusSuspended:
		return domain.ErrAccountSuspended
	}
	return nil
}

func (s *AuthService) recordFailedAttempt(ctx context.Context, email string) {
	if err := s.limiter.RecordFailure(ctx, email); err != nil {
		s.log.Warn().Err(err).Msg("login limiter record failed")
	}
}

func (s *AuthService) auditFailure(email, accountID, reason string) {
	s.audit.Record(domain.AuditEvent{
		UserID:     accountID,
		Action:     domain.AuditLoginFailed,
		Entity:     "account",
		Metadata:   map[string]string{"email": email, "reason": reason},
		Importance: domain.ImportanceStandard,
	})
}
