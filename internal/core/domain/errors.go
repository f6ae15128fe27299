package domain

import "errors"

var (
	// ErrInvalidCredentials covers unknown email, no password set, and wrong
	// password alike, so responses cannot be used to enumerate accounts.
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountBanned      = errors.New("account banned")
	ErrAccountSuspended   = errors.New("account suspended")
	ErrUnverified         = errors.New("account email not verified")
	// ErrTwoFactorRequired is distinct from ErrInvalidCredentials so the
	// client can prompt for a code without re-asking the password.
	ErrTwoFactorRequired = errors.New("two-factor code required")
	ErrInvalidTwoFactor  = errors.New("invalid two-factor code")
	// ErrTwoFactorConfig marks an operational fault in the 2FA crypto or
	// configuration. It is never folded into ErrInvalidTwoFactor: the former
	// pages an operator, the latter tells a user to retype their code.
	ErrTwoFactorConfig = errors.New("two-factor verification misconfigured")
	// ErrSessionInvalidated forces a full re-authentication. Not retryable.
	ErrSessionInvalidated = errors.New("session invalidated")
	ErrAccountNotFound    = errors.New("account not found")
	ErrAccountExists      = errors.New("account already exists")
	ErrIdentityNotFound   = errors.New("linked identity not found")
	ErrRoleNotFound       = errors.New("role not found")
	ErrLoginRateLimited   = errors.New("too many login attempts")
)

// UnverifiedError carries the email so the caller can offer a verification
// resend. errors.Is(err, ErrUnverified) matches it.
type UnverifiedError struct {
	Email string
}

func (e *UnverifiedError) Error() string { return "account email not verified" }

func (e *UnverifiedError) Unwrap() error { return ErrUnverified }
