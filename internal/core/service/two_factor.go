package service

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
	"github.com/rs/zerolog"

	"github.com/inkwell/content-platform/internal/core/domain"
	"github.com/inkwell/content-platform/internal/core/ports"
	"github.com/inkwell/content-platform/internal/pkg/cryptox"
)

const (
	totpPeriod = 30
	totpSkew   = 1
)

// TwoFactorVerifier validates a second factor for an account with 2FA
// enabled: a single-use backup code or a time-based one-time code.
type TwoFactorVerifier struct {
	backupCodes ports.BackupCodeRepository
	audit       ports.AuditRecorder
	secretKey   []byte // AES key sealing stored TOTP secrets; nil when unconfigured
	log         zerolog.Logger
}

// NewTwoFactorVerifier wires the verifier. A nil secretKey is tolerated at
// construction; TOTP verification then reports domain.ErrTwoFactorConfig.
func NewTwoFactorVerifier(
	backupCodes ports.BackupCodeRepository,
	audit ports.AuditRecorder,
	secretKey []byte,
	log zerolog.Logger,
) *TwoFactorVerifier {
	return &TwoFactorVerifier{
		backupCodes: backupCodes,
		audit:       audit,
		secretKey:   secretKey,
		log:         log,
	}
}

// Verify checks the supplied factors against the account. The backup code is
// tried first when present, so a user who lost their authenticator still gets
// in even if they also mistyped a TOTP code. Returns nil on success,
// domain.ErrInvalidTwoFactor when every supplied factor is wrong, and
// domain.ErrTwoFactorConfig for crypto or configuration faults.
func (v *TwoFactorVerifier) Verify(ctx context.Context, account *domain.Account, totpCode, backupCode string) error {
	if backupCode != "" {
		ok, err := v.verifyBackupCode(ctx, account, backupCode)
		if err != nil {
			return err
		}
		if ok {
			return nil
		}
	}

	if totpCode != "" {
		return v.verifyTOTP(account, totpCode)
	}

	return domain.ErrInvalidTwoFactor
}

// verifyBackupCode compares the code hash against every unused code and
// atomically consumes the first match. Losing the consume race counts as a
// miss: only one request may authenticate with a given code.
func (v *TwoFactorVerifier) verifyBackupCode(ctx context.Context, account *domain.Account, code string) (bool, error) {
	codes, err := v.backupCodes.ListUnused(ctx, account.ID)
	if err != nil {
		return false, fmt.Errorf("list backup codes: %w", err)
	}

	hash := HashBackupCode(code)
	for _, candidate := range codes {
		if subtle.ConstantTimeCompare([]byte(candidate.CodeHash), []byte(hash)) != 1 {
			continue
		}

		consumed, err := v.backupCodes.Consume(ctx, candidate.ID, time.Now().UTC())
		if err != nil {
			return false, fmt.Errorf("consume backup code: %w", err)
		}
		if !consumed {
			return false, nil
		}

		// Backup codes are a weaker factor; their use is noteworthy.
		v.audit.Record(domain.AuditEvent{
			UserID:     account.ID,
			Action:     domain.AuditBackupCodeUsed,
			Entity:     "backup_code",
			Metadata:   map[string]string{"code_id": candidate.ID},
			Importance: domain.ImportanceHigh,
		})
		return true, nil
	}

	return false, nil
}

func (v *TwoFactorVerifier) verifyTOTP(account *domain.Account, code string) error {
	if len(v.secretKey) == 0 || account.TwoFactorSecret == "" {
		v.log.Error().Str("account_id", account.ID).Msg("totp verification unavailable: missing sealing key or secret")
		return domain.ErrTwoFactorConfig
	}

	secret, err := cryptox.DecryptString(account.TwoFactorSecret, v.secretKey)
	if err != nil {
		v.log.Error().Err(err).Str("account_id", account.ID).Msg("totp secret decryption failed")
		return domain.ErrTwoFactorConfig
	}

	valid, err := totp.ValidateCustom(strings.TrimSpace(code), secret, time.Now().UTC(), totp.ValidateOpts{
		Period:    totpPeriod,
		Skew:      totpSkew,
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
	})
	if err != nil {
		v.log.Error().Err(err).Str("account_id", account.ID).Msg("totp validation failed")
		return domain.ErrTwoFactorConfig
	}
	if !valid {
		return domain.ErrInvalidTwoFactor
	}
	return nil
}

// HashBackupCode normalizes and hashes a backup code for storage and lookup.
// Codes are compared only by hash; the raw code is shown to the user once.
func HashBackupCode(code string) string {
	normalized := strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(code), "-", ""))
	sum := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(sum[:])
}
