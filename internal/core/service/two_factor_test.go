package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/inkwell/content-platform/internal/core/domain"
)

func TestTwoFactor_UnconfiguredKey(t *testing.T) {
	verifier := NewTwoFactorVerifier(newStubBackupCodes(), &recordingAudit{}, nil, zerolog.Nop())
	account := &domain.Account{ID: "acc-1", TwoFactorEnabled: true, TwoFactorSecret: "sealed"}

	if err := verifier.Verify(context.Background(), account, "123456", ""); !errors.Is(err, domain.ErrTwoFactorConfig) {
		t.Fatalf("expected ErrTwoFactorConfig without a sealing key, got %v", err)
	}
}

func TestTwoFactor_MissingSecret(t *testing.T) {
	key := make([]byte, 32)
	verifier := NewTwoFactorVerifier(newStubBackupCodes(), &recordingAudit{}, key, zerolog.Nop())
	account := &domain.Account{ID: "acc-1", TwoFactorEnabled: true}

	if err := verifier.Verify(context.Background(), account, "123456", ""); !errors.Is(err, domain.ErrTwoFactorConfig) {
		t.Fatalf("expected ErrTwoFactorConfig without a stored secret, got %v", err)
	}
}

func TestTwoFactor_UndecryptableSecret(t *testing.T) {
	key := make([]byte, 32)
	verifier := NewTwoFactorVerifier(newStubBackupCodes(), &recordingAudit{}, key, zerolog.Nop())
	account := &domain.Account{ID: "acc-1", TwoFactorEnabled: true, TwoFactorSecret: "not-a-ciphertext"}

	if err := verifier.Verify(context.Background(), account, "123456", ""); !errors.Is(err, domain.ErrTwoFactorConfig) {
		t.Fatalf("expected ErrTwoFactorConfig for a corrupt secret, got %v", err)
	}
}

func TestHashBackupCode_Normalizes(t *testing.T) {
	base := HashBackupCode("ABCD-2345")
	for _, variant := range []string{"abcd-2345", "ABCD2345", " abcd2345 "} {
		if HashBackupCode(variant) != base {
			t.Fatalf("variant %q must hash identically", variant)
		}
	}
	if HashBackupCode("WXYZ-7890") == base {
		t.Fatalf("distinct codes must not collide")
	}
}
