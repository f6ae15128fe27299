package cryptox

import (
	"crypto/rand"
	"errors"
	"testing"
)

func testKey(t *testing.T) []byte {
	t.Helper()
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		t.Fatalf("rand: %v", err)
	}
	return key
}

func TestEncryptDecrypt_RoundTrip(t *testing.T) {
	key := testKey(t)

	sealed, err := EncryptString("JBSWY3DPEHPK3PXP", key)
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	if sealed == "JBSWY3DPEHPK3PXP" {
		t.Fatalf("ciphertext equals plaintext")
	}

	plain, err := DecryptString(sealed, key)
	if err != nil {
		t.Fatalf("decrypt: %v", err)
	}
	if plain != "JBSWY3DPEHPK3PXP" {
		t.Fatalf("round trip mismatch: %q", plain)
	}
}

func TestEncrypt_NoncesDiffer(t *testing.T) {
	key := testKey(t)

	a, err := EncryptString("secret", key)
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	b, err := EncryptString("secret", key)
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	if a == b {
		t.Fatalf("expected distinct ciphertexts for repeated encryption")
	}
}

func TestDecrypt_WrongKey(t *testing.T) {
	sealed, err := EncryptString("secret", testKey(t))
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}

	if _, err := DecryptString(sealed, testKey(t)); !errors.Is(err, ErrInvalidCiphertext) {
		t.Fatalf("expected ErrInvalidCiphertext, got %v", err)
	}
}

func TestDecrypt_Garbage(t *testing.T) {
	key := testKey(t)

	for _, blob := range []string{"", "not base64!!!", "AAAA"} {
		if _, err := DecryptString(blob, key); !errors.Is(err, ErrInvalidCiphertext) {
			t.Fatalf("blob %q: expected ErrInvalidCiphertext, got %v", blob, err)
		}
	}
}
