package utils

import (
	"strings"
	"testing"

	"golang.org/x/crypto/openpgp"
	"golang.org/x/crypto/openpgp/armor"
)

func TestHMACSignAndVerify(t *testing.T) {
	key := "test-receipt-key"
	data := "abc123|1|2|2025-01-01|1000.00"

	sig := HMACSign(key, data)
	if sig == "" {
		t.Fatal("expected a non-empty signature")
	}

	if !HMACVerify(key, data, sig) {
		t.Error("expected signature to verify")
	}
}

func TestHMACVerifyRejectsTampering(t *testing.T) {
	key := "test-receipt-key"
	data := "abc123|1|2|2025-01-01|1000.00"
	sig := HMACSign(key, data)

	if HMACVerify(key, "abc123|1|2|2025-01-01|9999.00", sig) {
		t.Error("expected verification to fail for altered data")
	}
	if HMACVerify("another-key", data, sig) {
		t.Error("expected verification to fail for a different key")
	}
	if HMACVerify(key, data, sig+"x") {
		t.Error("expected verification to fail for an altered signature")
	}
}

func TestHMACSignIsDeterministic(t *testing.T) {
	key := "test-receipt-key"
	data := "payload"

	if HMACSign(key, data) != HMACSign(key, data) {
		t.Error("expected identical signatures for identical input")
	}
	if HMACSign(key, data) == HMACSign(key, "other") {
		t.Error("expected different signatures for different data")
	}
}

func TestPGPEncryptDecryptRoundtrip(t *testing.T) {
	entity, err := openpgp.NewEntity("Test", "", "test@example.com", nil)
	if err != nil {
		t.Fatalf("failed to create entity: %v", err)
	}

	// Armor the private key; this also self-signs the identities
	var privBuf strings.Builder
	privWriter, err := armor.Encode(&privBuf, openpgp.PrivateKeyType, nil)
	if err != nil {
		t.Fatalf("failed to create private key writer: %v", err)
	}
	if err := entity.SerializePrivate(privWriter, nil); err != nil {
		t.Fatalf("failed to serialize private key: %v", err)
	}
	privWriter.Close()

	// Armor the public key
	var pubBuf strings.Builder
	pubWriter, err := armor.Encode(&pubBuf, openpgp.PublicKeyType, nil)
	if err != nil {
		t.Fatalf("failed to create public key writer: %v", err)
	}
	if err := entity.Serialize(pubWriter); err != nil {
		t.Fatalf("failed to serialize public key: %v", err)
	}
	pubWriter.Close()

	statement := "Billing statement for Jane Doe\nAlgebra  2025-01-01 - 2025-02-01  1000.00  pending\n"

	encrypted, err := PGPEncrypt(statement, pubBuf.String())
	if err != nil {
		t.Fatalf("failed to encrypt: %v", err)
	}
	if strings.Contains(encrypted, "Jane Doe") {
		t.Error("encrypted output must not contain the plaintext")
	}

	decrypted, err := PGPDecrypt(encrypted, privBuf.String())
	if err != nil {
		t.Fatalf("failed to decrypt: %v", err)
	}
	if decrypted != statement {
		t.Errorf("decrypted data does not match: got %q", decrypted)
	}
}

func TestGenerateSecureToken(t *testing.T) {
	token, err := GenerateSecureToken(32)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if token == "" {
		t.Fatal("expected a non-empty token")
	}

	other, err := GenerateSecureToken(32)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if token == other {
		t.Error("expected tokens to differ")
	}
}
