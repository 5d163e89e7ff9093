package auth

import (
	"testing"
)

func TestHashAPIKey(t *testing.T) {
	hash, err := HashAPIKey("test-api-key-123")
	if err != nil {
		t.Fatalf("HashAPIKey() error = %v", err)
	}

	if hash == "" {
		t.Fatal("HashAPIKey() returned empty hash")
	}

	// bcrypt hashes start with $2a$ or $2b$
	if hash[0] != '$' {
		t.Errorf("HashAPIKey() hash does not start with $, got %q", hash[:4])
	}
}

func TestVerifyAPIKey_Correct(t *testing.T) {
	hash, err := HashAPIKey("correct-key")
	if err != nil {
		t.Fatalf("HashAPIKey() error = %v", err)
	}

	if err := VerifyAPIKey(hash, "correct-key"); err != nil {
		t.Errorf("VerifyAPIKey() with correct key returned error: %v", err)
	}
}

func TestVerifyAPIKey_Incorrect(t *testing.T) {
	hash, err := HashAPIKey("correct-key")
	if err != nil {
		t.Fatalf("HashAPIKey() error = %v", err)
	}

	if err := VerifyAPIKey(hash, "wrong-key"); err == nil {
		t.Error("VerifyAPIKey() with wrong key returned nil error")
	}
}

func TestHashAPIKey_DifferentHashesForSameInput(t *testing.T) {
	hash1, _ := HashAPIKey("same-key")
	hash2, _ := HashAPIKey("same-key")

	if hash1 == hash2 {
		t.Error("HashAPIKey() produced identical hashes for same input (bcrypt should use random salt)")
	}
}
