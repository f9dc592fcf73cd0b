package backup

import (
	"bytes"
	"testing"
)

func TestEncryptDecryptRoundTrip(t *testing.T) {
	plaintext := []byte("SQLite format 3\x00 pretend database contents")

	encrypted, err := Encrypt(plaintext, "correct horse battery staple")
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}

	if bytes.Contains(encrypted, plaintext[:16]) {
		t.Error("ciphertext contains plaintext header")
	}

	decrypted, err := Decrypt(encrypted, "correct horse battery staple")
	if err != nil {
		t.Fatalf("decrypt: %v", err)
	}
	if !bytes.Equal(decrypted, plaintext) {
		t.Errorf("round trip mismatch: got %q, want %q", decrypted, plaintext)
	}
}

func TestDecryptWrongPassphrase(t *testing.T) {
	encrypted, err := Encrypt([]byte("secret"), "passphrase-one")
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}

	if _, err := Decrypt(encrypted, "passphrase-two"); err == nil {
		t.Fatal("expected error decrypting with wrong passphrase")
	}
}

func TestDecryptTamperedCiphertext(t *testing.T) {
	encrypted, err := Encrypt([]byte("secret"), "passphrase")
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}

	encrypted[len(encrypted)-1] ^= 0xFF

	if _, err := Decrypt(encrypted, "passphrase"); err == nil {
		t.Fatal("expected error decrypting tampered data")
	}
}

func TestDecryptTooShort(t *testing.T) {
	if _, err := Decrypt(make([]byte, saltSize+nonceSize-1), "passphrase"); err == nil {
		t.Fatal("expected error for truncated input")
	}
}

func TestEncryptUniqueSaltAndNonce(t *testing.T) {
	a, err := Encrypt([]byte("same input"), "passphrase")
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	b, err := Encrypt([]byte("same input"), "passphrase")
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}

	if bytes.Equal(a[:saltSize+nonceSize], b[:saltSize+nonceSize]) {
		t.Error("salt and nonce repeated across encryptions")
	}
}
