package backup

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func TestGenerateSaltUnique(t *testing.T) {
	a, err := GenerateSalt()
	if err != nil {
		t.Fatalf("generate salt: %v", err)
	}
	if len(a) != saltSize {
		t.Errorf("salt length = %d, want %d", len(a), saltSize)
	}

	b, err := GenerateSalt()
	if err != nil {
		t.Fatalf("generate second salt: %v", err)
	}
	if bytes.Equal(a, b) {
		t.Error("consecutive salts matched")
	}
}

func TestDeriveKey(t *testing.T) {
	salt := []byte("0123456789abcdef")

	key := DeriveKey("hunter2", salt)
	if len(key) != keySize {
		t.Fatalf("key length = %d, want %d", len(key), keySize)
	}
	if !bytes.Equal(key, DeriveKey("hunter2", salt)) {
		t.Error("same passphrase and salt produced different keys")
	}
	if bytes.Equal(key, DeriveKey("hunter3", salt)) {
		t.Error("different passphrases produced the same key")
	}
}

func cryptoTestFile(t *testing.T, content []byte) (src, enc, dec string) {
	t.Helper()
	dir := t.TempDir()
	src = filepath.Join(dir, "dayline.db")
	enc = filepath.Join(dir, "dayline.db.enc")
	dec = filepath.Join(dir, "restored.db")
	if err := os.WriteFile(src, content, 0600); err != nil {
		t.Fatalf("write source: %v", err)
	}
	return src, enc, dec
}

func TestEncryptDecryptRoundTrip(t *testing.T) {
	content := []byte("SQLite format 3\x00 pretend database pages follow here")
	src, enc, dec := cryptoTestFile(t, content)

	salt, err := GenerateSalt()
	if err != nil {
		t.Fatalf("generate salt: %v", err)
	}
	if err := EncryptFile(src, enc, "hunter2", salt); err != nil {
		t.Fatalf("encrypt: %v", err)
	}

	sealed, err := os.ReadFile(enc)
	if err != nil {
		t.Fatalf("read encrypted file: %v", err)
	}
	if bytes.Contains(sealed, []byte("SQLite format")) {
		t.Error("plaintext leaked into the encrypted file")
	}
	// Header carries the salt so restore needs only the passphrase
	if !bytes.Equal(sealed[:saltSize], salt) {
		t.Error("encrypted file does not start with the salt")
	}

	if err := DecryptFile(enc, dec, "hunter2"); err != nil {
		t.Fatalf("decrypt: %v", err)
	}
	restored, err := os.ReadFile(dec)
	if err != nil {
		t.Fatalf("read restored file: %v", err)
	}
	if !bytes.Equal(restored, content) {
		t.Error("restored content differs from the original")
	}
}

func TestDecryptWrongPassphrase(t *testing.T) {
	src, enc, dec := cryptoTestFile(t, []byte("secret"))

	salt, _ := GenerateSalt()
	if err := EncryptFile(src, enc, "hunter2", salt); err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	if err := DecryptFile(enc, dec, "letmein"); err == nil {
		t.Fatal("expected failure with the wrong passphrase")
	}
}

func TestDecryptTamperedCiphertext(t *testing.T) {
	src, enc, dec := cryptoTestFile(t, []byte("secret"))

	salt, _ := GenerateSalt()
	if err := EncryptFile(src, enc, "hunter2", salt); err != nil {
		t.Fatalf("encrypt: %v", err)
	}

	sealed, err := os.ReadFile(enc)
	if err != nil {
		t.Fatalf("read encrypted file: %v", err)
	}
	sealed[len(sealed)-1] ^= 0x01
	if err := os.WriteFile(enc, sealed, 0600); err != nil {
		t.Fatalf("write tampered file: %v", err)
	}

	if err := DecryptFile(enc, dec, "hunter2"); err == nil {
		t.Fatal("expected failure on tampered ciphertext")
	}
}

func TestDecryptTruncatedFile(t *testing.T) {
	dir := t.TempDir()
	enc := filepath.Join(dir, "short.db.enc")
	if err := os.WriteFile(enc, []byte("short"), 0600); err != nil {
		t.Fatalf("write short file: %v", err)
	}

	if err := DecryptFile(enc, filepath.Join(dir, "out.db"), "hunter2"); err == nil {
		t.Fatal("expected failure on a file shorter than the header")
	}
}
