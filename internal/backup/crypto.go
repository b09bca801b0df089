// Package backup produces encrypted snapshots of the SQLite database and
// ships them to S3-compatible storage. Files are sealed with AES-256-GCM
// under an Argon2id-derived key; the salt and nonce travel in the file
// header so a backup is restorable from the passphrase alone.
package backup

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"os"

	"golang.org/x/crypto/argon2"
)

// Sealed file layout: [salt | nonce | AES-256-GCM ciphertext].
const (
	saltSize  = 16
	nonceSize = 12
	keySize   = 32
	headerLen = saltSize + nonceSize
)

// Argon2id parameters, per the RFC 9106 second recommendation.
const (
	argonTime = 3
	argonMem  = 64 * 1024
	argonPar  = 4
)

var errTruncated = errors.New("encrypted file shorter than its header")

// GenerateSalt returns a fresh random salt. Each backup gets its own.
func GenerateSalt() ([]byte, error) {
	salt := make([]byte, saltSize)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return nil, fmt.Errorf("generate salt: %w", err)
	}
	return salt, nil
}

// DeriveKey stretches the passphrase into an AES-256 key with Argon2id.
func DeriveKey(passphrase string, salt []byte) []byte {
	return argon2.IDKey([]byte(passphrase), salt, argonTime, argonMem, argonPar, keySize)
}

func newGCM(passphrase string, salt []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(DeriveKey(passphrase, salt))
	if err != nil {
		return nil, fmt.Errorf("init cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("init gcm: %w", err)
	}
	return gcm, nil
}

// EncryptFile seals srcPath into dstPath under the passphrase, prefixing
// the output with the salt and nonce needed to open it again.
func EncryptFile(srcPath, dstPath, passphrase string, salt []byte) error {
	plaintext, err := os.ReadFile(srcPath)
	if err != nil {
		return fmt.Errorf("read source: %w", err)
	}

	gcm, err := newGCM(passphrase, salt)
	if err != nil {
		return err
	}

	nonce := make([]byte, nonceSize)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return fmt.Errorf("generate nonce: %w", err)
	}

	sealed := make([]byte, 0, headerLen+len(plaintext)+gcm.Overhead())
	sealed = append(sealed, salt...)
	sealed = append(sealed, nonce...)
	sealed = gcm.Seal(sealed, nonce, plaintext, nil)

	if err := os.WriteFile(dstPath, sealed, 0600); err != nil {
		return fmt.Errorf("write encrypted file: %w", err)
	}
	return nil
}

// DecryptFile opens the sealed file at srcPath and writes the plaintext to
// dstPath. The salt and nonce come from the file's own header.
func DecryptFile(srcPath, dstPath, passphrase string) error {
	sealed, err := os.ReadFile(srcPath)
	if err != nil {
		return fmt.Errorf("read encrypted file: %w", err)
	}
	if len(sealed) < headerLen {
		return errTruncated
	}

	salt, nonce, ciphertext := sealed[:saltSize], sealed[saltSize:headerLen], sealed[headerLen:]

	gcm, err := newGCM(passphrase, salt)
	if err != nil {
		return err
	}
	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return fmt.Errorf("decrypt: %w", err)
	}

	if err := os.WriteFile(dstPath, plaintext, 0600); err != nil {
		return fmt.Errorf("write decrypted file: %w", err)
	}
	return nil
}
