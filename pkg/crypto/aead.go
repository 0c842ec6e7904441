package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
)

// MasterKeySize is the required length, in bytes, of a master key.
const MasterKeySize = 32

// ErrIntegrityFail is returned by Decrypt when the authentication tag does
// not verify. No plaintext is released when this error is returned.
var ErrIntegrityFail = errors.New("crypto: authentication tag mismatch")

// Cipher performs AES-256-GCM authenticated encryption under a single
// 32-byte master key.
type Cipher struct {
	masterKey []byte
}

// NewCipher builds a Cipher from a 32-byte master key.
func NewCipher(masterKey []byte) (*Cipher, error) {
	if len(masterKey) != MasterKeySize {
		return nil, fmt.Errorf("crypto: master key must be %d bytes, got %d", MasterKeySize, len(masterKey))
	}
	return &Cipher{masterKey: masterKey}, nil
}

// Sealed is the three-part output of an AES-256-GCM encryption: the
// ciphertext, the IV used, and the authentication tag, stored as separate
// fields on CredentialRecord.
type Sealed struct {
	Ciphertext []byte
	IV         []byte
	AuthTag    []byte
}

// Encrypt encrypts plaintext under the master key with a fresh,
// cryptographically random 12-byte IV.
func (c *Cipher) Encrypt(plaintext []byte) (*Sealed, error) {
	block, err := aes.NewCipher(c.masterKey)
	if err != nil {
		return nil, fmt.Errorf("crypto: creating cipher: %w", err)
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("crypto: creating GCM: %w", err)
	}

	iv := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, iv); err != nil {
		return nil, fmt.Errorf("crypto: generating IV: %w", err)
	}

	sealed := gcm.Seal(nil, iv, plaintext, nil)
	tagStart := len(sealed) - gcm.Overhead()

	ciphertext := make([]byte, tagStart)
	copy(ciphertext, sealed[:tagStart])
	authTag := make([]byte, gcm.Overhead())
	copy(authTag, sealed[tagStart:])

	return &Sealed{
		Ciphertext: ciphertext,
		IV:         iv,
		AuthTag:    authTag,
	}, nil
}

// Decrypt verifies the authentication tag and, only on success, returns the
// plaintext. On tag mismatch it returns ErrIntegrityFail without releasing
// any plaintext.
func (c *Cipher) Decrypt(s *Sealed) ([]byte, error) {
	block, err := aes.NewCipher(c.masterKey)
	if err != nil {
		return nil, fmt.Errorf("crypto: creating cipher: %w", err)
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("crypto: creating GCM: %w", err)
	}

	combined := make([]byte, 0, len(s.Ciphertext)+len(s.AuthTag))
	combined = append(combined, s.Ciphertext...)
	combined = append(combined, s.AuthTag...)

	plaintext, err := gcm.Open(nil, s.IV, combined, nil)
	if err != nil {
		return nil, ErrIntegrityFail
	}

	return plaintext, nil
}
