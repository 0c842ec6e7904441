package crypto

import (
	"bytes"
	"strings"
	"testing"
)

func TestNewCipher(t *testing.T) {
	tests := []struct {
		name    string
		key     []byte
		wantErr bool
	}{
		{name: "valid 32-byte key", key: make([]byte, 32), wantErr: false},
		{name: "short key", key: make([]byte, 16), wantErr: true},
		{name: "long key", key: make([]byte, 64), wantErr: true},
		{name: "empty key", key: []byte{}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := NewCipher(tt.key)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewCipher() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && c == nil {
				t.Fatal("NewCipher() returned nil without error")
			}
		})
	}
}

func TestEncryptDecryptRoundTrip(t *testing.T) {
	key := bytes.Repeat([]byte{0x00}, 32)
	c, err := NewCipher(key)
	if err != nil {
		t.Fatalf("NewCipher() error = %v", err)
	}

	plaintext := []byte("APIKEY1")
	sealed, err := c.Encrypt(plaintext)
	if err != nil {
		t.Fatalf("Encrypt() error = %v", err)
	}

	if len(sealed.IV) != 12 {
		t.Fatalf("IV length = %d, want 12", len(sealed.IV))
	}
	if len(sealed.AuthTag) != 16 {
		t.Fatalf("AuthTag length = %d, want 16", len(sealed.AuthTag))
	}

	got, err := c.Decrypt(sealed)
	if err != nil {
		t.Fatalf("Decrypt() error = %v", err)
	}
	if !bytes.Equal(got, plaintext) {
		t.Fatalf("Decrypt() = %q, want %q", got, plaintext)
	}
}

func TestCiphertextNeverContainsPlaintext(t *testing.T) {
	key := bytes.Repeat([]byte{0x42}, 32)
	c, _ := NewCipher(key)

	plaintext := []byte("sk-super-secret-api-key")
	sealed, err := c.Encrypt(plaintext)
	if err != nil {
		t.Fatalf("Encrypt() error = %v", err)
	}

	if bytes.Contains(sealed.Ciphertext, plaintext) {
		t.Fatal("ciphertext contains the plaintext credential")
	}
	if strings.Contains(string(sealed.Ciphertext), string(plaintext)) {
		t.Fatal("ciphertext (as string) contains the plaintext credential")
	}
}

func TestDecryptTamperedTagFails(t *testing.T) {
	key := bytes.Repeat([]byte{0x07}, 32)
	c, _ := NewCipher(key)

	sealed, err := c.Encrypt([]byte("SECRET"))
	if err != nil {
		t.Fatalf("Encrypt() error = %v", err)
	}

	tampered := &Sealed{
		Ciphertext: append([]byte{}, sealed.Ciphertext...),
		IV:         sealed.IV,
		AuthTag:    append([]byte{}, sealed.AuthTag...),
	}
	tampered.Ciphertext[0] ^= 0xFF

	if _, err := c.Decrypt(tampered); err != ErrIntegrityFail {
		t.Fatalf("Decrypt() error = %v, want ErrIntegrityFail", err)
	}
}

func TestEncryptProducesDistinctIVs(t *testing.T) {
	key := bytes.Repeat([]byte{0x11}, 32)
	c, _ := NewCipher(key)

	a, _ := c.Encrypt([]byte("same plaintext"))
	b, _ := c.Encrypt([]byte("same plaintext"))

	if bytes.Equal(a.IV, b.IV) {
		t.Fatal("two Encrypt() calls produced the same IV")
	}
	if bytes.Equal(a.Ciphertext, b.Ciphertext) {
		t.Fatal("two Encrypt() calls produced the same ciphertext")
	}
}
