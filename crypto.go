package crumbshare

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"time"

	"golang.org/x/crypto/pbkdf2"
)

const (
	kdfIterations = 100_000
	kdfKeyLen     = 32 // AES-256
	saltLen       = 16
	ivLen         = 12 // GCM standard nonce size
)

// Stubbed in tests for deterministic salts, IVs and clocks.
var (
	randRead = rand.Read
	timeNow  = time.Now
)

func deriveKey(password string, salt []byte) []byte {
	return pbkdf2.Key([]byte(password), salt, kdfIterations, kdfKeyLen, sha256.New)
}

// Encrypt seals plaintext under a key derived from password. Salt and IV
// are freshly drawn from the system random source on every call and are
// never reused.
func Encrypt(plaintext, password string) (*EncryptedBlob, error) {
	salt := make([]byte, saltLen)
	if _, err := randRead(salt); err != nil {
		return nil, fmt.Errorf("crumbshare: generating salt: %w", err)
	}
	iv := make([]byte, ivLen)
	if _, err := randRead(iv); err != nil {
		return nil, fmt.Errorf("crumbshare: generating iv: %w", err)
	}

	block, err := aes.NewCipher(deriveKey(password, salt))
	if err != nil {
		return nil, err
	}
	aesgcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	sealed := aesgcm.Seal(nil, iv, []byte(plaintext), nil)
	return &EncryptedBlob{
		Version: FormatVersion,
		Data:    base64.StdEncoding.EncodeToString(sealed),
		Salt:    base64.StdEncoding.EncodeToString(salt),
		IV:      base64.StdEncoding.EncodeToString(iv),
	}, nil
}

// Decrypt re-derives the key from password and blob.Salt and opens the
// ciphertext. Any failure (malformed base64, wrong-length salt or IV,
// wrong password, tampered tag) yields ErrDecryptionFailed; plaintext is
// never partially returned.
func Decrypt(blob *EncryptedBlob, password string) (string, error) {
	if blob == nil {
		return "", ErrDecryptionFailed
	}
	data, err := decodeBase64Lenient(blob.Data)
	if err != nil {
		return "", fmt.Errorf("%w: bad ciphertext encoding", ErrDecryptionFailed)
	}
	salt, err := decodeBase64Lenient(blob.Salt)
	if err != nil || len(salt) != saltLen {
		return "", fmt.Errorf("%w: bad salt", ErrDecryptionFailed)
	}
	iv, err := decodeBase64Lenient(blob.IV)
	if err != nil || len(iv) != ivLen {
		return "", fmt.Errorf("%w: bad iv", ErrDecryptionFailed)
	}

	block, err := aes.NewCipher(deriveKey(password, salt))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDecryptionFailed, err)
	}
	aesgcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDecryptionFailed, err)
	}

	plain, err := aesgcm.Open(nil, iv, data, nil)
	if err != nil {
		// GCM fails closed: wrong password and corrupted data are
		// indistinguishable here.
		return "", ErrDecryptionFailed
	}
	return string(plain), nil
}
