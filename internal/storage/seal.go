package storage

import (
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/hkdf"

	"github.com/gatewarden/gatewarden-go/pkg/crypto/adaptive"
)

// Sealing errors.
var (
	ErrPassphraseTooWeak = errors.New("storage: sealing passphrase too weak (minimum 8 bytes)")
	ErrBadSalt           = errors.New("storage: sealing salt must be 16 bytes")
)

const (
	// MinPassphraseLength is the minimum sealing passphrase length.
	MinPassphraseLength = 8

	// SaltLength is the fixed salt length used in key derivation.
	SaltLength = 16

	// Argon2id parameters for key derivation from the passphrase.
	argon2Time    = 3
	argon2Memory  = 64 * 1024
	argon2Threads = 4
	argon2KeyLen  = 32
)

// Sealer encrypts and decrypts stored records.
//
// The record key is passed as additional data on every call, so a sealed
// value cannot be replayed under a different key without detection.
type Sealer struct {
	cipher adaptive.Cipher
}

// NewSealer derives a sealing cipher from passphrase and salt.
//
// The passphrase is stretched with Argon2id and the record encryption
// key is then derived with HKDF, keeping the Argon2 output reusable for
// further subkeys without re-running the expensive stretch. algorithm
// selects the AEAD ("aes-gcm" or "chacha20-poly1305"); empty picks the
// best fit for the hardware.
func NewSealer(passphrase, salt []byte, algorithm string) (*Sealer, error) {
	if len(passphrase) < MinPassphraseLength {
		return nil, ErrPassphraseTooWeak
	}
	if len(salt) != SaltLength {
		return nil, ErrBadSalt
	}

	master := argon2.IDKey(passphrase, salt, argon2Time, argon2Memory, argon2Threads, argon2KeyLen)
	defer ZeroKey(master)

	key, err := deriveSubkey(master, "record-seal", argon2KeyLen)
	if err != nil {
		return nil, err
	}
	defer ZeroKey(key)

	var c adaptive.Cipher
	if algorithm == "" {
		c, err = adaptive.New(key)
	} else {
		c, err = adaptive.NewWithType(key, adaptive.CipherType(algorithm))
	}
	if err != nil {
		return nil, fmt.Errorf("storage: sealing cipher: %w", err)
	}

	return &Sealer{cipher: c}, nil
}

// Seal encrypts plaintext, binding recordKey into the authentication tag.
func (s *Sealer) Seal(plaintext, recordKey []byte) ([]byte, error) {
	return s.cipher.Encrypt(plaintext, recordKey)
}

// Open decrypts data sealed for recordKey.
func (s *Sealer) Open(ciphertext, recordKey []byte) ([]byte, error) {
	return s.cipher.Decrypt(ciphertext, recordKey)
}

// GenerateSalt returns a fresh random salt for key derivation.
func GenerateSalt() ([]byte, error) {
	salt := make([]byte, SaltLength)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("storage: generate salt: %w", err)
	}
	return salt, nil
}

// deriveSubkey derives a purpose-bound subkey from a master key using HKDF.
func deriveSubkey(masterKey []byte, info string, length int) ([]byte, error) {
	reader := hkdf.New(sha256.New, masterKey, nil, []byte(info))
	key := make([]byte, length)
	if _, err := io.ReadFull(reader, key); err != nil {
		return nil, fmt.Errorf("storage: derive subkey: %w", err)
	}
	return key, nil
}

// ZeroKey overwrites key material in place.
func ZeroKey(key []byte) {
	for i := range key {
		key[i] = 0
	}
}
