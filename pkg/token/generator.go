// Package token generates opaque bearer tokens.
//
// Tokens are not self-describing: they carry no claims and are only
// meaningful as lookup keys into the token store.
package token

import (
	"crypto/rand"
	"encoding/base64"
)

const (
	// RawLength is the number of random bytes per token.
	RawLength = 24

	// EncodedLength is the length of an encoded token string.
	// 24 bytes under Base64 RawURL encode to exactly 32 characters.
	EncodedLength = 32
)

// Generate produces a cryptographically secure opaque token.
//
// The result is Base64 RawURL encoded (letters, digits, '-', '_') and is
// safe to embed in URLs and JSON without escaping. Generation fails only
// when the system's secure random source is unavailable.
func Generate() (string, error) {
	return GenerateWithLength(RawLength)
}

// GenerateWithLength produces a token from the given number of random bytes.
func GenerateWithLength(length int) (string, error) {
	raw := make([]byte, length)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(raw), nil
}

// ValidFormat reports whether s looks like a token produced by Generate:
// exactly EncodedLength characters of valid Base64 RawURL data.
func ValidFormat(s string) bool {
	if len(s) != EncodedLength {
		return false
	}
	_, err := base64.RawURLEncoding.DecodeString(s)
	return err == nil
}
