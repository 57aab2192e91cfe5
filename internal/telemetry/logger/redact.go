package logger

import (
	"log/slog"
	"strings"

	"github.com/gatewarden/gatewarden-go/pkg/token"
)

// Sensitive key patterns that trigger full redaction.
var sensitiveKeyPatterns = []string{
	"password",
	"secret",
	"token",
	"credential",
	"auth",
	"bearer",
	"passphrase",
}

// redactedValue is the placeholder for redacted sensitive data.
const redactedValue = "***REDACTED***"

// redactSensitive redacts attributes that carry token values or
// secret-bearing keys.
//
// Tokens are opaque 32-character base64url strings with no marker
// prefix, so detection goes by shape: any string attribute that parses
// as a well-formed token is partially masked, whatever its key. Key
// name matching then catches secrets that are not token-shaped.
func redactSensitive(a slog.Attr) slog.Attr {
	if a.Value.Kind() == slog.KindString {
		strVal := a.Value.String()

		if token.ValidFormat(strVal) {
			return slog.String(a.Key, maskToken(strVal))
		}

		keyLower := strings.ToLower(a.Key)
		for _, pattern := range sensitiveKeyPatterns {
			if strings.Contains(keyLower, pattern) {
				if strVal != "" {
					return slog.String(a.Key, redactedValue)
				}
				break
			}
		}
	}

	if a.Value.Kind() == slog.KindGroup {
		attrs := a.Value.Group()
		newAttrs := make([]slog.Attr, len(attrs))
		for i, attr := range attrs {
			newAttrs[i] = redactSensitive(attr)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(newAttrs...)}
	}

	return a
}

// maskToken keeps just enough of a token to correlate log lines.
func maskToken(value string) string {
	return value[:3] + "..." + value[len(value)-3:]
}

// RedactString redacts a value before logging when it is token-shaped.
func RedactString(value string) string {
	if token.ValidFormat(value) {
		return maskToken(value)
	}
	return value
}

// IsSensitiveKey reports whether a key name suggests sensitive content.
func IsSensitiveKey(key string) bool {
	keyLower := strings.ToLower(key)
	for _, pattern := range sensitiveKeyPatterns {
		if strings.Contains(keyLower, pattern) {
			return true
		}
	}
	return false
}
