package token

import (
	"encoding/base64"
	"testing"
)

func TestGenerate(t *testing.T) {
	t.Run("length and alphabet", func(t *testing.T) {
		tok, err := Generate()
		if err != nil {
			t.Fatalf("Generate failed: %v", err)
		}
		if len(tok) != EncodedLength {
			t.Errorf("token length = %d, want %d", len(tok), EncodedLength)
		}
		raw, err := base64.RawURLEncoding.DecodeString(tok)
		if err != nil {
			t.Errorf("token is not valid Base64 RawURL: %v", err)
		}
		if len(raw) != RawLength {
			t.Errorf("decoded length = %d, want %d", len(raw), RawLength)
		}
	})

	t.Run("uniqueness", func(t *testing.T) {
		seen := make(map[string]bool)
		for i := 0; i < 1000; i++ {
			tok, err := Generate()
			if err != nil {
				t.Fatalf("Generate failed: %v", err)
			}
			if seen[tok] {
				t.Fatalf("duplicate token generated: %s", tok)
			}
			seen[tok] = true
		}
	})
}

func TestGenerateWithLength(t *testing.T) {
	tok, err := GenerateWithLength(16)
	if err != nil {
		t.Fatalf("GenerateWithLength failed: %v", err)
	}
	// 16 bytes -> ceil(16*4/3) = 22 chars without padding
	if len(tok) != 22 {
		t.Errorf("token length = %d, want 22", len(tok))
	}
}

func TestValidFormat(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{"generated token", mustGenerate(t), true},
		{"empty", "", false},
		{"too short", "abc", false},
		{"too long", mustGenerate(t) + "x", false},
		{"invalid characters", "!!!!!!!!!!!!!!!!!!!!!!!!!!!!!!!!", false},
		{"standard base64 padding", "AAAAAAAAAAAAAAAAAAAAAAAAAAAAAA==", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ValidFormat(tt.input); got != tt.want {
				t.Errorf("ValidFormat(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func mustGenerate(t *testing.T) string {
	t.Helper()
	tok, err := Generate()
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	return tok
}
