package domain

import (
	"testing"
	"time"

	"github.com/gatewarden/gatewarden-go/pkg/token"
)

func TestNewTokenRecord(t *testing.T) {
	before := time.Now().UnixMilli()
	rec, err := NewTokenRecord("alice", "ci pipeline", DefaultTTL)
	if err != nil {
		t.Fatalf("NewTokenRecord failed: %v", err)
	}
	after := time.Now().UnixMilli()

	if !token.ValidFormat(rec.Token) {
		t.Errorf("token %q does not match generator format", rec.Token)
	}
	if rec.User != "alice" {
		t.Errorf("User = %q, want alice", rec.User)
	}
	if rec.Status != StatusValid {
		t.Errorf("Status = %q, want VALID", rec.Status)
	}
	if len(rec.History) != 1 {
		t.Fatalf("history length = %d, want 1", len(rec.History))
	}

	ev := rec.History[0]
	if ev.Operation != OpCreate {
		t.Errorf("first history operation = %q, want CREATE", ev.Operation)
	}
	if ev.OperatingUser != "alice" {
		t.Errorf("operating user = %q, want alice", ev.OperatingUser)
	}
	if ev.Reason != "ci pipeline" {
		t.Errorf("reason = %q, want %q", ev.Reason, "ci pipeline")
	}
	if ev.Time < before || ev.Time > after {
		t.Errorf("create time %d outside [%d, %d]", ev.Time, before, after)
	}

	// Expiry is creation time + TTL, within scheduling tolerance.
	wantExpiry := ev.Time + DefaultTTL.Milliseconds()
	if rec.ExpiryTime != wantExpiry {
		t.Errorf("ExpiryTime = %d, want %d", rec.ExpiryTime, wantExpiry)
	}
}

func TestTokenRecord_Revoke(t *testing.T) {
	rec, err := NewTokenRecord("bob", "deploy", time.Hour)
	if err != nil {
		t.Fatalf("NewTokenRecord failed: %v", err)
	}

	rec.Revoke("bob", "laptop stolen")

	if rec.Status != StatusRevoked {
		t.Errorf("Status = %q, want REVOKED", rec.Status)
	}
	if !rec.IsRevoked() {
		t.Error("IsRevoked() = false after Revoke")
	}
	if len(rec.History) != 2 {
		t.Fatalf("history length = %d, want 2", len(rec.History))
	}
	last := rec.History[1]
	if last.Operation != OpRevoke {
		t.Errorf("last operation = %q, want REVOKE", last.Operation)
	}
	if last.Reason != "laptop stolen" {
		t.Errorf("reason = %q, want %q", last.Reason, "laptop stolen")
	}
}

func TestTokenRecord_IsExpired(t *testing.T) {
	rec, err := NewTokenRecord("carol", "test", time.Hour)
	if err != nil {
		t.Fatalf("NewTokenRecord failed: %v", err)
	}
	if rec.IsExpired() {
		t.Error("fresh record reported expired")
	}

	rec.ExpiryTime = time.Now().Add(-time.Minute).UnixMilli()
	if !rec.IsExpired() {
		t.Error("past-expiry record not reported expired")
	}

	rec.ExpiryTime = 0
	if rec.IsExpired() {
		t.Error("zero expiry should mean no expiration")
	}
}

func TestTokenRecord_Clone(t *testing.T) {
	rec, err := NewTokenRecord("dave", "test", time.Hour)
	if err != nil {
		t.Fatalf("NewTokenRecord failed: %v", err)
	}

	clone := rec.Clone()
	clone.Revoke("dave", "cloned copy only")

	if rec.IsRevoked() {
		t.Error("revoking the clone mutated the original status")
	}
	if len(rec.History) != 1 {
		t.Errorf("original history length = %d, want 1", len(rec.History))
	}
}

func TestTokenRecord_Validate(t *testing.T) {
	valid, err := NewTokenRecord("erin", "test", time.Hour)
	if err != nil {
		t.Fatalf("NewTokenRecord failed: %v", err)
	}

	tests := []struct {
		name    string
		mutate  func(*TokenRecord)
		wantErr bool
	}{
		{"fresh record", func(r *TokenRecord) {}, false},
		{"bad token format", func(r *TokenRecord) { r.Token = "short" }, true},
		{"missing user", func(r *TokenRecord) { r.User = "" }, true},
		{"unknown status", func(r *TokenRecord) { r.Status = "SUSPENDED" }, true},
		{"empty history", func(r *TokenRecord) { r.History = nil }, true},
		{"first entry not create", func(r *TokenRecord) {
			r.History[0].Operation = OpRevoke
		}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := valid.Clone()
			tt.mutate(rec)
			err := rec.Validate()
			if tt.wantErr && err == nil {
				t.Error("Validate() = nil, want error")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("Validate() = %v, want nil", err)
			}
		})
	}
}

func TestMaskToken(t *testing.T) {
	rec, err := NewTokenRecord("frank", "test", time.Hour)
	if err != nil {
		t.Fatalf("NewTokenRecord failed: %v", err)
	}

	masked := MaskToken(rec.Token)
	if masked == rec.Token {
		t.Error("MaskToken returned the token unmasked")
	}
	if len(masked) >= len(rec.Token) {
		t.Errorf("masked form %q is not shorter than the token", masked)
	}

	if MaskToken("tiny") != "***REDACTED***" {
		t.Error("short input should be fully redacted")
	}
}
