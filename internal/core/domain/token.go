package domain

import (
	"time"

	"github.com/gatewarden/gatewarden-go/pkg/token"
)

// DefaultTTL is the validity duration applied to new tokens.
const DefaultTTL = 7 * 24 * time.Hour

// Status is the lifecycle state of a token record.
//
// The only transition is VALID -> REVOKED; it never reverses.
type Status string

const (
	// StatusValid marks a token that has been issued and not revoked.
	StatusValid Status = "VALID"

	// StatusRevoked marks a token that has been revoked. Terminal.
	StatusRevoked Status = "REVOKED"
)

// Operation identifies a lifecycle event recorded in a token's history.
type Operation string

const (
	// OpCreate is recorded once, as the first history entry of every record.
	OpCreate Operation = "CREATE"

	// OpRevoke is recorded when a revocation succeeds.
	OpRevoke Operation = "REVOKE"
)

// HistoryEntry is one lifecycle event of a token record.
//
// History is append-only: entries are never mutated or removed.
type HistoryEntry struct {
	// Time is the event timestamp (Unix milliseconds).
	Time int64 `json:"time"`

	// OperatingUser is the identity that performed the operation.
	OperatingUser string `json:"operating_user"`

	// Operation is the lifecycle event kind.
	Operation Operation `json:"operation"`

	// Reason is the caller-supplied justification.
	Reason string `json:"reason"`
}

// TokenRecord is one issued bearer token.
//
// Token and User are immutable once created. Status only moves
// VALID -> REVOKED, and History only grows by appending.
type TokenRecord struct {
	// Token is the opaque token string, unique across all records.
	Token string `json:"token"`

	// User is the owning identity.
	User string `json:"user"`

	// Status is the current lifecycle state.
	Status Status `json:"status"`

	// ExpiryTime is the absolute expiration timestamp (Unix milliseconds),
	// fixed at creation as creation time + validity duration.
	ExpiryTime int64 `json:"expiry_time"`

	// History is the append-only sequence of lifecycle events. The first
	// entry is always the CREATE event.
	History []HistoryEntry `json:"hist"`
}

// NewTokenRecord issues a fresh token record for user.
//
// The record starts VALID with a single CREATE history entry and an expiry
// of now + ttl. Fails with ErrRandomSource when the secure random source
// is unavailable.
func NewTokenRecord(user, reason string, ttl time.Duration) (*TokenRecord, error) {
	tok, err := token.Generate()
	if err != nil {
		return nil, ErrRandomSource.WithCause(err)
	}

	now := time.Now().UnixMilli()
	return &TokenRecord{
		Token:      tok,
		User:       user,
		Status:     StatusValid,
		ExpiryTime: now + ttl.Milliseconds(),
		History: []HistoryEntry{{
			Time:          now,
			OperatingUser: user,
			Operation:     OpCreate,
			Reason:        reason,
		}},
	}, nil
}

// IsRevoked returns true if the record has been revoked.
func (r *TokenRecord) IsRevoked() bool {
	return r.Status == StatusRevoked
}

// IsExpired returns true if the record's expiry time has passed.
func (r *TokenRecord) IsExpired() bool {
	if r.ExpiryTime == 0 {
		return false
	}
	return time.Now().UnixMilli() > r.ExpiryTime
}

// Revoke transitions the record to REVOKED and appends the REVOKE event.
//
// Callers are expected to have checked ownership; revoking an
// already-revoked record is the caller's decision to make.
func (r *TokenRecord) Revoke(operatingUser, reason string) {
	r.Status = StatusRevoked
	r.History = append(r.History, HistoryEntry{
		Time:          time.Now().UnixMilli(),
		OperatingUser: operatingUser,
		Operation:     OpRevoke,
		Reason:        reason,
	})
}

// CreatedAt returns the creation timestamp (Unix milliseconds), taken from
// the CREATE history entry.
func (r *TokenRecord) CreatedAt() int64 {
	if len(r.History) == 0 {
		return 0
	}
	return r.History[0].Time
}

// CreatedAtTime returns CreatedAt as time.Time.
func (r *TokenRecord) CreatedAtTime() time.Time {
	return time.UnixMilli(r.CreatedAt())
}

// ExpiryTimeTime returns ExpiryTime as time.Time.
func (r *TokenRecord) ExpiryTimeTime() time.Time {
	if r.ExpiryTime == 0 {
		return time.Time{}
	}
	return time.UnixMilli(r.ExpiryTime)
}

// Clone creates a deep copy of the record.
func (r *TokenRecord) Clone() *TokenRecord {
	clone := *r
	clone.History = make([]HistoryEntry, len(r.History))
	copy(clone.History, r.History)
	return &clone
}

// Validate checks the record's structural invariants.
func (r *TokenRecord) Validate() error {
	if !token.ValidFormat(r.Token) {
		return ErrInvalidArgument.WithDetails("token has invalid format")
	}
	if r.User == "" {
		return ErrMissingArgument.WithDetails("user is required")
	}
	if r.Status != StatusValid && r.Status != StatusRevoked {
		return ErrInvalidArgument.WithDetails("status must be VALID or REVOKED")
	}
	if len(r.History) == 0 {
		return ErrInvalidArgument.WithDetails("history must contain the CREATE event")
	}
	if r.History[0].Operation != OpCreate {
		return ErrInvalidArgument.WithDetails("first history entry must be CREATE")
	}
	return nil
}

// MaskToken masks a token for safe logging.
// Example: abc...xyz
func MaskToken(tok string) string {
	if len(tok) < 10 {
		return "***REDACTED***"
	}
	return tok[:3] + "..." + tok[len(tok)-3:]
}
