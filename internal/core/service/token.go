package service

import (
	"context"
	"sort"
	"time"

	"github.com/gatewarden/gatewarden-go/internal/core/domain"
)

// TokenRepository defines the storage interface for token records.
//
// Implementations must enforce token uniqueness at the data layer and
// support the "exactly one match" discipline the engine relies on.
type TokenRepository interface {
	// Insert persists a new token record. Returns ErrTokenConflict when a
	// record with the same token already exists.
	Insert(ctx context.Context, rec *domain.TokenRecord) error

	// Get retrieves exactly one record by token value. Returns
	// ErrTokenNotFound when zero (or, for stores that can hold duplicates,
	// more than one) records match.
	Get(ctx context.Context, tok string) (*domain.TokenRecord, error)

	// ListByUser retrieves all records owned by user, in no particular
	// order. An unknown user yields an empty slice, not an error.
	ListByUser(ctx context.Context, user string) ([]*domain.TokenRecord, error)

	// Revoke atomically revokes the record identified by tok, as a single
	// conditional update: exactly-one match (else ErrTokenNotFound), owner
	// must equal the entry's OperatingUser (else ErrNotOwner, no mutation),
	// and an already-revoked record is returned unchanged. On transition it
	// sets status to REVOKED and appends the entry, returning the
	// post-update record.
	Revoke(ctx context.Context, tok string, entry domain.HistoryEntry) (*domain.TokenRecord, error)
}

// TokenServiceConfig holds configuration for TokenService.
type TokenServiceConfig struct {
	// TTL is the validity duration applied to new tokens.
	TTL time.Duration
}

// DefaultTokenServiceConfig returns the default configuration.
func DefaultTokenServiceConfig() *TokenServiceConfig {
	return &TokenServiceConfig{
		TTL: domain.DefaultTTL,
	}
}

// TokenService implements the token lifecycle engine.
//
// All operations are safe to run concurrently, including against the same
// token: create only inserts fresh tokens, list and validate are read-only,
// and revoke is a single conditional update in the repository.
type TokenService struct {
	repo       TokenRepository
	membership *MembershipService
	ttl        time.Duration
}

// NewTokenService creates a new TokenService.
func NewTokenService(repo TokenRepository, membership *MembershipService, cfg *TokenServiceConfig) *TokenService {
	if cfg == nil {
		cfg = DefaultTokenServiceConfig()
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = domain.DefaultTTL
	}
	return &TokenService{
		repo:       repo,
		membership: membership,
		ttl:        ttl,
	}
}

// Create issues a new token owned by user.
//
// The returned record starts VALID, expires after the configured TTL, and
// carries a single CREATE history entry recording the justification. A
// token collision on insert triggers exactly one regeneration attempt;
// a second collision surfaces as a storage error.
func (s *TokenService) Create(ctx context.Context, user, justification string) (*domain.TokenRecord, error) {
	if user == "" {
		return nil, domain.ErrMissingArgument.WithDetails("user is required")
	}
	if justification == "" {
		return nil, domain.ErrMissingArgument.WithDetails("justification is required")
	}

	rec, err := domain.NewTokenRecord(user, justification, s.ttl)
	if err != nil {
		return nil, err
	}

	err = s.repo.Insert(ctx, rec)
	if domain.IsDomainError(err, domain.ErrTokenConflict.Code) {
		// One regeneration retry on collision, bounded to avoid looping on
		// a broken store.
		rec, err = domain.NewTokenRecord(user, justification, s.ttl)
		if err != nil {
			return nil, err
		}
		if err = s.repo.Insert(ctx, rec); err != nil {
			return nil, domain.ErrStorage.WithCause(err)
		}
		return rec, nil
	}
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// Revoke revokes tok on behalf of user.
//
// The repository performs the owner check and status transition as one
// atomic conditional update, so two racing revokes cannot both append a
// REVOKE entry. Revoking an already-revoked token is an idempotent
// success: the record is returned unchanged.
func (s *TokenService) Revoke(ctx context.Context, user, tok, justification string) (*domain.TokenRecord, error) {
	if user == "" {
		return nil, domain.ErrMissingArgument.WithDetails("user is required")
	}
	if tok == "" {
		return nil, domain.ErrMissingArgument.WithDetails("token is required")
	}
	if justification == "" {
		return nil, domain.ErrMissingArgument.WithDetails("justification is required")
	}

	return s.repo.Revoke(ctx, tok, domain.HistoryEntry{
		Time:          time.Now().UnixMilli(),
		OperatingUser: user,
		Operation:     domain.OpRevoke,
		Reason:        justification,
	})
}

// List returns all token records owned by user, VALID records before
// REVOKED ones and newest-first within each band. A user with no tokens
// gets an empty slice, never an error.
func (s *TokenService) List(ctx context.Context, user string) ([]*domain.TokenRecord, error) {
	if user == "" {
		return nil, domain.ErrMissingArgument.WithDetails("user is required")
	}

	recs, err := s.repo.ListByUser(ctx, user)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(recs, func(i, j int) bool {
		if recs[i].Status != recs[j].Status {
			return recs[i].Status == domain.StatusValid
		}
		return recs[i].CreatedAt() > recs[j].CreatedAt()
	})

	if recs == nil {
		recs = []*domain.TokenRecord{}
	}
	return recs, nil
}

// Validate decides whether tok authorizes a request that requires
// membership in all of requiredGroups.
//
// A revoked or expired token yields false without error; those are
// semantic outcomes, not faults. A token that cannot be resolved to
// exactly one record, or a storage failure, is a typed error.
func (s *TokenService) Validate(ctx context.Context, requiredGroups []string, tok string) (bool, error) {
	if tok == "" {
		return false, domain.ErrMissingArgument.WithDetails("token is required")
	}

	rec, err := s.repo.Get(ctx, tok)
	if err != nil {
		return false, err
	}

	if rec.IsRevoked() {
		return false, nil
	}
	if rec.IsExpired() {
		return false, nil
	}

	return s.membership.Evaluate(ctx, requiredGroups, rec.User)
}
