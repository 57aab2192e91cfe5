package memory

import (
	"context"
	"sync"

	"github.com/gatewarden/gatewarden-go/internal/core/domain"
	"github.com/gatewarden/gatewarden-go/pkg/cmap"
)

// Store provides in-memory storage for token records and the user
// directory.
//
// It implements service.TokenRepository and service.UserDirectory.
// Reads go through the sharded maps directly; mutations that must stay
// consistent across the primary map and the user index take the store
// lock, which also serializes the revoke check-then-update.
type Store struct {
	// Primary index: token value -> record.
	tokens *cmap.Map[string, *domain.TokenRecord]

	// Secondary index: owner -> set of token values.
	users *userIndex

	// Directory: user -> directory record.
	directory *cmap.Map[string, *domain.UserRecord]

	mu sync.Mutex
}

// New creates an empty store.
func New() *Store {
	return &Store{
		tokens:    cmap.New[string, *domain.TokenRecord](),
		users:     newUserIndex(),
		directory: cmap.New[string, *domain.UserRecord](),
	}
}

// Insert persists a new token record.
func (s *Store) Insert(_ context.Context, rec *domain.TokenRecord) error {
	if err := rec.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.tokens.Has(rec.Token) {
		return domain.ErrTokenConflict
	}

	s.tokens.Set(rec.Token, rec.Clone())
	s.users.Add(rec.User, rec.Token)
	return nil
}

// Get retrieves a token record by token value.
func (s *Store) Get(_ context.Context, tok string) (*domain.TokenRecord, error) {
	rec, ok := s.tokens.Get(tok)
	if !ok {
		return nil, domain.ErrTokenNotFound
	}
	return rec.Clone(), nil
}

// ListByUser retrieves all token records owned by user.
func (s *Store) ListByUser(_ context.Context, user string) ([]*domain.TokenRecord, error) {
	var recs []*domain.TokenRecord
	for _, tok := range s.users.Get(user) {
		rec, ok := s.tokens.Get(tok)
		if !ok {
			continue
		}
		recs = append(recs, rec.Clone())
	}
	return recs, nil
}

// Revoke performs the conditional revoke of a token record under the
// store lock. An already-revoked record is returned unchanged.
func (s *Store) Revoke(_ context.Context, tok string, entry domain.HistoryEntry) (*domain.TokenRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.tokens.Get(tok)
	if !ok {
		return nil, domain.ErrTokenNotFound
	}
	if rec.User != entry.OperatingUser {
		return nil, domain.ErrNotOwner
	}
	if rec.IsRevoked() {
		return rec.Clone(), nil
	}

	updated := rec.Clone()
	updated.Status = domain.StatusRevoked
	updated.History = append(updated.History, entry)
	s.tokens.Set(tok, updated)

	return updated.Clone(), nil
}

// Count returns the number of stored token records.
func (s *Store) Count() int {
	return s.tokens.Count()
}

// CountByUser returns the number of token records owned by user.
func (s *Store) CountByUser(user string) int {
	return s.users.Count(user)
}

// GetUser retrieves a user directory record.
func (s *Store) GetUser(_ context.Context, user string) (*domain.UserRecord, error) {
	rec, ok := s.directory.Get(user)
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return rec.Clone(), nil
}

// UpsertUser creates or replaces a user directory record.
func (s *Store) UpsertUser(_ context.Context, rec *domain.UserRecord) error {
	if err := rec.Validate(); err != nil {
		return err
	}
	s.directory.Set(rec.User, rec.Clone())
	return nil
}

// DeleteUser removes a user directory record.
func (s *Store) DeleteUser(_ context.Context, user string) error {
	if _, ok := s.directory.Pop(user); !ok {
		return domain.ErrUserNotFound
	}
	return nil
}
