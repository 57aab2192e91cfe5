package service

import (
	"context"

	"github.com/gatewarden/gatewarden-go/internal/core/domain"
)

// UserDirectory defines the read-only lookup of user directory records.
//
// Group membership data is owned by the external directory synchronization
// process; the engine never writes through this interface.
type UserDirectory interface {
	// GetUser retrieves exactly one user record. Returns ErrUserNotFound
	// when zero (or more than one) records match.
	GetUser(ctx context.Context, user string) (*domain.UserRecord, error)
}

// MembershipService evaluates group membership requirements against the
// user directory.
type MembershipService struct {
	directory UserDirectory
}

// NewMembershipService creates a new MembershipService.
func NewMembershipService(directory UserDirectory) *MembershipService {
	return &MembershipService{directory: directory}
}

// Evaluate reports whether user belongs to every group in requiredGroups.
//
// An empty requirement is vacuously satisfied and returns true without
// consulting the directory, even for users with no stored groups. A user
// that cannot be resolved to exactly one record is an error, not false.
func (s *MembershipService) Evaluate(ctx context.Context, requiredGroups []string, user string) (bool, error) {
	if user == "" {
		return false, domain.ErrMissingArgument.WithDetails("user is required")
	}

	if len(requiredGroups) == 0 {
		return true, nil
	}

	rec, err := s.directory.GetUser(ctx, user)
	if err != nil {
		return false, err
	}

	return rec.HasAllGroups(requiredGroups), nil
}
