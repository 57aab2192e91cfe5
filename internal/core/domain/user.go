package domain

// UserRecord is a user's directory entry.
//
// Records are read-only to the token engine: group membership is owned by
// the external directory synchronization process.
type UserRecord struct {
	// User is the identity string, unique across the directory.
	User string `json:"user"`

	// Groups is the set of group identifiers the user belongs to.
	// A nil or empty slice both mean "no memberships".
	Groups []string `json:"groups,omitempty"`
}

// HasAllGroups reports whether the user's group set contains every element
// of required. Comparison is exact string match, order-independent.
//
// An empty required set is vacuously satisfied.
func (u *UserRecord) HasAllGroups(required []string) bool {
	if len(required) == 0 {
		return true
	}
	if len(u.Groups) == 0 {
		return false
	}

	have := make(map[string]struct{}, len(u.Groups))
	for _, g := range u.Groups {
		have[g] = struct{}{}
	}
	for _, g := range required {
		if _, ok := have[g]; !ok {
			return false
		}
	}
	return true
}

// Clone creates a deep copy of the record.
func (u *UserRecord) Clone() *UserRecord {
	clone := *u
	if u.Groups != nil {
		clone.Groups = make([]string, len(u.Groups))
		copy(clone.Groups, u.Groups)
	}
	return &clone
}

// Validate checks the record's structural invariants.
func (u *UserRecord) Validate() error {
	if u.User == "" {
		return ErrMissingArgument.WithDetails("user is required")
	}
	return nil
}
