package domain

import (
	"github.com/google/uuid"
)

// Scope identifies which corpus partition an entry or sentence belongs to:
// the shared global corpus (built offline, read-only at runtime) or one
// user's personal corpus. Personal data is only ever visible to its owner.
type Scope struct {
	// userID is uuid.Nil for the global scope.
	userID uuid.UUID
}

// GlobalScope returns the scope of the shared corpus.
func GlobalScope() Scope {
	return Scope{}
}

// UserScope returns the personal scope of the given user.
func UserScope(userID uuid.UUID) Scope {
	return Scope{userID: userID}
}

// IsGlobal reports whether the scope is the shared global corpus.
func (s Scope) IsGlobal() bool {
	return s.userID == uuid.Nil
}

// UserID returns the owning user and false for the global scope.
func (s Scope) UserID() (uuid.UUID, bool) {
	if s.userID == uuid.Nil {
		return uuid.Nil, false
	}
	return s.userID, true
}

func (s Scope) String() string {
	if s.IsGlobal() {
		return "global"
	}
	return "user:" + s.userID.String()
}
