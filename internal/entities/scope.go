package entities

// Scope is the ownership context a mapping operation runs in: either the
// public (anonymous) scope, or the scope of a single authenticated owner.
// Duplicate-URL checks and listings never cross scope boundaries.
type Scope struct {
	userID *string
}

// PublicScope returns the anonymous scope, matching only ownerless mappings.
func PublicScope() Scope {
	return Scope{}
}

// OwnedScope returns the scope of a specific owner.
func OwnedScope(userID string) Scope {
	return Scope{userID: &userID}
}

// Owned reports whether the scope belongs to an authenticated owner.
func (s Scope) Owned() bool {
	return s.userID != nil
}

// UserID returns the owner's ID, or nil for the public scope.
func (s Scope) UserID() *string {
	return s.userID
}
