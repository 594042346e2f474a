// Package policy holds the authorization rules for resource access.
// It is deliberately free of I/O and persistence concerns so the rules
// can be tested on their own.
package policy

import "github.com/google/uuid"

// Subject is the authenticated principal an access decision is made for.
type Subject interface {
	SubjectID() uuid.UUID
	IsAdmin() bool
}

// CanManage reports whether the subject may read or mutate a resource
// owned by ownerID. Admins may manage anything; everyone else only
// their own resources.
func CanManage(s Subject, ownerID uuid.UUID) bool {
	if s.IsAdmin() {
		return true
	}
	return s.SubjectID() == ownerID
}

// IsSelf reports whether the subject is the account identified by
// userID. Account-level operations (profile update, password change,
// deletion) are self-only and not admin-overridable.
func IsSelf(s Subject, userID uuid.UUID) bool {
	return s.SubjectID() == userID
}
