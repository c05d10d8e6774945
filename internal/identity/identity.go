// Package identity separates client-minted identifiers from persisted ones.
package identity

import (
	"strings"

	"github.com/google/uuid"
)

// TempPrefix marks an identifier minted in this editing session.
const TempPrefix = "temp-"

// NewTemp returns a fresh temporary identifier.
func NewTemp() string {
	return TempPrefix + uuid.NewString()
}

// IsTemporary reports whether id was minted locally and has not yet been
// confirmed by the persistence API.
func IsTemporary(id string) bool {
	return strings.HasPrefix(id, TempPrefix)
}

// ToWireID returns nil for temporary (or empty) ids so the persistence API
// creates the entity, and the id itself otherwise so it updates in place.
func ToWireID(id string) *string {
	if id == "" || IsTemporary(id) {
		return nil
	}
	return &id
}
