// Package domain defines the core catalog types stored in the key-value store.
package domain

import "time"

// User represents a catalog account. Identity (ID) is assigned by the
// external auth provider at signup; we only mirror the profile fields here.
// Users are never deleted in-band.
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Bio       string    `json:"bio,omitempty"`
	UpdatedAt time.Time `json:"updatedAt,omitzero"`
}

// DisplayName returns the best available name for public listings.
// Falls back to the email when the profile has no name set.
func (u *User) DisplayName() string {
	if u.Name != "" {
		return u.Name
	}
	return u.Email
}

// UnknownUserName is the sentinel shown when a record references a user
// that no longer resolves (e.g. the owner key is missing from the store).
const UnknownUserName = "Unknown User"
