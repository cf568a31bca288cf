package domain

import "time"

// Collection is a user-owned grouping of books. The owner (UserID) is set
// at creation and never changes; deleting a collection cascades to every
// book that references it.
type Collection struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	UserID      string    `json:"userId"`
	CreatedAt   time.Time `json:"createdAt"`
}

// OwnedBy reports whether the collection belongs to the given user.
func (c *Collection) OwnedBy(userID string) bool {
	return c.UserID == userID
}
