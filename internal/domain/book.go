package domain

import "time"

// Book is a catalog entry inside a collection. UserID is fixed at creation
// and always equals the owning collection's UserID at that moment; since
// collection ownership is immutable the invariant holds permanently.
// CollectionID may be changed by an update.
type Book struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Author       string    `json:"author"`
	Description  string    `json:"description"`
	CoverImage   string    `json:"coverImage"`
	CollectionID string    `json:"collectionId"`
	UserID       string    `json:"userId"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt,omitzero"`
}

// OwnedBy reports whether the book belongs to the given user.
func (b *Book) OwnedBy(userID string) bool {
	return b.UserID == userID
}

// InCollection reports whether the book references the given collection.
func (b *Book) InCollection(collectionID string) bool {
	return b.CollectionID == collectionID
}
