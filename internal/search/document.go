// Package search provides full-text search over the book catalog using
// Bleve. Books are indexed on write and removed on delete; the index is
// derived state and can always be rebuilt from the store.
package search

import (
	"github.com/bookstacksapp/bookstacks-server/internal/domain"
)

// Document is the shape of a book in the Bleve index.
type Document struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Author      string `json:"author"`
	Description string `json:"description"`
	CreatedAt   int64  `json:"created_at"` // Unix millis
}

// DocumentFromBook maps a catalog book to its index document.
func DocumentFromBook(book *domain.Book) *Document {
	return &Document{
		ID:          book.ID,
		Title:       book.Title,
		Author:      book.Author,
		Description: book.Description,
		CreatedAt:   book.CreatedAt.UnixMilli(),
	}
}

// ToMap converts the document to a map with lowercase field names.
// Bleve indexes Go struct field names (capitalized) by default, but the
// mapping uses lowercase names, so we convert explicitly.
func (d *Document) ToMap() map[string]interface{} {
	return map[string]interface{}{
		"id":          d.ID,
		"title":       d.Title,
		"author":      d.Author,
		"description": d.Description,
		"created_at":  d.CreatedAt,
	}
}
