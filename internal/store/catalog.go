package store

import (
	"context"
	"fmt"

	"github.com/bookstacksapp/bookstacks-server/internal/domain"
)

// BooksByCollection returns all books referencing the given collection.
// Full prefix scan, filtered in memory; there is no secondary index.
func (s *Store) BooksByCollection(ctx context.Context, collectionID string) ([]*domain.Book, error) {
	return s.Books.Filter(ctx, func(b *domain.Book) bool {
		return b.InCollection(collectionID)
	})
}

// BooksByUser returns all books owned by the given user.
func (s *Store) BooksByUser(ctx context.Context, userID string) ([]*domain.Book, error) {
	return s.Books.Filter(ctx, func(b *domain.Book) bool {
		return b.OwnedBy(userID)
	})
}

// CollectionsByUser returns all collections owned by the given user.
func (s *Store) CollectionsByUser(ctx context.Context, userID string) ([]*domain.Collection, error) {
	return s.Collections.Filter(ctx, func(c *domain.Collection) bool {
		return c.OwnedBy(userID)
	})
}

// DeleteCollectionCascade deletes a collection together with every book
// that references it. All deletes go through a single WriteBatch so the
// cascade commits atomically: a crash mid-delete cannot leave orphaned
// books referencing a deleted collection.
// Returns the IDs of the deleted books so callers can clean up derived
// state (e.g. the search index).
func (s *Store) DeleteCollectionCascade(ctx context.Context, collectionID string) ([]string, error) {
	members, err := s.BooksByCollection(ctx, collectionID)
	if err != nil {
		return nil, fmt.Errorf("scan collection books: %w", err)
	}

	batch := s.db.NewWriteBatch()
	defer batch.Cancel()

	bookIDs := make([]string, 0, len(members))
	for _, book := range members {
		if err := batch.Delete([]byte(bookPrefix + book.ID)); err != nil {
			return nil, fmt.Errorf("batch delete book %s: %w", book.ID, err)
		}
		bookIDs = append(bookIDs, book.ID)
	}

	if err := batch.Delete([]byte(collectionPrefix + collectionID)); err != nil {
		return nil, fmt.Errorf("batch delete collection: %w", err)
	}

	if err := batch.Flush(); err != nil {
		return nil, fmt.Errorf("flush cascade delete: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("collection deleted with cascade",
			"collection_id", collectionID,
			"books_deleted", len(bookIDs),
		)
	}

	return bookIDs, nil
}
