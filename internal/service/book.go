package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/bookstacksapp/bookstacks-server/internal/domain"
	apperrors "github.com/bookstacksapp/bookstacks-server/internal/errors"
	"github.com/bookstacksapp/bookstacks-server/internal/id"
	"github.com/bookstacksapp/bookstacks-server/internal/search"
	"github.com/bookstacksapp/bookstacks-server/internal/store"
)

// BookService orchestrates book operations with ownership enforcement
// and keeps the search index in sync with the store.
type BookService struct {
	store  *store.Store
	search *search.Index
	logger *slog.Logger
}

// NewBookService creates a new book service.
func NewBookService(store *store.Store, searchIndex *search.Index, logger *slog.Logger) *BookService {
	return &BookService{
		store:  store,
		search: searchIndex,
		logger: logger,
	}
}

// CreateBookParams is the book creation request body.
type CreateBookParams struct {
	Title        string `json:"title" validate:"required"`
	Author       string `json:"author"`
	Description  string `json:"description"`
	CoverImage   string `json:"coverImage" validate:"omitempty,url"`
	CollectionID string `json:"collectionId" validate:"required"`
}

// UpdateBookParams is the book update request body. Text fields keep the
// stored value when empty; Description is replaced whenever the field is
// present, so an explicit empty string clears it. The asymmetry is
// long-standing API behavior that clients rely on.
type UpdateBookParams struct {
	Title        string  `json:"title"`
	Author       string  `json:"author"`
	Description  *string `json:"description"`
	CoverImage   string  `json:"coverImage"`
	CollectionID string  `json:"collectionId"`
}

// BooksInCollection pairs a collection with its member books for the
// public collection detail listing. Collection is null when the ID does
// not resolve.
type BooksInCollection struct {
	Books      []*domain.Book     `json:"books"`
	Collection *domain.Collection `json:"collection"`
}

// Create adds a book to one of the caller's collections. The referenced
// collection must exist and be owned by the caller; both failures get the
// same error.
func (s *BookService) Create(ctx context.Context, userID string, params CreateBookParams) (*domain.Book, error) {
	collection, err := s.store.Collections.Get(ctx, params.CollectionID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperrors.Forbidden("collection not found or not owned by you")
	}
	if err != nil {
		return nil, apperrors.Internal("get collection").WithCause(err)
	}
	if !collection.OwnedBy(userID) {
		return nil, apperrors.Forbidden("collection not found or not owned by you")
	}

	bookID, err := id.Generate("book")
	if err != nil {
		return nil, apperrors.Internal("generate book ID").WithCause(err)
	}

	book := &domain.Book{
		ID:           bookID,
		Title:        params.Title,
		Author:       params.Author,
		Description:  params.Description,
		CoverImage:   params.CoverImage,
		CollectionID: params.CollectionID,
		UserID:       userID,
		CreatedAt:    time.Now().UTC(),
	}

	if err := s.store.Books.Create(ctx, bookID, book); err != nil {
		return nil, apperrors.Internal("create book").WithCause(err)
	}

	s.indexBook(book)

	s.logger.Info("book created",
		"book_id", bookID,
		"collection_id", params.CollectionID,
		"user_id", userID,
	)

	return book, nil
}

// Update merges the supplied fields over the stored book and stamps
// UpdatedAt. Only the owner may update; a missing book gets the same
// response as someone else's. A changed CollectionID is accepted without
// re-checking ownership of the target collection.
func (s *BookService) Update(ctx context.Context, userID, bookID string, params UpdateBookParams) (*domain.Book, error) {
	book, err := s.getOwned(ctx, userID, bookID)
	if err != nil {
		return nil, err
	}

	if params.Title != "" {
		book.Title = params.Title
	}
	if params.Author != "" {
		book.Author = params.Author
	}
	if params.Description != nil {
		book.Description = *params.Description
	}
	if params.CoverImage != "" {
		book.CoverImage = params.CoverImage
	}
	if params.CollectionID != "" {
		book.CollectionID = params.CollectionID
	}
	book.UpdatedAt = time.Now().UTC()

	if err := s.store.Books.Update(ctx, bookID, book); err != nil {
		return nil, apperrors.Internal("update book").WithCause(err)
	}

	s.indexBook(book)

	s.logger.Info("book updated", "book_id", bookID, "user_id", userID)

	return book, nil
}

// Delete removes a single book. Only the owner may delete.
func (s *BookService) Delete(ctx context.Context, userID, bookID string) error {
	if _, err := s.getOwned(ctx, userID, bookID); err != nil {
		return err
	}

	if err := s.store.Books.Delete(ctx, bookID); err != nil {
		return apperrors.Internal("delete book").WithCause(err)
	}

	if err := s.search.DeleteDocument(bookID); err != nil {
		s.logger.Warn("failed to remove book from search index",
			"book_id", bookID,
			"error", err,
		)
	}

	s.logger.Info("book deleted", "book_id", bookID, "user_id", userID)

	return nil
}

// ListAll returns every book in the catalog.
func (s *BookService) ListAll(ctx context.Context) ([]*domain.Book, error) {
	books, err := s.store.Books.All(ctx)
	if err != nil {
		return nil, apperrors.Internal("list books").WithCause(err)
	}
	return books, nil
}

// ListMine returns the caller's own books.
func (s *BookService) ListMine(ctx context.Context, userID string) ([]*domain.Book, error) {
	books, err := s.store.BooksByUser(ctx, userID)
	if err != nil {
		return nil, apperrors.Internal("list books").WithCause(err)
	}
	return books, nil
}

// ListByCollection returns the books of one collection plus the
// collection itself. An unknown collection yields an empty list and a
// null collection, not an error.
func (s *BookService) ListByCollection(ctx context.Context, collectionID string) (*BooksInCollection, error) {
	books, err := s.store.BooksByCollection(ctx, collectionID)
	if err != nil {
		return nil, apperrors.Internal("list collection books").WithCause(err)
	}

	result := &BooksInCollection{Books: books}

	collection, err := s.store.Collections.Get(ctx, collectionID)
	if err == nil {
		result.Collection = collection
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, apperrors.Internal("get collection").WithCause(err)
	}

	return result, nil
}

// Search runs a full-text query over the catalog.
func (s *BookService) Search(ctx context.Context, params search.Params) (*search.Result, error) {
	result, err := s.search.Search(ctx, params)
	if err != nil {
		return nil, apperrors.Internal("search").WithCause(err)
	}
	return result, nil
}

// Reindex rebuilds the search index from the store. Run at startup so
// the derived index never drifts far from the source of truth.
func (s *BookService) Reindex(ctx context.Context) error {
	books, err := s.store.Books.All(ctx)
	if err != nil {
		return apperrors.Internal("load books for reindex").WithCause(err)
	}

	docs := make([]*search.Document, 0, len(books))
	for _, b := range books {
		docs = append(docs, search.DocumentFromBook(b))
	}

	if err := s.search.IndexDocuments(docs); err != nil {
		return apperrors.Internal("reindex books").WithCause(err)
	}

	s.logger.Info("search index rebuilt", "books", len(docs))
	return nil
}

// getOwned fetches a book and verifies ownership, collapsing absence and
// foreign ownership into one error.
func (s *BookService) getOwned(ctx context.Context, userID, bookID string) (*domain.Book, error) {
	book, err := s.store.Books.Get(ctx, bookID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperrors.Forbidden("book not found or not owned by you")
	}
	if err != nil {
		return nil, apperrors.Internal("get book").WithCause(err)
	}
	if !book.OwnedBy(userID) {
		return nil, apperrors.Forbidden("book not found or not owned by you")
	}
	return book, nil
}

// indexBook writes a book into the search index, logging on failure. The
// index is derived state; indexing failures never fail the write path.
func (s *BookService) indexBook(book *domain.Book) {
	if err := s.search.IndexDocument(search.DocumentFromBook(book)); err != nil {
		s.logger.Warn("failed to index book",
			"book_id", book.ID,
			"error", err,
		)
	}
}
