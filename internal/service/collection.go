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

// CollectionService orchestrates collection operations with ownership
// enforcement. Absence and lack of ownership are reported identically so
// callers cannot probe which collections exist.
type CollectionService struct {
	store  *store.Store
	search *search.Index
	logger *slog.Logger
}

// NewCollectionService creates a new collection service.
func NewCollectionService(store *store.Store, searchIndex *search.Index, logger *slog.Logger) *CollectionService {
	return &CollectionService{
		store:  store,
		search: searchIndex,
		logger: logger,
	}
}

// CreateCollectionParams is the collection creation request body.
type CreateCollectionParams struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
}

// CollectionWithOwner is a collection enriched with its owner's display
// name for public listings.
type CollectionWithOwner struct {
	*domain.Collection
	UserName string `json:"userName"`
}

// Create creates a new collection owned by the caller.
func (s *CollectionService) Create(ctx context.Context, userID string, params CreateCollectionParams) (*domain.Collection, error) {
	collectionID, err := id.Generate("collection")
	if err != nil {
		return nil, apperrors.Internal("generate collection ID").WithCause(err)
	}

	collection := &domain.Collection{
		ID:          collectionID,
		Name:        params.Name,
		Description: params.Description,
		UserID:      userID,
		CreatedAt:   time.Now().UTC(),
	}

	if err := s.store.Collections.Create(ctx, collectionID, collection); err != nil {
		return nil, apperrors.Internal("create collection").WithCause(err)
	}

	s.logger.Info("collection created",
		"collection_id", collectionID,
		"user_id", userID,
		"name", params.Name,
	)

	return collection, nil
}

// ListAll returns every collection in the catalog, each enriched with its
// owner's display name.
func (s *CollectionService) ListAll(ctx context.Context) ([]CollectionWithOwner, error) {
	collections, err := s.store.Collections.All(ctx)
	if err != nil {
		return nil, apperrors.Internal("list collections").WithCause(err)
	}

	names, err := s.ownerNames(ctx)
	if err != nil {
		return nil, err
	}

	enriched := make([]CollectionWithOwner, 0, len(collections))
	for _, c := range collections {
		enriched = append(enriched, CollectionWithOwner{
			Collection: c,
			UserName:   names.lookup(c.UserID),
		})
	}
	return enriched, nil
}

// ListByUser returns the collections of one user plus that user's display
// name. An unknown user yields an empty list and a placeholder name, not
// an error.
func (s *CollectionService) ListByUser(ctx context.Context, userID string) ([]*domain.Collection, string, error) {
	collections, err := s.store.CollectionsByUser(ctx, userID)
	if err != nil {
		return nil, "", apperrors.Internal("list user collections").WithCause(err)
	}

	userName := domain.UnknownUserName
	if user, err := s.store.Users.Get(ctx, userID); err == nil {
		userName = user.DisplayName()
	}

	return collections, userName, nil
}

// ListMine returns the caller's own collections.
func (s *CollectionService) ListMine(ctx context.Context, userID string) ([]*domain.Collection, error) {
	collections, err := s.store.CollectionsByUser(ctx, userID)
	if err != nil {
		return nil, apperrors.Internal("list collections").WithCause(err)
	}
	return collections, nil
}

// Delete removes a collection and every book in it. Only the owner may
// delete; a missing collection gets the same response as someone else's.
func (s *CollectionService) Delete(ctx context.Context, userID, collectionID string) error {
	collection, err := s.store.Collections.Get(ctx, collectionID)
	if errors.Is(err, store.ErrNotFound) {
		return apperrors.Forbidden("collection not found or not owned by you")
	}
	if err != nil {
		return apperrors.Internal("get collection").WithCause(err)
	}
	if !collection.OwnedBy(userID) {
		return apperrors.Forbidden("collection not found or not owned by you")
	}

	deletedBooks, err := s.store.DeleteCollectionCascade(ctx, collectionID)
	if err != nil {
		return apperrors.Internal("delete collection").WithCause(err)
	}

	// The index is derived state; a failed cleanup is logged, not surfaced.
	if len(deletedBooks) > 0 {
		if err := s.search.DeleteDocuments(deletedBooks); err != nil {
			s.logger.Warn("failed to remove books from search index",
				"collection_id", collectionID,
				"error", err,
			)
		}
	}

	return nil
}

type nameTable map[string]string

func (t nameTable) lookup(userID string) string {
	if name, ok := t[userID]; ok {
		return name
	}
	return domain.UnknownUserName
}

// ownerNames loads all users once for listing enrichment, avoiding a
// store read per collection.
func (s *CollectionService) ownerNames(ctx context.Context) (nameTable, error) {
	users, err := s.store.Users.All(ctx)
	if err != nil {
		return nil, apperrors.Internal("list users").WithCause(err)
	}

	names := make(nameTable, len(users))
	for _, u := range users {
		names[u.ID] = u.DisplayName()
	}
	return names, nil
}
