package api

import (
	"encoding/json/v2"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/bookstacksapp/bookstacks-server/internal/domain"
	apperrors "github.com/bookstacksapp/bookstacks-server/internal/errors"
	"github.com/bookstacksapp/bookstacks-server/internal/http/response"
	"github.com/bookstacksapp/bookstacks-server/internal/service"
)

// CollectionListResponse is the body of the public all-collections listing.
type CollectionListResponse struct {
	Collections []service.CollectionWithOwner `json:"collections"`
}

// UserCollectionsResponse is the body of one user's public collection listing.
type UserCollectionsResponse struct {
	Collections []*domain.Collection `json:"collections"`
	UserName    string               `json:"userName"`
}

// MyCollectionsResponse is the body of the caller's own collection listing.
type MyCollectionsResponse struct {
	Collections []*domain.Collection `json:"collections"`
}

// CollectionResponse is the body returned by collection writes.
type CollectionResponse struct {
	Success    bool               `json:"success"`
	Collection *domain.Collection `json:"collection"`
}

// handleListCollections returns every collection, enriched with owner names.
func (s *Server) handleListCollections(w http.ResponseWriter, r *http.Request) {
	collections, err := s.collectionService.ListAll(r.Context())
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	if collections == nil {
		collections = []service.CollectionWithOwner{}
	}
	response.Success(w, CollectionListResponse{Collections: collections}, s.logger)
}

// handleListUserCollections returns one user's collections plus their
// display name. Unknown users get an empty list, not an error.
func (s *Server) handleListUserCollections(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	collections, userName, err := s.collectionService.ListByUser(r.Context(), userID)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, UserCollectionsResponse{
		Collections: nonNilCollections(collections),
		UserName:    userName,
	}, s.logger)
}

// handleListMyCollections returns the caller's own collections.
func (s *Server) handleListMyCollections(w http.ResponseWriter, r *http.Request) {
	collections, err := s.collectionService.ListMine(r.Context(), getUserID(r.Context()))
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, MyCollectionsResponse{Collections: nonNilCollections(collections)}, s.logger)
}

// handleCreateCollection creates a new collection owned by the caller.
func (s *Server) handleCreateCollection(w http.ResponseWriter, r *http.Request) {
	var params service.CreateCollectionParams
	if err := json.UnmarshalRead(r.Body, &params); err != nil {
		response.HandleError(w, apperrors.InvalidRequest("invalid request body"), s.logger)
		return
	}

	if err := s.validator.Validate(params); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	collection, err := s.collectionService.Create(r.Context(), getUserID(r.Context()), params)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Created(w, CollectionResponse{Success: true, Collection: collection}, s.logger)
}

// handleDeleteCollection removes one of the caller's collections together
// with all its books.
func (s *Server) handleDeleteCollection(w http.ResponseWriter, r *http.Request) {
	collectionID := chi.URLParam(r, "id")

	if err := s.collectionService.Delete(r.Context(), getUserID(r.Context()), collectionID); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, DeleteResponse{Success: true}, s.logger)
}

// nonNilCollections normalizes a nil slice so listings serialize as []
// instead of null.
func nonNilCollections(collections []*domain.Collection) []*domain.Collection {
	if collections == nil {
		return []*domain.Collection{}
	}
	return collections
}
