package api

import (
	"encoding/json/v2"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/bookstacksapp/bookstacks-server/internal/domain"
	apperrors "github.com/bookstacksapp/bookstacks-server/internal/errors"
	"github.com/bookstacksapp/bookstacks-server/internal/http/response"
	"github.com/bookstacksapp/bookstacks-server/internal/search"
	"github.com/bookstacksapp/bookstacks-server/internal/service"
)

// BookListResponse is the body of every book listing.
type BookListResponse struct {
	Books []*domain.Book `json:"books"`
}

// BookResponse is the body returned by book writes.
type BookResponse struct {
	Success bool         `json:"success"`
	Book    *domain.Book `json:"book"`
}

// DeleteResponse is the body returned by deletes.
type DeleteResponse struct {
	Success bool `json:"success"`
}

// handleListBooks returns the whole public catalog.
func (s *Server) handleListBooks(w http.ResponseWriter, r *http.Request) {
	books, err := s.bookService.ListAll(r.Context())
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, BookListResponse{Books: nonNilBooks(books)}, s.logger)
}

// handleListMyBooks returns the caller's own books.
func (s *Server) handleListMyBooks(w http.ResponseWriter, r *http.Request) {
	books, err := s.bookService.ListMine(r.Context(), getUserID(r.Context()))
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, BookListResponse{Books: nonNilBooks(books)}, s.logger)
}

// handleListCollectionBooks returns one collection's books for the public
// detail page. An unknown collection yields an empty list and a null
// collection rather than an error.
func (s *Server) handleListCollectionBooks(w http.ResponseWriter, r *http.Request) {
	collectionID := chi.URLParam(r, "collectionID")

	result, err := s.bookService.ListByCollection(r.Context(), collectionID)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	result.Books = nonNilBooks(result.Books)
	response.Success(w, result, s.logger)
}

// handleCreateBook adds a book to one of the caller's collections.
func (s *Server) handleCreateBook(w http.ResponseWriter, r *http.Request) {
	var params service.CreateBookParams
	if err := json.UnmarshalRead(r.Body, &params); err != nil {
		response.HandleError(w, apperrors.InvalidRequest("invalid request body"), s.logger)
		return
	}

	if err := s.validator.Validate(params); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	book, err := s.bookService.Create(r.Context(), getUserID(r.Context()), params)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Created(w, BookResponse{Success: true, Book: book}, s.logger)
}

// handleUpdateBook merges the supplied fields over one of the caller's books.
func (s *Server) handleUpdateBook(w http.ResponseWriter, r *http.Request) {
	bookID := chi.URLParam(r, "id")

	var params service.UpdateBookParams
	if err := json.UnmarshalRead(r.Body, &params); err != nil {
		response.HandleError(w, apperrors.InvalidRequest("invalid request body"), s.logger)
		return
	}

	book, err := s.bookService.Update(r.Context(), getUserID(r.Context()), bookID, params)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, BookResponse{Success: true, Book: book}, s.logger)
}

// handleDeleteBook removes one of the caller's books.
func (s *Server) handleDeleteBook(w http.ResponseWriter, r *http.Request) {
	bookID := chi.URLParam(r, "id")

	if err := s.bookService.Delete(r.Context(), getUserID(r.Context()), bookID); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, DeleteResponse{Success: true}, s.logger)
}

// handleSearch runs a full-text query over the catalog.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	params := search.DefaultParams()
	params.Query = r.URL.Query().Get("q")

	if limit := r.URL.Query().Get("limit"); limit != "" {
		if n, err := strconv.Atoi(limit); err == nil && n > 0 && n <= 100 {
			params.Limit = n
		}
	}
	if offset := r.URL.Query().Get("offset"); offset != "" {
		if n, err := strconv.Atoi(offset); err == nil && n >= 0 {
			params.Offset = n
		}
	}

	result, err := s.bookService.Search(r.Context(), params)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, result, s.logger)
}

// nonNilBooks normalizes a nil slice so listings serialize as [] instead
// of null.
func nonNilBooks(books []*domain.Book) []*domain.Book {
	if books == nil {
		return []*domain.Book{}
	}
	return books
}
