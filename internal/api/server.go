// Package api provides the HTTP API server and handlers for the BookStacks catalog.
package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/bookstacksapp/bookstacks-server/internal/auth"
	"github.com/bookstacksapp/bookstacks-server/internal/ratelimit"
	"github.com/bookstacksapp/bookstacks-server/internal/service"
	"github.com/bookstacksapp/bookstacks-server/internal/store"
	"github.com/bookstacksapp/bookstacks-server/internal/validation"
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	store             *store.Store
	provider          auth.Provider
	userService       *service.UserService
	bookService       *service.BookService
	collectionService *service.CollectionService
	validator         *validation.Validator
	signupLimiter     *ratelimit.KeyedLimiter
	router            *chi.Mux
	logger            *slog.Logger
}

// Options configures the server.
type Options struct {
	Store             *store.Store
	Provider          auth.Provider
	UserService       *service.UserService
	BookService       *service.BookService
	CollectionService *service.CollectionService
	SignupLimiter     *ratelimit.KeyedLimiter
	CORSOrigins       []string
	Logger            *slog.Logger
}

// NewServer creates a new HTTP server with all routes configured.
func NewServer(opts Options) *Server {
	s := &Server{
		store:             opts.Store,
		provider:          opts.Provider,
		userService:       opts.UserService,
		bookService:       opts.BookService,
		collectionService: opts.CollectionService,
		validator:         validation.New(),
		signupLimiter:     opts.SignupLimiter,
		router:            chi.NewRouter(),
		logger:            opts.Logger,
	}

	s.setupMiddleware(opts.CORSOrigins)
	s.setupRoutes()

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// setupMiddleware configures the middleware stack.
func (s *Server) setupMiddleware(corsOrigins []string) {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: corsOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	// Health check.
	s.router.Get("/health", s.handleHealthCheck)

	// API v1.
	s.router.Route("/api/v1", func(r chi.Router) {
		// Public endpoints.
		r.With(s.limitSignup).Post("/signup", s.handleSignUp)
		r.Get("/books", s.handleListBooks)
		r.Get("/collections", s.handleListCollections)
		r.Get("/user/{userID}/collections", s.handleListUserCollections)
		r.Get("/collection/{collectionID}/books", s.handleListCollectionBooks)
		r.Get("/search", s.handleSearch)

		// Caller-scoped endpoints (bearer token required).
		r.Route("/my", func(r chi.Router) {
			r.Use(s.requireAuth)

			r.Get("/books", s.handleListMyBooks)
			r.Post("/books", s.handleCreateBook)
			r.Put("/books/{id}", s.handleUpdateBook)
			r.Delete("/books/{id}", s.handleDeleteBook)

			r.Get("/collections", s.handleListMyCollections)
			r.Post("/collections", s.handleCreateCollection)
			r.Delete("/collections/{id}", s.handleDeleteCollection)

			r.Get("/profile", s.handleGetProfile)
			r.Put("/profile", s.handleUpdateProfile)
		})
	})
}
