package api

import (
	"bytes"
	"context"
	"encoding/json/v2"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookstacksapp/bookstacks-server/internal/auth"
	"github.com/bookstacksapp/bookstacks-server/internal/ratelimit"
	"github.com/bookstacksapp/bookstacks-server/internal/search"
	"github.com/bookstacksapp/bookstacks-server/internal/service"
	"github.com/bookstacksapp/bookstacks-server/internal/store"
)

// stubProvider is an in-memory identity provider keyed by token.
type stubProvider struct {
	identities map[string]*auth.Identity
	signUpErr  error
	nextID     string
}

func (p *stubProvider) SignUp(_ context.Context, email, _, name string) (*auth.Identity, error) {
	if p.signUpErr != nil {
		return nil, p.signUpErr
	}
	id := p.nextID
	if id == "" {
		id = "user-" + email
	}
	return &auth.Identity{ID: id, Email: email, Name: name}, nil
}

func (p *stubProvider) Introspect(_ context.Context, token string) (*auth.Identity, error) {
	identity, ok := p.identities[token]
	if !ok {
		return nil, auth.ErrTokenInvalid
	}
	return identity, nil
}

type testServer struct {
	*Server
	provider *stubProvider
	store    *store.Store
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	return newTestServerWithLimit(t, 100, 100)
}

func newTestServerWithLimit(t *testing.T, rps float64, burst int) *testServer {
	t.Helper()

	dir := t.TempDir()

	s, err := store.New(dir+"/db", nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	idx, err := search.NewIndex(dir, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = idx.Close() })

	logger := slog.New(slog.DiscardHandler)
	provider := &stubProvider{identities: map[string]*auth.Identity{
		"token-a": {ID: "user-a", Email: "a@example.com", Name: "Alice"},
		"token-b": {ID: "user-b", Email: "b@example.com", Name: "Bob"},
	}}

	limiter := ratelimit.New(rps, burst)
	t.Cleanup(limiter.Stop)

	srv := NewServer(Options{
		Store:             s,
		Provider:          provider,
		UserService:       service.NewUserService(s, provider, logger),
		BookService:       service.NewBookService(s, idx, logger),
		CollectionService: service.NewCollectionService(s, idx, logger),
		SignupLimiter:     limiter,
		CORSOrigins:       []string{"*"},
		Logger:            logger,
	})

	return &testServer{Server: srv, provider: provider, store: s}
}

// do sends a request through the router and decodes the JSON response.
func (ts *testServer) do(t *testing.T, method, path, token string, body any, out any) *httptest.ResponseRecorder {
	t.Helper()

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reqBody = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reqBody)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	w := httptest.NewRecorder()
	ts.ServeHTTP(w, req)

	if out != nil && w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), out))
	}

	return w
}

// createCollection creates a collection and returns its ID.
func (ts *testServer) createCollection(t *testing.T, token, name string) string {
	t.Helper()

	var resp CollectionResponse
	w := ts.do(t, http.MethodPost, "/api/v1/my/collections", token, map[string]string{
		"name": name,
	}, &resp)
	require.Equal(t, http.StatusCreated, w.Code)
	require.NotNil(t, resp.Collection)

	return resp.Collection.ID
}

// createBook creates a book and returns its ID.
func (ts *testServer) createBook(t *testing.T, token, collectionID, title string) string {
	t.Helper()

	var resp BookResponse
	w := ts.do(t, http.MethodPost, "/api/v1/my/books", token, map[string]string{
		"title":        title,
		"author":       "Test Author",
		"collectionId": collectionID,
	}, &resp)
	require.Equal(t, http.StatusCreated, w.Code)
	require.NotNil(t, resp.Book)

	return resp.Book.ID
}

func TestHealthCheck(t *testing.T) {
	ts := newTestServer(t)

	var resp HealthResponse
	w := ts.do(t, http.MethodGet, "/health", "", nil, &resp)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", resp.Status)
}

func TestSignUp(t *testing.T) {
	ts := newTestServer(t)
	ts.provider.nextID = "user-new"

	var resp SignUpResponse
	w := ts.do(t, http.MethodPost, "/api/v1/signup", "", map[string]string{
		"email":    "new@example.com",
		"password": "password123",
		"name":     "Newcomer",
	}, &resp)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.True(t, resp.Success)
	require.NotNil(t, resp.User)
	assert.Equal(t, "user-new", resp.User.ID)
}

func TestSignUp_MissingFields(t *testing.T) {
	ts := newTestServer(t)

	var resp struct {
		Success bool              `json:"success"`
		Error   string            `json:"error"`
		Fields  map[string]string `json:"fields"`
	}
	w := ts.do(t, http.MethodPost, "/api/v1/signup", "", map[string]string{
		"email": "new@example.com",
	}, &resp)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, resp.Success)
	assert.Contains(t, resp.Fields, "password")
	assert.Contains(t, resp.Fields, "name")
}

func TestSignUp_ProviderRejection(t *testing.T) {
	ts := newTestServer(t)
	ts.provider.signUpErr = &auth.ProviderError{Status: 409, Message: "email already registered"}

	var resp struct {
		Error string `json:"error"`
	}
	w := ts.do(t, http.MethodPost, "/api/v1/signup", "", map[string]string{
		"email":    "dup@example.com",
		"password": "password123",
		"name":     "Dup",
	}, &resp)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "email already registered", resp.Error)
}

func TestSignUp_RateLimited(t *testing.T) {
	ts := newTestServerWithLimit(t, 0.01, 2)

	body := map[string]string{
		"email":    "burst@example.com",
		"password": "password123",
		"name":     "Burst",
	}

	for i := 0; i < 2; i++ {
		w := ts.do(t, http.MethodPost, "/api/v1/signup", "", body, nil)
		require.Equal(t, http.StatusCreated, w.Code)
	}

	w := ts.do(t, http.MethodPost, "/api/v1/signup", "", body, nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
}

func TestProtectedRoutes_RequireToken(t *testing.T) {
	ts := newTestServer(t)

	paths := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/v1/my/books"},
		{http.MethodGet, "/api/v1/my/collections"},
		{http.MethodPost, "/api/v1/my/collections"},
		{http.MethodGet, "/api/v1/my/profile"},
		{http.MethodDelete, "/api/v1/my/books/book-x"},
	}

	for _, p := range paths {
		t.Run(p.method+" "+p.path, func(t *testing.T) {
			// No token at all.
			w := ts.do(t, p.method, p.path, "", nil, nil)
			assert.Equal(t, http.StatusUnauthorized, w.Code)

			// Garbage token.
			w = ts.do(t, p.method, p.path, "garbage", nil, nil)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
		})
	}
}

func TestPublicListings_EmptyCatalog(t *testing.T) {
	ts := newTestServer(t)

	assert.Contains(t, ts.do(t, http.MethodGet, "/api/v1/books", "", nil, nil).Body.String(), `"books":[]`)
	assert.Contains(t, ts.do(t, http.MethodGet, "/api/v1/collections", "", nil, nil).Body.String(), `"collections":[]`)
}

func TestCreateBook_OwnershipEnforced(t *testing.T) {
	ts := newTestServer(t)
	collectionID := ts.createCollection(t, "token-a", "Sci-Fi")

	// Owner can add a book.
	var resp BookResponse
	w := ts.do(t, http.MethodPost, "/api/v1/my/books", "token-a", map[string]string{
		"title":        "Dune",
		"collectionId": collectionID,
	}, &resp)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "user-a", resp.Book.UserID)

	// Someone else cannot target that collection.
	w = ts.do(t, http.MethodPost, "/api/v1/my/books", "token-b", map[string]string{
		"title":        "Intruder",
		"collectionId": collectionID,
	}, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestCreateBook_MissingFields(t *testing.T) {
	ts := newTestServer(t)

	var resp struct {
		Fields map[string]string `json:"fields"`
	}
	w := ts.do(t, http.MethodPost, "/api/v1/my/books", "token-a", map[string]string{
		"author": "Nobody",
	}, &resp)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, resp.Fields, "title")
	assert.Contains(t, resp.Fields, "collectionId")
}

func TestUpdateBook_PartialMerge(t *testing.T) {
	ts := newTestServer(t)
	collectionID := ts.createCollection(t, "token-a", "Sci-Fi")
	bookID := ts.createBook(t, "token-a", collectionID, "Dune")

	var resp BookResponse
	w := ts.do(t, http.MethodPut, "/api/v1/my/books/"+bookID, "token-a", map[string]string{
		"description": "Spice and sand.",
	}, &resp)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Dune", resp.Book.Title)
	assert.Equal(t, "Test Author", resp.Book.Author)
	assert.Equal(t, "Spice and sand.", resp.Book.Description)
	assert.False(t, resp.Book.UpdatedAt.IsZero())
}

func TestUpdateBook_ForeignBookIs403(t *testing.T) {
	ts := newTestServer(t)
	collectionID := ts.createCollection(t, "token-a", "Sci-Fi")
	bookID := ts.createBook(t, "token-a", collectionID, "Dune")

	w := ts.do(t, http.MethodPut, "/api/v1/my/books/"+bookID, "token-b", map[string]string{
		"title": "Stolen",
	}, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// Missing book looks exactly the same.
	w = ts.do(t, http.MethodPut, "/api/v1/my/books/book-ghost", "token-a", map[string]string{
		"title": "Ghost",
	}, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestDeleteCollection_Cascades(t *testing.T) {
	ts := newTestServer(t)
	collectionID := ts.createCollection(t, "token-a", "Sci-Fi")
	ts.createBook(t, "token-a", collectionID, "Dune")
	ts.createBook(t, "token-a", collectionID, "Hyperion")

	var del DeleteResponse
	w := ts.do(t, http.MethodDelete, "/api/v1/my/collections/"+collectionID, "token-a", nil, &del)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, del.Success)

	// The books are gone from the public catalog.
	var books BookListResponse
	ts.do(t, http.MethodGet, "/api/v1/books", "", nil, &books)
	assert.Empty(t, books.Books)
}

func TestDeleteCollection_NotOwnerIs403(t *testing.T) {
	ts := newTestServer(t)
	collectionID := ts.createCollection(t, "token-a", "Sci-Fi")

	w := ts.do(t, http.MethodDelete, "/api/v1/my/collections/"+collectionID, "token-b", nil, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestListCollections_EnrichedWithOwnerNames(t *testing.T) {
	ts := newTestServer(t)
	ts.provider.nextID = "user-a"
	ts.do(t, http.MethodPost, "/api/v1/signup", "", map[string]string{
		"email":    "a@example.com",
		"password": "password123",
		"name":     "Alice",
	}, nil)
	ts.createCollection(t, "token-a", "Sci-Fi")

	var resp CollectionListResponse
	ts.do(t, http.MethodGet, "/api/v1/collections", "", nil, &resp)
	require.Len(t, resp.Collections, 1)
	assert.Equal(t, "Alice", resp.Collections[0].UserName)
}

func TestListUserCollections_UnknownUser(t *testing.T) {
	ts := newTestServer(t)

	var resp UserCollectionsResponse
	w := ts.do(t, http.MethodGet, "/api/v1/user/user-ghost/collections", "", nil, &resp)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, resp.Collections)
	assert.Equal(t, "Unknown User", resp.UserName)
}

func TestListCollectionBooks_UnknownCollection(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodGet, "/api/v1/collection/collection-ghost/books", "", nil, nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"books":[]`)
	assert.Contains(t, w.Body.String(), `"collection":null`)
}

func TestProfile_Lifecycle(t *testing.T) {
	ts := newTestServer(t)

	// No record yet: the one true 404 in the API.
	w := ts.do(t, http.MethodGet, "/api/v1/my/profile", "token-a", nil, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	// Sign up to create the record.
	ts.provider.nextID = "user-a"
	ts.do(t, http.MethodPost, "/api/v1/signup", "", map[string]string{
		"email":    "a@example.com",
		"password": "password123",
		"name":     "Alice",
	}, nil)

	var resp ProfileResponse
	w = ts.do(t, http.MethodGet, "/api/v1/my/profile", "token-a", nil, &resp)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Alice", resp.User.Name)

	// Update bio only; name survives.
	w = ts.do(t, http.MethodPut, "/api/v1/my/profile", "token-a", map[string]string{
		"bio": "Collector of paperbacks.",
	}, &resp)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Alice", resp.User.Name)
	assert.Equal(t, "Collector of paperbacks.", resp.User.Bio)
}

func TestMyListings_ScopedToCaller(t *testing.T) {
	ts := newTestServer(t)
	collA := ts.createCollection(t, "token-a", "Alice's Shelf")
	collB := ts.createCollection(t, "token-b", "Bob's Shelf")
	ts.createBook(t, "token-a", collA, "Dune")
	ts.createBook(t, "token-b", collB, "SPQR")

	var books BookListResponse
	ts.do(t, http.MethodGet, "/api/v1/my/books", "token-a", nil, &books)
	require.Len(t, books.Books, 1)
	assert.Equal(t, "Dune", books.Books[0].Title)

	var collections MyCollectionsResponse
	ts.do(t, http.MethodGet, "/api/v1/my/collections", "token-b", nil, &collections)
	require.Len(t, collections.Collections, 1)
	assert.Equal(t, "Bob's Shelf", collections.Collections[0].Name)
}

func TestSearchEndpoint(t *testing.T) {
	ts := newTestServer(t)
	collectionID := ts.createCollection(t, "token-a", "Sci-Fi")
	ts.createBook(t, "token-a", collectionID, "Dune")

	var resp struct {
		Total uint64 `json:"total"`
		Hits  []struct {
			Title string `json:"title"`
		} `json:"hits"`
	}
	w := ts.do(t, http.MethodGet, "/api/v1/search?q=dune", "", nil, &resp)

	assert.Equal(t, http.StatusOK, w.Code)
	require.NotEmpty(t, resp.Hits)
	assert.Equal(t, "Dune", resp.Hits[0].Title)
}
