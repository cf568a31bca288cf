package service

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/bookstacksapp/bookstacks-server/internal/auth"
	"github.com/bookstacksapp/bookstacks-server/internal/domain"
	"github.com/bookstacksapp/bookstacks-server/internal/search"
	"github.com/bookstacksapp/bookstacks-server/internal/store"
)

// fixture bundles the services over one temporary store and index.
type fixture struct {
	store       *store.Store
	search      *search.Index
	users       *UserService
	collections *CollectionService
	books       *BookService
	provider    *fakeProvider
}

// fakeProvider is an in-memory identity provider for tests.
type fakeProvider struct {
	identities map[string]*auth.Identity // token -> identity
	signUpErr  error
	nextID     string
}

func (f *fakeProvider) SignUp(_ context.Context, email, _, name string) (*auth.Identity, error) {
	if f.signUpErr != nil {
		return nil, f.signUpErr
	}
	id := f.nextID
	if id == "" {
		id = "user-" + email
	}
	return &auth.Identity{ID: id, Email: email, Name: name}, nil
}

func (f *fakeProvider) Introspect(_ context.Context, token string) (*auth.Identity, error) {
	identity, ok := f.identities[token]
	if !ok {
		return nil, auth.ErrTokenInvalid
	}
	return identity, nil
}

func setupServiceTest(t *testing.T) *fixture {
	t.Helper()

	dir := t.TempDir()

	s, err := store.New(dir+"/db", nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	idx, err := search.NewIndex(dir, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = idx.Close() })

	logger := slog.New(slog.DiscardHandler)
	provider := &fakeProvider{identities: map[string]*auth.Identity{}}

	return &fixture{
		store:       s,
		search:      idx,
		users:       NewUserService(s, provider, logger),
		collections: NewCollectionService(s, idx, logger),
		books:       NewBookService(s, idx, logger),
		provider:    provider,
	}
}

// seedUser writes a user record directly into the store.
func (f *fixture) seedUser(t *testing.T, id, email, name string) *domain.User {
	t.Helper()
	user := &domain.User{ID: id, Email: email, Name: name}
	require.NoError(t, f.store.Users.Put(context.Background(), id, user))
	return user
}

// seedCollection creates a collection through the service.
func (f *fixture) seedCollection(t *testing.T, userID, name string) *domain.Collection {
	t.Helper()
	collection, err := f.collections.Create(context.Background(), userID, CreateCollectionParams{
		Name: name,
	})
	require.NoError(t, err)
	return collection
}

// seedBook creates a book through the service.
func (f *fixture) seedBook(t *testing.T, userID, collectionID, title string) *domain.Book {
	t.Helper()
	book, err := f.books.Create(context.Background(), userID, CreateBookParams{
		Title:        title,
		Author:       "Test Author",
		CollectionID: collectionID,
	})
	require.NoError(t, err)
	return book
}

// waitForDocs polls the search index until it holds want documents.
// Bleve commits asynchronously enough that an immediate count can race.
func waitForDocs(t *testing.T, idx *search.Index, want uint64) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		count, err := idx.DocumentCount()
		require.NoError(t, err)
		if count == want {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	count, _ := idx.DocumentCount()
	t.Fatalf("search index has %d documents, want %d", count, want)
}
