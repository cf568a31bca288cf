package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookstacksapp/bookstacks-server/internal/domain"
	apperrors "github.com/bookstacksapp/bookstacks-server/internal/errors"
	"github.com/bookstacksapp/bookstacks-server/internal/store"
)

func TestCollectionService_Create(t *testing.T) {
	f := setupServiceTest(t)

	collection, err := f.collections.Create(context.Background(), "user-1", CreateCollectionParams{
		Name:        "Sci-Fi",
		Description: "Spaceships",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, collection.ID)
	assert.Equal(t, "user-1", collection.UserID)
	assert.False(t, collection.CreatedAt.IsZero())
}

func TestCollectionService_ListAll_EnrichesOwnerNames(t *testing.T) {
	f := setupServiceTest(t)
	f.seedUser(t, "user-1", "ada@example.com", "Ada")
	f.seedCollection(t, "user-1", "Sci-Fi")
	f.seedCollection(t, "user-ghost", "Orphaned")

	collections, err := f.collections.ListAll(context.Background())
	require.NoError(t, err)
	require.Len(t, collections, 2)

	byName := map[string]string{}
	for _, c := range collections {
		byName[c.Name] = c.UserName
	}
	assert.Equal(t, "Ada", byName["Sci-Fi"])
	assert.Equal(t, domain.UnknownUserName, byName["Orphaned"])
}

func TestCollectionService_ListAll_FallsBackToEmail(t *testing.T) {
	f := setupServiceTest(t)
	f.seedUser(t, "user-1", "ada@example.com", "")
	f.seedCollection(t, "user-1", "Sci-Fi")

	collections, err := f.collections.ListAll(context.Background())
	require.NoError(t, err)
	require.Len(t, collections, 1)
	assert.Equal(t, "ada@example.com", collections[0].UserName)
}

func TestCollectionService_ListByUser(t *testing.T) {
	f := setupServiceTest(t)
	f.seedUser(t, "user-1", "ada@example.com", "Ada")
	f.seedCollection(t, "user-1", "Sci-Fi")
	f.seedCollection(t, "user-2", "History")

	collections, userName, err := f.collections.ListByUser(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Len(t, collections, 1)
	assert.Equal(t, "Ada", userName)
}

func TestCollectionService_ListByUser_UnknownUser(t *testing.T) {
	f := setupServiceTest(t)

	collections, userName, err := f.collections.ListByUser(context.Background(), "user-ghost")
	require.NoError(t, err)
	assert.Empty(t, collections)
	assert.Equal(t, domain.UnknownUserName, userName)
}

func TestCollectionService_Delete_CascadesToBooks(t *testing.T) {
	f := setupServiceTest(t)
	collection := f.seedCollection(t, "user-1", "Sci-Fi")
	book1 := f.seedBook(t, "user-1", collection.ID, "Dune")
	book2 := f.seedBook(t, "user-1", collection.ID, "Hyperion")

	other := f.seedCollection(t, "user-1", "History")
	kept := f.seedBook(t, "user-1", other.ID, "SPQR")

	waitForDocs(t, f.search, 3)

	err := f.collections.Delete(context.Background(), "user-1", collection.ID)
	require.NoError(t, err)

	ctx := context.Background()
	_, err = f.store.Collections.Get(ctx, collection.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
	_, err = f.store.Books.Get(ctx, book1.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
	_, err = f.store.Books.Get(ctx, book2.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)

	// The sibling collection's book survives.
	_, err = f.store.Books.Get(ctx, kept.ID)
	require.NoError(t, err)

	// Cascaded books are removed from the search index too.
	waitForDocs(t, f.search, 1)
}

func TestCollectionService_Delete_NotOwner(t *testing.T) {
	f := setupServiceTest(t)
	collection := f.seedCollection(t, "user-1", "Sci-Fi")

	err := f.collections.Delete(context.Background(), "user-2", collection.ID)
	require.Error(t, err)

	var appErr *apperrors.Error
	require.True(t, apperrors.As(err, &appErr))
	assert.Equal(t, apperrors.CodeForbidden, appErr.Code)

	// Still there.
	_, err = f.store.Collections.Get(context.Background(), collection.ID)
	require.NoError(t, err)
}

func TestCollectionService_Delete_MissingLooksLikeNotOwned(t *testing.T) {
	f := setupServiceTest(t)
	collection := f.seedCollection(t, "user-1", "Sci-Fi")

	errMissing := f.collections.Delete(context.Background(), "user-1", "collection-ghost")
	errForeign := f.collections.Delete(context.Background(), "user-2", collection.ID)

	// Absence and foreign ownership are indistinguishable to the caller.
	assert.Equal(t, errMissing.Error(), errForeign.Error())
}
