package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/bookstacksapp/bookstacks-server/internal/errors"
	"github.com/bookstacksapp/bookstacks-server/internal/search"
	"github.com/bookstacksapp/bookstacks-server/internal/store"
)

func TestBookService_Create(t *testing.T) {
	f := setupServiceTest(t)
	collection := f.seedCollection(t, "user-1", "Sci-Fi")

	book, err := f.books.Create(context.Background(), "user-1", CreateBookParams{
		Title:        "Dune",
		Author:       "Frank Herbert",
		CollectionID: collection.ID,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, book.ID)
	assert.Equal(t, "user-1", book.UserID)
	assert.Equal(t, collection.ID, book.CollectionID)
	assert.False(t, book.CreatedAt.IsZero())
	assert.True(t, book.UpdatedAt.IsZero())
}

func TestBookService_Create_ForeignCollection(t *testing.T) {
	f := setupServiceTest(t)
	collection := f.seedCollection(t, "user-1", "Sci-Fi")

	_, err := f.books.Create(context.Background(), "user-2", CreateBookParams{
		Title:        "Dune",
		CollectionID: collection.ID,
	})
	require.Error(t, err)

	var appErr *apperrors.Error
	require.True(t, apperrors.As(err, &appErr))
	assert.Equal(t, apperrors.CodeForbidden, appErr.Code)
}

func TestBookService_Create_MissingCollection(t *testing.T) {
	f := setupServiceTest(t)

	_, err := f.books.Create(context.Background(), "user-1", CreateBookParams{
		Title:        "Dune",
		CollectionID: "collection-ghost",
	})
	require.Error(t, err)

	var appErr *apperrors.Error
	require.True(t, apperrors.As(err, &appErr))
	assert.Equal(t, apperrors.CodeForbidden, appErr.Code)
}

func TestBookService_Update_MergePolicy(t *testing.T) {
	f := setupServiceTest(t)
	collection := f.seedCollection(t, "user-1", "Sci-Fi")
	book, err := f.books.Create(context.Background(), "user-1", CreateBookParams{
		Title:        "Dune",
		Author:       "Frank Herbert",
		Description:  "Sand.",
		CollectionID: collection.ID,
	})
	require.NoError(t, err)

	// Supplying only a description leaves everything else untouched.
	desc := "Spice and sand."
	updated, err := f.books.Update(context.Background(), "user-1", book.ID, UpdateBookParams{
		Description: &desc,
	})
	require.NoError(t, err)
	assert.Equal(t, "Dune", updated.Title)
	assert.Equal(t, "Frank Herbert", updated.Author)
	assert.Equal(t, desc, updated.Description)
	assert.Equal(t, collection.ID, updated.CollectionID)
	assert.False(t, updated.UpdatedAt.IsZero())

	// An empty title is ignored, but an empty description clears it.
	empty := ""
	updated, err = f.books.Update(context.Background(), "user-1", book.ID, UpdateBookParams{
		Title:       "",
		Description: &empty,
	})
	require.NoError(t, err)
	assert.Equal(t, "Dune", updated.Title)
	assert.Empty(t, updated.Description)
}

func TestBookService_Update_MoveCollection(t *testing.T) {
	f := setupServiceTest(t)
	source := f.seedCollection(t, "user-1", "Sci-Fi")
	target := f.seedCollection(t, "user-1", "Favorites")
	book := f.seedBook(t, "user-1", source.ID, "Dune")

	updated, err := f.books.Update(context.Background(), "user-1", book.ID, UpdateBookParams{
		CollectionID: target.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, target.ID, updated.CollectionID)
}

func TestBookService_Update_NotOwner(t *testing.T) {
	f := setupServiceTest(t)
	collection := f.seedCollection(t, "user-1", "Sci-Fi")
	book := f.seedBook(t, "user-1", collection.ID, "Dune")

	_, err := f.books.Update(context.Background(), "user-2", book.ID, UpdateBookParams{
		Title: "Stolen",
	})
	require.Error(t, err)

	var appErr *apperrors.Error
	require.True(t, apperrors.As(err, &appErr))
	assert.Equal(t, apperrors.CodeForbidden, appErr.Code)
}

func TestBookService_Delete(t *testing.T) {
	f := setupServiceTest(t)
	collection := f.seedCollection(t, "user-1", "Sci-Fi")
	book := f.seedBook(t, "user-1", collection.ID, "Dune")
	waitForDocs(t, f.search, 1)

	err := f.books.Delete(context.Background(), "user-1", book.ID)
	require.NoError(t, err)

	_, err = f.store.Books.Get(context.Background(), book.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
	waitForDocs(t, f.search, 0)
}

func TestBookService_Delete_NotOwner(t *testing.T) {
	f := setupServiceTest(t)
	collection := f.seedCollection(t, "user-1", "Sci-Fi")
	book := f.seedBook(t, "user-1", collection.ID, "Dune")

	err := f.books.Delete(context.Background(), "user-2", book.ID)
	require.Error(t, err)

	var appErr *apperrors.Error
	require.True(t, apperrors.As(err, &appErr))
	assert.Equal(t, apperrors.CodeForbidden, appErr.Code)
}

func TestBookService_ListByCollection(t *testing.T) {
	f := setupServiceTest(t)
	collection := f.seedCollection(t, "user-1", "Sci-Fi")
	f.seedBook(t, "user-1", collection.ID, "Dune")
	f.seedBook(t, "user-1", collection.ID, "Hyperion")

	result, err := f.books.ListByCollection(context.Background(), collection.ID)
	require.NoError(t, err)
	assert.Len(t, result.Books, 2)
	require.NotNil(t, result.Collection)
	assert.Equal(t, "Sci-Fi", result.Collection.Name)
}

func TestBookService_ListByCollection_Unknown(t *testing.T) {
	f := setupServiceTest(t)

	result, err := f.books.ListByCollection(context.Background(), "collection-ghost")
	require.NoError(t, err)
	assert.Empty(t, result.Books)
	assert.Nil(t, result.Collection)
}

func TestBookService_SearchFindsCreatedBooks(t *testing.T) {
	f := setupServiceTest(t)
	collection := f.seedCollection(t, "user-1", "Sci-Fi")
	f.seedBook(t, "user-1", collection.ID, "Dune")
	waitForDocs(t, f.search, 1)

	result, err := f.books.Search(context.Background(), search.Params{Query: "dune", Limit: 10})
	require.NoError(t, err)
	require.NotEmpty(t, result.Hits)
	assert.Equal(t, "Dune", result.Hits[0].Title)
}

func TestBookService_Reindex(t *testing.T) {
	f := setupServiceTest(t)
	collection := f.seedCollection(t, "user-1", "Sci-Fi")
	f.seedBook(t, "user-1", collection.ID, "Dune")
	f.seedBook(t, "user-1", collection.ID, "Hyperion")

	require.NoError(t, f.books.Reindex(context.Background()))
	waitForDocs(t, f.search, 2)
}
