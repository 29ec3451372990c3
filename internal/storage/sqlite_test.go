package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/floai/flo-assistant/internal/knowledge"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "knowledge.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	return store
}

func TestSQLiteStoreCreateAndFindUnique(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()

	created, err := store.Create(ctx, &knowledge.Document{
		Title:     "go basics",
		Content:   "go is a statically typed language",
		Category:  "tech",
		Embedding: []float32{0.25, -0.5, 1},
		Metadata:  map[string]any{"source": "manual"},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.False(t, created.CreatedAt.IsZero())

	found, err := store.FindUnique(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "go basics", found.Title)
	assert.Equal(t, "tech", found.Category)
	assert.Equal(t, []float32{0.25, -0.5, 1}, found.Embedding)
	assert.Equal(t, map[string]any{"source": "manual"}, found.Metadata)
}

func TestSQLiteStoreFindUniqueMissing(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)

	_, err := store.FindUnique(context.Background(), "does-not-exist")
	require.ErrorIs(t, err, knowledge.ErrNotFound)
}

func TestSQLiteStoreFindManyOrderAndFilter(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()

	// Fixed clock: identical timestamps force the rowid tie-break.
	fixed := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return fixed }

	for _, doc := range []*knowledge.Document{
		{Title: "cats", Category: "pets", Content: "cats"},
		{Title: "dogs", Category: "pets", Content: "dogs"},
		{Title: "stocks", Category: "finance", Content: "stocks"},
	} {
		_, err := store.Create(ctx, doc)
		require.NoError(t, err)
	}

	all, err := store.FindMany(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "stocks", all[0].Title)
	assert.Equal(t, "dogs", all[1].Title)
	assert.Equal(t, "cats", all[2].Title)

	pets, err := store.FindMany(ctx, "pets")
	require.NoError(t, err)
	require.Len(t, pets, 2)
	assert.Equal(t, "dogs", pets[0].Title)
	assert.Equal(t, "cats", pets[1].Title)
}

func TestSQLiteStoreNullEmbedding(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()

	created, err := store.Create(ctx, &knowledge.Document{Title: "bare", Content: "no vector yet"})
	require.NoError(t, err)

	found, err := store.FindUnique(ctx, created.ID)
	require.NoError(t, err)
	assert.Nil(t, found.Embedding)
	assert.Nil(t, found.Metadata)
}

func TestSQLiteStoreUpdate(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()

	created, err := store.Create(ctx, &knowledge.Document{
		Title:     "before",
		Content:   "old",
		Embedding: []float32{1, 0},
	})
	require.NoError(t, err)

	created.Title = "after"
	created.Content = "new"
	created.Embedding = []float32{0, 1}

	updated, err := store.Update(ctx, created)
	require.NoError(t, err)
	assert.False(t, updated.UpdatedAt.Before(updated.CreatedAt))

	found, err := store.FindUnique(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "after", found.Title)
	assert.Equal(t, "new", found.Content)
	assert.Equal(t, []float32{0, 1}, found.Embedding)
}

func TestSQLiteStoreUpdateMissing(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)

	_, err := store.Update(context.Background(), &knowledge.Document{ID: "ghost", Title: "x", Content: "y"})
	require.ErrorIs(t, err, knowledge.ErrNotFound)
}

func TestSQLiteStoreDelete(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()

	created, err := store.Create(ctx, &knowledge.Document{Title: "gone soon", Content: "x"})
	require.NoError(t, err)

	require.NoError(t, store.Delete(ctx, created.ID))

	_, err = store.FindUnique(ctx, created.ID)
	require.ErrorIs(t, err, knowledge.ErrNotFound)

	require.ErrorIs(t, store.Delete(ctx, created.ID), knowledge.ErrNotFound)
}
