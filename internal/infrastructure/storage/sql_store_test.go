package storage

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"NewsLens/internal/domain"
)

func newSQLiteStore(t *testing.T, pageSize int) *SQLStore {
	t.Helper()

	ctx := context.Background()
	db, err := Open(ctx, SQLite, filepath.Join(t.TempDir(), "news.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	store, err := NewSQLStore(db, SQLite, "articles", pageSize, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	require.NoError(t, store.EnsureSchema(ctx))
	require.NoError(t, store.EnsureSchema(ctx), "schema creation is idempotent")
	return store
}

func TestSQLStoreListsUnprocessedAcrossPages(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newSQLiteStore(t, 2)

	published := time.Date(2024, 5, 2, 9, 30, 0, 0, time.UTC)
	for _, id := range []string{"c", "a", "b"} {
		require.NoError(t, store.Insert(ctx, domain.Article{
			ID:          id,
			Headline:    "Headline " + id,
			Content:     "Body " + id,
			Publisher:   "NDTV",
			URL:         "https://example.com/" + id,
			Author:      "Staff",
			PublishedAt: published,
		}))
	}

	articles, err := store.ListUnprocessed(ctx)
	require.NoError(t, err)
	require.Len(t, articles, 3)
	assert.Equal(t, "a", articles[0].ID)
	assert.Equal(t, "b", articles[1].ID)
	assert.Equal(t, "c", articles[2].ID)
	assert.Equal(t, "Headline a", articles[0].Headline)
	assert.Equal(t, "Body a", articles[0].Content)
	assert.Equal(t, "NDTV", articles[0].Publisher)
	assert.Equal(t, "Staff", articles[0].Author)
	assert.False(t, articles[0].Processed)
	assert.WithinDuration(t, published, articles[0].PublishedAt, time.Second)
}

func TestSQLStoreUpdateMarksProcessed(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newSQLiteStore(t, 100)

	require.NoError(t, store.Insert(ctx, domain.Article{ID: "one", Headline: "One", URL: "https://example.com/1"}))
	require.NoError(t, store.Insert(ctx, domain.Article{ID: "two", Headline: "Two", URL: "https://example.com/2"}))

	err := store.UpdateFields(ctx, "one", domain.Fields{
		domain.FieldCompositeIdeologyScore: 0.42,
		domain.FieldPoliticalLeaning:       "Right",
		domain.FieldProcessed:              true,
		"unknown_column":                   "dropped",
	})
	require.NoError(t, err)

	articles, err := store.ListUnprocessed(ctx)
	require.NoError(t, err)
	require.Len(t, articles, 1)
	assert.Equal(t, "two", articles[0].ID)

	var (
		score   float64
		leaning string
	)
	row := store.db.QueryRowContext(ctx, "SELECT composite_ideology_score, political_leaning FROM articles WHERE id = ?", "one")
	require.NoError(t, row.Scan(&score, &leaning))
	assert.InDelta(t, 0.42, score, 1e-9)
	assert.Equal(t, "Right", leaning)
}

func TestSQLStoreUpdateUnknownRecord(t *testing.T) {
	t.Parallel()

	store := newSQLiteStore(t, 100)
	err := store.UpdateFields(context.Background(), "missing", domain.Fields{domain.FieldProcessed: true})
	require.ErrorIs(t, err, ErrRecordNotFound)

	assert.NoError(t, store.UpdateFields(context.Background(), "missing", domain.Fields{"nope": 1}),
		"a patch without known columns is a no-op")
}

func TestSQLStoreURLExistsAndGeneratedIDs(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newSQLiteStore(t, 100)

	exists, err := store.URLExists(ctx, "https://example.com/story")
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, store.Insert(ctx, domain.Article{Headline: "Story", URL: "https://example.com/story"}))

	exists, err = store.URLExists(ctx, "https://example.com/story")
	require.NoError(t, err)
	assert.True(t, exists)

	articles, err := store.ListUnprocessed(ctx)
	require.NoError(t, err)
	require.Len(t, articles, 1)
	assert.Len(t, articles[0].ID, 36)
	assert.True(t, articles[0].PublishedAt.IsZero())
}

func TestNewSQLStoreRejectsBadTable(t *testing.T) {
	t.Parallel()

	db, err := Open(context.Background(), SQLite, filepath.Join(t.TempDir(), "x.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = NewSQLStore(db, SQLite, "articles; DROP TABLE x", 10, nil)
	assert.Error(t, err)
}

func TestDialectFor(t *testing.T) {
	t.Parallel()

	d, err := DialectFor("postgres")
	require.NoError(t, err)
	assert.Equal(t, "TIMESTAMPTZ", d.TimestampType)

	d, err = DialectFor("sqlite")
	require.NoError(t, err)
	assert.Equal(t, "sqlite", d.Driver)

	_, err = DialectFor("mysql")
	assert.Error(t, err)
}
