package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newSummaryStore(t *testing.T) *SummaryStore {
	t.Helper()
	store, err := NewSummaryStore(openTestDB(t), nil)
	require.NoError(t, err)
	return store
}

func TestSummary_MissingRowSelfHeals(t *testing.T) {
	store := newSummaryStore(t)
	ctx := context.Background()

	text, ok, err := store.Summary(ctx, "user-1")
	require.NoError(t, err)
	require.False(t, ok)
	require.Empty(t, text)

	// The sentinel row was created by the read.
	var count int
	require.NoError(t, store.db.QueryRow(`SELECT COUNT(*) FROM summary WHERE userId = ?`, "user-1").Scan(&count))
	require.Equal(t, 1, count)

	// A second read does not create another row.
	_, _, err = store.Summary(ctx, "user-1")
	require.NoError(t, err)
	require.NoError(t, store.db.QueryRow(`SELECT COUNT(*) FROM summary WHERE userId = ?`, "user-1").Scan(&count))
	require.Equal(t, 1, count)
}

func TestSummary_SentinelNeverEscapes(t *testing.T) {
	store := newSummaryStore(t)
	ctx := context.Background()

	_, err := store.db.Exec(`INSERT INTO summary (userId, summary, updated_on) VALUES (?, ?, ?)`,
		"user-1", "N/A", time.Now().UTC())
	require.NoError(t, err)

	text, ok, err := store.Summary(ctx, "user-1")
	require.NoError(t, err)
	require.False(t, ok)
	require.Empty(t, text)
}

func TestUpsertSummary_FirstWriteThenRead(t *testing.T) {
	store := newSummaryStore(t)
	ctx := context.Background()

	require.NoError(t, store.UpsertSummary(ctx, "user-1", "The party reached Camp Firecrest."))

	text, ok, err := store.Summary(ctx, "user-1")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "The party reached Camp Firecrest.", text)

	// Reading again without intervening writes returns the same text.
	again, ok, err := store.Summary(ctx, "user-1")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, text, again)
}

func TestUpsertSummary_OverwritesInPlace(t *testing.T) {
	store := newSummaryStore(t)
	ctx := context.Background()

	require.NoError(t, store.UpsertSummary(ctx, "user-1", "chapter one"))
	require.NoError(t, store.UpsertSummary(ctx, "user-1", "chapter two"))

	text, ok, err := store.Summary(ctx, "user-1")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "chapter two", text)

	var count int
	require.NoError(t, store.db.QueryRow(`SELECT COUNT(*) FROM summary WHERE userId = ?`, "user-1").Scan(&count))
	require.Equal(t, 1, count)
}

func TestResetSummary_ReturnsUserToNoSummaryState(t *testing.T) {
	store := newSummaryStore(t)
	ctx := context.Background()

	require.NoError(t, store.UpsertSummary(ctx, "user-1", "a long tale"))
	require.NoError(t, store.ResetSummary(ctx, "user-1"))

	text, ok, err := store.Summary(ctx, "user-1")
	require.NoError(t, err)
	require.False(t, ok)
	require.Empty(t, text)
}

func TestResetSummary_CreatesRowWhenMissing(t *testing.T) {
	store := newSummaryStore(t)
	ctx := context.Background()

	require.NoError(t, store.ResetSummary(ctx, "user-1"))

	var count int
	require.NoError(t, store.db.QueryRow(`SELECT COUNT(*) FROM summary WHERE userId = ?`, "user-1").Scan(&count))
	require.Equal(t, 1, count)
}

func TestSummary_DuplicateRowsUseFirst(t *testing.T) {
	store := newSummaryStore(t)
	ctx := context.Background()

	_, err := store.db.Exec(`INSERT INTO summary (userId, summary, updated_on) VALUES (?, ?, ?)`,
		"user-1", "first row", time.Now().UTC())
	require.NoError(t, err)
	_, err = store.db.Exec(`INSERT INTO summary (userId, summary, updated_on) VALUES (?, ?, ?)`,
		"user-1", "second row", time.Now().UTC())
	require.NoError(t, err)

	text, ok, err := store.Summary(ctx, "user-1")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "first row", text)
}
