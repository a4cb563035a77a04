package repository

import (
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"
)

// openTestDB returns an isolated in-memory database with the state schema.
// The UNIQUE constraint on summary.userId is deliberately left off so tests
// can simulate the duplicate-row unexpected-state condition.
func openTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`CREATE TABLE messages (
		messageId  TEXT NOT NULL PRIMARY KEY,
		userId     TEXT NOT NULL,
		content    TEXT NOT NULL,
		reply_to   TEXT,
		created_on DATETIME NOT NULL,
		deleted    INTEGER NOT NULL DEFAULT 0
	)`)
	require.NoError(t, err)

	_, err = db.Exec(`CREATE TABLE summary (
		userId     TEXT NOT NULL,
		summary    TEXT NOT NULL,
		updated_on DATETIME NOT NULL
	)`)
	require.NoError(t, err)

	return db
}
