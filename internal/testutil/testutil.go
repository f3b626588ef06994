// Package testutil provides shared test helpers for database fixtures.
package testutil

import (
	"context"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/TonnenFred/soundmap-bot/internal/database"
	"github.com/TonnenFred/soundmap-bot/schemas"
)

// OpenTestDB opens an in-memory SQLite database with all migrations
// applied. The database is closed when the test finishes.
func OpenTestDB(t *testing.T) *sqlx.DB {
	t.Helper()

	db, err := sqlx.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec("PRAGMA foreign_keys=ON")
	require.NoError(t, err)

	require.NoError(t, database.Migrate(context.Background(), db, schemas.Migrations))
	return db
}

// SeedUser inserts a bare user row.
func SeedUser(t *testing.T, db *sqlx.DB, userID string) {
	t.Helper()
	_, err := db.Exec("INSERT INTO users(user_id) VALUES(?) ON CONFLICT DO NOTHING", userID)
	require.NoError(t, err)
}

// SeedTrack inserts a track row.
func SeedTrack(t *testing.T, db *sqlx.DB, trackID, title, artistName string) {
	t.Helper()
	_, err := db.Exec(
		"INSERT INTO tracks(track_id, title, artist_name, url) VALUES(?,?,?,?)",
		trackID, title, artistName, "https://open.spotify.com/track/"+trackID)
	require.NoError(t, err)
}

// SeedArtist inserts an artist row and returns its id.
func SeedArtist(t *testing.T, db *sqlx.DB, name string) int64 {
	t.Helper()
	res, err := db.Exec("INSERT INTO artists(name) VALUES(?)", name)
	require.NoError(t, err)
	id, err := res.LastInsertId()
	require.NoError(t, err)
	return id
}
