package database_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TonnenFred/soundmap-bot/internal/config"
	"github.com/TonnenFred/soundmap-bot/internal/database"
	"github.com/TonnenFred/soundmap-bot/schemas"
)

func TestOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bot.db")
	db, err := database.Open(config.DatabaseConfig{Path: path})
	require.NoError(t, err)
	defer db.Close()

	var journalMode string
	require.NoError(t, db.Get(&journalMode, "PRAGMA journal_mode"))
	assert.Equal(t, "wal", journalMode)

	var foreignKeys int
	require.NoError(t, db.Get(&foreignKeys, "PRAGMA foreign_keys"))
	assert.Equal(t, 1, foreignKeys)
}

func TestMigrate(t *testing.T) {
	db, err := database.Open(config.DatabaseConfig{Path: filepath.Join(t.TempDir(), "bot.db")})
	require.NoError(t, err)
	defer db.Close()

	ctx := context.Background()
	require.NoError(t, database.Migrate(ctx, db, schemas.Migrations))

	var tables []string
	require.NoError(t, db.Select(&tables,
		"SELECT name FROM sqlite_master WHERE type = 'table' ORDER BY name"))
	assert.Subset(t, tables, []string{
		"users", "tracks", "artists", "user_epics", "user_wishlist_epics", "user_fav_artists",
	})

	// Migrations are guarded, so a second run is a no-op.
	require.NoError(t, database.Migrate(ctx, db, schemas.Migrations))
}

func TestMigrate_AppliesInLexicalOrder(t *testing.T) {
	db, err := database.Open(config.DatabaseConfig{Path: filepath.Join(t.TempDir(), "bot.db")})
	require.NoError(t, err)
	defer db.Close()

	migrations := fstest.MapFS{
		"migrations/002_rows.sql": &fstest.MapFile{
			Data: []byte("INSERT INTO t(v) VALUES ('from 002');"),
		},
		"migrations/001_table.sql": &fstest.MapFile{
			Data: []byte("CREATE TABLE t (v TEXT);"),
		},
	}
	require.NoError(t, database.Migrate(context.Background(), db, migrations))

	var v string
	require.NoError(t, db.Get(&v, "SELECT v FROM t"))
	assert.Equal(t, "from 002", v)
}

func TestRunInTx_Commit(t *testing.T) {
	db := openWithTable(t)

	err := database.RunInTx(context.Background(), db, func(ctx context.Context, tx *sqlx.Tx) error {
		_, err := tx.ExecContext(ctx, "INSERT INTO t(v) VALUES ('kept')")
		return err
	})
	require.NoError(t, err)

	var count int
	require.NoError(t, db.Get(&count, "SELECT COUNT(*) FROM t"))
	assert.Equal(t, 1, count)
}

func TestRunInTx_RollbackOnError(t *testing.T) {
	db := openWithTable(t)

	wantErr := errors.New("boom")
	err := database.RunInTx(context.Background(), db, func(ctx context.Context, tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, "INSERT INTO t(v) VALUES ('discarded')"); err != nil {
			return err
		}
		return wantErr
	})
	assert.ErrorIs(t, err, wantErr)

	var count int
	require.NoError(t, db.Get(&count, "SELECT COUNT(*) FROM t"))
	assert.Equal(t, 0, count)
}

func openWithTable(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := database.Open(config.DatabaseConfig{Path: filepath.Join(t.TempDir(), "bot.db")})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec("CREATE TABLE t (v TEXT)")
	require.NoError(t, err)
	return db
}
