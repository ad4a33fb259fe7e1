package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := NewTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

// backdate shifts an entry's received_at into the past.
func backdate(t *testing.T, db *DB, eventID string, age time.Duration) {
	t.Helper()
	_, err := db.conn.ExecContext(context.Background(),
		`UPDATE events SET received_at = ? WHERE event_id = ?`, time.Now().Add(-age).Unix(), eventID)
	require.NoError(t, err)
}

// TestNew_FileSystemDatabase tests database creation with file system persistence
func TestNew_FileSystemDatabase(t *testing.T) {
	t.Parallel()
	dbPath := filepath.Join(t.TempDir(), "test.db")

	ctx := context.Background()
	db, err := New(ctx, dbPath, time.Hour)
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	_, err = os.Stat(dbPath)
	require.NoError(t, err, "database file not created")
	assert.Equal(t, dbPath, db.Path())
	assert.Equal(t, time.Hour, db.TTL())

	first, err := db.MarkEvent(ctx, "evt-1", 123, "message_new")
	require.NoError(t, err)
	assert.True(t, first)

	// WAL file appears after the first write
	_, err = os.Stat(dbPath + "-wal")
	assert.NoError(t, err, "WAL file not created after write")
}

func TestNew_PersistsAcrossReopen(t *testing.T) {
	t.Parallel()
	dbPath := filepath.Join(t.TempDir(), "reopen.db")
	ctx := context.Background()

	db, err := New(ctx, dbPath, time.Hour)
	require.NoError(t, err)
	_, err = db.MarkEvent(ctx, "evt-1", 123, "message_new")
	require.NoError(t, err)
	require.NoError(t, db.Close())

	db, err = New(ctx, dbPath, time.Hour)
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	first, err := db.MarkEvent(ctx, "evt-1", 123, "message_new")
	require.NoError(t, err)
	assert.False(t, first, "redelivery after restart must be detected")
}

func TestNew_NestedDirectory(t *testing.T) {
	t.Parallel()
	dbPath := filepath.Join(t.TempDir(), "a", "b", "c", "vkbot.db")

	db, err := New(context.Background(), dbPath, time.Hour)
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	_, err = os.Stat(filepath.Dir(dbPath))
	assert.NoError(t, err)
}

func TestNew_RejectsNonPositiveTTL(t *testing.T) {
	t.Parallel()

	_, err := New(context.Background(), memoryPath, 0)
	assert.Error(t, err)
}

func TestPing_DatabaseConnectivity(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)

	assert.NoError(t, db.Ping(context.Background()))
}

func TestClose_CleanShutdown(t *testing.T) {
	t.Parallel()
	db, err := NewTestDB()
	require.NoError(t, err)

	require.NoError(t, db.Close())
	assert.Error(t, db.Ping(context.Background()), "ping after close should fail")
}
