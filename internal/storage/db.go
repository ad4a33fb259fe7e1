// Package storage persists which callback events were already handled so
// redelivered callbacks are acknowledged without being dispatched twice.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver for database/sql

	"github.com/garyellow/vkbot-go/internal/config"
)

const memoryPath = ":memory:"

// DB wraps the SQLite database connection
type DB struct {
	conn *sql.DB
	path string
	ttl  time.Duration // how long a seen event_id is remembered
}

// New opens the database at dbPath, applies pragmas and initializes the schema.
// ttl specifies how long an event id blocks redelivery.
func New(ctx context.Context, dbPath string, ttl time.Duration) (*DB, error) {
	if ttl <= 0 {
		return nil, fmt.Errorf("dedup ttl must be positive, got %v", ttl)
	}

	// Ensure directory exists (skip for in-memory database)
	if dbPath != memoryPath {
		dir := filepath.Dir(dbPath)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("failed to create database directory: %w", err)
			}
		}
	}

	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Every connection to :memory: opens a separate database, so the
	// in-memory store keeps exactly one connection alive forever.
	if dbPath == memoryPath {
		conn.SetMaxOpenConns(1)
	} else {
		conn.SetMaxOpenConns(4)
		conn.SetMaxIdleConns(2)
		conn.SetConnMaxLifetime(config.DatabaseConnMaxLifetime)
	}

	pragmas := []struct {
		stmt string
		desc string
	}{
		{"PRAGMA journal_mode=WAL", "enable WAL mode"},
		{fmt.Sprintf("PRAGMA busy_timeout=%d", config.DatabaseBusyTimeout.Milliseconds()), "set busy timeout"},
		{"PRAGMA synchronous=NORMAL", "set synchronous mode"},
	}
	for _, p := range pragmas {
		if _, err := conn.ExecContext(ctx, p.stmt); err != nil {
			_ = conn.Close()
			return nil, fmt.Errorf("failed to %s: %w", p.desc, err)
		}
	}

	if err := conn.PingContext(ctx); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := InitSchema(ctx, conn); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &DB{conn: conn, path: dbPath, ttl: ttl}, nil
}

// NewTestDB creates an in-memory database for testing.
func NewTestDB() (*DB, error) {
	return New(context.Background(), memoryPath, time.Hour)
}

// Close closes the database connection
func (db *DB) Close() error {
	if db.conn != nil {
		return db.conn.Close()
	}
	return nil
}

// Ping verifies the database is reachable.
func (db *DB) Ping(ctx context.Context) error {
	return db.conn.PingContext(ctx)
}

// Path returns the database file path
func (db *DB) Path() string {
	return db.path
}

// TTL returns how long an event id is remembered.
func (db *DB) TTL() time.Duration {
	return db.ttl
}

// cutoff returns the Unix timestamp before which entries are expired.
func (db *DB) cutoff(now time.Time) int64 {
	return now.Add(-db.ttl).Unix()
}
