package storage

import (
	"context"
	"fmt"
	"time"
)

// MarkEvent records eventID as handled and reports whether this is the first
// delivery inside the TTL window. An expired entry counts as unseen and is
// refreshed. Events without an id cannot be deduplicated and are always first.
func (db *DB) MarkEvent(ctx context.Context, eventID string, groupID int64, eventType string) (bool, error) {
	if eventID == "" {
		return true, nil
	}

	now := time.Now()
	query := `
	INSERT INTO events (event_id, group_id, type, received_at) VALUES (?, ?, ?, ?)
	ON CONFLICT(event_id) DO UPDATE SET
		group_id = excluded.group_id,
		type = excluded.type,
		received_at = excluded.received_at
	WHERE events.received_at < ?`

	result, err := db.conn.ExecContext(ctx, query, eventID, groupID, eventType, now.Unix(), db.cutoff(now))
	if err != nil {
		return false, fmt.Errorf("failed to mark event %s: %w", eventID, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected for event %s: %w", eventID, err)
	}
	return rowsAffected > 0, nil
}

// SeenEvent reports whether eventID was marked inside the TTL window.
func (db *DB) SeenEvent(ctx context.Context, eventID string) (bool, error) {
	var count int
	query := `SELECT COUNT(*) FROM events WHERE event_id = ? AND received_at >= ?`
	if err := db.conn.QueryRowContext(ctx, query, eventID, db.cutoff(time.Now())).Scan(&count); err != nil {
		return false, fmt.Errorf("failed to look up event %s: %w", eventID, err)
	}
	return count > 0, nil
}

// DeleteExpiredEvents removes entries older than the TTL.
// Returns the number of deleted entries
func (db *DB) DeleteExpiredEvents(ctx context.Context) (int64, error) {
	result, err := db.conn.ExecContext(ctx, `DELETE FROM events WHERE received_at < ?`, db.cutoff(time.Now()))
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired events: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected for events: %w", err)
	}
	return rowsAffected, nil
}

// CountEvents returns the number of stored entries, expired ones included.
func (db *DB) CountEvents(ctx context.Context) (int, error) {
	var count int
	if err := db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM events`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count events: %w", err)
	}
	return count, nil
}
