package db

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

const eventColumns = `e.id, e.board_id, b.target_id, e.event_type, e.old_value, e.new_value, e.details, e.timestamp`

// recordEvent logs a board change inside a sync transaction
func recordEvent(tx *sql.Tx, boardID int64, eventType, oldValue, newValue string, details map[string]interface{}, now time.Time) error {
	var detailsJSON string
	if details != nil {
		b, err := json.Marshal(details)
		if err == nil {
			detailsJSON = string(b)
		}
	}

	_, err := tx.Exec(`
		INSERT INTO board_events (board_id, event_type, old_value, new_value, details, timestamp)
		VALUES (?, ?, ?, ?, ?, ?)
	`, boardID, eventType, nullString(oldValue), nullString(newValue), nullString(detailsJSON), now)
	if err != nil {
		return fmt.Errorf("failed to record event: %w", err)
	}

	return nil
}

// RecentEvents returns the most recent events across all boards
func (d *DB) RecentEvents(limit int) ([]*BoardEvent, error) {
	if limit <= 0 {
		limit = 100
	}

	rows, err := d.conn.Query(`
		SELECT `+eventColumns+`
		FROM board_events e JOIN boards b ON b.id = e.board_id
		ORDER BY e.timestamp DESC, e.id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent events: %w", err)
	}
	defer rows.Close()

	return scanEvents(rows)
}

// BoardEvents returns events for one board by hardware id
func (d *DB) BoardEvents(targetID string, limit int) ([]*BoardEvent, error) {
	if limit <= 0 {
		limit = 100
	}

	rows, err := d.conn.Query(`
		SELECT `+eventColumns+`
		FROM board_events e JOIN boards b ON b.id = e.board_id
		WHERE b.target_id = ?
		ORDER BY e.timestamp DESC, e.id DESC
		LIMIT ?
	`, targetID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query board events: %w", err)
	}
	defer rows.Close()

	return scanEvents(rows)
}

func scanEvents(rows *sql.Rows) ([]*BoardEvent, error) {
	events := []*BoardEvent{}
	for rows.Next() {
		var event BoardEvent
		var oldValue, newValue, details sql.NullString

		err := rows.Scan(
			&event.ID, &event.BoardID, &event.TargetID, &event.EventType,
			&oldValue, &newValue, &details, &event.Timestamp,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}

		event.OldValue = oldValue.String
		event.NewValue = newValue.String
		event.Details = details.String

		events = append(events, &event)
	}

	return events, rows.Err()
}
