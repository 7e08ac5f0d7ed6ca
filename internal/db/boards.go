package db

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/sigreer/mbedls/internal/detect"
)

const boardColumns = `id, target_id, platform_name, mount_point, serial_port, current_state, first_seen, last_seen`

// SyncResult summarizes what one Sync changed
type SyncResult struct {
	Seen       int `json:"seen"`
	Added      int `json:"added"`
	Reattached int `json:"reattached"`
	Moved      int `json:"moved"`
	Identified int `json:"identified"`
	Detached   int `json:"detached"`
}

// Sync records a discovery pass: boards in records are marked present,
// previously present boards not in records are marked missing
func (d *DB) Sync(records []detect.Record, now time.Time) (*SyncResult, error) {
	tx, err := d.conn.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin sync: %w", err)
	}
	defer tx.Rollback()

	res := &SyncResult{}
	seen := make(map[string]bool)

	for _, rec := range records {
		id := rec.HardwareID()
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		res.Seen++

		if err := syncBoard(tx, rec, now, res); err != nil {
			return nil, err
		}
	}

	rows, err := tx.Query(`SELECT id, target_id FROM boards WHERE current_state = ?`, StatePresent)
	if err != nil {
		return nil, fmt.Errorf("failed to query present boards: %w", err)
	}
	var gone []int64
	for rows.Next() {
		var boardID int64
		var targetID string
		if err := rows.Scan(&boardID, &targetID); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan board: %w", err)
		}
		if !seen[targetID] {
			gone = append(gone, boardID)
		}
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}

	for _, boardID := range gone {
		if _, err := tx.Exec(`UPDATE boards SET current_state = ? WHERE id = ?`, StateMissing, boardID); err != nil {
			return nil, fmt.Errorf("failed to mark board missing: %w", err)
		}
		if err := recordEvent(tx, boardID, EventDetached, StatePresent, StateMissing, nil, now); err != nil {
			return nil, err
		}
		res.Detached++
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit sync: %w", err)
	}
	return res, nil
}

func syncBoard(tx *sql.Tx, rec detect.Record, now time.Time, res *SyncResult) error {
	id := rec.HardwareID()
	mount := deref(rec.MountPoint)
	serial := deref(rec.SerialPort)
	platform := rec.Platform()

	existing, err := scanBoard(tx.QueryRow(`SELECT `+boardColumns+` FROM boards WHERE target_id = ?`, id))
	if err != nil {
		return err
	}

	if existing == nil {
		result, err := tx.Exec(`
			INSERT INTO boards (target_id, platform_name, mount_point, serial_port, current_state, first_seen, last_seen)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`, id, platform, nullString(mount), nullString(serial), StatePresent, now, now)
		if err != nil {
			return fmt.Errorf("failed to insert board %s: %w", id, err)
		}
		boardID, err := result.LastInsertId()
		if err != nil {
			return err
		}
		res.Added++
		return recordEvent(tx, boardID, EventAttached, "", StatePresent, map[string]interface{}{
			"platform_name": platform,
			"mount_point":   mount,
			"serial_port":   serial,
		}, now)
	}

	_, err = tx.Exec(`
		UPDATE boards SET platform_name = ?, mount_point = ?, serial_port = ?, current_state = ?, last_seen = ?
		WHERE id = ?
	`, platform, nullString(mount), nullString(serial), StatePresent, now, existing.ID)
	if err != nil {
		return fmt.Errorf("failed to update board %s: %w", id, err)
	}

	if existing.CurrentState != StatePresent {
		res.Reattached++
		if err := recordEvent(tx, existing.ID, EventAttached, existing.CurrentState, StatePresent, nil, now); err != nil {
			return err
		}
	}
	if existing.MountPoint != mount || existing.SerialPort != serial {
		res.Moved++
		details := map[string]interface{}{
			"old_serial_port": existing.SerialPort,
			"new_serial_port": serial,
		}
		if err := recordEvent(tx, existing.ID, EventMoved, existing.MountPoint, mount, details, now); err != nil {
			return err
		}
	}
	if existing.PlatformName != platform && platform != detect.NotDetected {
		res.Identified++
		if err := recordEvent(tx, existing.ID, EventIdentified, existing.PlatformName, platform, nil, now); err != nil {
			return err
		}
	}
	return nil
}

// GetBoardByTargetID returns a board by its hardware id, or nil when unknown
func (d *DB) GetBoardByTargetID(targetID string) (*BoardRecord, error) {
	return scanBoard(d.conn.QueryRow(`SELECT `+boardColumns+` FROM boards WHERE target_id = ?`, targetID))
}

// ListBoards returns known boards, optionally filtered by state
func (d *DB) ListBoards(state string) ([]*BoardRecord, error) {
	var rows *sql.Rows
	var err error
	if state == "" {
		rows, err = d.conn.Query(`SELECT ` + boardColumns + ` FROM boards ORDER BY target_id`)
	} else {
		rows, err = d.conn.Query(`SELECT `+boardColumns+` FROM boards WHERE current_state = ? ORDER BY target_id`, state)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query boards: %w", err)
	}
	defer rows.Close()

	boards := []*BoardRecord{}
	for rows.Next() {
		board, err := scanBoard(rows)
		if err != nil {
			return nil, err
		}
		boards = append(boards, board)
	}

	return boards, rows.Err()
}

// BoardCount returns statistics about boards
func (d *DB) BoardCount() (total, present, missing int, err error) {
	row := d.conn.QueryRow(`
		SELECT
			COUNT(*) as total,
			COALESCE(SUM(CASE WHEN current_state = 'present' THEN 1 ELSE 0 END), 0) as present,
			COALESCE(SUM(CASE WHEN current_state = 'missing' THEN 1 ELSE 0 END), 0) as missing
		FROM boards
	`)
	err = row.Scan(&total, &present, &missing)
	return
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

// scanBoard scans a row into a BoardRecord; a missing row yields nil, nil
func scanBoard(row rowScanner) (*BoardRecord, error) {
	var board BoardRecord
	var platform, mount, serial sql.NullString

	err := row.Scan(
		&board.ID, &board.TargetID, &platform, &mount, &serial,
		&board.CurrentState, &board.FirstSeen, &board.LastSeen,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan board: %w", err)
	}

	board.PlatformName = platform.String
	board.MountPoint = mount.String
	board.SerialPort = serial.String

	return &board, nil
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
