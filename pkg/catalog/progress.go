// Copyright 2022-2024 The Vidmash Authors.
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation; version 2.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package catalog

import (
	"database/sql"
	"fmt"
	"time"
)

// Progress is the persisted state of one running compilation.
type Progress struct {
	ID            string    `json:"id"`
	ItemsTotal    float64   `json:"itemsTotal"`
	ItemsFinished float64   `json:"itemsFinished"`
	Message       string    `json:"message"`
	ETASeconds    *float64  `json:"etaSeconds,omitempty"`
	Done          bool      `json:"done"`
	ErrorMessage  string    `json:"errorMessage,omitempty"`
	Timestamp     time.Time `json:"timestamp"`
}

// InsertProgress creates the progress row for a new compilation,
// replacing any stale row with the same id.
func (d *DB) InsertProgress(id string, itemsTotal float64, message string) error {
	_, err := d.db.Exec(
		`INSERT OR REPLACE INTO progress
		 (id, items_total, items_finished, message, done, timestamp)
		 VALUES (?, ?, 0, ?, 0, ?)`,
		id, itemsTotal, message, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("insert progress: %w", err)
	}
	return nil
}

// UpdateProgress increments the finished amount and stores the
// current ETA and message.
func (d *DB) UpdateProgress(id string, increment, etaSeconds float64, message string) error {
	_, err := d.db.Exec(
		`UPDATE progress SET
		 items_finished = items_finished + ?,
		 eta_seconds = ?,
		 message = ?,
		 timestamp = ?
		 WHERE id = ?`,
		increment, etaSeconds, message, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("update progress: %w", err)
	}
	return nil
}

// FinishProgress marks the compilation as done.
func (d *DB) FinishProgress(id string) error {
	_, err := d.db.Exec(
		`UPDATE progress SET
		 done = 1,
		 items_finished = items_total,
		 eta_seconds = 0,
		 timestamp = ?
		 WHERE id = ?`,
		time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("finish progress: %w", err)
	}
	return nil
}

// FailProgress records a generation failure.
func (d *DB) FailProgress(id string, errorMessage string) error {
	_, err := d.db.Exec(
		`UPDATE progress SET
		 error_message = ?,
		 timestamp = ?
		 WHERE id = ?`,
		errorMessage, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("fail progress: %w", err)
	}
	return nil
}

// Progress returns the progress row for the compilation id.
func (d *DB) Progress(id string) (Progress, error) {
	var p Progress
	var eta sql.NullFloat64
	var errorMessage sql.NullString
	err := d.db.QueryRow(
		`SELECT id, items_total, items_finished, message,
		 eta_seconds, done, error_message, timestamp
		 FROM progress WHERE id = ?`, id,
	).Scan(&p.ID, &p.ItemsTotal, &p.ItemsFinished, &p.Message,
		&eta, &p.Done, &errorMessage, &p.Timestamp)
	if err == sql.ErrNoRows {
		return Progress{}, fmt.Errorf("progress %v: %w", id, ErrNotFound)
	}
	if err != nil {
		return Progress{}, err
	}
	if eta.Valid {
		p.ETASeconds = &eta.Float64
	}
	if errorMessage.Valid {
		p.ErrorMessage = errorMessage.String
	}
	return p, nil
}

// CleanupProgress removes finished rows older than maxAge.
func (d *DB) CleanupProgress(maxAge time.Duration) error {
	_, err := d.db.Exec(
		"DELETE FROM progress WHERE done = 1 AND timestamp < ?",
		time.Now().UTC().Add(-maxAge))
	if err != nil {
		return fmt.Errorf("cleanup progress: %w", err)
	}
	return nil
}
