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
)

// Marker is one marker row.
type Marker struct {
	ID               int64   `json:"id"`
	VideoID          string  `json:"videoId"`
	Title            string  `json:"title"`
	StartTime        float64 `json:"startTime"`
	EndTime          float64 `json:"endTime"`
	IndexWithinVideo int     `json:"indexWithinVideo"`
}

// Marker looks up one marker by id.
func (d *DB) Marker(id int64) (Marker, error) {
	var m Marker
	err := d.db.QueryRow(
		`SELECT rowid, video_id, title, start_time, end_time, index_within_video
		 FROM markers WHERE rowid = ?`, id,
	).Scan(&m.ID, &m.VideoID, &m.Title, &m.StartTime, &m.EndTime, &m.IndexWithinVideo)
	if err == sql.ErrNoRows {
		return Marker{}, fmt.Errorf("marker %v: %w", id, ErrNotFound)
	}
	if err != nil {
		return Marker{}, err
	}
	return m, nil
}

// MarkersByVideo returns all markers of one video ordered by index.
func (d *DB) MarkersByVideo(videoID string) ([]Marker, error) {
	rows, err := d.db.Query(
		`SELECT rowid, video_id, title, start_time, end_time, index_within_video
		 FROM markers WHERE video_id = ? ORDER BY index_within_video`, videoID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var markers []Marker
	for rows.Next() {
		var m Marker
		err := rows.Scan(&m.ID, &m.VideoID, &m.Title,
			&m.StartTime, &m.EndTime, &m.IndexWithinVideo)
		if err != nil {
			return nil, err
		}
		markers = append(markers, m)
	}
	return markers, rows.Err()
}

// InsertMarker saves a marker row and returns its id.
func (d *DB) InsertMarker(m Marker) (int64, error) {
	res, err := d.db.Exec(
		`INSERT INTO markers (video_id, title, start_time, end_time, index_within_video)
		 VALUES (?, ?, ?, ?, ?)`,
		m.VideoID, m.Title, m.StartTime, m.EndTime, m.IndexWithinVideo)
	if err != nil {
		return 0, fmt.Errorf("insert marker: %w", err)
	}
	return res.LastInsertId()
}
