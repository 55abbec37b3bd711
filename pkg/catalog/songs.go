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
	"encoding/json"
	"fmt"

	"vidmash/pkg/clip"
)

// Song is one music track row. Beat offsets are stored as JSON.
type Song struct {
	ID       int64       `json:"id"`
	FilePath string      `json:"filePath"`
	Duration float64     `json:"duration"`
	Beats    *clip.Beats `json:"beats,omitempty"`
}

// Song looks up one song by id.
func (d *DB) Song(id int64) (Song, error) {
	var s Song
	var beats sql.NullString
	err := d.db.QueryRow(
		"SELECT rowid, file_path, duration, beats FROM songs WHERE rowid = ?", id,
	).Scan(&s.ID, &s.FilePath, &s.Duration, &beats)
	if err == sql.ErrNoRows {
		return Song{}, fmt.Errorf("song %v: %w", id, ErrNotFound)
	}
	if err != nil {
		return Song{}, err
	}
	if beats.Valid {
		var b clip.Beats
		if err := json.Unmarshal([]byte(beats.String), &b); err != nil {
			return Song{}, fmt.Errorf("unmarshal beats: %w", err)
		}
		s.Beats = &b
	}
	return s, nil
}

// Songs looks up multiple songs in the given order.
func (d *DB) Songs(ids []int64) ([]Song, error) {
	songs := make([]Song, 0, len(ids))
	for _, id := range ids {
		s, err := d.Song(id)
		if err != nil {
			return nil, err
		}
		songs = append(songs, s)
	}
	return songs, nil
}

// InsertSong saves a song row and returns its id.
func (d *DB) InsertSong(s Song) (int64, error) {
	var beats interface{}
	if s.Beats != nil {
		j, err := json.Marshal(s.Beats)
		if err != nil {
			return 0, fmt.Errorf("marshal beats: %w", err)
		}
		beats = string(j)
	}
	res, err := d.db.Exec(
		"INSERT INTO songs (file_path, duration, beats) VALUES (?, ?, ?)",
		s.FilePath, s.Duration, beats)
	if err != nil {
		return 0, fmt.Errorf("insert song: %w", err)
	}
	return res.LastInsertId()
}
