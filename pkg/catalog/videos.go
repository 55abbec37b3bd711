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

	"vidmash/pkg/clip"
)

// Video is one source video row.
type Video struct {
	ID           string      `json:"id"`
	Title        string      `json:"title"`
	FilePath     string      `json:"filePath"`
	Duration     float64     `json:"duration"`
	Codec        string      `json:"codec"`
	Width        int         `json:"width"`
	Height       int         `json:"height"`
	FPS          float64     `json:"fps"`
	Container    string      `json:"container"`
	Source       clip.Source `json:"source"`
	StashSceneID *int64      `json:"stashSceneId,omitempty"`
	Interactive  bool        `json:"interactive"`
}

// IsRemote reports whether the video streams from a remote source.
func (v Video) IsRemote() bool {
	return v.Source == clip.SourceStash
}

const videoColumns = `id, title, file_path, duration, codec,
	width, height, fps, container, source, stash_scene_id, interactive`

func scanVideo(row interface{ Scan(...interface{}) error }) (Video, error) {
	var v Video
	var stashSceneID sql.NullInt64
	err := row.Scan(
		&v.ID, &v.Title, &v.FilePath, &v.Duration, &v.Codec,
		&v.Width, &v.Height, &v.FPS, &v.Container, &v.Source,
		&stashSceneID, &v.Interactive,
	)
	if err != nil {
		return Video{}, err
	}
	if stashSceneID.Valid {
		v.StashSceneID = &stashSceneID.Int64
	}
	return v, nil
}

// Video looks up one video by id.
func (d *DB) Video(id string) (Video, error) {
	row := d.db.QueryRow(
		"SELECT "+videoColumns+" FROM videos WHERE id = ?", id)
	v, err := scanVideo(row)
	if err == sql.ErrNoRows {
		return Video{}, fmt.Errorf("video %v: %w", id, ErrNotFound)
	}
	return v, err
}

// Videos looks up multiple videos by id, keyed by id.
func (d *DB) Videos(ids []string) (map[string]Video, error) {
	videos := make(map[string]Video, len(ids))
	for _, id := range ids {
		if _, ok := videos[id]; ok {
			continue
		}
		v, err := d.Video(id)
		if err != nil {
			return nil, err
		}
		videos[id] = v
	}
	return videos, nil
}

// InsertVideo saves a video row.
func (d *DB) InsertVideo(v Video) error {
	var stashSceneID interface{}
	if v.StashSceneID != nil {
		stashSceneID = *v.StashSceneID
	}
	_, err := d.db.Exec(
		`INSERT INTO videos (`+videoColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		v.ID, v.Title, v.FilePath, v.Duration, v.Codec,
		v.Width, v.Height, v.FPS, v.Container, v.Source,
		stashSceneID, v.Interactive,
	)
	if err != nil {
		return fmt.Errorf("insert video: %w", err)
	}
	return nil
}
