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

// Package catalog is the metadata store: videos, their markers, songs
// and compilation progress rows, backed by a single sqlite database.
package catalog

import (
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	_ "github.com/mattn/go-sqlite3" // sqlite3 driver.
)

// ErrNotFound unknown video, marker or song id.
var ErrNotFound = errors.New("not found")

const dbAPIversion = 1

// DB wraps the sqlite database connection.
type DB struct {
	db *sql.DB
}

// Open opens the database at path, creating the schema if needed.
func Open(path string) (*DB, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=ON")
	if err != nil {
		return nil, fmt.Errorf("could not open database: %w", err)
	}

	d := &DB{db: db}
	if err := d.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return d, nil
}

// Close closes the database connection.
func (d *DB) Close() error {
	return d.db.Close()
}

func (d *DB) migrate() error {
	rows, err := d.db.Query("PRAGMA user_version;")
	if err != nil {
		return err
	}
	var version int
	rows.Next()
	if err := rows.Scan(&version); err != nil {
		rows.Close()
		return err
	}
	if err := rows.Close(); err != nil {
		return err
	}

	if version == dbAPIversion {
		return nil
	}
	if version != 0 {
		return fmt.Errorf("invalid database version: %v", version)
	}

	for _, stmt := range schema {
		if _, err := d.db.Exec(stmt); err != nil {
			return fmt.Errorf("could not create table: %w", err)
		}
	}
	_, err = d.db.Exec("PRAGMA user_version = " + strconv.Itoa(dbAPIversion))
	if err != nil {
		return fmt.Errorf("could not set database version: %w", err)
	}
	return nil
}

var schema = []string{
	`CREATE TABLE videos (
		id TEXT PRIMARY KEY NOT NULL,
		title TEXT NOT NULL,
		file_path TEXT NOT NULL,
		duration REAL NOT NULL,
		codec TEXT NOT NULL DEFAULT '',
		width INTEGER NOT NULL DEFAULT 0,
		height INTEGER NOT NULL DEFAULT 0,
		fps REAL NOT NULL DEFAULT 0,
		container TEXT NOT NULL DEFAULT '',
		source TEXT NOT NULL,
		stash_scene_id INTEGER,
		interactive INTEGER NOT NULL DEFAULT 0
	);`,
	`CREATE TABLE markers (
		rowid INTEGER PRIMARY KEY AUTOINCREMENT,
		video_id TEXT NOT NULL REFERENCES videos (id) ON DELETE CASCADE,
		title TEXT NOT NULL,
		start_time REAL NOT NULL,
		end_time REAL NOT NULL,
		index_within_video INTEGER NOT NULL
	);`,
	`CREATE TABLE songs (
		rowid INTEGER PRIMARY KEY AUTOINCREMENT,
		file_path TEXT NOT NULL,
		duration REAL NOT NULL,
		beats TEXT
	);`,
	`CREATE TABLE progress (
		id TEXT PRIMARY KEY NOT NULL,
		items_total REAL NOT NULL,
		items_finished REAL NOT NULL DEFAULT 0,
		message TEXT NOT NULL DEFAULT '',
		eta_seconds REAL,
		done INTEGER NOT NULL DEFAULT 0,
		error_message TEXT,
		timestamp DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	);`,
}
