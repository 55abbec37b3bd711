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

package log

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strconv"

	_ "github.com/mattn/go-sqlite3" // sqlite3 driver.
)

const dbAPIversion = 1

func checkDB(dbPath string) error {
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		return createDB(dbPath)
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return fmt.Errorf("could not open database: %w", err)
	}
	defer db.Close()

	rows, err := db.Query("PRAGMA user_version;")
	if err != nil {
		return err
	}
	defer rows.Close()

	var version int
	rows.Next()
	if err = rows.Scan(&version); err != nil {
		return err
	}
	if err := rows.Err(); err != nil {
		return err
	}

	if version != dbAPIversion {
		return fmt.Errorf("invalid database version: %v", dbPath)
	}

	return nil
}

func createDB(dbPath string) error {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return fmt.Errorf("could not create database: %w", err)
	}
	defer db.Close()

	sqlStmt := "create table logs (" +
		"time INTEGER not null," +
		" level INTEGER not null," +
		" src TEXT not null," +
		" compilation TEXT," +
		" msg TEXT not null);"

	if _, err = db.Exec(sqlStmt); err != nil {
		return fmt.Errorf("could not create table in database: %w", err)
	}

	_, err = db.Exec("PRAGMA user_version = " + strconv.Itoa(dbAPIversion))
	if err != nil {
		return fmt.Errorf("could not set database api version: %w", err)
	}

	return nil
}

const maxRows = "100000"

// LogToDB writes the log feed to the sqlite database.
func (l *Logger) LogToDB(ctx context.Context) error {
	db, err := sql.Open("sqlite3", l.dbPath)
	if err != nil {
		return fmt.Errorf("could not open database: %w", err)
	}
	defer db.Close()

	feed, cancel := l.Subscribe()
	defer cancel()
	for {
		select {
		case log := <-feed:
			if err := saveLogToDB(log, db); err != nil {
				fmt.Fprintf(os.Stderr, "could not save log: %v %v\n", log.Msg, err)
			}
		case <-ctx.Done():
			return nil
		}
	}
}

func saveLogToDB(log Log, db *sql.DB) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("could not start transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	insertStmt, err := tx.Prepare(
		"insert into logs(time, level, src, compilation, msg) values(?, ?, ?, ?, ?)")
	if err != nil {
		return fmt.Errorf("prepare: %w", err)
	}
	defer insertStmt.Close()

	_, err = insertStmt.Exec(log.Time, log.Level, log.Src, log.Compilation, log.Msg)
	if err != nil {
		return fmt.Errorf("exec: %w", err)
	}

	// Maintain table size.
	sqlStmt := "DELETE FROM logs WHERE NOT rowid IN " +
		"(SELECT rowid FROM `logs` ORDER BY `time` DESC LIMIT " + maxRows + ");"

	if _, err = tx.Exec(sqlStmt); err != nil {
		return fmt.Errorf("exec: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("could not commit transaction: %w", err)
	}

	return nil
}
