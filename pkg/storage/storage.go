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

package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"vidmash/pkg/log"
)

// Manager handles storage interactions.
type Manager struct {
	tempVideoDir string
	general      *ConfigGeneral

	usage     func(string) int64
	removeAll func(string) error
	cleanup   func() error // Prunes old progress rows.

	log *log.Logger
}

// NewManager returns new manager.
func NewManager(
	tempVideoDir string,
	general *ConfigGeneral,
	cleanup func() error,
	logger *log.Logger,
) *Manager {
	return &Manager{
		tempVideoDir: tempVideoDir,
		general:      general,

		usage:     diskUsage,
		removeAll: os.RemoveAll,
		cleanup:   cleanup,

		log: logger,
	}
}

// DiskUsage of the clip cache. Used is in bytes, Max in GB.
type DiskUsage struct {
	Used      int
	Percent   int
	Max       int
	Formatted string
}

const kilobyte float64 = 1000
const megabyte = kilobyte * 1000
const gigabyte = megabyte * 1000
const terabyte = gigabyte * 1000

func formatDiskUsage(used float64) string {
	switch {
	case used < 1000*megabyte:
		return fmt.Sprintf("%.0fMB", used/megabyte)
	case used < 10*gigabyte:
		return fmt.Sprintf("%.2fGB", used/gigabyte)
	case used < 100*gigabyte:
		return fmt.Sprintf("%.1fGB", used/gigabyte)
	case used < 1000*gigabyte:
		return fmt.Sprintf("%.0fGB", used/gigabyte)
	case used < 10*terabyte:
		return fmt.Sprintf("%.2fTB", used/terabyte)
	case used < 100*terabyte:
		return fmt.Sprintf("%.1fTB", used/terabyte)
	default:
		return fmt.Sprintf("%.0fTB", used/terabyte)
	}
}

func diskUsage(path string) int64 {
	var used int64
	filepath.Walk(path+"/", func(_ string, info os.FileInfo, err error) error { //nolint:errcheck
		if info != nil && !info.IsDir() {
			used += info.Size()
		}
		return nil
	})
	return used
}

// Usage returns disk usage of the clip cache.
func (s *Manager) Usage() (DiskUsage, error) {
	used := s.usage(s.tempVideoDir)

	diskSpace := s.general.Get().DiskSpace
	if diskSpace == "0" || diskSpace == "" {
		return DiskUsage{
			Used:      int(used),
			Formatted: formatDiskUsage(float64(used)),
		}, nil
	}

	diskSpaceGB, err := strconv.ParseFloat(diskSpace, 64)
	if err != nil {
		return DiskUsage{}, err
	}
	diskSpaceByte := diskSpaceGB * gigabyte

	var usedPercent int64
	if used != 0 {
		usedPercent = (used * 100) / int64(diskSpaceByte)
	}

	return DiskUsage{
		Used:      int(used),
		Percent:   int(usedPercent),
		Max:       int(diskSpaceGB),
		Formatted: formatDiskUsage(float64(used)),
	}, nil
}

// purge deletes the oldest cached clips when usage is above 99%.
// Cached clips are pure functions of their file name, deleting them
// only costs re-encoding time on the next run.
func (s *Manager) purge() error {
	usage, err := s.Usage()
	if err != nil {
		return err
	}
	if usage.Percent < 99 {
		return nil
	}

	entries, err := os.ReadDir(s.tempVideoDir)
	if err != nil {
		return fmt.Errorf("could not read directory %v: %w", s.tempVideoDir, err)
	}

	type aged struct {
		path    string
		modTime time.Time
	}
	var files []aged
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		files = append(files, aged{
			path:    filepath.Join(s.tempVideoDir, entry.Name()),
			modTime: info.ModTime(),
		})
	}

	// Delete the oldest half of the cache.
	for i := 0; i < len(files); i++ {
		oldest := i
		for j := i + 1; j < len(files); j++ {
			if files[j].modTime.Before(files[oldest].modTime) {
				oldest = j
			}
		}
		files[i], files[oldest] = files[oldest], files[i]
	}
	for _, f := range files[:len(files)/2] {
		if err := s.removeAll(f.path); err != nil {
			return fmt.Errorf("could not remove file: %w", err)
		}
	}
	return nil
}

// PurgeLoop runs purge and progress cleanup on an interval until the
// context is canceled.
func (s *Manager) PurgeLoop(ctx context.Context, duration time.Duration) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-time.After(duration):
			if err := s.purge(); err != nil {
				s.log.Error().Src("storage").Msgf("failed to purge clip cache: %v", err)
			}
			if s.cleanup != nil {
				if err := s.cleanup(); err != nil {
					s.log.Error().Src("storage").Msgf("failed to clean up progress: %v", err)
				}
			}
		}
	}
}
