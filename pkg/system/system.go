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

package system

import (
	"context"
	"fmt"
	"sync"
	"time"

	"vidmash/pkg/log"
	"vidmash/pkg/storage"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

// Status is a snapshot of system resource usage.
type Status struct {
	CPUUsage           int    `json:"cpuUsage"`
	RAMUsage           int    `json:"ramUsage"`
	DiskUsage          int    `json:"diskUsage"`
	DiskUsageFormatted string `json:"diskUsageFormatted"`
}

type (
	cpuFunc  func(context.Context, time.Duration, bool) ([]float64, error)
	ramFunc  func() (*mem.VirtualMemoryStat, error)
	diskFunc func() (storage.DiskUsage, error)
)

// System polls resource usage on an interval.
type System struct {
	cpu  cpuFunc
	ram  ramFunc
	disk diskFunc

	status   Status
	duration time.Duration

	log *log.Logger
	mu  sync.Mutex
}

// New returns System.
func New(disk diskFunc, logger *log.Logger) *System {
	return &System{
		cpu:  cpu.PercentWithContext,
		ram:  mem.VirtualMemory,
		disk: disk,

		duration: 10 * time.Second,

		log: logger,
	}
}

func (s *System) update(ctx context.Context) error {
	cpuUsage, err := s.cpu(ctx, s.duration, false)
	if err != nil {
		return fmt.Errorf("could not get cpu usage: %w", err)
	}

	ramUsage, err := s.ram()
	if err != nil {
		return fmt.Errorf("could not get ram usage: %w", err)
	}

	diskUsage, err := s.disk()
	if err != nil {
		return fmt.Errorf("could not get disk usage: %w", err)
	}

	s.mu.Lock()
	s.status = Status{
		CPUUsage:           int(cpuUsage[0]),
		RAMUsage:           int(ramUsage.UsedPercent),
		DiskUsage:          diskUsage.Percent,
		DiskUsageFormatted: diskUsage.Formatted,
	}
	s.mu.Unlock()
	return nil
}

// StatusLoop updates the status until the context is canceled. The
// cpu poll blocks for the probe duration, so the loop only sleeps
// after a failed poll.
func (s *System) StatusLoop(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}
		if err := s.update(ctx); err != nil {
			s.log.Error().Src("system").Msgf("%v", err)
			select {
			case <-ctx.Done():
				return
			case <-time.After(s.duration):
			}
		}
	}
}

// Status returns the latest status.
func (s *System) Status() Status {
	defer s.mu.Unlock()
	s.mu.Lock()
	return s.status
}
