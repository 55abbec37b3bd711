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

package generate

import "time"

// estimatorWindow is how far back completed work samples count
// towards the rolling rate.
const estimatorWindow = 2 * time.Minute

type sample struct {
	completed float64
	at        time.Time
}

// Estimator derives a rolling steps-per-second rate from completed
// work samples, for ETA computation. Samples must be recorded with
// monotonically non-decreasing completed counts.
type Estimator struct {
	window  time.Duration
	samples []sample
}

// NewEstimator returns an estimator with the default window.
func NewEstimator(start time.Time) *Estimator {
	return &Estimator{
		window:  estimatorWindow,
		samples: []sample{{completed: 0, at: start}},
	}
}

// Record adds a completed-work sample.
func (e *Estimator) Record(completed float64, now time.Time) {
	e.samples = append(e.samples, sample{completed: completed, at: now})
	e.prune(now)
}

func (e *Estimator) prune(now time.Time) {
	cutoff := now.Add(-e.window)
	first := 0
	// The newest sample always survives so a rate baseline remains.
	for first < len(e.samples)-1 && e.samples[first].at.Before(cutoff) {
		first++
	}
	e.samples = e.samples[first:]
}

// StepsPerSecond returns the windowed average rate.
func (e *Estimator) StepsPerSecond(now time.Time) float64 {
	first := e.samples[0]
	last := e.samples[len(e.samples)-1]
	elapsed := now.Sub(first.at).Seconds()
	if elapsed <= 0 {
		return 0
	}
	return (last.completed - first.completed) / elapsed
}

// ETA returns the estimated remaining seconds, or zero when the rate
// is still unknown.
func (e *Estimator) ETA(total float64, now time.Time) float64 {
	rate := e.StepsPerSecond(now)
	if rate <= 0 {
		return 0
	}
	remaining := total - e.samples[len(e.samples)-1].completed
	if remaining < 0 {
		remaining = 0
	}
	return remaining / rate
}
