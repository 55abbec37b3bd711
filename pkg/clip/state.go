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

package clip

import (
	"math"
	"math/rand"
)

// markerStart is the play head over one marker instance.
type markerStart struct {
	startTime float64
	endTime   float64
	index     int // How many clips were already cut from this instance.
}

func (m *markerStart) remaining() float64 {
	return m.endTime - m.startTime
}

// StateInfo describes the next cut suggested by the marker state.
type StateInfo struct {
	Marker  Marker
	Start   float64
	End     float64
	Index   int
	Skipped float64 // Requested length that exceeded the marker's end.
}

// markerState is a mutable cursor over the remaining playable
// intervals of all markers. Loop-expanded markers contribute one
// interval each; an interval is retired once its play head reaches
// the end, and a marker leaves the active set when all of its
// intervals are retired.
type markerState struct {
	data          map[int64][]*markerStart
	durations     []float64 // Target lengths, consumed front to back.
	markers       []Marker  // Active set.
	totalDuration float64
	length        float64
}

func newMarkerState(markers []Marker, durations []float64, length float64) *markerState {
	data := make(map[int64][]*markerStart)
	active := make([]Marker, 0, len(markers))
	for _, m := range markers {
		if _, ok := data[m.ID]; !ok {
			active = append(active, m)
		}
		data[m.ID] = append(data[m.ID], &markerStart{
			startTime: m.StartTime,
			endTime:   m.EndTime,
		})
	}

	return &markerState{
		data:      data,
		durations: durations,
		markers:   active,
		length:    length,
	}
}

// get returns the play head of the marker's current interval.
func (s *markerState) get(id int64) *markerStart {
	entries := s.data[id]
	if len(entries) == 0 {
		return nil
	}
	return entries[len(entries)-1]
}

// nextDuration returns the front of the durations queue.
func (s *markerState) nextDuration() (float64, bool) {
	if len(s.durations) == 0 {
		return 0, false
	}
	return s.durations[0], true
}

// update advances the play head after a successful emission. The
// consumed target length is dequeued; any skipped part is requeued so
// the next emission can still fill it. Exhausted intervals are
// retired, exhausted markers removed from the active set.
func (s *markerState) update(id int64, startTime, duration, skipped float64) {
	if len(s.durations) > 0 {
		s.durations = s.durations[1:]
	}
	if skipped > 0 {
		s.durations = append([]float64{skipped}, s.durations...)
	}
	s.totalDuration += duration

	entries := s.data[id]
	if len(entries) == 0 {
		return
	}
	entry := entries[len(entries)-1]
	entry.startTime = startTime
	entry.index++

	if math.Abs(entry.endTime-startTime) < Epsilon || entry.remaining() < Epsilon {
		s.data[id] = entries[:len(entries)-1]
		if len(s.data[id]) == 0 {
			for i, m := range s.markers {
				if m.ID == id {
					s.markers = append(s.markers[:i], s.markers[i+1:]...)
					break
				}
			}
		}
	}
}

// findByIndex looks up the next cut for the active marker at
// index modulo the active set size.
func (s *markerState) findByIndex(index int) (StateInfo, bool) {
	if len(s.markers) == 0 {
		return StateInfo{}, false
	}
	duration, ok := s.nextDuration()
	if !ok {
		return StateInfo{}, false
	}

	marker := s.markers[index%len(s.markers)]
	entry := s.get(marker.ID)
	if entry == nil {
		return StateInfo{}, false
	}
	return s.cutInfo(marker, entry, duration), true
}

// findByTitle picks uniformly among active markers with the title.
func (s *markerState) findByTitle(title string, rng *rand.Rand) (StateInfo, bool) {
	duration, ok := s.nextDuration()
	if !ok {
		return StateInfo{}, false
	}

	var candidates []Marker
	for _, marker := range s.markers {
		if marker.Title == title {
			candidates = append(candidates, marker)
		}
	}
	if len(candidates) == 0 {
		return StateInfo{}, false
	}
	marker := candidates[rng.Intn(len(candidates))]
	entry := s.get(marker.ID)
	if entry == nil {
		return StateInfo{}, false
	}
	return s.cutInfo(marker, entry, duration), true
}

func (s *markerState) cutInfo(marker Marker, entry *markerStart, duration float64) StateInfo {
	nextEnd := entry.startTime + duration
	var skipped float64
	if nextEnd > entry.endTime {
		skipped = nextEnd - entry.endTime
		nextEnd = entry.endTime
	}
	return StateInfo{
		Marker:  marker,
		Start:   entry.startTime,
		End:     nextEnd,
		Index:   entry.index,
		Skipped: skipped,
	}
}

// finished reports whether picking should stop.
func (s *markerState) finished() bool {
	return len(s.markers) == 0 ||
		s.totalDuration >= s.length ||
		len(s.durations) == 0
}
