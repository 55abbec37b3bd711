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

package funscript

import (
	"math"

	"vidmash/pkg/clip"
)

// StrokeType determines how beats map to strokes.
type StrokeType struct {
	Type string `json:"type"` // "everyNth" or "accelerate".
	// One stroke every N beats.
	N int `json:"n,omitempty"`
	// Strokes per beat, interpolated over the whole timeline.
	StartStrokesPerBeat float64 `json:"startStrokesPerBeat,omitempty"`
	EndStrokesPerBeat   float64 `json:"endStrokesPerBeat,omitempty"`
}

// Stroke types.
const (
	StrokeEveryNth   = "everyNth"
	StrokeAccelerate = "accelerate"
)

func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// beatState walks the beat offsets of consecutive songs on the
// combined timeline.
type beatState struct {
	songs         []clip.Beats
	index         int // Current song.
	beat          int // Next beat within the current song.
	offset        float64
	totalDuration float64
}

func newBeatState(songs []clip.Beats) *beatState {
	var total float64
	for _, song := range songs {
		total += song.Length
	}
	return &beatState{songs: songs, totalDuration: total}
}

// next returns the next beat on the combined timeline along with the
// number of offsets remaining in its song. The remaining count
// restarts at every song boundary, which resets the every-nth stroke
// phase per song.
func (s *beatState) next() (float64, int, bool) {
	for s.index < len(s.songs) && s.beat >= len(s.songs[s.index].Offsets) {
		s.offset += s.songs[s.index].Length
		s.index++
		s.beat = 0
	}
	if s.index >= len(s.songs) {
		return 0, 0, false
	}
	song := s.songs[s.index]
	beat := song.Offsets[s.beat] + s.offset
	s.beat++
	return beat, len(song.Offsets) - s.beat, true
}

// peek returns the beat after the current one without advancing.
func (s *beatState) peek() (float64, bool) {
	index, beat, offset := s.index, s.beat, s.offset
	for index < len(s.songs) && beat >= len(s.songs[index].Offsets) {
		offset += s.songs[index].Length
		index++
		beat = 0
	}
	if index >= len(s.songs) {
		return 0, false
	}
	return s.songs[index].Offsets[beat] + offset, true
}

// CreateBeat builds a script whose strokes alternate between the two
// extremes, placed on the beat grid of the songs.
func CreateBeat(songs []clip.Beats, stroke StrokeType) Script {
	var positions []float64

	state := newBeatState(songs)
	switch stroke.Type {
	case StrokeEveryNth:
		n := stroke.N
		if n < 1 {
			n = 1
		}
		for {
			beat, remaining, ok := state.next()
			if !ok {
				break
			}
			if remaining%n == 0 {
				positions = append(positions, beat)
			}
		}
	case StrokeAccelerate:
		for {
			beat, remaining, ok := state.next()
			if !ok {
				break
			}
			percentage := beat / state.totalDuration
			strokesPerBeat := lerp(
				stroke.StartStrokesPerBeat, stroke.EndStrokesPerBeat, percentage)

			if strokesPerBeat >= 1 {
				every := int(math.Round(strokesPerBeat))
				if remaining%every == 0 {
					positions = append(positions, beat)
				}
				continue
			}

			// Less than one stroke per beat: interpolate extra
			// positions between this beat and the next.
			numBeats := int(math.Round(1 / strokesPerBeat))
			after, ok := state.peek()
			if !ok {
				positions = append(positions, beat)
				break
			}
			for i := 0; i < numBeats; i++ {
				percentage := float64(i) / float64(numBeats)
				positions = append(positions, lerp(beat, after, percentage))
			}
		}
	}

	actions := make([]Action, 0, len(positions))
	pos := 0
	for _, beat := range positions {
		actions = append(actions, Action{
			Pos: pos,
			At:  uint32(beat*1000.0 + 0.5),
		})
		if pos == 0 {
			pos = 100
		} else {
			pos = 0
		}
	}
	return newScript(actions)
}
