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

import "math/rand"

// pickRoundRobin cycles through the active markers in order, cutting
// the next target length from each in turn.
func pickRoundRobin(markers []Marker, opts RoundRobinOptions, rng *rand.Rand) ([]Clip, error) {
	songDuration := opts.ClipLengths.SongDuration()
	hasMusic := opts.ClipLengths.HasMusic()

	if !opts.LenientDuration {
		if total := markersDuration(markers); total < opts.Length {
			return nil, invalidInputf(
				"marker duration %v must be greater or equal to target duration %v",
				total, opts.Length)
		}
	}

	minDuration := opts.MinClipDuration
	if minDuration == 0 {
		minDuration = DefaultMinDuration
	}

	durations, err := Durations(opts.ClipLengths, opts.Length, minDuration, rng)
	if err != nil {
		return nil, err
	}

	state := newMarkerState(markers, durations, opts.Length)
	var clips []Clip
	markerIdx := 0
	for !state.finished() {
		info, ok := state.findByIndex(markerIdx)
		markerIdx++
		if !ok {
			continue
		}

		duration := info.End - info.Start
		if (hasMusic && duration > 0) || (!hasMusic && duration >= minDuration) {
			clips = append(clips, Clip{
				Source:            info.Marker.Source,
				VideoID:           info.Marker.VideoID,
				MarkerID:          info.Marker.ID,
				MarkerTitle:       info.Marker.Title,
				Range:             [2]float64{info.Start, info.End},
				IndexWithinVideo:  info.Marker.IndexWithinVideo,
				IndexWithinMarker: info.Index,
			})
		}
		state.update(info.Marker.ID, info.End, duration, info.Skipped)
	}

	shortenOverrun(clips, opts.Length)
	if hasMusic {
		lengthenShortfall(clips, songDuration)
	}
	return trimClips(clips, opts.Length), nil
}
