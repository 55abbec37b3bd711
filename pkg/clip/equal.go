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

// equalLengthCandidates derives the candidate clip lengths. Divisors
// take precedence; otherwise the spread around the base duration is
// used.
func equalLengthCandidates(opts EqualLengthOptions, minDuration float64) []float64 {
	var lengths []float64
	if len(opts.Divisors) > 0 {
		lengths = make([]float64, 0, len(opts.Divisors))
		for _, d := range opts.Divisors {
			lengths = append(lengths, opts.ClipDuration/d)
		}
	} else {
		lengths = []float64{
			opts.ClipDuration * (1 - opts.Spread),
			opts.ClipDuration,
			opts.ClipDuration * (1 + opts.Spread),
		}
	}
	for i, length := range lengths {
		if length < minDuration {
			lengths[i] = minDuration
		}
	}
	return lengths
}

// pickEqualLength splits every marker independently into pieces of
// roughly equal length.
func pickEqualLength(markers []Marker, opts EqualLengthOptions, rng *rand.Rand) ([]Clip, error) {
	if len(opts.Divisors) == 0 && opts.Spread == 0 {
		return nil, invalidInputf("either divisors or spread must be set")
	}

	minDuration := opts.MinClipDuration
	if minDuration == 0 {
		minDuration = DefaultMinDuration
	}
	lengths := equalLengthCandidates(opts, minDuration)

	var clips []Clip
	for _, marker := range markers {
		index := 0
		offset := marker.StartTime
		for offset < marker.EndTime {
			length := chooseFloat(rng, lengths)
			start := offset
			end := start + length
			if end > marker.EndTime {
				end = marker.EndTime
			}
			duration := end - start
			if duration > minDuration {
				clips = append(clips, Clip{
					Source:            marker.Source,
					VideoID:           marker.VideoID,
					MarkerID:          marker.ID,
					MarkerTitle:       marker.Title,
					Range:             [2]float64{start, end},
					IndexWithinVideo:  marker.IndexWithinVideo,
					IndexWithinMarker: index,
				})
				index++
			}
			offset += duration
		}
	}

	if opts.Length > 0 {
		clips = trimClips(clips, opts.Length)
	}
	return clips, nil
}
