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

// weightedIndex samples an index proportional to the weights.
type weightedIndex struct {
	cumulative []float64
	total      float64
}

func newWeightedIndex(weights []TitleWeight) weightedIndex {
	cumulative := make([]float64, len(weights))
	var total float64
	for i, w := range weights {
		total += w.Weight
		cumulative[i] = total
	}
	return weightedIndex{cumulative: cumulative, total: total}
}

func (w weightedIndex) sample(rng *rand.Rand) int {
	x := rng.Float64() * w.total
	for i, c := range w.cumulative {
		if x < c {
			return i
		}
	}
	return len(w.cumulative) - 1
}

func validateWeights(markers []Marker, weights []TitleWeight) error {
	for _, w := range weights {
		if w.Weight <= 0 {
			return invalidInputf("weight for title %q must be greater than 0", w.Title)
		}
		count := 0
		for _, m := range markers {
			if m.Title == w.Title {
				count++
			}
		}
		if count == 0 {
			return invalidInputf("no markers found for title %q", w.Title)
		}
	}
	return nil
}

// pickWeightedRandom samples a marker title from the weighted
// distribution on every tick and cuts the next target length from a
// random active marker with that title. Markers whose title carries
// no positive weight are dropped up front.
func pickWeightedRandom(markers []Marker, opts WeightedRandomOptions, rng *rand.Rand) ([]Clip, error) {
	weights := make([]TitleWeight, 0, len(opts.Weights))
	for _, w := range opts.Weights {
		if w.Weight > 0 {
			weights = append(weights, w)
		}
	}
	titles := make(map[string]struct{}, len(weights))
	for _, w := range weights {
		titles[w.Title] = struct{}{}
	}
	kept := make([]Marker, 0, len(markers))
	for _, m := range markers {
		if _, ok := titles[m.Title]; ok {
			kept = append(kept, m)
		}
	}
	if err := validateWeights(kept, weights); err != nil {
		return nil, err
	}

	minDuration := opts.MinClipDuration
	if minDuration == 0 {
		minDuration = DefaultMinDuration
	}
	hasMusic := opts.ClipLengths.HasMusic()
	songDuration := opts.ClipLengths.SongDuration()

	durations, err := Durations(opts.ClipLengths, opts.Length, minDuration, rng)
	if err != nil {
		return nil, err
	}

	distribution := newWeightedIndex(weights)
	state := newMarkerState(kept, durations, opts.Length)
	var clips []Clip
	for !state.finished() {
		title := weights[distribution.sample(rng)].Title
		info, ok := state.findByTitle(title, rng)
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
