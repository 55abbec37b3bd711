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

import "sort"

// ArrangeOptions is the full input of one arrangement.
type ArrangeOptions struct {
	Markers []Marker      `json:"markers"`
	Seed    string        `json:"seed"`
	Picker  PickerOptions `json:"clipPicker"`
	Order   OrderOptions  `json:"order"`
}

// Result is the output of one arrangement.
type Result struct {
	Clips       []Clip
	BeatOffsets []float64 // Only set for song-driven compilations.
}

// normalizeVideoIndices rewrites IndexWithinVideo per video so the
// indices are dense starting at zero.
func normalizeVideoIndices(markers []Marker) {
	sort.SliceStable(markers, func(i, j int) bool {
		if markers[i].VideoID != markers[j].VideoID {
			return markers[i].VideoID < markers[j].VideoID
		}
		return markers[i].IndexWithinVideo < markers[j].IndexWithinVideo
	})
	index := 0
	for i := range markers {
		if i > 0 && markers[i].VideoID != markers[i-1].VideoID {
			index = 0
		}
		markers[i].IndexWithinVideo = index
		index++
	}
}

// applyLoops replaces each marker with Loops copies so the selection
// pool is finite and deterministic.
func applyLoops(markers []Marker) []Marker {
	out := make([]Marker, 0, len(markers))
	for _, marker := range markers {
		loops := marker.Loops
		if loops < 1 {
			loops = 1
		}
		for i := 0; i < loops; i++ {
			out = append(out, marker)
		}
	}
	return out
}

// Arrange transforms the selected markers into the ordered clip
// sequence of one compilation. It is pure: the seeded RNG is the only
// state, so identical options yield identical results.
func Arrange(opts ArrangeOptions) (Result, error) {
	markers := make([]Marker, len(opts.Markers))
	copy(markers, opts.Markers)

	normalizeVideoIndices(markers)
	markers = applyLoops(markers)

	var beatOffsets []float64
	order := opts.Order
	if songs := opts.Picker.SongBeats(); songs != nil {
		beatOffsets = BeatOffsets(songs)
		// Music timing governs, the emitted order is kept.
		order = OrderOptions{Type: OrderNoOp}
	}

	rng := SeededRNG(opts.Seed)
	rng.Shuffle(len(markers), func(i, j int) {
		markers[i], markers[j] = markers[j], markers[i]
	})

	var clips []Clip
	var err error
	switch opts.Picker.Type {
	case PickRoundRobin:
		if opts.Picker.RoundRobin == nil {
			return Result{}, invalidInputf("roundRobin options missing")
		}
		clips, err = pickRoundRobin(markers, *opts.Picker.RoundRobin, rng)
	case PickWeightedRandom:
		if opts.Picker.WeightedRandom == nil {
			return Result{}, invalidInputf("weightedRandom options missing")
		}
		clips, err = pickWeightedRandom(markers, *opts.Picker.WeightedRandom, rng)
	case PickEqualLength:
		if opts.Picker.EqualLength == nil {
			return Result{}, invalidInputf("equalLength options missing")
		}
		clips, err = pickEqualLength(markers, *opts.Picker.EqualLength, rng)
	case PickNoSplit:
		clips = markersToClips(markers)
	default:
		return Result{}, invalidInputf("unknown picker type %q", opts.Picker.Type)
	}
	if err != nil {
		return Result{}, err
	}

	switch order.Type {
	case OrderRandom:
		clips = sortRandom(clips, rng)
	case OrderSceneOrder:
		clips = sortSceneOrder(clips, rng)
	case OrderFixed:
		clips = sortFixed(clips, order.TitleGroups)
	case OrderNoOp:
	default:
		return Result{}, invalidInputf("unknown order type %q", order.Type)
	}

	return Result{Clips: clips, BeatOffsets: beatOffsets}, nil
}
