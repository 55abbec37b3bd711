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

// Durations produces the ordered list of target clip lengths for one
// compilation. Randomized lengths are drawn until the budget is
// covered, song lengths walk the beat grid of each song in turn.
func Durations(
	opts LengthOptions,
	totalDuration float64,
	minDuration float64,
	rng *rand.Rand,
) ([]float64, error) {
	switch opts.Type {
	case LengthRandomized:
		if opts.Randomized == nil {
			return nil, invalidInputf("randomized length options missing")
		}
		return randomizedDurations(rng, *opts.Randomized, totalDuration, minDuration)
	case LengthSongs:
		if opts.Songs == nil {
			return nil, invalidInputf("song length options missing")
		}
		return songDurations(rng, *opts.Songs)
	default:
		return nil, invalidInputf("unknown length type %q", opts.Type)
	}
}

func randomizedDurations(
	rng *rand.Rand,
	opts RandomizedLengths,
	totalDuration float64,
	minDuration float64,
) ([]float64, error) {
	if len(opts.Divisors) == 0 {
		return nil, invalidInputf("divisors must not be empty")
	}

	var durations []float64
	var current float64
	for current < totalDuration {
		divisor := chooseFloat(rng, opts.Divisors)
		time := opts.BaseDuration / divisor
		if time < minDuration {
			time = minDuration
		}
		durations = append(durations, time)
		current += time
	}
	return durations, nil
}

// padOffsets makes sure the beat grid starts at zero and ends at the
// song length, so terminal remainders become clips too.
func padOffsets(song Beats) []float64 {
	offsets := song.Offsets
	if len(offsets) == 0 || offsets[0] != 0 {
		offsets = append([]float64{0}, offsets...)
	}
	if offsets[len(offsets)-1] != song.Length {
		offsets = append(offsets, song.Length)
	}
	return offsets
}

func songDurations(rng *rand.Rand, opts SongLengths) ([]float64, error) {
	if len(opts.Songs) == 0 {
		return nil, invalidInputf("songs must not be empty")
	}

	offsets := make([][]float64, 0, len(opts.Songs))
	for _, song := range opts.Songs {
		offsets = append(offsets, padOffsets(song))
	}

	var durations []float64
	songIndex := 0
	beatIndex := 0
	for songIndex < len(offsets) {
		beats := offsets[songIndex]

		var measures int
		switch opts.CutAfterMeasures.Type {
		case MeasureFixed:
			measures = opts.CutAfterMeasures.Count
		case MeasureRandom:
			min, max := opts.CutAfterMeasures.Min, opts.CutAfterMeasures.Max
			if max <= min {
				return nil, invalidInputf("measure count range %d..%d is empty", min, max)
			}
			measures = min + rng.Intn(max-min)
		default:
			return nil, invalidInputf("unknown measure count type %q", opts.CutAfterMeasures.Type)
		}

		advance := opts.BeatsPerMeasure * measures
		next := beatIndex + advance
		if next > len(beats)-1 {
			next = len(beats) - 1
		}
		durations = append(durations, beats[next]-beats[beatIndex])

		if next == len(beats)-1 {
			songIndex++
			beatIndex = 0
		} else {
			beatIndex = next
		}
	}
	return durations, nil
}

// BeatOffsets flattens the beat grids of consecutive songs into one
// running-offset vector over the whole compilation timeline.
func BeatOffsets(songs []Beats) []float64 {
	var offsets []float64
	var current float64
	for _, song := range songs {
		for _, offset := range song.Offsets {
			offsets = append(offsets, current+offset)
		}
		current += song.Length
	}
	return offsets
}
