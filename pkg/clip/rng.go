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
	"hash/fnv"
	"math/rand"
)

// SeededRNG returns a PRNG whose state is derived from seed.
// The same seed always yields the same sequence. The arrangement
// core never reads process-wide entropy; callers that want a random
// arrangement must generate a seed themselves.
func SeededRNG(seed string) *rand.Rand {
	h := fnv.New64a()
	h.Write([]byte(seed)) //nolint:errcheck
	return rand.New(rand.NewSource(int64(h.Sum64())))
}

// chooseFloat returns a uniformly chosen element.
func chooseFloat(rng *rand.Rand, values []float64) float64 {
	return values[rng.Intn(len(values))]
}
