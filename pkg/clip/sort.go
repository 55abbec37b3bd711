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
	"math/rand"
	"sort"
)

// sortRandom shuffles the clips.
func sortRandom(clips []Clip, rng *rand.Rand) []Clip {
	rng.Shuffle(len(clips), func(i, j int) {
		clips[i], clips[j] = clips[j], clips[i]
	})
	return clips
}

// sortSceneOrder orders clips by their position in the source
// material. Ties are broken by a seeded random key so equal positions
// still sort deterministically for a given seed.
func sortSceneOrder(clips []Clip, rng *rand.Rand) []Clip {
	type keyed struct {
		clip Clip
		rand int
	}
	decorated := make([]keyed, 0, len(clips))
	for _, c := range clips {
		decorated = append(decorated, keyed{clip: c, rand: rng.Int()})
	}
	sort.Slice(decorated, func(i, j int) bool {
		a, b := decorated[i], decorated[j]
		if a.clip.IndexWithinVideo != b.clip.IndexWithinVideo {
			return a.clip.IndexWithinVideo < b.clip.IndexWithinVideo
		}
		if a.clip.IndexWithinMarker != b.clip.IndexWithinMarker {
			return a.clip.IndexWithinMarker < b.clip.IndexWithinMarker
		}
		return a.rand < b.rand
	})
	out := make([]Clip, 0, len(clips))
	for _, k := range decorated {
		out = append(out, k.clip)
	}
	return out
}

// sortFixed partitions clips by marker title into the given ordered
// groups. Clips within a group keep their emission order, titles not
// listed go last.
func sortFixed(clips []Clip, titleGroups []string) []Clip {
	rank := make(map[string]int, len(titleGroups))
	for i, title := range titleGroups {
		rank[title] = i
	}
	groupOf := func(c Clip) int {
		if r, ok := rank[c.MarkerTitle]; ok {
			return r
		}
		return len(titleGroups)
	}
	out := make([]Clip, len(clips))
	copy(out, clips)
	sort.SliceStable(out, func(i, j int) bool {
		return groupOf(out[i]) < groupOf(out[j])
	})
	return out
}
