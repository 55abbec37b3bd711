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

// markersToClips emits one clip per marker covering its full range.
func markersToClips(markers []Marker) []Clip {
	clips := make([]Clip, 0, len(markers))
	for _, marker := range markers {
		clips = append(clips, Clip{
			Source:            marker.Source,
			VideoID:           marker.VideoID,
			MarkerID:          marker.ID,
			MarkerTitle:       marker.Title,
			Range:             [2]float64{marker.StartTime, marker.EndTime},
			IndexWithinVideo:  marker.IndexWithinVideo,
			IndexWithinMarker: 0,
		})
	}
	return clips
}

func clipsDuration(clips []Clip) float64 {
	var total float64
	for _, c := range clips {
		total += c.Duration()
	}
	return total
}

func markersDuration(markers []Marker) float64 {
	var total float64
	for _, m := range markers {
		total += m.Duration()
	}
	return total
}

// trimClips truncates the clip list from the tail so the total
// duration does not exceed maxDuration by more than Epsilon.
func trimClips(clips []Clip, maxDuration float64) []Clip {
	var total float64
	out := make([]Clip, 0, len(clips))
	for _, c := range clips {
		duration := c.Duration()
		if total+duration <= maxDuration+Epsilon {
			out = append(out, c)
			total += duration
			continue
		}
		remaining := maxDuration - total
		if remaining > Epsilon {
			c.Range[1] = c.Range[0] + remaining
			out = append(out, c)
		}
		break
	}
	return out
}

// shortenOverrun shortens each clip uniformly when the emitted total
// exceeds the budget.
func shortenOverrun(clips []Clip, maxDuration float64) {
	total := clipsDuration(clips)
	if total <= maxDuration || len(clips) == 0 {
		return
	}
	slack := (total - maxDuration) / float64(len(clips))
	for i := range clips {
		clips[i].Range[1] -= slack
	}
}

// lengthenShortfall lengthens each clip uniformly so music-driven
// compilations cover the full song duration.
func lengthenShortfall(clips []Clip, songDuration float64) {
	total := clipsDuration(clips)
	if total >= songDuration || len(clips) == 0 {
		return
	}
	extra := (songDuration - total) / float64(len(clips))
	for i := range clips {
		clips[i].Range[1] += extra
	}
}
