package clip

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func rrMarker(id int64, start, end float64, videoID string) Marker {
	return Marker{
		ID:        id,
		VideoID:   videoID,
		Title:     "marker",
		StartTime: start,
		EndTime:   end,
		Loops:     1,
		Source:    SourceFolder,
	}
}

func TestRoundRobinFixedLengths(t *testing.T) {
	// A single divisor makes every target length 5 seconds, so the
	// outcome does not depend on the RNG draws.
	rng := SeededRNG("test")
	markers := []Marker{
		rrMarker(1, 1, 16, "v1"),
		rrMarker(2, 1, 18, "v2"),
	}
	opts := RoundRobinOptions{
		Length: 30,
		ClipLengths: LengthOptions{
			Type: LengthRandomized,
			Randomized: &RandomizedLengths{
				BaseDuration: 10,
				Divisors:     []float64{2},
			},
		},
	}
	clips, err := pickRoundRobin(markers, opts, rng)
	require.NoError(t, err)
	require.Len(t, clips, 6)
	for _, c := range clips {
		require.InDelta(t, 5, c.Duration(), Epsilon)
	}
	require.InDelta(t, 30, clipsDuration(clips), Epsilon)
}

func TestRoundRobinAlternatesMarkers(t *testing.T) {
	rng := SeededRNG("test")
	markers := []Marker{
		rrMarker(1, 0, 100, "v1"),
		rrMarker(2, 0, 100, "v2"),
	}
	opts := RoundRobinOptions{
		Length: 20,
		ClipLengths: LengthOptions{
			Type: LengthRandomized,
			Randomized: &RandomizedLengths{
				BaseDuration: 10,
				Divisors:     []float64{2},
			},
		},
	}
	clips, err := pickRoundRobin(markers, opts, rng)
	require.NoError(t, err)
	require.Len(t, clips, 4)
	require.NotEqual(t, clips[0].MarkerID, clips[1].MarkerID)
	require.NotEqual(t, clips[1].MarkerID, clips[2].MarkerID)
	require.NotEqual(t, clips[2].MarkerID, clips[3].MarkerID)
}

func TestRoundRobinStrictDuration(t *testing.T) {
	rng := SeededRNG("test")
	markers := []Marker{rrMarker(1, 0, 10, "v1")}
	opts := RoundRobinOptions{
		Length: 100,
		ClipLengths: LengthOptions{
			Type: LengthRandomized,
			Randomized: &RandomizedLengths{
				BaseDuration: 10,
				Divisors:     []float64{2},
			},
		},
	}
	_, err := pickRoundRobin(markers, opts, rng)
	require.ErrorIs(t, err, ErrInvalidInput)

	opts.LenientDuration = true
	clips, err := pickRoundRobin(markers, opts, rng)
	require.NoError(t, err)
	require.LessOrEqual(t, clipsDuration(clips), 10.0+Epsilon)
}

func TestRoundRobinSongs(t *testing.T) {
	rng := SeededRNG("test")
	markers := []Marker{
		rrMarker(1, 0, 30, "v1"),
		rrMarker(2, 0, 30, "v2"),
	}
	songs := []Beats{
		{Length: 10, Offsets: intOffsets(10)},
		{Length: 10, Offsets: intOffsets(10)},
	}
	opts := RoundRobinOptions{
		Length: 20,
		ClipLengths: LengthOptions{
			Type: LengthSongs,
			Songs: &SongLengths{
				BeatsPerMeasure:  4,
				CutAfterMeasures: MeasureCount{Type: MeasureFixed, Count: 1},
				Songs:            songs,
			},
		},
	}
	clips, err := pickRoundRobin(markers, opts, rng)
	require.NoError(t, err)
	require.InDelta(t, 20, clipsDuration(clips), 0.01)
}
