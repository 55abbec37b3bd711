package clip

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func videoMarker(id int64, start, end float64, index int, videoID string) Marker {
	return Marker{
		ID:               id,
		VideoID:          videoID,
		Title:            "marker",
		StartTime:        start,
		EndTime:          end,
		IndexWithinVideo: index,
		Loops:            1,
		Source:           SourceFolder,
	}
}

func TestNormalizeVideoIndices(t *testing.T) {
	markers := []Marker{
		videoMarker(1, 140, 190, 5, "v2"),
		videoMarker(2, 1, 17, 0, "v1"),
		videoMarker(3, 80, 120, 3, "v2"),
		videoMarker(4, 1, 15, 0, "v3"),
		videoMarker(5, 20, 60, 3, "v1"),
	}
	normalizeVideoIndices(markers)

	byID := map[int64]Marker{}
	for _, m := range markers {
		byID[m.ID] = m
	}
	require.Equal(t, 1, byID[1].IndexWithinVideo)
	require.Equal(t, 0, byID[2].IndexWithinVideo)
	require.Equal(t, 0, byID[3].IndexWithinVideo)
	require.Equal(t, 0, byID[4].IndexWithinVideo)
	require.Equal(t, 1, byID[5].IndexWithinVideo)
}

func TestApplyLoops(t *testing.T) {
	m1 := videoMarker(1, 1, 15, 0, "v1")
	m1.Loops = 2
	m2 := videoMarker(2, 3.5, 17, 0, "v2")
	m2.Loops = 3

	out := applyLoops([]Marker{m1, m2})
	require.Len(t, out, 5)
	require.Equal(t, int64(1), out[0].ID)
	require.Equal(t, int64(1), out[1].ID)
	require.Equal(t, int64(2), out[2].ID)
	require.Equal(t, int64(2), out[3].ID)
	require.Equal(t, int64(2), out[4].ID)
}

func TestArrangeNoSplit(t *testing.T) {
	opts := ArrangeOptions{
		Markers: []Marker{
			videoMarker(2, 1, 17, 3, "v1"),
			videoMarker(1, 1, 15, 0, "v1"),
		},
		Seed:   "fixed",
		Picker: PickerOptions{Type: PickNoSplit},
		Order:  OrderOptions{Type: OrderSceneOrder},
	}
	result, err := Arrange(opts)
	require.NoError(t, err)
	require.Len(t, result.Clips, 2)
	require.Equal(t, [2]float64{1, 15}, result.Clips[0].Range)
	require.Equal(t, [2]float64{1, 17}, result.Clips[1].Range)
}

func TestArrangeDeterminism(t *testing.T) {
	opts := ArrangeOptions{
		Markers: []Marker{
			videoMarker(1, 0, 120, 0, "v1"),
			videoMarker(2, 0, 120, 1, "v1"),
			videoMarker(3, 0, 120, 0, "v2"),
		},
		Seed: "some-seed",
		Picker: PickerOptions{
			Type: PickRoundRobin,
			RoundRobin: &RoundRobinOptions{
				Length:      100,
				ClipLengths: randomizedLengths(),
			},
		},
		Order: OrderOptions{Type: OrderRandom},
	}
	a, err := Arrange(opts)
	require.NoError(t, err)
	b, err := Arrange(opts)
	require.NoError(t, err)
	require.Equal(t, a.Clips, b.Clips)
	require.NotEmpty(t, a.Clips)
}

func TestArrangeBudget(t *testing.T) {
	opts := ArrangeOptions{
		Markers: []Marker{videoMarker(1, 0, 1000, 0, "v1")},
		Seed:    "budget",
		Picker: PickerOptions{
			Type: PickRoundRobin,
			RoundRobin: &RoundRobinOptions{
				Length:      100,
				ClipLengths: randomizedLengths(),
			},
		},
		Order: OrderOptions{Type: OrderNoOp},
	}
	result, err := Arrange(opts)
	require.NoError(t, err)
	require.InDelta(t, 100, clipsDuration(result.Clips), 0.01)
}

func TestArrangeLoopExpansion(t *testing.T) {
	base := ArrangeOptions{
		Markers: []Marker{videoMarker(1, 0, 10, 0, "v1")},
		Seed:    "loops",
		Picker: PickerOptions{
			Type: PickRoundRobin,
			RoundRobin: &RoundRobinOptions{
				Length:          100,
				LenientDuration: true,
				ClipLengths: LengthOptions{
					Type: LengthRandomized,
					Randomized: &RandomizedLengths{
						BaseDuration: 10,
						Divisors:     []float64{2},
					},
				},
			},
		},
		Order: OrderOptions{Type: OrderNoOp},
	}
	single, err := Arrange(base)
	require.NoError(t, err)

	looped := base
	looped.Markers = []Marker{videoMarker(1, 0, 10, 0, "v1")}
	looped.Markers[0].Loops = 3
	tripled, err := Arrange(looped)
	require.NoError(t, err)

	require.Len(t, single.Clips, 2)
	require.Len(t, tripled.Clips, 6)
	require.InDelta(t, 30, clipsDuration(tripled.Clips), Epsilon)
}

func TestArrangeMusicForcesNoOpOrder(t *testing.T) {
	songs := []Beats{
		{Length: 10, Offsets: intOffsets(10)},
		{Length: 10, Offsets: intOffsets(10)},
	}
	base := ArrangeOptions{
		Markers: []Marker{
			videoMarker(1, 0, 30, 0, "v1"),
			videoMarker(2, 0, 30, 0, "v2"),
		},
		Seed: "music",
		Picker: PickerOptions{
			Type: PickRoundRobin,
			RoundRobin: &RoundRobinOptions{
				Length: 20,
				ClipLengths: LengthOptions{
					Type: LengthSongs,
					Songs: &SongLengths{
						BeatsPerMeasure:  4,
						CutAfterMeasures: MeasureCount{Type: MeasureFixed, Count: 1},
						Songs:            songs,
					},
				},
			},
		},
		Order: OrderOptions{Type: OrderRandom},
	}
	shuffled, err := Arrange(base)
	require.NoError(t, err)

	noop := base
	noop.Order = OrderOptions{Type: OrderNoOp}
	kept, err := Arrange(noop)
	require.NoError(t, err)

	require.Equal(t, kept.Clips, shuffled.Clips)
	require.Equal(t, BeatOffsets(songs), shuffled.BeatOffsets)
	require.InDelta(t, 20, clipsDuration(shuffled.Clips), 0.01)
}

func TestArrangeUnknownPicker(t *testing.T) {
	_, err := Arrange(ArrangeOptions{
		Picker: PickerOptions{Type: "bogus"},
		Order:  OrderOptions{Type: OrderNoOp},
	})
	require.ErrorIs(t, err, ErrInvalidInput)
}
