package generate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestEstimatorRate(t *testing.T) {
	start := time.Unix(1000, 0)
	e := NewEstimator(start)

	e.Record(5, start.Add(5*time.Second))
	e.Record(10, start.Add(10*time.Second))

	now := start.Add(10 * time.Second)
	require.InDelta(t, 1.0, e.StepsPerSecond(now), 0.001)
	require.InDelta(t, 10.0, e.ETA(20, now), 0.001)
}

func TestEstimatorNoProgress(t *testing.T) {
	start := time.Unix(1000, 0)
	e := NewEstimator(start)
	require.Equal(t, 0.0, e.StepsPerSecond(start))
	require.Equal(t, 0.0, e.ETA(100, start))
}

func TestEstimatorWindow(t *testing.T) {
	start := time.Unix(1000, 0)
	e := NewEstimator(start)

	// Slow progress early on, outside the window later.
	e.Record(1, start.Add(1*time.Minute))
	e.Record(2, start.Add(4*time.Minute))
	e.Record(12, start.Add(5*time.Minute))

	// Only the samples within the last two minutes count.
	now := start.Add(5 * time.Minute)
	rate := e.StepsPerSecond(now)
	require.InDelta(t, 10.0/60.0, rate, 0.01)
}

func TestEstimatorETAClamped(t *testing.T) {
	start := time.Unix(1000, 0)
	e := NewEstimator(start)
	e.Record(30, start.Add(10*time.Second))
	require.Equal(t, 0.0, e.ETA(20, start.Add(10*time.Second)))
}
