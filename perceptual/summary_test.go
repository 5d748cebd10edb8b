package perceptual

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Ranch-o/World-Model-Anomaly-Detection-Autonomous-Driving/tensor"
)

func TestSummarizeKnownValues(t *testing.T) {
	m := tensor.NewScoreMap(2, 2)
	copy(m.Data, []float64{0, 1, 2, 3})

	s := Summarize(m)
	require.InDelta(t, 1.5, s.Mean, 1e-9)
	require.InDelta(t, 3, s.Max, 1e-9)
	require.InDelta(t, 3, s.P95, 1e-9)
	require.InDelta(t, 1.2909944487, s.StdDev, 1e-9)
}

func TestSummarizeConstantMap(t *testing.T) {
	m := tensor.NewScoreMap(3, 3)
	for i := range m.Data {
		m.Data[i] = 0.25
	}

	s := Summarize(m)
	require.InDelta(t, 0.25, s.Mean, 1e-9)
	require.InDelta(t, 0.25, s.Max, 1e-9)
	require.InDelta(t, 0.25, s.P95, 1e-9)
	require.InDelta(t, 0, s.StdDev, 1e-9)
}

func TestSummarizeDoesNotMutateMap(t *testing.T) {
	m := tensor.NewScoreMap(1, 4)
	copy(m.Data, []float64{3, 1, 2, 0})

	Summarize(m)
	require.Equal(t, []float64{3, 1, 2, 0}, m.Data)
}

func TestSummarizeEmptyMap(t *testing.T) {
	s := Summarize(tensor.ScoreMap{})
	require.Zero(t, s)
}
