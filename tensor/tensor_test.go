package tensor

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFeatureMapAtSet(t *testing.T) {
	m := NewFeatureMap(2, 3, 4)
	m.Set(1, 2, 3, 7.5)
	require.Equal(t, float32(7.5), m.At(1, 2, 3))
	require.Equal(t, float32(0), m.At(0, 2, 3))
}

func TestFeatureMapValidate(t *testing.T) {
	m := NewFeatureMap(2, 3, 4)
	require.NoError(t, m.Validate())

	m.Data = m.Data[:5]
	require.Error(t, m.Validate())

	require.Error(t, FeatureMap{Channels: 0, Height: 1, Width: 1}.Validate())
}

func TestResampleSameSizeIsCopy(t *testing.T) {
	m := NewFeatureMap(1, 2, 2)
	for i := range m.Data {
		m.Data[i] = float32(i)
	}

	out := m.Resample(2, 2)
	require.Equal(t, m.Data, out.Data)

	// The copy must not alias the source
	out.Set(0, 0, 0, 99)
	require.Equal(t, float32(0), m.At(0, 0, 0))
}

func TestResamplePreservesConstant(t *testing.T) {
	m := NewFeatureMap(3, 4, 6)
	for i := range m.Data {
		m.Data[i] = 2.5
	}

	out := m.Resample(9, 13)
	require.Equal(t, 3, out.Channels)
	require.Equal(t, 9, out.Height)
	require.Equal(t, 13, out.Width)
	for _, v := range out.Data {
		require.Equal(t, float32(2.5), v)
	}
}

func TestResampleUpsampleHalfPixelCenters(t *testing.T) {
	// A 1x2 row [0, 1] upsampled to 1x4 with pixel-center alignment gives
	// [0, 0.25, 0.75, 1]: the outermost samples clamp to the edges.
	m := NewFeatureMap(1, 1, 2)
	m.Set(0, 0, 1, 1)

	out := m.Resample(1, 4)
	want := []float32{0, 0.25, 0.75, 1}
	require.Equal(t, want, out.Data)
}

func TestResampleDownsample(t *testing.T) {
	// A 1x4 row [0,1,2,3] halved with pixel-center alignment averages
	// adjacent pairs.
	m := NewFeatureMap(1, 1, 4)
	for x := 0; x < 4; x++ {
		m.Set(0, 0, x, float32(x))
	}

	out := m.Resample(1, 2)
	require.Equal(t, []float32{0.5, 2.5}, out.Data)
}

func TestResamplePerChannelIndependence(t *testing.T) {
	m := NewFeatureMap(2, 2, 2)
	for i := 0; i < 4; i++ {
		m.Data[i] = 1   // channel 0
		m.Data[4+i] = 3 // channel 1
	}

	out := m.Resample(4, 4)
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			require.Equal(t, float32(1), out.At(0, y, x))
			require.Equal(t, float32(3), out.At(1, y, x))
		}
	}
}

func TestScoreMapResample(t *testing.T) {
	m := NewScoreMap(1, 2)
	m.Set(0, 1, 1)

	out := m.Resample(1, 4)
	require.Equal(t, []float64{0, 0.25, 0.75, 1}, out.Data)
}

func TestScoreMapMinMax(t *testing.T) {
	m := NewScoreMap(2, 2)
	m.Set(0, 0, -1)
	m.Set(1, 1, 4)

	min, max := m.MinMax()
	require.Equal(t, -1.0, min)
	require.Equal(t, 4.0, max)
}
