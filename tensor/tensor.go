package tensor

import "fmt"

// FeatureMap is a single C x H x W activation tensor produced by one stage
// of the feature extractor. The batch dimension of the network output is
// always 1 and is dropped here. Data is laid out channel-major (CHW), the
// same layout the DNN blob uses, so conversion is a straight copy.
type FeatureMap struct {
	Channels int
	Height   int
	Width    int
	Data     []float32
}

// NewFeatureMap allocates a zeroed feature map with the given shape.
func NewFeatureMap(channels, height, width int) FeatureMap {
	return FeatureMap{
		Channels: channels,
		Height:   height,
		Width:    width,
		Data:     make([]float32, channels*height*width),
	}
}

// At returns the value at channel c, row y, column x.
func (m FeatureMap) At(c, y, x int) float32 {
	return m.Data[(c*m.Height+y)*m.Width+x]
}

// Set stores v at channel c, row y, column x.
func (m FeatureMap) Set(c, y, x int, v float32) {
	m.Data[(c*m.Height+y)*m.Width+x] = v
}

// Validate checks that the declared shape matches the backing slice.
func (m FeatureMap) Validate() error {
	if m.Channels <= 0 || m.Height <= 0 || m.Width <= 0 {
		return fmt.Errorf("invalid feature map shape %dx%dx%d", m.Channels, m.Height, m.Width)
	}
	if want := m.Channels * m.Height * m.Width; len(m.Data) != want {
		return fmt.Errorf("feature map data length %d does not match shape %dx%dx%d (want %d)",
			len(m.Data), m.Channels, m.Height, m.Width, want)
	}
	return nil
}

// Resample returns a copy of the feature map resized to height x width with
// bilinear interpolation. The sampling grid is aligned to pixel centers
// (half-pixel convention), not corners, matching the resampling the feature
// extractor's training pipeline uses. A same-size resample returns an
// unmodified copy.
func (m FeatureMap) Resample(height, width int) FeatureMap {
	if height == m.Height && width == m.Width {
		out := FeatureMap{Channels: m.Channels, Height: m.Height, Width: m.Width}
		out.Data = make([]float32, len(m.Data))
		copy(out.Data, m.Data)
		return out
	}

	out := NewFeatureMap(m.Channels, height, width)
	rows := bilinearAxis(m.Height, height)
	cols := bilinearAxis(m.Width, width)

	for c := 0; c < m.Channels; c++ {
		plane := m.Data[c*m.Height*m.Width:]
		for y := 0; y < height; y++ {
			ry := rows[y]
			for x := 0; x < width; x++ {
				rx := cols[x]
				v00 := plane[ry.lo*m.Width+rx.lo]
				v01 := plane[ry.lo*m.Width+rx.hi]
				v10 := plane[ry.hi*m.Width+rx.lo]
				v11 := plane[ry.hi*m.Width+rx.hi]
				top := v00 + (v01-v00)*rx.frac
				bottom := v10 + (v11-v10)*rx.frac
				out.Set(c, y, x, top+(bottom-top)*ry.frac)
			}
		}
	}
	return out
}

// axisSample holds the two source indices and interpolation weight for one
// output coordinate along a single axis.
type axisSample struct {
	lo, hi int
	frac   float32
}

// bilinearAxis precomputes the source sample positions for resizing an axis
// from srcLen to dstLen using pixel-center alignment. Coordinates that fall
// outside the source extent are clamped to the edge samples.
func bilinearAxis(srcLen, dstLen int) []axisSample {
	samples := make([]axisSample, dstLen)
	scale := float64(srcLen) / float64(dstLen)
	for i := 0; i < dstLen; i++ {
		src := (float64(i)+0.5)*scale - 0.5
		if src < 0 {
			src = 0
		}
		lo := int(src)
		if lo > srcLen-1 {
			lo = srcLen - 1
		}
		hi := lo + 1
		if hi > srcLen-1 {
			hi = srcLen - 1
		}
		samples[i] = axisSample{lo: lo, hi: hi, frac: float32(src - float64(lo))}
	}
	return samples
}
