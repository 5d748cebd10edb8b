package tensor

// ScoreMap is a 2-D map of per-pixel dissimilarity scores. It is produced at
// the spatial resolution of the first feature layer and resampled up to the
// frame resolution only when rendered.
type ScoreMap struct {
	Height int
	Width  int
	Data   []float64
}

// NewScoreMap allocates a zeroed score map.
func NewScoreMap(height, width int) ScoreMap {
	return ScoreMap{
		Height: height,
		Width:  width,
		Data:   make([]float64, height*width),
	}
}

// At returns the score at row y, column x.
func (m ScoreMap) At(y, x int) float64 {
	return m.Data[y*m.Width+x]
}

// Set stores v at row y, column x.
func (m ScoreMap) Set(y, x int, v float64) {
	m.Data[y*m.Width+x] = v
}

// Resample returns the map resized to height x width with the same
// pixel-center bilinear interpolation used for feature maps.
func (m ScoreMap) Resample(height, width int) ScoreMap {
	if height == m.Height && width == m.Width {
		out := ScoreMap{Height: m.Height, Width: m.Width}
		out.Data = make([]float64, len(m.Data))
		copy(out.Data, m.Data)
		return out
	}

	out := NewScoreMap(height, width)
	rows := bilinearAxis(m.Height, height)
	cols := bilinearAxis(m.Width, width)

	for y := 0; y < height; y++ {
		ry := rows[y]
		for x := 0; x < width; x++ {
			rx := cols[x]
			v00 := m.Data[ry.lo*m.Width+rx.lo]
			v01 := m.Data[ry.lo*m.Width+rx.hi]
			v10 := m.Data[ry.hi*m.Width+rx.lo]
			v11 := m.Data[ry.hi*m.Width+rx.hi]
			top := v00 + (v01-v00)*float64(rx.frac)
			bottom := v10 + (v11-v10)*float64(rx.frac)
			out.Set(y, x, top+(bottom-top)*float64(ry.frac))
		}
	}
	return out
}

// MinMax returns the smallest and largest score in the map.
func (m ScoreMap) MinMax() (min, max float64) {
	if len(m.Data) == 0 {
		return 0, 0
	}
	min, max = m.Data[0], m.Data[0]
	for _, v := range m.Data[1:] {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	return min, max
}
