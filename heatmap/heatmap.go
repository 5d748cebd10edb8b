// Package heatmap renders difference maps as color-mapped raster images.
package heatmap

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"

	"github.com/Ranch-o/World-Model-Anomaly-Detection-Autonomous-Driving/tensor"
)

// Render resamples the score map to width x height and maps it through the
// "hot" palette (black through red and yellow to white). Scores are
// normalized to the map's own min/max range, so a constant map renders as a
// single uniform color. The float map is resampled before colorization, not
// after, to keep the palette ramp smooth across interpolated values.
func Render(m tensor.ScoreMap, width, height int) *image.RGBA {
	scaled := m.Resample(height, width)
	min, max := scaled.MinMax()
	span := max - min

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			t := 0.0
			if span > 0 {
				t = (scaled.At(y, x) - min) / span
			}
			img.SetRGBA(x, y, hotColor(t))
		}
	}
	return img
}

// Save writes the rendered heatmap to path as a PNG.
func Save(img image.Image, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("cannot create heatmap file %s: %w", path, err)
	}
	defer f.Close()

	if err := png.Encode(f, img); err != nil {
		return fmt.Errorf("cannot encode heatmap %s: %w", path, err)
	}
	return nil
}

// Palette segment boundaries: red ramps up first, then green, then blue.
const (
	hotRedEnd   = 0.365079
	hotGreenEnd = 0.746032
)

// hotColor maps a normalized score in [0,1] onto the hot palette. The ramp
// is monotonic in perceived brightness: 0 is black, 1 is white.
func hotColor(t float64) color.RGBA {
	if t < 0 {
		t = 0
	}
	if t > 1 {
		t = 1
	}

	var r, g, b float64
	switch {
	case t < hotRedEnd:
		r = t / hotRedEnd
	case t < hotGreenEnd:
		r = 1
		g = (t - hotRedEnd) / (hotGreenEnd - hotRedEnd)
	default:
		r = 1
		g = 1
		b = (t - hotGreenEnd) / (1 - hotGreenEnd)
	}

	return color.RGBA{
		R: uint8(r*255 + 0.5),
		G: uint8(g*255 + 0.5),
		B: uint8(b*255 + 0.5),
		A: 255,
	}
}
