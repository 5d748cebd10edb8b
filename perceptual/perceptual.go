// Package perceptual computes per-pixel perceptual difference maps from
// multi-layer feature embeddings of two corresponding frames. The score at a
// pixel is the sum over layers of the channel-normalized L1 distance between
// the two embeddings at that location, giving a multi-scale signal in which
// every network stage carries equal weight regardless of its channel count.
package perceptual

import (
	"errors"
	"fmt"

	"github.com/Ranch-o/World-Model-Anomaly-Detection-Autonomous-Driving/tensor"
)

var (
	// ErrLayerCountMismatch indicates the two extractions produced a
	// different number of feature layers. This means the extractions came
	// from different models and the comparison is meaningless.
	ErrLayerCountMismatch = errors.New("feature layer count mismatch")

	// ErrChannelCountMismatch indicates a layer pair disagrees on channel
	// count. Same cause as ErrLayerCountMismatch: extractor mismatch.
	ErrChannelCountMismatch = errors.New("feature channel count mismatch")

	// ErrEmptyFeatures indicates an extraction produced no layers at all.
	ErrEmptyFeatures = errors.New("empty feature sequence")
)

// Difference computes the perceptual difference map between two feature
// sequences. Both sequences must have the same layer count and matching
// per-layer channel counts; a mismatch aborts the comparison rather than
// truncating to the shorter sequence. The output map has the spatial
// resolution of the first layer of a.
//
// Every layer is resampled once to the reference resolution before the
// pixel loop. The metric is symmetric in its arguments.
func Difference(a, b []tensor.FeatureMap) (tensor.ScoreMap, error) {
	if err := validate(a, b); err != nil {
		return tensor.ScoreMap{}, err
	}

	height := a[0].Height
	width := a[0].Width

	// Hoist the per-layer resampling out of the pixel loop: one resize per
	// layer instead of one per output pixel.
	resampledA := make([]tensor.FeatureMap, len(a))
	resampledB := make([]tensor.FeatureMap, len(b))
	for l := range a {
		resampledA[l] = a[l].Resample(height, width)
		resampledB[l] = b[l].Resample(height, width)
	}

	out := tensor.NewScoreMap(height, width)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			score := 0.0
			for l := range resampledA {
				la := resampledA[l]
				lb := resampledB[l]
				sum := 0.0
				for c := 0; c < la.Channels; c++ {
					d := float64(la.At(c, y, x)) - float64(lb.At(c, y, x))
					if d < 0 {
						d = -d
					}
					sum += d
				}
				// Normalize by channel count so deep, wide layers do not
				// dominate the aggregate purely through dimensionality.
				score += sum / float64(la.Channels)
			}
			out.Set(y, x, score)
		}
	}
	return out, nil
}

// validate enforces the layer/channel invariant the aggregation requires.
func validate(a, b []tensor.FeatureMap) error {
	if len(a) == 0 || len(b) == 0 {
		return ErrEmptyFeatures
	}
	if len(a) != len(b) {
		return fmt.Errorf("%w: %d vs %d layers", ErrLayerCountMismatch, len(a), len(b))
	}
	for l := range a {
		if err := a[l].Validate(); err != nil {
			return fmt.Errorf("layer %d of first sequence: %w", l, err)
		}
		if err := b[l].Validate(); err != nil {
			return fmt.Errorf("layer %d of second sequence: %w", l, err)
		}
		if a[l].Channels != b[l].Channels {
			return fmt.Errorf("%w: layer %d has %d vs %d channels",
				ErrChannelCountMismatch, l, a[l].Channels, b[l].Channels)
		}
	}
	return nil
}
