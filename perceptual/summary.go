package perceptual

import (
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/Ranch-o/World-Model-Anomaly-Detection-Autonomous-Driving/tensor"
)

// Summary condenses a difference map into the per-frame statistics stored in
// the score index. P95 rather than the raw maximum is what the anomaly
// ranking uses; the maximum is kept for diagnostics.
type Summary struct {
	Mean   float64
	Max    float64
	P95    float64
	StdDev float64
}

// Summarize computes summary statistics over every pixel of a difference map.
func Summarize(m tensor.ScoreMap) Summary {
	if len(m.Data) == 0 {
		return Summary{}
	}

	values := make([]float64, len(m.Data))
	copy(values, m.Data)

	mean, std := stat.MeanStdDev(values, nil)
	max := floats.Max(values)

	// Quantile requires sorted input.
	sort.Float64s(values)
	p95 := stat.Quantile(0.95, stat.Empirical, values, nil)

	return Summary{Mean: mean, Max: max, P95: p95, StdDev: std}
}
