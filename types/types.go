package types

// FrameScore holds the per-frame result of a perceptual difference run
type FrameScore struct {
	ID              int64   `json:"id"`
	FrameNumber     int     `json:"frame_number"`
	InputPath       string  `json:"input_path"`
	SynthesizedPath string  `json:"synthesized_path"`
	OutputPath      string  `json:"output_path"`
	Width           int     `json:"width"`
	Height          int     `json:"height"`
	MeanScore       float64 `json:"mean_score"`
	MaxScore        float64 `json:"max_score"`
	P95Score        float64 `json:"p95_score"`
	CreatedAt       string  `json:"created_at"`
}

// RunStats aggregates a whole run of frame scores
type RunStats struct {
	TotalFrames  int
	AvgMeanScore float64
	MaxScore     float64
}
