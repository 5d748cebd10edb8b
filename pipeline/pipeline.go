// Package pipeline drives the batch perceptual difference run: for every
// frame index it loads the original and synthesized frame, extracts feature
// embeddings for both, aggregates the per-pixel difference, renders the
// heatmap and records the frame's scores in the index.
package pipeline

import (
	"database/sql"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/Ranch-o/World-Model-Anomaly-Detection-Autonomous-Driving/database"
	"github.com/Ranch-o/World-Model-Anomaly-Detection-Autonomous-Driving/heatmap"
	"github.com/Ranch-o/World-Model-Anomaly-Detection-Autonomous-Driving/imageloader"
	"github.com/Ranch-o/World-Model-Anomaly-Detection-Autonomous-Driving/logging"
	"github.com/Ranch-o/World-Model-Anomaly-Detection-Autonomous-Driving/perceptual"
	"github.com/Ranch-o/World-Model-Anomaly-Detection-Autonomous-Driving/tensor"
	"github.com/Ranch-o/World-Model-Anomaly-Detection-Autonomous-Driving/types"
)

// Extractor produces the ordered feature layer sequence for one frame.
// Implementations are not required to be reentrant; the pipeline gives each
// worker its own instance.
type Extractor interface {
	Extract(img image.Image) ([]tensor.FeatureMap, error)
	Close() error
}

// ExtractorFactory creates one extractor handle per worker. The factory is
// expected to share the frozen model weights across handles (e.g. by path),
// not retrain or mutate them.
type ExtractorFactory func() (Extractor, error)

// Options defines the options for a batch run
type Options struct {
	InputDir       string
	SynthesizedDir string
	SaveDir        string
	FirstFrame     int
	LastFrame      int
	OutputWidth    int // 0 means render at the original frame resolution
	OutputHeight   int
	Workers        int
	DebugMode      bool
}

// PairResult holds the result of processing one frame pair
type PairResult struct {
	Frame      int
	OutputPath string
	Skipped    bool
	Err        error
}

// RunSummary aggregates the outcome of a batch run
type RunSummary struct {
	Processed int
	Skipped   int
	Errors    int
	Elapsed   time.Duration
}

// Run processes every frame pair in the configured range. A frame whose
// input files are missing or undecodable is skipped and logged; the run
// continues with the next frame. Returns an error only for failures that
// invalidate the whole run (save directory, extractor construction).
func Run(db *sql.DB, opts Options, newExtractor ExtractorFactory) (*RunSummary, error) {
	// Ensure the output directory once up front, not per frame
	if err := os.MkdirAll(opts.SaveDir, 0o755); err != nil {
		return nil, fmt.Errorf("cannot create save directory %s: %v", opts.SaveDir, err)
	}

	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}
	totalFrames := opts.LastFrame - opts.FirstFrame + 1
	if workers > totalFrames {
		workers = totalFrames
	}

	// One extractor handle per worker; the weights behind them are loaded
	// once and shared read-only.
	extractors := make([]Extractor, 0, workers)
	for i := 0; i < workers; i++ {
		ext, err := newExtractor()
		if err != nil {
			for _, e := range extractors {
				e.Close()
			}
			return nil, fmt.Errorf("cannot create extractor: %v", err)
		}
		extractors = append(extractors, ext)
	}
	defer func() {
		for _, e := range extractors {
			e.Close()
		}
	}()

	if opts.DebugMode {
		logging.DebugLog("Starting run: frames %d-%d, %d workers, save dir %s",
			opts.FirstFrame, opts.LastFrame, workers, opts.SaveDir)
	}

	startTime := time.Now()
	resultsChan := make(chan PairResult, 100)
	tracker := newProgressTracker(totalFrames)
	go tracker.consume(resultsChan)

	frames := make(chan int)
	go func() {
		for n := opts.FirstFrame; n <= opts.LastFrame; n++ {
			frames <- n
		}
		close(frames)
	}()

	var wg sync.WaitGroup
	for _, ext := range extractors {
		wg.Add(1)
		go func(e Extractor) {
			defer wg.Done()
			for n := range frames {
				resultsChan <- processPair(db, e, opts, n)
			}
		}(ext)
	}

	wg.Wait()
	close(resultsChan)
	tracker.finish()

	summary := &RunSummary{
		Processed: tracker.processed,
		Skipped:   tracker.skipped,
		Errors:    tracker.errors,
		Elapsed:   time.Since(startTime),
	}

	if opts.DebugMode {
		logging.DebugLog("Run completed in %v. Processed: %d, Skipped: %d, Errors: %d",
			summary.Elapsed, summary.Processed, summary.Skipped, summary.Errors)
	}

	return summary, nil
}

// InputFramePath returns the path of the original frame with index n.
func InputFramePath(dir string, n int) string {
	return filepath.Join(dir, fmt.Sprintf("frame_%d.png", n))
}

// OutputHeatmapPath returns the path of the rendered heatmap for frame n.
func OutputHeatmapPath(dir string, n int) string {
	return filepath.Join(dir, fmt.Sprintf("perceptual_difference_%d.png", n))
}

// processPair runs one frame pair end to end: load, extract, aggregate,
// render, save, index.
func processPair(db *sql.DB, ext Extractor, opts Options, frame int) PairResult {
	result := PairResult{Frame: frame}

	inputPath := InputFramePath(opts.InputDir, frame)
	synthesizedPath := InputFramePath(opts.SynthesizedDir, frame)

	// A missing or undecodable frame only loses this pair, not the run
	inputImg, err := imageloader.Load(inputPath)
	if err != nil {
		result.Skipped = true
		result.Err = err
		return result
	}
	synthesizedImg, err := imageloader.Load(synthesizedPath)
	if err != nil {
		result.Skipped = true
		result.Err = err
		return result
	}

	featsInput, err := ext.Extract(inputImg)
	if err != nil {
		result.Err = fmt.Errorf("frame %d: extracting input features: %w", frame, err)
		return result
	}
	featsSynthesized, err := ext.Extract(synthesizedImg)
	if err != nil {
		result.Err = fmt.Errorf("frame %d: extracting synthesized features: %w", frame, err)
		return result
	}

	diff, err := perceptual.Difference(featsInput, featsSynthesized)
	if err != nil {
		result.Err = fmt.Errorf("frame %d: %w", frame, err)
		return result
	}

	// Render at the configured resolution, or the original frame size
	outWidth, outHeight := opts.OutputWidth, opts.OutputHeight
	if outWidth == 0 || outHeight == 0 {
		bounds := inputImg.Bounds()
		outWidth, outHeight = bounds.Dx(), bounds.Dy()
	}

	rendered := heatmap.Render(diff, outWidth, outHeight)
	outputPath := OutputHeatmapPath(opts.SaveDir, frame)
	if err := heatmap.Save(rendered, outputPath); err != nil {
		result.Err = fmt.Errorf("frame %d: %w", frame, err)
		return result
	}

	if db != nil {
		summary := perceptual.Summarize(diff)
		score := types.FrameScore{
			FrameNumber:     frame,
			InputPath:       inputPath,
			SynthesizedPath: synthesizedPath,
			OutputPath:      outputPath,
			Width:           outWidth,
			Height:          outHeight,
			MeanScore:       summary.Mean,
			MaxScore:        summary.Max,
			P95Score:        summary.P95,
		}
		if err := database.StoreFrameScore(db, score); err != nil {
			result.Err = fmt.Errorf("frame %d: %v", frame, err)
			return result
		}
	}

	result.OutputPath = outputPath
	return result
}
