package pipeline

import (
	"fmt"
	"sync"
	"time"

	"github.com/Ranch-o/World-Model-Anomaly-Detection-Autonomous-Driving/logging"
)

// progressTracker tracks progress of a batch run
type progressTracker struct {
	processed   int
	skipped     int
	errors      int
	totalFrames int
	ticker      *time.Ticker
	done        chan bool
	drained     chan bool
	mu          sync.Mutex
}

// newProgressTracker initializes the progress tracker and starts the
// periodic display goroutine.
func newProgressTracker(totalFrames int) *progressTracker {
	tracker := &progressTracker{
		ticker:      time.NewTicker(500 * time.Millisecond),
		done:        make(chan bool),
		drained:     make(chan bool),
		totalFrames: totalFrames,
	}

	go tracker.displayProgress()

	return tracker
}

// displayProgress shows the progress periodically
func (p *progressTracker) displayProgress() {
	for {
		select {
		case <-p.done:
			return
		case <-p.ticker.C:
			p.mu.Lock()
			if p.errors > 0 || p.skipped > 0 {
				fmt.Printf("\rProgress: %d/%d (Skipped: %d, Errors: %d)",
					p.processed, p.totalFrames, p.skipped, p.errors)
			} else {
				fmt.Printf("\rProgress: %d/%d", p.processed, p.totalFrames)
			}
			p.mu.Unlock()
		}
	}
}

// consume updates the tracker state for every pair result until the
// channel closes.
func (p *progressTracker) consume(resultsChan chan PairResult) {
	for result := range resultsChan {
		p.mu.Lock()
		p.processed++

		switch {
		case result.Skipped:
			p.skipped++
			if result.Err != nil {
				logging.LogWarning("Skipping frame %d: %v", result.Frame, result.Err)
			}
		case result.Err != nil:
			p.errors++
			logging.LogFrameProcessed(result.Frame, false, result.Err.Error())
		default:
			logging.LogFrameProcessed(result.Frame, true, "")
		}

		p.mu.Unlock()
	}
	close(p.drained)
}

// finish waits for all results to be counted and stops the display.
func (p *progressTracker) finish() {
	<-p.drained
	p.ticker.Stop()
	p.done <- true
}
