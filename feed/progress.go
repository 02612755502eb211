package feed

import (
	"fmt"
	"io"
	"sync"
	"time"
)

// ProgressTracker tracks and reports pipeline throughput.
type ProgressTracker struct {
	writer         io.Writer
	examples       int
	batches        int
	reportInterval int
	lastReported   int
	startTime      time.Time
	started        bool
	mu             sync.Mutex
}

// NewProgressTracker creates a throughput tracker.
// writer: where to write progress output (typically os.Stderr)
// reportInterval: report progress every N examples
func NewProgressTracker(writer io.Writer, reportInterval int) *ProgressTracker {
	if reportInterval < 1 {
		reportInterval = 1
	}
	return &ProgressTracker{
		writer:         writer,
		reportInterval: reportInterval,
	}
}

// Start begins tracking.
func (p *ProgressTracker) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.startTime = time.Now()
	p.started = true
	p.examples = 0
	p.batches = 0
	p.lastReported = 0
}

// ObserveBatch records one consumed batch of the given size.
func (p *ProgressTracker) ObserveBatch(size int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.started {
		return
	}

	p.batches++
	p.examples += size

	if p.examples-p.lastReported >= p.reportInterval {
		p.report()
		p.lastReported = p.examples
	}
}

// Finish prints the final throughput line.
func (p *ProgressTracker) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.started {
		return
	}

	p.report()
	fmt.Fprintln(p.writer)
}

// Examples returns the number of examples observed so far.
func (p *ProgressTracker) Examples() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.examples
}

// Batches returns the number of batches observed so far.
func (p *ProgressTracker) Batches() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.batches
}

// Elapsed returns the time elapsed since Start was called.
func (p *ProgressTracker) Elapsed() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.started {
		return 0
	}

	return time.Since(p.startTime)
}

// report prints the current throughput. Must be called with lock held.
func (p *ProgressTracker) report() {
	elapsed := time.Since(p.startTime)
	exampleRate := float64(p.examples) / elapsed.Seconds()
	batchRate := float64(p.batches) / elapsed.Seconds()

	fmt.Fprintf(p.writer, "\rProgress: %d examples in %d batches - %.1f examples/s, %.1f batches/s",
		p.examples, p.batches, exampleRate, batchRate)
}
