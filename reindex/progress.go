package reindex

import (
	"fmt"
	"io"
	"time"
)

// ProgressTracker reports rebuild progress as in-place terminal lines.
// It is driven from a single goroutine and is not safe for concurrent use.
type ProgressTracker struct {
	writer       io.Writer
	total        int
	interval     int
	current      int
	lastReported int
	startTime    time.Time
}

// NewProgressTracker creates a tracker for total items, reporting every
// interval items. The clock starts immediately.
func NewProgressTracker(writer io.Writer, total, interval int) *ProgressTracker {
	if interval <= 0 {
		interval = 1
	}
	return &ProgressTracker{
		writer:    writer,
		total:     total,
		interval:  interval,
		startTime: time.Now(),
	}
}

// Update sets the current progress, reporting when an interval is crossed.
func (p *ProgressTracker) Update(current int) {
	if current > p.total {
		current = p.total
	}
	p.current = current

	if p.current-p.lastReported >= p.interval {
		p.report()
		p.lastReported = p.current
	}
}

// Finish sets progress to the total, prints the final line and a newline.
func (p *ProgressTracker) Finish() {
	p.current = p.total
	p.report()
	fmt.Fprintln(p.writer)
}

// Elapsed returns the time since the tracker was created.
func (p *ProgressTracker) Elapsed() time.Duration {
	return time.Since(p.startTime)
}

func (p *ProgressTracker) report() {
	percentage := 0.0
	if p.total > 0 {
		percentage = float64(p.current) / float64(p.total) * 100.0
	}

	rate := float64(p.current) / time.Since(p.startTime).Seconds()

	fmt.Fprintf(p.writer, "\rIndexed %d/%d organizations (%.1f%%) - %.1f orgs/s",
		p.current, p.total, percentage, rate)
}
