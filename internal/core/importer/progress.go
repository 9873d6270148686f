package importer

import (
	"fmt"
	"io"
	"strings"
	"time"
)

// ProgressCallback defines the interface for progress reporting
type ProgressCallback interface {
	Update(name string, detail string)
	Finish()
}

// ProgressReporter draws a one-line progress bar for multi-file imports
type ProgressReporter struct {
	writer    io.Writer
	total     int
	current   int
	startTime time.Time
}

// NewProgressReporter creates a new progress reporter
func NewProgressReporter(w io.Writer, total int) *ProgressReporter {
	return &ProgressReporter{
		writer:    w,
		total:     total,
		startTime: time.Now(),
	}
}

// Update advances the bar by one file
func (p *ProgressReporter) Update(name string, detail string) {
	p.current++
	if p.total <= 0 {
		return
	}

	pct := float64(p.current) / float64(p.total) * 100

	barWidth := 30
	filled := barWidth * p.current / p.total
	if filled > barWidth {
		filled = barWidth
	}
	bar := strings.Repeat("█", filled) + strings.Repeat("░", barWidth-filled)

	displayText := name
	if detail != "" {
		displayText += ": " + detail
	}
	if len(displayText) > 60 {
		displayText = displayText[:57] + "..."
	}

	_, _ = fmt.Fprintf(p.writer, "\r[%s] %3.0f%% (%d/%d) | %s", bar, pct, p.current, p.total, displayText)
}

// Finish completes the progress display
func (p *ProgressReporter) Finish() {
	elapsed := time.Since(p.startTime)
	_, _ = fmt.Fprintf(p.writer, "\nCompleted: imported %d of %d files in %s\n", p.current, p.total, elapsed.Round(time.Millisecond))
}
