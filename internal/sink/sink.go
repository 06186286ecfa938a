package sink

import (
	"context"
	"time"

	"github.com/agungatd/daily-data-fetcher/internal/metrics"
)

// Run is what a finished, successfully reported run hands to the sinks.
type Run struct {
	ID         string
	Category   string
	Source     string
	ReportPath string
	Report     []byte // exact bytes written to ReportPath
	Fetched    int
	Filtered   int
	Duration   time.Duration
	Finished   time.Time
	Metrics    *metrics.Batch
}

// Sink is the minimal interface all auxiliary outputs implement. A sink
// error is reported by the caller but never fails the run.
type Sink interface {
	Name() string
	Push(ctx context.Context, run Run) error
}
