package worker

import (
	"context"
	"math/rand/v2"
	"time"

	"invproc/internal/model"
)

// Result is what an extraction run yields on success.
type Result struct {
	ProcessingMs int64
	Total        *float64
}

// Extractor runs the (possibly long) extraction for one job, reporting
// progress percentages through the callback as it goes. Returning an error
// makes the job's terminal outcome an error event plus a queue retry.
type Extractor interface {
	Extract(ctx context.Context, job model.UploadJob, progress func(percent int)) (*Result, error)
}

// SimulatedExtractor stands in for the real OCR backend. It emits a
// monotonically increasing progress sequence from 10 to exactly 100 with a
// randomized step in [10,35), pausing Delay between emissions, then reports a
// synthetic processing duration.
type SimulatedExtractor struct {
	Delay time.Duration
}

var _ Extractor = (*SimulatedExtractor)(nil)

func (e *SimulatedExtractor) Extract(ctx context.Context, _ model.UploadJob, progress func(percent int)) (*Result, error) {
	for p := 10; ; p += 10 + rand.IntN(25) {
		if p >= 100 {
			progress(100)
			break
		}
		progress(p)
		select {
		case <-time.After(e.Delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return &Result{ProcessingMs: int64(1500 + rand.IntN(7000))}, nil
}
