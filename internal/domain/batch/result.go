package batch

import (
	"github.com/kailas-cloud/reachout/internal/domain/strategy"
)

// Skipped is a target the batch could not evaluate.
type Skipped struct {
	Index    int
	TargetID string
	Err      error
}

// Report is the outcome of a batch discovery run.
type Report struct {
	strategies []strategy.Strategy
	skipped    []Skipped
	evaluated  int
}

// NewReport creates a batch report. strategies must already be filtered and ordered.
func NewReport(strategies []strategy.Strategy, skipped []Skipped, evaluated int) Report {
	return Report{strategies: strategies, skipped: skipped, evaluated: evaluated}
}

// Strategies returns the kept strategies, highest confidence first.
func (r Report) Strategies() []strategy.Strategy { return r.strategies }

// Skipped returns targets that failed validation, in input order.
func (r Report) Skipped() []Skipped { return r.skipped }

// Evaluated returns how many targets produced a strategy before filtering.
func (r Report) Evaluated() int { return r.evaluated }

// Filtered returns how many evaluated strategies fell at or below the confidence floor.
func (r Report) Filtered() int { return r.evaluated - len(r.strategies) }
