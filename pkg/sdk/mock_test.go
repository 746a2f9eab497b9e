package reachout

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/reachout/internal/domain"
	dombatch "github.com/kailas-cloud/reachout/internal/domain/batch"
	"github.com/kailas-cloud/reachout/internal/domain/profile"
	"github.com/kailas-cloud/reachout/internal/domain/strategy"
	"github.com/kailas-cloud/reachout/internal/usecase/pathfinding"
)

type strategyT = strategy.Strategy

func mutualStrategy(target string, confidence float64) strategy.Strategy {
	path := strategy.NewPath([]profile.Profile{{ID: "me"}, {ID: "alice"}, {ID: target}}, confidence)
	return strategy.NewMutual(path, strategy.Details{
		TargetID:       target,
		Confidence:     confidence,
		AcceptanceRate: confidence,
		Reasoning:      "two hops",
	})
}

func coldStrategy(target string, similarity float64) strategy.Strategy {
	return strategy.NewColdSimilarity(strategy.Candidate{
		Person:        profile.Profile{ID: target},
		Similarity:    similarity,
		SharedContext: []string{"UC Berkeley"},
	}, strategy.Details{TargetID: target, Confidence: similarity, AcceptanceRate: similarity})
}

// newReport builds a report with one skipped target at index 1 and one filtered strategy.
func newReport(kept ...strategy.Strategy) dombatch.Report {
	skipped := []dombatch.Skipped{{Index: 1, Err: fmt.Errorf("target: %w", domain.ErrMissingIdentity)}}
	return dombatch.NewReport(kept, skipped, len(kept)+1)
}

// --- Mocks ---

type mockBatch struct {
	report  dombatch.Report
	compare []strategy.Strategy
	err     error
	targets int
}

func (m *mockBatch) Discover(
	_ context.Context, _ *profile.Profile, targets []profile.Profile, _ pathfinding.Graph,
) (dombatch.Report, error) {
	m.targets = len(targets)
	if m.err != nil {
		return dombatch.Report{}, m.err
	}
	return m.report, nil
}

func (m *mockBatch) Compare(
	_ context.Context, _, _ *profile.Profile, _ pathfinding.Graph,
) ([]strategy.Strategy, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.compare, nil
}

type mockSemantic struct{}

func (*mockSemantic) Compare(context.Context, profile.Condensed, profile.Condensed) (SemanticMatch, error) {
	return SemanticMatch{}, nil
}
