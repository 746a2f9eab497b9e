package pathfinding

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/reachout/internal/domain/acceptance"
	"github.com/kailas-cloud/reachout/internal/domain/strategy"
)

// Direct similarity thresholds.
const (
	directSimilarityFloor = 0.65
	directRateMin         = 0.35
	directRateMax         = 0.42
)

func (s *Service) directSimilarity(_ context.Context, req *request) (strategy.Strategy, bool, error) {
	overall := req.sim.Overall()
	if overall < directSimilarityFloor {
		return strategy.Strategy{}, false, nil
	}

	rate := acceptance.Interpolate(overall, directSimilarityFloor, 1, directRateMin, directRateMax)
	target := req.target.DisplayName()
	return strategy.NewDirectSimilarity(
		strategy.Candidate{Person: *req.target, Similarity: overall},
		strategy.Details{
			TargetID:       req.targetID,
			Confidence:     overall,
			AcceptanceRate: rate,
			Reasoning: fmt.Sprintf("You and %s have a %s profile match with %s.",
				target, pct(overall), overlapPhrase(req.sim.Breakdown())),
			NextSteps: []string{
				fmt.Sprintf("Send %s a connection request that references your %s",
					target, joinList(sharedAttributes(req.sim.Breakdown()))),
			},
		},
	), true, nil
}
