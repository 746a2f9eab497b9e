package pathfinding

import (
	"context"
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/kailas-cloud/reachout/internal/domain/acceptance"
	"github.com/kailas-cloud/reachout/internal/domain/profile"
	"github.com/kailas-cloud/reachout/internal/domain/strategy"
)

// Cold strategy calibration.
const (
	coldSimilarityFloor   = 0.45
	coldSimilarityRateMin = 0.18
	coldSimilarityRateMax = 0.25
	coldOutreachBase      = 0.12
	coldOutreachSlope     = 0.08
	coldGatewayBonus      = 0.02
	coldMinConfidence     = 0.1
)

// cold is the terminal stage. It always returns a strategy.
func (s *Service) cold(ctx context.Context, req *request) strategy.Strategy {
	sim := req.sim.Overall()
	target := req.target.DisplayName()

	if sim >= coldSimilarityFloor {
		rate := acceptance.Interpolate(sim, coldSimilarityFloor, 1, coldSimilarityRateMin, coldSimilarityRateMax)
		return strategy.NewColdSimilarity(
			strategy.Candidate{Person: *req.target, Similarity: sim},
			strategy.Details{
				TargetID:       req.targetID,
				Confidence:     sim,
				AcceptanceRate: rate,
				Reasoning: fmt.Sprintf("No network path to %s, but you have %s (%s match).",
					target, overlapPhrase(req.sim.Breakdown()), pct(sim)),
				NextSteps: []string{
					fmt.Sprintf("Send %s a personalized request that leads with your %s",
						target, joinList(sharedAttributes(req.sim.Breakdown()))),
					fmt.Sprintf("Engage with %s's recent posts before reaching out", target),
				},
			},
		)
	}

	gateway := s.gateway(ctx, req)
	rate := coldOutreachBase + sim*coldOutreachSlope
	steps := []string{
		fmt.Sprintf("Engage with %s's content for a few weeks before reaching out", target),
		"Send a short connection request with a specific, relevant reason to connect",
	}
	var cand *strategy.Candidate
	if gateway != nil {
		rate += coldGatewayBonus
		cand = &strategy.Candidate{
			Person:     *gateway,
			Similarity: similarityOf(req.requester, gateway),
		}
		steps = append(steps, fmt.Sprintf("Ask %s whether they can help you reach %s", gateway.DisplayName(), target))
	}

	return strategy.NewColdOutreach(cand, strategy.Details{
		TargetID:       req.targetID,
		Confidence:     math.Max(coldMinConfidence, sim),
		AcceptanceRate: rate,
		Reasoning: fmt.Sprintf("There is limited profile overlap with %s (%s match) and no network path was found.",
			target, pct(sim)),
		NextSteps:     steps,
		LowConfidence: true,
	})
}

// gateway picks the requester's most complete known contact. Ties go to the
// higher connection count, then the lower key.
func (s *Service) gateway(ctx context.Context, req *request) *profile.Profile {
	conns, err := req.graph.GetConnections(ctx, req.sourceID)
	if err != nil {
		req.log.Warn("gateway lookup failed", zap.Error(err))
		return nil
	}

	var best *profile.Profile
	for i := range conns {
		p := &conns[i]
		if p.Key() == "" || req.isEndpoint(p) {
			continue
		}
		if best == nil || betterGateway(p, best) {
			best = p
		}
	}
	if best == nil {
		return nil
	}
	out := *best
	return &out
}

func betterGateway(a, b *profile.Profile) bool {
	ca, cb := a.Completeness(), b.Completeness()
	if ca != cb {
		return ca > cb
	}
	if a.ConnectionCount != b.ConnectionCount {
		return a.ConnectionCount > b.ConnectionCount
	}
	return a.Key() < b.Key()
}
