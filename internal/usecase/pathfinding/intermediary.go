package pathfinding

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"

	"go.uber.org/zap"

	"github.com/kailas-cloud/reachout/internal/domain/acceptance"
	"github.com/kailas-cloud/reachout/internal/domain/profile"
	"github.com/kailas-cloud/reachout/internal/domain/similarity"
	"github.com/kailas-cloud/reachout/internal/domain/strategy"
)

// Intermediary scoring.
const (
	outboundFactor           = 1.0
	inboundFactor            = 0.9
	outboundRateBonus        = 0.03
	intermediaryLowThreshold = 0.35
)

func (s *Service) intermediary(ctx context.Context, req *request) (strategy.Strategy, bool, error) {
	mine, errOut := req.graph.GetConnections(ctx, req.sourceID)
	theirs, errIn := req.graph.GetConnections(ctx, req.targetID)
	if errOut != nil && errIn != nil {
		return strategy.Strategy{}, false, errors.Join(
			fmt.Errorf("requester connections: %w", errOut),
			fmt.Errorf("target connections: %w", errIn),
		)
	}
	if errOut != nil {
		req.log.Warn("requester connections unavailable", zap.Error(errOut))
	}
	if errIn != nil {
		req.log.Warn("target connections unavailable", zap.Error(errIn))
	}

	candidates := make([]strategy.Intermediary, 0, len(mine)+len(theirs))
	candidates = appendIntermediaries(candidates, req, mine, strategy.Outbound)
	candidates = appendIntermediaries(candidates, req, theirs, strategy.Inbound)
	if len(candidates) == 0 {
		return strategy.Strategy{}, false, nil
	}

	sort.Slice(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if a.Direction != b.Direction {
			return a.Direction == strategy.Outbound
		}
		return a.Person.Key() < b.Person.Key()
	})
	best := candidates[0]

	return strategy.NewIntermediary(best, strategy.Details{
		TargetID:       req.targetID,
		Confidence:     best.Score,
		AcceptanceRate: best.AcceptanceRate,
		Reasoning:      best.Reasoning,
		NextSteps:      intermediarySteps(req, &best),
		LowConfidence:  best.LowConfidence,
	}), true, nil
}

func appendIntermediaries(
	out []strategy.Intermediary, req *request, people []profile.Profile, dir strategy.Direction,
) []strategy.Intermediary {
	for i := range people {
		p := &people[i]
		if p.Key() == "" || req.isEndpoint(p) {
			continue
		}
		out = append(out, scoreIntermediary(req, p, dir))
	}
	return out
}

func scoreIntermediary(req *request, p *profile.Profile, dir strategy.Direction) strategy.Intermediary {
	toPerson := similarity.Compare(req.requester, p)
	toTarget := similarity.Compare(p, req.target)
	strength := math.Sqrt(toPerson.Overall() * toTarget.Overall())

	factor, rate := outboundFactor, acceptance.SimilarityToRate(strength)
	if dir == strategy.Outbound {
		rate += outboundRateBonus
	} else {
		factor = inboundFactor
	}
	score := strength * factor

	var reasoning string
	if dir == strategy.Outbound {
		reasoning = fmt.Sprintf("%s is in your network and has %s with %s.",
			p.DisplayName(), overlapPhrase(toTarget.Breakdown()), req.target.DisplayName())
	} else {
		reasoning = fmt.Sprintf("%s is connected to %s and has %s with you.",
			p.DisplayName(), req.target.DisplayName(), overlapPhrase(toPerson.Breakdown()))
	}

	return strategy.Intermediary{
		Person:         *p,
		Score:          score,
		PathStrength:   strength,
		Direction:      dir,
		AcceptanceRate: math.Min(1, rate),
		Reasoning:      reasoning,
		LowConfidence:  score <= intermediaryLowThreshold,
	}
}

func intermediarySteps(req *request, in *strategy.Intermediary) []string {
	name, target := in.Person.DisplayName(), req.target.DisplayName()
	if in.Direction == strategy.Outbound {
		return []string{
			fmt.Sprintf("Message %s and ask whether they know %s", name, target),
			fmt.Sprintf("If they do, ask %s for a short introduction", name),
		}
	}
	return []string{
		fmt.Sprintf("Connect with %s first; they are connected to %s", name, target),
		fmt.Sprintf("Once connected, ask %s to introduce you to %s", name, target),
	}
}
