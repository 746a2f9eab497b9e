package pathfinding

import (
	"context"
	"errors"
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/kailas-cloud/reachout/internal/domain"
	"github.com/kailas-cloud/reachout/internal/domain/network"
	"github.com/kailas-cloud/reachout/internal/domain/profile"
	"github.com/kailas-cloud/reachout/internal/domain/similarity"
	"github.com/kailas-cloud/reachout/internal/domain/strategy"
	"github.com/kailas-cloud/reachout/internal/metrics"
)

// Semantic strategy calibration.
const (
	semanticRateBase  = 0.15
	semanticRateSlope = 0.07
	semanticLowBelow  = 0.45

	heuristicSchool      = 0.35
	heuristicSkillEach   = 0.1
	heuristicSkillCap    = 0.35
	heuristicIndustry    = 0.3
	heuristicReasonLabel = "Profile text comparison"
)

// upgrade replaces a low-confidence cold strategy with a semantic one when the
// semantic confidence clears the cold confidence plus the configured margin.
func (s *Service) upgrade(ctx context.Context, req *request, cold strategy.Strategy) strategy.Strategy {
	match, err := s.semanticMatch(ctx, req)
	if err != nil {
		if !errors.Is(err, domain.ErrCollaboratorUnavailable) {
			req.log.Warn("semantic service failed, using heuristic",
				zap.Error(domain.NewStageError(string(StageSemantic), err)))
			metrics.StageOutcomesTotal.WithLabelValues(string(StageSemantic), outcomeError).Inc()
		}
		match = heuristicMatch(req.requester, req.target)
	}

	sem := semanticStrategy(req, match)
	if sem.Confidence() > cold.Confidence()+s.cfg.UpgradeMargin {
		metrics.StageOutcomesTotal.WithLabelValues(string(StageSemantic), outcomeHit).Inc()
		return sem
	}
	metrics.StageOutcomesTotal.WithLabelValues(string(StageSemantic), outcomeMiss).Inc()
	return cold
}

// semanticMatch calls the semantic service under the configured timeout.
func (s *Service) semanticMatch(ctx context.Context, req *request) (network.SemanticMatch, error) {
	svc, ok := s.semantic.Get()
	if !ok {
		return network.SemanticMatch{}, domain.ErrCollaboratorUnavailable
	}

	callCtx, cancel := context.WithTimeout(ctx, s.cfg.SemanticTimeout)
	defer cancel()

	match, err := svc.Compare(callCtx, profile.Condense(req.requester), profile.Condense(req.target))
	if err != nil {
		if errors.Is(callCtx.Err(), context.DeadlineExceeded) {
			return network.SemanticMatch{}, fmt.Errorf("%w: %w", domain.ErrSemanticTimeout, err)
		}
		return network.SemanticMatch{}, fmt.Errorf("semantic compare: %w", err)
	}
	if math.IsNaN(match.Similarity) || match.Similarity < 0 || match.Similarity > 1 {
		return network.SemanticMatch{}, fmt.Errorf("similarity %v out of range: %w",
			match.Similarity, domain.ErrMalformedResponse)
	}
	return match, nil
}

func semanticStrategy(req *request, m network.SemanticMatch) strategy.Strategy {
	target := req.target.DisplayName()
	reasoning := m.Reasoning
	if reasoning == "" {
		reasoning = fmt.Sprintf("%s found a %s match with %s.", heuristicReasonLabel, pct(m.Similarity), target)
	}

	steps := make([]string, 0, len(m.TalkingPoints)+1)
	for _, tp := range m.TalkingPoints {
		steps = append(steps, "Mention: "+tp)
	}
	steps = append(steps, fmt.Sprintf("Send %s a connection request built around your shared context", target))

	return strategy.NewSemantic(
		strategy.Candidate{
			Person:        *req.target,
			Similarity:    m.Similarity,
			SharedContext: m.SharedContext,
			TalkingPoints: m.TalkingPoints,
		},
		strategy.Details{
			TargetID:       req.targetID,
			Confidence:     m.Similarity,
			AcceptanceRate: semanticRateBase + semanticRateSlope*m.Similarity,
			Reasoning:      reasoning,
			NextSteps:      steps,
			LowConfidence:  m.Similarity < semanticLowBelow,
		},
	)
}

// heuristicMatch is the local stand-in for the semantic service: shared
// school, shared skills and shared industry by normalized text.
func heuristicMatch(a, b *profile.Profile) network.SemanticMatch {
	var (
		score  float64
		shared []string
		points []string
	)

	if school, ok := sharedSchool(a, b); ok {
		score += heuristicSchool
		shared = append(shared, "school: "+school)
		points = append(points, "You both studied at "+school)
	}

	skills := intersect(a.SkillNames(), b.SkillNames())
	if len(skills) > 0 {
		score += math.Min(heuristicSkillCap, heuristicSkillEach*float64(len(skills)))
		shared = append(shared, "skills: "+joinList(skills))
		points = append(points, "Your shared experience with "+joinList(skills))
	}

	ia, ib := profile.Normalize(a.CurrentIndustry()), profile.Normalize(b.CurrentIndustry())
	if ia != "" && ia == ib {
		score += heuristicIndustry
		shared = append(shared, "industry: "+b.CurrentIndustry())
		points = append(points, "Your common background in "+b.CurrentIndustry())
	}

	score = math.Min(1, score)
	reasoning := ""
	if len(shared) > 0 {
		reasoning = fmt.Sprintf("%s found %s in common with %s.",
			heuristicReasonLabel, joinList(shared), b.DisplayName())
	}
	return network.SemanticMatch{
		Similarity:    score,
		SharedContext: shared,
		Reasoning:     reasoning,
		TalkingPoints: points,
	}
}

func sharedSchool(a, b *profile.Profile) (string, bool) {
	for _, ea := range a.Education {
		na := profile.Normalize(ea.School)
		if na == "" {
			continue
		}
		for _, eb := range b.Education {
			if na == profile.Normalize(eb.School) {
				return eb.School, true
			}
		}
	}
	return "", false
}

func intersect(a, b []string) []string {
	set := make(map[string]struct{}, len(a))
	for _, s := range a {
		set[s] = struct{}{}
	}
	var out []string
	for _, s := range b {
		if _, ok := set[s]; ok {
			out = append(out, s)
		}
	}
	return out
}

func similarityOf(a, b *profile.Profile) float64 {
	return similarity.Compare(a, b).Overall()
}
