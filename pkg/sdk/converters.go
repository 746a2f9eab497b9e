package reachout

import (
	dombatch "github.com/kailas-cloud/reachout/internal/domain/batch"
	"github.com/kailas-cloud/reachout/internal/domain/strategy"
)

func toStrategy(s strategy.Strategy) Strategy {
	out := Strategy{
		Type:           StrategyType(s.Type()),
		TargetID:       s.TargetID(),
		Confidence:     s.Confidence(),
		AcceptanceRate: s.AcceptanceRate(),
		Reasoning:      s.Reasoning(),
		NextSteps:      s.NextSteps(),
		LowConfidence:  s.LowConfidence(),
	}

	if p, ok := s.Path(); ok {
		path := &Path{
			Nodes:             p.Nodes,
			Edges:             make([]Edge, len(p.Edges)),
			Hops:              p.Hops(),
			MutualConnections: p.MutualConnections(),
		}
		for i, e := range p.Edges {
			path.Edges[i] = Edge(e)
		}
		out.Path = path
	}
	if in, ok := s.Intermediary(); ok {
		out.Intermediary = &Intermediary{
			Person:         in.Person,
			Score:          in.Score,
			PathStrength:   in.PathStrength,
			Direction:      string(in.Direction),
			AcceptanceRate: in.AcceptanceRate,
			Reasoning:      in.Reasoning,
			LowConfidence:  in.LowConfidence,
		}
	}
	if c, ok := s.Candidate(); ok {
		out.Candidate = &Candidate{
			Person:        c.Person,
			Similarity:    c.Similarity,
			SharedContext: c.SharedContext,
			TalkingPoints: c.TalkingPoints,
		}
	}
	return out
}

func toStrategies(list []strategy.Strategy) []Strategy {
	out := make([]Strategy, len(list))
	for i, s := range list {
		out[i] = toStrategy(s)
	}
	return out
}

func toBatchResult(r dombatch.Report) BatchResult {
	res := BatchResult{
		Strategies: toStrategies(r.Strategies()),
		Evaluated:  r.Evaluated(),
		Filtered:   r.Filtered(),
	}
	for _, sk := range r.Skipped() {
		res.Skipped = append(res.Skipped, SkippedTarget(sk))
	}
	return res
}
