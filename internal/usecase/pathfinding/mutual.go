package pathfinding

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/reachout/internal/domain/acceptance"
	"github.com/kailas-cloud/reachout/internal/domain/strategy"
)

// mutual asks the graph for a shortest path between requester and target.
func (s *Service) mutual(ctx context.Context, req *request) (strategy.Strategy, bool, error) {
	res, err := req.graph.BidirectionalBFS(ctx, req.sourceID, req.targetID)
	if err != nil {
		return strategy.Strategy{}, false, fmt.Errorf("bidirectional bfs: %w", err)
	}
	if res == nil || len(res.Path) < 2 {
		return strategy.Strategy{}, false, nil
	}

	hops := len(res.Path) - 1
	rate := acceptance.HopCountToRate(hops)
	path := strategy.NewPath(res.Path, rate)
	for i := range path.Edges {
		path.Edges[i].MutualConnections = path.MutualConnections()
	}

	target := req.target.DisplayName()
	var reasoning string
	var steps []string
	if hops == 1 {
		reasoning = fmt.Sprintf("You are already directly connected to %s.", target)
		steps = []string{fmt.Sprintf("Message %s directly", target)}
	} else {
		middle := res.Path[1 : len(res.Path)-1]
		reasoning = fmt.Sprintf("%s is %d hops away through %s.", target, hops, joinList(names(middle)))
		steps = []string{
			fmt.Sprintf("Ask %s for an introduction to %s", middle[0].DisplayName(), target),
			"Mention your shared connection in the request",
		}
	}

	return strategy.NewMutual(path, strategy.Details{
		TargetID:       req.targetID,
		Confidence:     rate,
		AcceptanceRate: rate,
		Reasoning:      reasoning,
		NextSteps:      steps,
	}), true, nil
}
