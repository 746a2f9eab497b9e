package batch

import (
	"context"

	"github.com/kailas-cloud/reachout/internal/domain/profile"
	"github.com/kailas-cloud/reachout/internal/domain/strategy"
	"github.com/kailas-cloud/reachout/internal/usecase/pathfinding"
)

// Finder evaluates connection strategies for a single target.
type Finder interface {
	Find(ctx context.Context, requester, target *profile.Profile, g pathfinding.Graph) (strategy.Strategy, error)
	RunStage(
		ctx context.Context, stage pathfinding.Stage, requester, target *profile.Profile, g pathfinding.Graph,
	) (strategy.Strategy, bool, error)
}
