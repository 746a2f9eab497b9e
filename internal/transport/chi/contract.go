package chi

import (
	"context"

	dombatch "github.com/kailas-cloud/reachout/internal/domain/batch"
	"github.com/kailas-cloud/reachout/internal/domain/network"
	"github.com/kailas-cloud/reachout/internal/domain/profile"
	"github.com/kailas-cloud/reachout/internal/domain/strategy"
	healthuc "github.com/kailas-cloud/reachout/internal/usecase/health"
)

// StrategyFinder produces the single best strategy for one target.
type StrategyFinder interface {
	Find(ctx context.Context, requester, target *profile.Profile, g network.Graph) (strategy.Strategy, error)
}

// BatchService evaluates many targets or several alternatives for one.
type BatchService interface {
	Discover(
		ctx context.Context, requester *profile.Profile, targets []profile.Profile, g network.Graph,
	) (dombatch.Report, error)
	Compare(ctx context.Context, requester, target *profile.Profile, g network.Graph) ([]strategy.Strategy, error)
}

// HealthService aggregates component health.
type HealthService interface {
	Check(ctx context.Context) healthuc.Report
}
