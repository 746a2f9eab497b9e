package batch

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/reachout/internal/domain"
	dombatch "github.com/kailas-cloud/reachout/internal/domain/batch"
	"github.com/kailas-cloud/reachout/internal/domain/profile"
	"github.com/kailas-cloud/reachout/internal/domain/strategy"
	"github.com/kailas-cloud/reachout/internal/logger"
	"github.com/kailas-cloud/reachout/internal/metrics"
	"github.com/kailas-cloud/reachout/internal/usecase/pathfinding"
)

// MaxBatchSize is the number of targets evaluated concurrently per chunk.
const MaxBatchSize = 100

// MinConfidence is the exclusive confidence floor for batch results.
const MinConfidence = 0.45

// compareStages run independently of the primary strategy for comparison.
var compareStages = []pathfinding.Stage{pathfinding.StageDirect, pathfinding.StageIntermediary}

// Service runs the strategy engine over many targets.
type Service struct {
	finder        Finder
	chunkSize     int
	minConfidence float64
	logger        *zap.Logger
}

// New creates a batch service. logger can be nil.
func New(finder Finder, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		finder:        finder,
		chunkSize:     MaxBatchSize,
		minConfidence: MinConfidence,
		logger:        logger,
	}
}

// WithChunkSize configures how many targets run concurrently per chunk.
func (s *Service) WithChunkSize(size int) *Service {
	if size > 0 {
		s.chunkSize = size
	}
	return s
}

// WithMinConfidence configures the exclusive confidence floor.
func (s *Service) WithMinConfidence(c float64) *Service {
	if c >= 0 && c <= 1 {
		s.minConfidence = c
	}
	return s
}

// Discover evaluates every target in fixed-size chunks. Chunks run one after
// another; targets within a chunk run concurrently. Strategies with
// confidence above the floor are returned highest first, ties in input order.
func (s *Service) Discover(
	ctx context.Context, requester *profile.Profile, targets []profile.Profile, g pathfinding.Graph,
) (dombatch.Report, error) {
	if requester == nil {
		return dombatch.Report{}, fmt.Errorf("requester: %w", domain.ErrMissingIdentity)
	}
	if err := requester.Validate(); err != nil {
		return dombatch.Report{}, fmt.Errorf("requester: %w", err)
	}
	log := logger.FromContextOr(ctx, s.logger)

	results := make([]*strategy.Strategy, len(targets))
	var (
		mu      sync.Mutex
		skipped []dombatch.Skipped
	)

	for start := 0; start < len(targets); start += s.chunkSize {
		if err := ctx.Err(); err != nil {
			return dombatch.Report{}, fmt.Errorf("batch discover: %w", err)
		}
		end := min(start+s.chunkSize, len(targets))

		eg, egCtx := errgroup.WithContext(ctx)
		eg.SetLimit(end - start)
		for i := start; i < end; i++ {
			eg.Go(func() error {
				st, err := s.finder.Find(egCtx, requester, &targets[i], g)
				if err != nil {
					mu.Lock()
					skipped = append(skipped, dombatch.Skipped{Index: i, TargetID: targets[i].Key(), Err: err})
					mu.Unlock()
					return nil
				}
				results[i] = &st
				return nil
			})
		}
		_ = eg.Wait()
	}

	kept := make([]strategy.Strategy, 0, len(results))
	evaluated := 0
	for _, r := range results {
		if r == nil {
			continue
		}
		evaluated++
		if r.Confidence() > s.minConfidence {
			kept = append(kept, *r)
		}
	}
	strategy.SortByConfidence(kept)
	sort.Slice(skipped, func(i, j int) bool { return skipped[i].Index < skipped[j].Index })

	metrics.BatchTargetsTotal.WithLabelValues("kept").Add(float64(len(kept)))
	metrics.BatchTargetsTotal.WithLabelValues("filtered").Add(float64(evaluated - len(kept)))
	metrics.BatchTargetsTotal.WithLabelValues("invalid").Add(float64(len(skipped)))
	log.Info("batch discovery completed",
		zap.Int("targets", len(targets)),
		zap.Int("kept", len(kept)),
		zap.Int("skipped", len(skipped)),
	)

	return dombatch.NewReport(kept, skipped, evaluated), nil
}

// Compare returns the primary strategy plus independently evaluated
// direct-similarity and intermediary alternatives, one per type, highest
// confidence first.
func (s *Service) Compare(
	ctx context.Context, requester, target *profile.Profile, g pathfinding.Graph,
) ([]strategy.Strategy, error) {
	primary, err := s.finder.Find(ctx, requester, target, g)
	if err != nil {
		return nil, fmt.Errorf("primary strategy: %w", err)
	}

	out := []strategy.Strategy{primary}
	seen := map[strategy.Type]struct{}{primary.Type(): {}}
	for _, stage := range compareStages {
		alt, ok, err := s.finder.RunStage(ctx, stage, requester, target, g)
		if err != nil {
			return nil, fmt.Errorf("stage %s: %w", stage, err)
		}
		if !ok {
			continue
		}
		if _, dup := seen[alt.Type()]; dup {
			continue
		}
		seen[alt.Type()] = struct{}{}
		out = append(out, alt)
	}

	strategy.SortByConfidence(out)
	return out, nil
}
