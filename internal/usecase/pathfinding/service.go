package pathfinding

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/reachout/internal/domain"
	"github.com/kailas-cloud/reachout/internal/domain/capability"
	"github.com/kailas-cloud/reachout/internal/domain/engagement"
	"github.com/kailas-cloud/reachout/internal/domain/network"
	"github.com/kailas-cloud/reachout/internal/domain/profile"
	"github.com/kailas-cloud/reachout/internal/domain/similarity"
	"github.com/kailas-cloud/reachout/internal/domain/strategy"
	"github.com/kailas-cloud/reachout/internal/logger"
	"github.com/kailas-cloud/reachout/internal/metrics"
)

// Stage names a step of the pathfinding pipeline.
type Stage string

// Pipeline stages in priority order.
const (
	StageMutual       Stage = "mutual"
	StageDirect       Stage = "direct_similarity"
	StageEngagement   Stage = "engagement_bridge"
	StageCompany      Stage = "company_bridge"
	StageIntermediary Stage = "intermediary"
	StageCold         Stage = "cold"
	StageSemantic     Stage = "semantic"
)

// Stage outcome labels.
const (
	outcomeHit   = "hit"
	outcomeMiss  = "miss"
	outcomeError = "error"
)

// Config tunes the engine. Zero fields fall back to DefaultConfig values.
type Config struct {
	// SemanticTimeout bounds the semantic service call.
	SemanticTimeout time.Duration
	// UpgradeMargin is how much the semantic confidence must exceed the cold
	// confidence by before it replaces it.
	UpgradeMargin float64
	// SecondDegreeFanout caps how many first-degree contacts are expanded
	// when looking for second-degree stepping stones.
	SecondDegreeFanout int
	// ThirdDegreeProbes caps shortest-path probes for unmatched engagers.
	ThirdDegreeProbes int
	// EngagementHalfLife is the recency half-life of engagement events.
	EngagementHalfLife time.Duration
	// MaxConcurrency bounds graph fan-out inside a stage.
	MaxConcurrency int
}

// DefaultConfig returns the production defaults.
func DefaultConfig() Config {
	return Config{
		SemanticTimeout:    5 * time.Second,
		UpgradeMargin:      0,
		SecondDegreeFanout: 25,
		ThirdDegreeProbes:  5,
		EngagementHalfLife: engagement.DefaultHalfLife,
		MaxConcurrency:     8,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.SemanticTimeout <= 0 {
		c.SemanticTimeout = d.SemanticTimeout
	}
	if c.UpgradeMargin < 0 {
		c.UpgradeMargin = 0
	}
	if c.SecondDegreeFanout <= 0 {
		c.SecondDegreeFanout = d.SecondDegreeFanout
	}
	if c.ThirdDegreeProbes < 0 {
		c.ThirdDegreeProbes = 0
	}
	if c.EngagementHalfLife <= 0 {
		c.EngagementHalfLife = d.EngagementHalfLife
	}
	if c.MaxConcurrency <= 0 {
		c.MaxConcurrency = d.MaxConcurrency
	}
	return c
}

// Service is the connection strategy orchestrator.
type Service struct {
	cfg        Config
	companies  capability.Option[network.CompanyDirectory]
	activities capability.Option[network.ActivityStore]
	outbound   capability.Option[network.OutboundActivitySource]
	semantic   capability.Option[network.SemanticService]
	logger     *zap.Logger
	now        func() time.Time
}

// New creates a pathfinding service. logger can be nil.
func New(cfg Config, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		cfg:        cfg.withDefaults(),
		companies:  capability.None[network.CompanyDirectory](),
		activities: capability.None[network.ActivityStore](),
		outbound:   capability.None[network.OutboundActivitySource](),
		semantic:   capability.None[network.SemanticService](),
		logger:     logger,
		now:        time.Now,
	}
}

// WithCompanyDirectory enables the company bridge.
func (s *Service) WithCompanyDirectory(d CompanyDirectory) *Service {
	s.companies = capability.Detect[network.CompanyDirectory](d)
	return s
}

// WithActivityStore enables the engagement bridge. Stores that also
// implement network.OutboundActivitySource supply the outbound signal.
func (s *Service) WithActivityStore(a ActivityStore) *Service {
	s.activities = capability.Detect[network.ActivityStore](a)
	if out := capability.Detect[network.OutboundActivitySource](a); out.Present() {
		s.outbound = out
	}
	return s
}

// WithOutboundSource sets a dedicated outbound engagement source.
func (s *Service) WithOutboundSource(o network.OutboundActivitySource) *Service {
	s.outbound = capability.Detect[network.OutboundActivitySource](o)
	return s
}

// WithSemanticService enables the remote semantic upgrade.
func (s *Service) WithSemanticService(svc SemanticService) *Service {
	s.semantic = capability.Detect[network.SemanticService](svc)
	return s
}

// WithClock overrides the time source used for engagement decay.
func (s *Service) WithClock(now func() time.Time) *Service {
	if now != nil {
		s.now = now
	}
	return s
}

// request is the per-call working state. It is never shared across calls.
type request struct {
	requester *profile.Profile
	target    *profile.Profile
	graph     Graph
	caps      network.Capabilities
	sourceID  string
	targetID  string
	sim       similarity.Result
	log       *zap.Logger
}

type stageFunc func(ctx context.Context, req *request) (strategy.Strategy, bool, error)

type namedStage struct {
	name Stage
	run  stageFunc
}

// primaryStages are tried in order; the first hit wins.
func (s *Service) primaryStages() []namedStage {
	return []namedStage{
		{StageMutual, s.mutual},
		{StageDirect, s.directSimilarity},
		{StageEngagement, s.engagementBridge},
		{StageCompany, s.companyBridge},
		{StageIntermediary, s.intermediary},
	}
}

// Find returns the best connection strategy from requester to target.
// The only error is domain.ErrMissingIdentity for profiles without identity.
func (s *Service) Find(
	ctx context.Context, requester, target *profile.Profile, g Graph,
) (strategy.Strategy, error) {
	req, err := s.newRequest(ctx, requester, target, g)
	if err != nil {
		return strategy.Strategy{}, err
	}

	start := time.Now()
	result := s.run(ctx, req)

	metrics.StrategiesTotal.WithLabelValues(string(result.Type())).Inc()
	metrics.StrategyDuration.WithLabelValues(string(result.Type())).Observe(time.Since(start).Seconds())
	req.log.Debug("strategy selected",
		zap.String("type", string(result.Type())),
		zap.String("target", req.targetID),
		zap.Float64("confidence", result.Confidence()),
		zap.Float64("acceptance_rate", result.AcceptanceRate()),
	)
	return result, nil
}

// RunStage evaluates a single primary stage in isolation.
func (s *Service) RunStage(
	ctx context.Context, stage Stage, requester, target *profile.Profile, g Graph,
) (strategy.Strategy, bool, error) {
	req, err := s.newRequest(ctx, requester, target, g)
	if err != nil {
		return strategy.Strategy{}, false, err
	}
	for _, st := range s.primaryStages() {
		if st.name == stage {
			res, ok := s.attempt(ctx, req, st)
			return res, ok, nil
		}
	}
	return strategy.Strategy{}, false, fmt.Errorf("unknown stage %q: %w", stage, domain.ErrInvalidRequest)
}

func (s *Service) newRequest(
	ctx context.Context, requester, target *profile.Profile, g Graph,
) (*request, error) {
	if requester == nil {
		return nil, fmt.Errorf("requester: %w", domain.ErrMissingIdentity)
	}
	if err := requester.Validate(); err != nil {
		return nil, fmt.Errorf("requester: %w", err)
	}
	if target == nil {
		return nil, fmt.Errorf("target: %w", domain.ErrMissingIdentity)
	}
	if err := target.Validate(); err != nil {
		return nil, fmt.Errorf("target: %w", err)
	}
	if g == nil {
		g = emptyGraph{}
	}

	req := &request{
		requester: requester,
		target:    target,
		graph:     g,
		caps:      network.Detect(g),
		sim:       similarity.Compare(requester, target),
		log:       logger.FromContextOr(ctx, s.logger),
	}
	req.sourceID = s.resolve(ctx, req, requester)
	req.targetID = s.resolve(ctx, req, target)
	return req, nil
}

// run folds the primary stages first-success, then falls back to the cold
// strategy and its optional semantic upgrade.
func (s *Service) run(ctx context.Context, req *request) strategy.Strategy {
	for _, st := range s.primaryStages() {
		if res, ok := s.attempt(ctx, req, st); ok {
			return res
		}
	}

	cold := s.cold(ctx, req)
	metrics.StageOutcomesTotal.WithLabelValues(string(StageCold), outcomeHit).Inc()
	if !cold.LowConfidence() {
		return cold
	}
	return s.upgrade(ctx, req, cold)
}

// attempt runs one stage. Collaborator errors become a miss.
func (s *Service) attempt(ctx context.Context, req *request, st namedStage) (strategy.Strategy, bool) {
	res, ok, err := st.run(ctx, req)
	switch {
	case err != nil:
		metrics.StageOutcomesTotal.WithLabelValues(string(st.name), outcomeError).Inc()
		req.log.Warn("stage failed, falling through",
			zap.String("stage", string(st.name)),
			zap.Error(domain.NewStageError(string(st.name), err)),
		)
		return strategy.Strategy{}, false
	case !ok:
		metrics.StageOutcomesTotal.WithLabelValues(string(st.name), outcomeMiss).Inc()
		return strategy.Strategy{}, false
	default:
		metrics.StageOutcomesTotal.WithLabelValues(string(st.name), outcomeHit).Inc()
		return res, true
	}
}

// emptyGraph stands in when the caller supplies no graph.
type emptyGraph struct{}

func (emptyGraph) GetConnections(context.Context, string) ([]profile.Profile, error) {
	return nil, nil
}

func (emptyGraph) BidirectionalBFS(context.Context, string, string) (*network.PathResult, error) {
	return nil, nil
}
