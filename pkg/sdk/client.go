package reachout

import (
	"context"
	"errors"
	"fmt"
	"time"

	dombatch "github.com/kailas-cloud/reachout/internal/domain/batch"
	"github.com/kailas-cloud/reachout/internal/domain/profile"
	"github.com/kailas-cloud/reachout/internal/domain/strategy"
	openaiEmb "github.com/kailas-cloud/reachout/internal/transport/openai"
	semanticClient "github.com/kailas-cloud/reachout/internal/transport/semantic"
	batchuc "github.com/kailas-cloud/reachout/internal/usecase/batch"
	"github.com/kailas-cloud/reachout/internal/usecase/pathfinding"
	semanticuc "github.com/kailas-cloud/reachout/internal/usecase/semantic"
)

// Internal interfaces, replaced in tests.
type finderUseCase interface {
	Find(ctx context.Context, requester, target *profile.Profile, g pathfinding.Graph) (strategy.Strategy, error)
}

type batchUseCase interface {
	Discover(
		ctx context.Context, requester *profile.Profile, targets []profile.Profile, g pathfinding.Graph,
	) (dombatch.Report, error)
	Compare(ctx context.Context, requester, target *profile.Profile, g pathfinding.Graph) ([]strategy.Strategy, error)
}

// Client is the reachout SDK entry point. It is safe for concurrent use.
type Client struct {
	finder finderUseCase
	batch  batchUseCase
	obs    *observer
}

// New creates a Client. No network connection is made until a semantic
// backend is first called.
func New(opts ...Option) (*Client, error) {
	cfg := &clientConfig{}
	for _, o := range opts {
		o.apply(cfg)
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}

	semantic, err := buildSemantic(cfg)
	if err != nil {
		return nil, err
	}

	finder := pathfinding.New(pathfinding.Config{
		SemanticTimeout: cfg.semanticTimeout,
		UpgradeMargin:   cfg.upgradeMargin,
	}, nil)
	if cfg.companies != nil {
		finder = finder.WithCompanyDirectory(cfg.companies)
	}
	if cfg.activities != nil {
		finder = finder.WithActivityStore(cfg.activities)
	}
	if semantic != nil {
		finder = finder.WithSemanticService(semantic)
	}

	batch := batchuc.New(finder, nil).WithChunkSize(cfg.chunkSize)
	if cfg.minConfidence > 0 {
		batch = batch.WithMinConfidence(cfg.minConfidence)
	}

	return &Client{finder: finder, batch: batch, obs: obs}, nil
}

// buildSemantic resolves the configured semantic backend, nil when none is set.
func buildSemantic(cfg *clientConfig) (SemanticService, error) {
	switch {
	case cfg.semantic != nil:
		return cfg.semantic, nil
	case cfg.semanticURL != "":
		c, err := semanticClient.NewClient(semanticClient.Config{
			BaseURL: cfg.semanticURL,
			APIKey:  cfg.semanticAPIKey,
			Timeout: cfg.semanticTimeout,
		})
		if err != nil {
			return nil, fmt.Errorf("reachout: semantic backend: %w", err)
		}
		return c, nil
	case cfg.openAIModel != "" || cfg.openAIKey != "":
		if cfg.openAIModel == "" {
			return nil, errors.New("reachout: embedding model required (use WithOpenAIEmbeddings)")
		}
		emb := openaiEmb.NewEmbedder(&openaiEmb.Config{
			APIKey:   cfg.openAIKey,
			BaseURL:  cfg.openAIBaseURL,
			Model:    cfg.openAIModel,
			Provider: "openai",
		})
		return semanticuc.New(emb, "openai", nil), nil
	default:
		return nil, nil
	}
}

// FindConnectionStrategy returns the best way for requester to reach target
// over g. It never returns a zero Strategy without an error; the only error
// is ErrMissingIdentity for profiles without id, email or name.
func (c *Client) FindConnectionStrategy(
	ctx context.Context, requester, target *Profile, g Graph,
) (res Strategy, err error) {
	start := time.Now()
	defer func() { c.obs.observe(ctx, "find", start, err, res) }()

	s, err := c.finder.Find(ctx, requester, target, g)
	if err != nil {
		return Strategy{}, fmt.Errorf("find strategy: %w", err)
	}
	return toStrategy(s), nil
}

// BatchDiscoverConnections evaluates every target and keeps strategies above
// the confidence floor, highest confidence first. Targets without identity
// are reported in Skipped instead of failing the batch.
func (c *Client) BatchDiscoverConnections(
	ctx context.Context, requester *Profile, targets []Profile, g Graph,
) (res BatchResult, err error) {
	start := time.Now()
	defer func() { c.obs.observe(ctx, "batch", start, err, res.Strategies...) }()

	report, err := c.batch.Discover(ctx, requester, targets, g)
	if err != nil {
		return BatchResult{}, fmt.Errorf("batch discover: %w", err)
	}
	return toBatchResult(report), nil
}

// CompareStrategies returns the primary strategy plus independently evaluated
// alternatives, at most one per type, highest confidence first.
func (c *Client) CompareStrategies(
	ctx context.Context, requester, target *Profile, g Graph,
) (res []Strategy, err error) {
	start := time.Now()
	defer func() { c.obs.observe(ctx, "compare", start, err, res...) }()

	list, err := c.batch.Compare(ctx, requester, target, g)
	if err != nil {
		return nil, fmt.Errorf("compare strategies: %w", err)
	}
	return toStrategies(list), nil
}
