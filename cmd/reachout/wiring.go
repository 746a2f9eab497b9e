package main

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/reachout/internal/config"
	dbRedis "github.com/kailas-cloud/reachout/internal/db/redis"
	"github.com/kailas-cloud/reachout/internal/domain"
	"github.com/kailas-cloud/reachout/internal/domain/network"
	"github.com/kailas-cloud/reachout/internal/graph/memory"
	neo4jGraph "github.com/kailas-cloud/reachout/internal/graph/neo4j"
	"github.com/kailas-cloud/reachout/internal/metrics"
	activityrepo "github.com/kailas-cloud/reachout/internal/repository/activity"
	"github.com/kailas-cloud/reachout/internal/repository/semcache"
	chiTransport "github.com/kailas-cloud/reachout/internal/transport/chi"
	openaiEmb "github.com/kailas-cloud/reachout/internal/transport/openai"
	semanticClient "github.com/kailas-cloud/reachout/internal/transport/semantic"
	batchuc "github.com/kailas-cloud/reachout/internal/usecase/batch"
	healthuc "github.com/kailas-cloud/reachout/internal/usecase/health"
	"github.com/kailas-cloud/reachout/internal/usecase/pathfinding"
	semanticuc "github.com/kailas-cloud/reachout/internal/usecase/semantic"
)

// activitySource serves both inbound and outbound engagement.
type activitySource interface {
	network.ActivityStore
	network.OutboundActivitySource
}

// graphDeps bundles the graph-backed collaborators of one driver.
type graphDeps struct {
	graph      network.Graph
	checker    network.ConnectivityChecker
	companies  network.CompanyDirectory
	activities activitySource
	recorder   network.ActivityRecorder
	close      func(context.Context) error
}

// app is the assembled server.
type app struct {
	server  *chiTransport.Server
	closers []func(context.Context) error
}

func (a *app) Close(ctx context.Context) {
	for i := len(a.closers) - 1; i >= 0; i-- {
		_ = a.closers[i](ctx)
	}
}

// buildApp wires every component from cfg.
func buildApp(ctx context.Context, cfg config.Config, logger *zap.Logger) (*app, error) {
	a := &app{}

	g, err := buildGraph(ctx, cfg.Graph, logger)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, g.close)

	store, err := buildCache(ctx, cfg.Cache, logger)
	if err != nil {
		a.Close(ctx)
		return nil, err
	}

	var cachePinger healthuc.CachePinger
	if store != nil {
		cachePinger = store
		a.closers = append(a.closers, func(context.Context) error {
			store.Close()
			return nil
		})

		events := activityrepo.New(store, logger).
			WithMaxEvents(cfg.Cache.ActivityMaxEvents).
			WithTTL(time.Duration(cfg.Cache.ActivityTTLSec) * time.Second)
		g.activities = events
		g.recorder = events
	}

	embeddingTTL := time.Duration(cfg.Cache.EmbeddingTTLSec) * time.Second
	semantic, semanticChecker, err := buildSemantic(cfg.Semantic, store, embeddingTTL, logger)
	if err != nil {
		a.Close(ctx)
		return nil, err
	}

	finder := pathfinding.New(pathfinding.Config{
		SemanticTimeout:    cfg.Semantic.Timeout(),
		UpgradeMargin:      cfg.Strategy.UpgradeMargin,
		SecondDegreeFanout: cfg.Strategy.SecondDegreeFanout,
		ThirdDegreeProbes:  cfg.Strategy.ThirdDegreeProbes,
		EngagementHalfLife: time.Duration(cfg.Strategy.EngagementHalfLifeHours) * time.Hour,
		MaxConcurrency:     cfg.Strategy.MaxConcurrency,
	}, logger).
		WithCompanyDirectory(g.companies).
		WithActivityStore(g.activities).
		WithOutboundSource(g.activities)
	if semantic != nil {
		finder = finder.WithSemanticService(semantic)
	}

	batchSvc := batchuc.New(finder, logger).
		WithChunkSize(cfg.Strategy.BatchChunkSize).
		WithMinConfidence(cfg.Strategy.BatchMinConfidence)

	var graphChecker healthuc.GraphChecker
	if g.checker != nil {
		graphChecker = g.checker
	}
	var semChecker healthuc.SemanticChecker
	if semanticChecker != nil {
		semChecker = semanticChecker
	}
	healthSvc := healthuc.New(graphChecker, cachePinger, semChecker)

	a.server = chiTransport.NewServer(finder, batchSvc, healthSvc, g.graph, logger).
		WithActivityRecorder(g.recorder)

	logger.Info("Components wired",
		zap.String("graph_driver", cfg.Graph.Driver),
		zap.Bool("cache", store != nil),
		zap.String("semantic_provider", cfg.Semantic.Provider),
	)
	return a, nil
}

// buildGraph opens the configured graph driver.
func buildGraph(ctx context.Context, cfg config.GraphConfig, logger *zap.Logger) (*graphDeps, error) {
	switch cfg.Driver {
	case config.GraphDriverNeo4j:
		client, err := neo4jGraph.NewClient(ctx, neo4jGraph.Options{
			URI:            cfg.Neo4j.URI,
			Database:       cfg.Neo4j.Database,
			Username:       cfg.Neo4j.Username,
			Password:       cfg.Neo4j.Password,
			MaxConnections: cfg.Neo4j.MaxConnections,
		})
		if err != nil {
			return nil, fmt.Errorf("connect graph: %w", err)
		}
		g := neo4jGraph.New(client).
			WithMaxHops(cfg.MaxHops).
			WithViewer(cfg.ViewerID).
			WithNodeCache(cfg.NodeCacheSize, time.Duration(cfg.NodeCacheTTLSec)*time.Second)
		logger.Info("Connected to graph", zap.String("uri", cfg.Neo4j.URI))
		return &graphDeps{
			graph:      g,
			checker:    g,
			companies:  g,
			activities: g,
			recorder:   g,
			close:      g.Close,
		}, nil

	case config.GraphDriverMemory:
		var (
			n   *memory.Network
			err error
		)
		if cfg.Fixture != "" {
			n, err = memory.LoadFile(cfg.Fixture, cfg.MaxHops)
		} else {
			n, err = (&memory.Fixture{}).Build(cfg.MaxHops)
		}
		if err != nil {
			return nil, fmt.Errorf("load graph fixture: %w", err)
		}
		logger.Info("Loaded in-memory graph",
			zap.String("fixture", cfg.Fixture),
			zap.Int("nodes", n.Graph.Len()),
		)
		return &graphDeps{
			graph:      n.Graph,
			checker:    n.Graph,
			companies:  n.Directory,
			activities: n.Activities,
			recorder:   n.Activities,
			close:      func(context.Context) error { return nil },
		}, nil

	default:
		return nil, fmt.Errorf("unknown graph driver %q", cfg.Driver)
	}
}

// buildCache connects to Redis. It returns nil when no cache is configured.
func buildCache(ctx context.Context, cfg config.CacheConfig, logger *zap.Logger) (*dbRedis.Store, error) {
	if !cfg.Enabled() {
		return nil, nil
	}
	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Addrs,
		Username: cfg.Username,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err != nil {
		return nil, fmt.Errorf("create cache store: %w", err)
	}
	if err := store.WaitForReady(ctx, time.Duration(cfg.ReadinessTimeout)*time.Second); err != nil {
		store.Close()
		return nil, fmt.Errorf("cache not ready: %w", err)
	}
	logger.Info("Connected to cache", zap.Strings("addrs", cfg.Addrs))
	return store, nil
}

// buildSemantic assembles the semantic upgrade backend. Both results are nil for provider "none".
func buildSemantic(
	cfg config.SemanticConfig,
	store *dbRedis.Store,
	cacheTTL time.Duration,
	logger *zap.Logger,
) (network.SemanticService, domain.HealthChecker, error) {
	switch cfg.Provider {
	case config.SemanticProviderOpenAI:
		base := openaiEmb.NewEmbedder(&openaiEmb.Config{
			APIKey:            cfg.APIKey,
			BaseURL:           cfg.BaseURL,
			Model:             cfg.Model,
			Dimensions:        cfg.Dimensions,
			Provider:          cfg.Provider,
			RequestsPerSecond: cfg.RequestsPerSecond,
			Burst:             cfg.Burst,
			Logger:            logger,
		})

		var embedder semanticuc.Embedder = base
		if store != nil {
			embedder = semcache.New(base, store, metrics.SemanticCacheTotal, logger).
				WithModel(cfg.Model).
				WithTTL(cacheTTL)
		}
		svc := semanticuc.New(embedder, cfg.Provider, logger)
		return svc, svc, nil

	case config.SemanticProviderHTTP:
		client, err := semanticClient.NewClient(semanticClient.Config{
			BaseURL: cfg.BaseURL,
			APIKey:  cfg.APIKey,
			Timeout: cfg.Timeout(),
			Logger:  logger,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("create semantic client: %w", err)
		}
		return client, client, nil

	default:
		return nil, nil, nil
	}
}
