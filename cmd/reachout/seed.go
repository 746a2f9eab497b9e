package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/reachout/internal/config"
	"github.com/kailas-cloud/reachout/internal/domain/network"
	"github.com/kailas-cloud/reachout/internal/domain/profile"
	"github.com/kailas-cloud/reachout/internal/graph/memory"
	neo4jGraph "github.com/kailas-cloud/reachout/internal/graph/neo4j"
)

var seedFixture string

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load a network fixture into the Neo4j graph",
	Long: `Load a YAML network fixture (profiles, connections, activities)
into the configured Neo4j graph. Employers are derived from each
profile's current experience.

Examples:
  reachout seed                                    # Use graph.fixture from config
  reachout seed --fixture config/fixtures/network.yaml`,
	Args: cobra.NoArgs,
	RunE: runSeed,
}

func init() {
	seedCmd.Flags().StringVar(&seedFixture, "fixture", "", "fixture path (default: graph.fixture from config)")
}

// seedWriter is the write side of the graph exercised by seeding.
type seedWriter interface {
	UpsertProfile(ctx context.Context, p profile.Profile) error
	Connect(ctx context.Context, a, b string) error
	Record(ctx context.Context, act network.Activity) error
}

func runSeed(cmd *cobra.Command, _ []string) error {
	_, cfg, logger, err := bootstrap()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	if cfg.Graph.Driver != config.GraphDriverNeo4j {
		return fmt.Errorf("seed requires graph.driver %q, got %q", config.GraphDriverNeo4j, cfg.Graph.Driver)
	}
	path := seedFixture
	if path == "" {
		path = cfg.Graph.Fixture
	}
	if path == "" {
		return errors.New("no fixture: pass --fixture or set graph.fixture")
	}

	fx, err := memory.ReadFile(path)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	client, err := neo4jGraph.NewClient(ctx, neo4jGraph.Options{
		URI:            cfg.Graph.Neo4j.URI,
		Database:       cfg.Graph.Neo4j.Database,
		Username:       cfg.Graph.Neo4j.Username,
		Password:       cfg.Graph.Neo4j.Password,
		MaxConnections: cfg.Graph.Neo4j.MaxConnections,
	})
	if err != nil {
		return fmt.Errorf("connect graph: %w", err)
	}
	g := neo4jGraph.New(client)
	defer func() { _ = g.Close(context.Background()) }()

	start := time.Now()
	if err := seed(ctx, g, fx); err != nil {
		return err
	}

	logger.Info("Fixture loaded",
		zap.String("fixture", path),
		zap.Int("profiles", len(fx.Profiles)),
		zap.Int("connections", len(fx.Connections)),
		zap.Int("activities", len(fx.Activities)),
		zap.Duration("duration", time.Since(start)),
	)
	if len(fx.Companies) > 0 {
		logger.Warn("Fixture companies are ignored; employers come from profile experience",
			zap.Int("companies", len(fx.Companies)))
	}
	return nil
}

// seed writes profiles first so connections and activities resolve.
func seed(ctx context.Context, g seedWriter, fx *memory.Fixture) error {
	for i, p := range fx.Profiles {
		if err := g.UpsertProfile(ctx, p); err != nil {
			return fmt.Errorf("profile %d: %w", i, err)
		}
	}
	for _, c := range fx.Connections {
		if err := g.Connect(ctx, c[0], c[1]); err != nil {
			return err
		}
	}
	for i, a := range fx.Activities {
		if err := g.Record(ctx, a); err != nil {
			return fmt.Errorf("activity %d: %w", i, err)
		}
	}
	return nil
}
