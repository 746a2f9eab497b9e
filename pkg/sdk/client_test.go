package reachout

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/kailas-cloud/reachout/internal/graph/memory"
	semanticClient "github.com/kailas-cloud/reachout/internal/transport/semantic"
	semanticuc "github.com/kailas-cloud/reachout/internal/usecase/semantic"
)

func testNetwork(t *testing.T) *memory.Network {
	t.Helper()
	fx := &memory.Fixture{
		Profiles: []Profile{
			{ID: "me", Name: "Sam Rivera"},
			{ID: "alice", Name: "Alice Chen"},
			{ID: "bob", Name: "Bob Stone"},
			{ID: "zoe", Name: "Zoe Park"},
		},
		Connections: [][2]string{{"me", "alice"}, {"alice", "bob"}},
	}
	n, err := fx.Build(6)
	if err != nil {
		t.Fatalf("build network: %v", err)
	}
	return n
}

func TestNew_Defaults(t *testing.T) {
	c, err := New()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.finder == nil || c.batch == nil || c.obs == nil {
		t.Fatalf("client not wired: %+v", c)
	}
}

func TestNew_OpenAIRequiresModel(t *testing.T) {
	_, err := New(WithOpenAIEmbeddings("key", "", ""))
	if err == nil {
		t.Fatal("expected error when model is missing")
	}
}

func TestBuildSemantic(t *testing.T) {
	custom := &mockSemantic{}

	tests := []struct {
		name  string
		cfg   clientConfig
		check func(t *testing.T, s SemanticService)
	}{
		{
			name: "none",
			cfg:  clientConfig{},
			check: func(t *testing.T, s SemanticService) {
				if s != nil {
					t.Errorf("expected nil, got %T", s)
				}
			},
		},
		{
			name: "custom wins",
			cfg:  clientConfig{semantic: custom, semanticURL: "http://backend", openAIModel: "m"},
			check: func(t *testing.T, s SemanticService) {
				if s != custom {
					t.Errorf("expected custom service, got %T", s)
				}
			},
		},
		{
			name: "http backend",
			cfg:  clientConfig{semanticURL: "http://backend"},
			check: func(t *testing.T, s SemanticService) {
				if _, ok := s.(*semanticClient.Client); !ok {
					t.Errorf("expected *semantic.Client, got %T", s)
				}
			},
		},
		{
			name: "openai embeddings",
			cfg:  clientConfig{openAIKey: "k", openAIModel: "text-embedding-3-small"},
			check: func(t *testing.T, s SemanticService) {
				if _, ok := s.(*semanticuc.Service); !ok {
					t.Errorf("expected *semantic.Service, got %T", s)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := buildSemantic(&tt.cfg)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			tt.check(t, s)
		})
	}
}

func TestClientOptions(t *testing.T) {
	cfg := &clientConfig{}
	opts := []Option{
		WithSemanticTimeout(2 * time.Second),
		WithUpgradeMargin(0.1),
		WithBatchChunkSize(10),
		WithMinConfidence(0.6),
		WithSemanticBackend("http://backend", "secret"),
	}
	for _, o := range opts {
		o.apply(cfg)
	}

	if cfg.semanticTimeout != 2*time.Second {
		t.Errorf("semanticTimeout = %v", cfg.semanticTimeout)
	}
	if cfg.upgradeMargin != 0.1 || cfg.chunkSize != 10 || cfg.minConfidence != 0.6 {
		t.Errorf("unexpected config: %+v", cfg)
	}
	if cfg.semanticURL != "http://backend" || cfg.semanticAPIKey != "secret" {
		t.Errorf("unexpected backend: %q %q", cfg.semanticURL, cfg.semanticAPIKey)
	}
}

func TestFindConnectionStrategy_Mutual(t *testing.T) {
	n := testNetwork(t)
	c, err := New(WithCompanyDirectory(n.Directory), WithActivityStore(n.Activities))
	if err != nil {
		t.Fatal(err)
	}

	me := Profile{ID: "me", Name: "Sam Rivera"}
	bob := Profile{ID: "bob", Name: "Bob Stone"}

	s, err := c.FindConnectionStrategy(context.Background(), &me, &bob, n.Graph)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Type != StrategyMutual {
		t.Fatalf("expected mutual, got %s", s.Type)
	}
	if s.Path == nil || s.Path.Hops != 2 || s.Path.MutualConnections != 1 {
		t.Fatalf("unexpected path: %+v", s.Path)
	}
	if s.Intermediary != nil || s.Candidate != nil {
		t.Error("mutual strategy must carry only a path")
	}
	if len(s.NextSteps) == 0 {
		t.Error("expected next steps")
	}
}

func TestFindConnectionStrategy_NoPathFallsBack(t *testing.T) {
	n := testNetwork(t)
	c, err := New()
	if err != nil {
		t.Fatal(err)
	}

	me := Profile{ID: "me", Name: "Sam Rivera"}
	zoe := Profile{ID: "zoe", Name: "Zoe Park"}

	s, err := c.FindConnectionStrategy(context.Background(), &me, &zoe, n.Graph)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Type == "" || s.Type == StrategyMutual {
		t.Errorf("expected a non-path fallback strategy, got %q", s.Type)
	}
	if s.Path != nil {
		t.Error("fallback strategy must not carry a path")
	}
}

func TestFindConnectionStrategy_MissingIdentity(t *testing.T) {
	n := testNetwork(t)
	c, err := New()
	if err != nil {
		t.Fatal(err)
	}

	me := Profile{ID: "me"}
	_, err = c.FindConnectionStrategy(context.Background(), &me, &Profile{}, n.Graph)
	if !errors.Is(err, ErrMissingIdentity) {
		t.Fatalf("expected ErrMissingIdentity, got %v", err)
	}
}

func TestBatchDiscoverConnections(t *testing.T) {
	batch := &mockBatch{
		report: newReport(
			mutualStrategy("bob", 0.8),
			mutualStrategy("alice", 0.6),
		),
	}
	c := &Client{batch: batch}

	me := Profile{ID: "me"}
	res, err := c.BatchDiscoverConnections(context.Background(), &me, []Profile{{ID: "bob"}, {}}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Strategies) != 2 || res.Strategies[0].TargetID != "bob" {
		t.Fatalf("unexpected strategies: %+v", res.Strategies)
	}
	if len(res.Skipped) != 1 || res.Skipped[0].Index != 1 || !errors.Is(res.Skipped[0].Err, ErrMissingIdentity) {
		t.Errorf("unexpected skipped: %+v", res.Skipped)
	}
	if res.Evaluated != 3 || res.Filtered != 1 {
		t.Errorf("evaluated=%d filtered=%d", res.Evaluated, res.Filtered)
	}
	if batch.targets != 2 {
		t.Errorf("expected 2 targets forwarded, got %d", batch.targets)
	}
}

func TestBatchDiscoverConnections_Error(t *testing.T) {
	c := &Client{batch: &mockBatch{err: ErrMissingIdentity}}

	_, err := c.BatchDiscoverConnections(context.Background(), nil, nil, nil)
	if !errors.Is(err, ErrMissingIdentity) {
		t.Fatalf("expected ErrMissingIdentity, got %v", err)
	}
}

func TestCompareStrategies(t *testing.T) {
	c := &Client{batch: &mockBatch{compare: []strategyT{
		mutualStrategy("bob", 0.7),
		coldStrategy("bob", 0.3),
	}}}

	me, bob := Profile{ID: "me"}, Profile{ID: "bob"}
	list, err := c.CompareStrategies(context.Background(), &me, &bob, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(list) != 2 || list[0].Type != StrategyMutual || list[1].Type != StrategyColdSimilarity {
		t.Fatalf("unexpected list: %+v", list)
	}
	if list[1].Candidate == nil || list[1].Candidate.Similarity != 0.3 {
		t.Errorf("unexpected candidate: %+v", list[1].Candidate)
	}
}

func TestObserver_Metrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	c, err := New(WithPrometheus(reg))
	if err != nil {
		t.Fatal(err)
	}
	n := testNetwork(t)
	me, bob := Profile{ID: "me", Name: "Sam"}, Profile{ID: "bob", Name: "Bob"}

	if _, err := c.FindConnectionStrategy(context.Background(), &me, &bob, n.Graph); err != nil {
		t.Fatal(err)
	}
	if _, err := c.FindConnectionStrategy(context.Background(), &me, &Profile{}, n.Graph); err == nil {
		t.Fatal("expected error")
	}

	m := c.obs.metrics
	if got := testutil.ToFloat64(m.calls.WithLabelValues("find", "ok")); got != 1 {
		t.Errorf("ok calls = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.calls.WithLabelValues("find", "error")); got != 1 {
		t.Errorf("error calls = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.strategies.WithLabelValues(string(StrategyMutual))); got != 1 {
		t.Errorf("mutual strategies = %v, want 1", got)
	}

	// A second client on the same registry reuses the collectors.
	if _, err := New(WithPrometheus(reg)); err != nil {
		t.Fatalf("re-registration failed: %v", err)
	}
}

func TestObserver_Nil(t *testing.T) {
	var o *observer
	o.observe(context.Background(), "find", time.Now(), nil)
}
