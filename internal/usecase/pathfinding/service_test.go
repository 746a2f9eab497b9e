package pathfinding

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/kailas-cloud/reachout/internal/domain"
	"github.com/kailas-cloud/reachout/internal/domain/profile"
	"github.com/kailas-cloud/reachout/internal/domain/strategy"
)

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func mustFind(t *testing.T, s *Service, requester, target profile.Profile, g Graph) strategy.Strategy {
	t.Helper()
	res, err := s.Find(context.Background(), &requester, &target, g)
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if err := res.Validate(); err != nil {
		t.Fatalf("invalid strategy: %v", err)
	}
	return res
}

func disjointPair() (profile.Profile, profile.Profile) {
	return richProfile("me", "MIT", "Finance", "Boston", "go"),
		richProfile("target", "Stanford", "Healthcare", "Austin", "python")
}

func TestFind_DirectHop(t *testing.T) {
	me, target := disjointPair()
	g := newMockGraph().path(me, target)

	res := mustFind(t, newTestService(), me, target, g)

	if res.Type() != strategy.TypeMutual {
		t.Fatalf("expected %s, got %s", strategy.TypeMutual, res.Type())
	}
	if !approx(res.AcceptanceRate(), 0.85) {
		t.Errorf("expected rate 0.85, got %v", res.AcceptanceRate())
	}
	path, ok := res.Path()
	if !ok {
		t.Fatal("mutual strategy must carry a path")
	}
	if len(path.Nodes) != 2 {
		t.Errorf("expected 2 nodes, got %d", len(path.Nodes))
	}
	if path.MutualConnections() != 0 {
		t.Errorf("direct hop has no mutuals, got %d", path.MutualConnections())
	}
}

func TestFind_HopCountRates(t *testing.T) {
	want := map[int]float64{1: 0.85, 2: 0.65, 3: 0.45, 4: 0.30, 5: 0.25, 6: 0.25}
	me, target := disjointPair()

	prev := 1.0
	for hops := 1; hops <= 6; hops++ {
		nodes := []profile.Profile{me}
		for i := 1; i < hops; i++ {
			nodes = append(nodes, person(strings.Repeat("m", i), "Middle"))
		}
		nodes = append(nodes, target)
		g := newMockGraph().path(nodes...)

		res := mustFind(t, newTestService(), me, target, g)
		if res.Type() != strategy.TypeMutual {
			t.Fatalf("hops=%d: expected mutual, got %s", hops, res.Type())
		}
		if !approx(res.AcceptanceRate(), want[hops]) {
			t.Errorf("hops=%d: rate %v, want %v", hops, res.AcceptanceRate(), want[hops])
		}
		if hops <= 5 && hops > 1 && res.AcceptanceRate() >= prev {
			t.Errorf("hops=%d: rate must strictly decrease", hops)
		}
		path, _ := res.Path()
		if path.Hops() != hops {
			t.Errorf("hops=%d: path hops %d", hops, path.Hops())
		}
		prev = res.AcceptanceRate()
	}
}

func TestFind_NoPathHighSimilarity(t *testing.T) {
	me := richProfile("me", "MIT", "Software", "Berlin", "go", "rust", "kubernetes")
	target := me
	target.ID, target.Email, target.Name = "target", "target@example.com", "Tess"

	res := mustFind(t, newTestService(), me, target, newMockGraph())

	if res.Type() != strategy.TypeDirectSimilarity {
		t.Fatalf("expected %s, got %s", strategy.TypeDirectSimilarity, res.Type())
	}
	if r := res.AcceptanceRate(); r < 0.35 || r > 0.42 {
		t.Errorf("rate %v outside [0.35, 0.42]", r)
	}
	if _, ok := res.Path(); ok {
		t.Error("direct-similarity must not carry a path")
	}
	cand, ok := res.Candidate()
	if !ok || cand.Person.ID != "target" {
		t.Errorf("expected target as candidate, got %+v", cand)
	}
}

func TestFind_NoPathNearZeroSimilarity(t *testing.T) {
	me, target := disjointPair()

	res := mustFind(t, newTestService(), me, target, newMockGraph())

	if res.Type() != strategy.TypeColdOutreach {
		t.Fatalf("expected %s, got %s", strategy.TypeColdOutreach, res.Type())
	}
	if !res.LowConfidence() {
		t.Error("cold outreach must be low confidence")
	}
	if r := res.AcceptanceRate(); r < 0.12 || r >= 0.20 {
		t.Errorf("rate %v outside [0.12, 0.20)", r)
	}
	if _, ok := res.Path(); ok {
		t.Error("no-path fallback must not carry a path")
	}
}

func TestFind_EmptyRequester(t *testing.T) {
	me := person("me", "Me")
	target := richProfile("target", "Stanford", "Healthcare", "Austin", "python", "ml")

	res := mustFind(t, newTestService(), me, target, newMockGraph())

	if res.Type() != strategy.TypeColdOutreach {
		t.Fatalf("expected %s, got %s", strategy.TypeColdOutreach, res.Type())
	}
	if res.Confidence() < 0.1 {
		t.Errorf("confidence %v below 0.1", res.Confidence())
	}
	if !strings.Contains(strings.ToLower(res.Reasoning()), "limited profile overlap") {
		t.Errorf("reasoning should mention limited profile overlap: %q", res.Reasoning())
	}
}

func TestFind_GraphErrorFallsThrough(t *testing.T) {
	me, target := disjointPair()
	g := newMockGraph().path(me, target)
	g.bfsErr = errors.New("connection refused")

	res := mustFind(t, newTestService(), me, target, g)

	if res.Type() == strategy.TypeMutual {
		t.Fatal("graph failure must not produce a mutual strategy")
	}
	if _, ok := res.Path(); ok {
		t.Error("fallback must not carry a path")
	}
}

func TestFind_MissingIdentity(t *testing.T) {
	s := newTestService()
	_, err := s.Find(context.Background(), &profile.Profile{}, &profile.Profile{ID: "t"}, newMockGraph())
	if !errors.Is(err, domain.ErrMissingIdentity) {
		t.Errorf("expected ErrMissingIdentity, got %v", err)
	}
	_, err = s.Find(context.Background(), &profile.Profile{ID: "me"}, nil, newMockGraph())
	if !errors.Is(err, domain.ErrMissingIdentity) {
		t.Errorf("expected ErrMissingIdentity for nil target, got %v", err)
	}
}

func TestFind_NilGraph(t *testing.T) {
	me, target := disjointPair()
	res := mustFind(t, newTestService(), me, target, nil)
	if res.Type() != strategy.TypeColdOutreach {
		t.Errorf("expected cold outreach without a graph, got %s", res.Type())
	}
}

func TestFind_ResolvesIdentityThroughNodeLookup(t *testing.T) {
	me := profile.Profile{Email: "me@example.com", Name: "Me"}
	target := profile.Profile{Name: "Tess"}
	meNode := person("u-me", "Me")
	targetNode := person("u-tess", "Tess")

	base := newMockGraph().path(meNode, targetNode)
	g := &lookupGraph{
		mockGraph: base,
		nodes: map[string]*profile.Profile{
			"me@example.com": &meNode,
			"Tess":           &targetNode,
		},
	}

	res := mustFind(t, newTestService(), me, target, g)
	if res.Type() != strategy.TypeMutual {
		t.Fatalf("expected mutual after identity resolution, got %s", res.Type())
	}
	if res.TargetID() != "u-tess" {
		t.Errorf("target id = %s, want u-tess", res.TargetID())
	}
}

func TestFind_NeverNull(t *testing.T) {
	me, target := disjointPair()
	rich := richProfile("x", "MIT", "Finance", "Boston", "go")

	cases := map[string]struct {
		requester, target profile.Profile
		graph             Graph
	}{
		"bare profiles":   {person("a", "A"), person("b", "B"), newMockGraph()},
		"disjoint":        {me, target, newMockGraph()},
		"self":            {me, me, newMockGraph()},
		"name only":       {profile.Profile{Name: "A"}, profile.Profile{Name: "B"}, nil},
		"similar":         {me, rich, newMockGraph()},
		"with neighbours": {me, target, newMockGraph().connect("me", rich)},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			res := mustFind(t, newTestService(), tc.requester, tc.target, tc.graph)
			if !res.Type().Valid() {
				t.Errorf("invalid type %q", res.Type())
			}
			if len(res.NextSteps()) == 0 {
				t.Error("next steps must never be empty")
			}
		})
	}
}

func TestRunStage(t *testing.T) {
	me := richProfile("me", "MIT", "Software", "Berlin", "go")
	target := me
	target.ID = "target"
	g := newMockGraph().path(me, target)
	s := newTestService()

	res, ok, err := s.RunStage(context.Background(), StageDirect, &me, &target, g)
	if err != nil || !ok {
		t.Fatalf("expected direct hit, ok=%v err=%v", ok, err)
	}
	if res.Type() != strategy.TypeDirectSimilarity {
		t.Errorf("expected direct-similarity, got %s", res.Type())
	}

	_, _, err = s.RunStage(context.Background(), Stage("nope"), &me, &target, g)
	if !errors.Is(err, domain.ErrInvalidRequest) {
		t.Errorf("expected ErrInvalidRequest, got %v", err)
	}
}

func TestConfig_WithDefaults(t *testing.T) {
	c := Config{UpgradeMargin: -1, ThirdDegreeProbes: -3}.withDefaults()
	d := DefaultConfig()
	if c.SemanticTimeout != d.SemanticTimeout || c.MaxConcurrency != d.MaxConcurrency {
		t.Errorf("unexpected defaults: %+v", c)
	}
	if c.UpgradeMargin != 0 || c.ThirdDegreeProbes != 0 {
		t.Errorf("negative values must clamp to zero: %+v", c)
	}
}
