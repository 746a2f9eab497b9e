package pathfinding

import (
	"context"
	"testing"

	"github.com/kailas-cloud/reachout/internal/domain/profile"
	"github.com/kailas-cloud/reachout/internal/domain/strategy"
)

func coldFor(t *testing.T, me, target profile.Profile, g Graph) strategy.Strategy {
	t.Helper()
	s := newTestService()
	req, err := s.newRequest(context.Background(), &me, &target, g)
	if err != nil {
		t.Fatal(err)
	}
	res := s.cold(context.Background(), req)
	if err := res.Validate(); err != nil {
		t.Fatalf("invalid strategy: %v", err)
	}
	return res
}

func TestCold_Similarity(t *testing.T) {
	// skills 1, education 1 => 0.55
	me := richProfile("me", "MIT", "", "", "go")
	target := richProfile("target", "MIT", "", "", "go")

	res := coldFor(t, me, target, newMockGraph())

	if res.Type() != strategy.TypeColdSimilarity {
		t.Fatalf("expected %s, got %s", strategy.TypeColdSimilarity, res.Type())
	}
	want := 0.18 + (0.55-0.45)/0.55*0.07
	if !approx(res.AcceptanceRate(), want) {
		t.Errorf("rate = %v, want %v", res.AcceptanceRate(), want)
	}
	if res.LowConfidence() {
		t.Error("cold similarity is not low confidence")
	}
}

func TestCold_OutreachWithGateway(t *testing.T) {
	me, target := disjointPair()
	sparse := person("sparse", "Sparse")
	full := richProfile("full", "Yale", "Retail", "Denver", "excel")
	popular := full
	popular.ID, popular.Email, popular.ConnectionCount = "popular", "popular@example.com", 500
	g := newMockGraph().connect("me", sparse, full, popular, target)

	res := coldFor(t, me, target, g)

	if res.Type() != strategy.TypeColdOutreach {
		t.Fatalf("expected %s, got %s", strategy.TypeColdOutreach, res.Type())
	}
	gw, ok := res.Candidate()
	if !ok {
		t.Fatal("expected a gateway candidate")
	}
	if gw.Person.ID != "popular" {
		t.Errorf("gateway = %s, want popular", gw.Person.ID)
	}
	if !approx(res.AcceptanceRate(), 0.14) {
		t.Errorf("rate = %v, want 0.14", res.AcceptanceRate())
	}
	if !approx(res.Confidence(), 0.1) {
		t.Errorf("confidence = %v, want 0.1", res.Confidence())
	}
}

func TestCold_OutreachWithoutGateway(t *testing.T) {
	me, target := disjointPair()

	res := coldFor(t, me, target, newMockGraph())

	if _, ok := res.Candidate(); ok {
		t.Error("no gateway expected")
	}
	if !approx(res.AcceptanceRate(), 0.12) {
		t.Errorf("rate = %v, want 0.12", res.AcceptanceRate())
	}
}

func TestCold_RateBand(t *testing.T) {
	// Location only => similarity 0.15.
	me := richProfile("me", "MIT", "", "Paris", "go")
	target := richProfile("target", "Yale", "", "Paris", "python")

	res := coldFor(t, me, target, newMockGraph())
	want := 0.12 + 0.15*0.08
	if !approx(res.AcceptanceRate(), want) {
		t.Errorf("rate = %v, want %v", res.AcceptanceRate(), want)
	}
	if !approx(res.Confidence(), 0.15) {
		t.Errorf("confidence = %v, want 0.15", res.Confidence())
	}
}
