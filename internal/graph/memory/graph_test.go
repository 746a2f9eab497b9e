package memory

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/kailas-cloud/reachout/internal/domain"
	"github.com/kailas-cloud/reachout/internal/domain/network"
	"github.com/kailas-cloud/reachout/internal/domain/profile"
)

// chain builds n0 - n1 - ... - n(k-1).
func chain(t *testing.T, k int) *Graph {
	t.Helper()
	g := NewGraph()
	for i := range k {
		mustAdd(t, g, profile.Profile{ID: fmt.Sprintf("n%d", i)})
		if i > 0 {
			mustConnect(t, g, fmt.Sprintf("n%d", i-1), fmt.Sprintf("n%d", i))
		}
	}
	return g
}

func mustAdd(t *testing.T, g *Graph, p profile.Profile) {
	t.Helper()
	if err := g.AddProfile(p); err != nil {
		t.Fatalf("add %s: %v", p.Key(), err)
	}
}

func mustConnect(t *testing.T, g *Graph, a, b string) {
	t.Helper()
	if err := g.Connect(a, b); err != nil {
		t.Fatalf("connect %s-%s: %v", a, b, err)
	}
}

func ids(ps []profile.Profile) string {
	out := make([]string, len(ps))
	for i, p := range ps {
		out[i] = p.Key()
	}
	return strings.Join(out, ",")
}

func TestBidirectionalBFS_Chain(t *testing.T) {
	g := chain(t, 5)

	res, err := g.BidirectionalBFS(context.Background(), "n0", "n4")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res == nil {
		t.Fatal("expected a path")
	}
	if got := ids(res.Path); got != "n0,n1,n2,n3,n4" {
		t.Errorf("path = %s", got)
	}
	if res.MutualConnections != 3 {
		t.Errorf("mutual connections = %d, want 3", res.MutualConnections)
	}
	if res.Probability != 0.30 {
		t.Errorf("probability = %v, want 0.30", res.Probability)
	}
}

func TestBidirectionalBFS_Direct(t *testing.T) {
	g := chain(t, 2)

	res, err := g.BidirectionalBFS(context.Background(), "n1", "n0")
	if err != nil || res == nil {
		t.Fatalf("expected path, got %v %v", res, err)
	}
	if got := ids(res.Path); got != "n1,n0" {
		t.Errorf("path = %s", got)
	}
	if res.MutualConnections != 0 {
		t.Errorf("mutual connections = %d, want 0", res.MutualConnections)
	}
}

func TestBidirectionalBFS_Shortest(t *testing.T) {
	// a-b-c-d-e plus shortcut a-x-e.
	g := NewGraph()
	for _, id := range []string{"a", "b", "c", "d", "e", "x"} {
		mustAdd(t, g, profile.Profile{ID: id})
	}
	for _, e := range [][2]string{{"a", "b"}, {"b", "c"}, {"c", "d"}, {"d", "e"}, {"a", "x"}, {"x", "e"}} {
		mustConnect(t, g, e[0], e[1])
	}

	res, _ := g.BidirectionalBFS(context.Background(), "a", "e")
	if res == nil {
		t.Fatal("expected path")
	}
	if got := ids(res.Path); got != "a,x,e" {
		t.Errorf("path = %s, want a,x,e", got)
	}
}

func TestBidirectionalBFS_TieBreakByKey(t *testing.T) {
	g := NewGraph()
	for _, id := range []string{"s", "t", "m2", "m1"} {
		mustAdd(t, g, profile.Profile{ID: id})
	}
	mustConnect(t, g, "s", "m2")
	mustConnect(t, g, "m2", "t")
	mustConnect(t, g, "s", "m1")
	mustConnect(t, g, "m1", "t")

	res, _ := g.BidirectionalBFS(context.Background(), "s", "t")
	if got := ids(res.Path); got != "s,m1,t" {
		t.Errorf("path = %s, want s,m1,t", got)
	}
}

func TestBidirectionalBFS_HopBudget(t *testing.T) {
	g := chain(t, 8).WithMaxHops(6)

	res, err := g.BidirectionalBFS(context.Background(), "n0", "n7")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res != nil {
		t.Errorf("7 hops exceeds budget, got %s", ids(res.Path))
	}

	res, _ = g.BidirectionalBFS(context.Background(), "n0", "n6")
	if res == nil || len(res.Path) != 7 {
		t.Error("6 hops must be within budget")
	}
}

func TestBidirectionalBFS_NoPath(t *testing.T) {
	g := chain(t, 2)
	mustAdd(t, g, profile.Profile{ID: "island"})

	tests := []struct{ src, dst string }{
		{"n0", "island"},
		{"n0", "unknown"},
		{"n0", "n0"},
		{"", "n1"},
	}
	for _, tt := range tests {
		res, err := g.BidirectionalBFS(context.Background(), tt.src, tt.dst)
		if err != nil {
			t.Errorf("%s->%s: unexpected error %v", tt.src, tt.dst, err)
		}
		if res != nil {
			t.Errorf("%s->%s: expected no path", tt.src, tt.dst)
		}
	}
}

func TestBidirectionalBFS_Cancelled(t *testing.T) {
	g := chain(t, 3)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := g.BidirectionalBFS(ctx, "n0", "n2")
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestGetNode_IdentityFallback(t *testing.T) {
	g := NewGraph()
	mustAdd(t, g, profile.Profile{ID: "u1", Email: "Ada@Example.com", Name: "Ada  Lovelace"})
	mustAdd(t, g, profile.Profile{Name: "Grace Hopper"})

	for _, id := range []string{"u1", "ada@example.com", "ada lovelace", " ADA LOVELACE "} {
		n, err := g.GetNode(context.Background(), id)
		if err != nil || n == nil || n.ID != "u1" {
			t.Errorf("GetNode(%q) = %v, %v", id, n, err)
		}
	}
	n, _ := g.GetNode(context.Background(), "grace hopper")
	if n == nil || n.Name != "Grace Hopper" {
		t.Errorf("expected name-keyed node, got %v", n)
	}
	n, err := g.GetNode(context.Background(), "nobody")
	if n != nil || err != nil {
		t.Errorf("unknown identity must be nil without error, got %v %v", n, err)
	}
}

func TestGetConnectionsAndMutuals(t *testing.T) {
	g := NewGraph()
	for _, id := range []string{"a", "b", "c", "d"} {
		mustAdd(t, g, profile.Profile{ID: id})
	}
	mustConnect(t, g, "a", "c")
	mustConnect(t, g, "a", "b")
	mustConnect(t, g, "d", "b")
	mustConnect(t, g, "d", "c")
	mustConnect(t, g, "a", "a")

	conns, _ := g.GetConnections(context.Background(), "a")
	if got := ids(conns); got != "b,c" {
		t.Errorf("connections = %s, want b,c", got)
	}
	mutual, _ := g.GetMutualConnections(context.Background(), "a", "d")
	if got := ids(mutual); got != "b,c" {
		t.Errorf("mutuals = %s, want b,c", got)
	}
	conns, err := g.GetConnections(context.Background(), "nobody")
	if err != nil || len(conns) != 0 {
		t.Errorf("unknown node must have no connections, got %v %v", conns, err)
	}
}

func TestAddAndConnect_Errors(t *testing.T) {
	g := NewGraph()
	if err := g.AddProfile(profile.Profile{}); !errors.Is(err, domain.ErrMissingIdentity) {
		t.Errorf("expected ErrMissingIdentity, got %v", err)
	}
	mustAdd(t, g, profile.Profile{ID: "a"})
	if err := g.Connect("a", "ghost"); !errors.Is(err, domain.ErrNodeNotFound) {
		t.Errorf("expected ErrNodeNotFound, got %v", err)
	}
}

func TestGraphSatisfiesContracts(t *testing.T) {
	var g network.Graph = NewGraph()
	caps := network.Detect(g)
	if !caps.Nodes.Present() || !caps.Mutuals.Present() {
		t.Error("memory graph must expose node and mutual lookups")
	}
}

func TestDirectory(t *testing.T) {
	d := NewDirectory()
	d.Put(network.Company{Name: "Acme, Inc.", Employees: []network.Employee{{ProfileID: "e1", ConnectionDegree: 1}}})

	c, err := d.GetCompany(context.Background(), "ACME")
	if err != nil || c == nil {
		t.Fatalf("expected company, got %v %v", c, err)
	}
	if c.Key != "acme" || len(c.Employees) != 1 {
		t.Errorf("unexpected company: %+v", c)
	}
	c.Employees[0].ProfileID = "mutated"
	again, _ := d.GetCompany(context.Background(), "acme")
	if again.Employees[0].ProfileID != "e1" {
		t.Error("GetCompany must return a copy")
	}

	missing, err := d.GetCompany(context.Background(), "globex")
	if missing != nil || err != nil {
		t.Errorf("unknown company must be nil without error, got %v %v", missing, err)
	}
}

func TestActivities(t *testing.T) {
	a := NewActivities()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	events := []network.Activity{
		{ActorID: "x", TargetID: "t", Type: "like", Timestamp: base},
		{ActorID: "y", TargetID: "t", Type: "comment", Timestamp: base.Add(time.Hour)},
		{ActorID: "t", TargetID: "x", Type: "share", Timestamp: base.Add(2 * time.Hour)},
	}
	for _, e := range events {
		if err := a.Record(context.Background(), e); err != nil {
			t.Fatalf("record: %v", err)
		}
	}

	in, _ := a.ActivitiesForTarget(context.Background(), "t")
	if len(in) != 2 || in[0].ActorID != "y" {
		t.Errorf("expected newest inbound first, got %+v", in)
	}
	out, _ := a.ActivitiesByActor(context.Background(), "t")
	if len(out) != 1 || out[0].TargetID != "x" {
		t.Errorf("unexpected outbound: %+v", out)
	}

	if err := a.Record(context.Background(), network.Activity{ActorID: "x"}); !errors.Is(err, domain.ErrInvalidRequest) {
		t.Errorf("expected ErrInvalidRequest, got %v", err)
	}
}
