package neo4j

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/kailas-cloud/reachout/internal/domain"
	"github.com/kailas-cloud/reachout/internal/domain/network"
	"github.com/kailas-cloud/reachout/internal/domain/profile"
)

func person(id, name string) map[string]any {
	return map[string]any{"id": id, "name": name, "connectionCount": int64(42)}
}

func TestGetNode_CachesByAlias(t *testing.T) {
	mem := NewMemoryClient().PushReadResult(Record{"person": person("u1", "Ada Lovelace")})
	g := New(mem)

	for range 3 {
		p, err := g.GetNode(context.Background(), " Ada  LOVELACE ")
		if err != nil || p == nil {
			t.Fatalf("expected node, got %v %v", p, err)
		}
		if p.ID != "u1" || p.ConnectionCount != 42 {
			t.Errorf("unexpected profile: %+v", p)
		}
	}

	calls := mem.ReadCalls()
	if len(calls) != 1 {
		t.Fatalf("expected 1 read, got %d", len(calls))
	}
	if calls[0].Query != getNodeCypher || calls[0].Params["alias"] != "ada lovelace" {
		t.Errorf("unexpected query: %+v", calls[0])
	}
}

func TestGetNode_Unknown(t *testing.T) {
	g := New(NewMemoryClient())
	p, err := g.GetNode(context.Background(), "ghost")
	if p != nil || err != nil {
		t.Errorf("expected nil without error, got %v %v", p, err)
	}
	p, err = g.GetNode(context.Background(), "  ")
	if p != nil || err != nil {
		t.Errorf("blank identity must be nil, got %v %v", p, err)
	}
}

func TestGetNode_ProfileDocument(t *testing.T) {
	props := person("u1", "Ada")
	props["profile"] = `{"id":"u1","education":[{"school":"Cambridge"}],"skills":[{"name":"math"}]}`
	g := New(NewMemoryClient().PushReadResult(Record{"person": props}))

	p, err := g.GetNode(context.Background(), "u1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(p.Education) != 1 || p.Education[0].School != "Cambridge" || p.Name != "Ada" {
		t.Errorf("document not merged: %+v", p)
	}
}

func TestGetNode_Malformed(t *testing.T) {
	g := New(NewMemoryClient().PushReadResult(Record{"person": "not a map"}))
	_, err := g.GetNode(context.Background(), "u1")
	if !errors.Is(err, domain.ErrMalformedResponse) {
		t.Errorf("expected ErrMalformedResponse, got %v", err)
	}
}

func TestGetConnections(t *testing.T) {
	mem := NewMemoryClient().PushReadResult(
		Record{"person": person("a", "A")},
		Record{"person": person("b", "B")},
	)
	conns, err := New(mem).GetConnections(context.Background(), "me")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(conns) != 2 || conns[1].ID != "b" {
		t.Errorf("unexpected connections: %+v", conns)
	}
	if mem.ReadCalls()[0].Params["id"] != "me" {
		t.Errorf("unexpected params: %v", mem.ReadCalls()[0].Params)
	}
}

func TestBidirectionalBFS(t *testing.T) {
	mem := NewMemoryClient().PushReadResult(Record{"path": []any{
		person("me", "Me"), person("m", "Mid"), person("t", "Target"),
	}})
	g := New(mem).WithMaxHops(4)

	res, err := g.BidirectionalBFS(context.Background(), "me", "t")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res == nil || len(res.Path) != 3 {
		t.Fatalf("expected 3-node path, got %+v", res)
	}
	if res.MutualConnections != 1 || res.Probability != 0.65 {
		t.Errorf("unexpected path metadata: %+v", res)
	}
	if q := mem.ReadCalls()[0].Query; !strings.Contains(q, "CONNECTED_TO*..4") {
		t.Errorf("hop budget missing from query:\n%s", q)
	}
}

func TestBidirectionalBFS_NoPath(t *testing.T) {
	mem := NewMemoryClient()
	g := New(mem)

	res, err := g.BidirectionalBFS(context.Background(), "a", "b")
	if res != nil || err != nil {
		t.Errorf("expected nil without error, got %v %v", res, err)
	}
	res, _ = g.BidirectionalBFS(context.Background(), "a", "a")
	if res != nil {
		t.Error("same endpoints must have no path")
	}
	if len(mem.ReadCalls()) != 1 {
		t.Errorf("same endpoints must not query, got %d reads", len(mem.ReadCalls()))
	}
}

func TestBidirectionalBFS_Errors(t *testing.T) {
	boom := errors.New("bolt down")
	_, err := New(NewMemoryClient().WithError(boom)).BidirectionalBFS(context.Background(), "a", "b")
	if !errors.Is(err, boom) {
		t.Errorf("expected wrapped client error, got %v", err)
	}

	g := New(NewMemoryClient().PushReadResult(Record{"path": "oops"}))
	_, err = g.BidirectionalBFS(context.Background(), "a", "b")
	if !errors.Is(err, domain.ErrMalformedResponse) {
		t.Errorf("expected ErrMalformedResponse, got %v", err)
	}
}

func TestGetCompany(t *testing.T) {
	mem := NewMemoryClient().PushReadResult(
		Record{"key": "acme", "name": "Acme", "profileId": "e1", "employeeName": "Eve",
			"role": "Staff Engineer", "department": "Engineering", "degree": int64(2)},
		Record{"key": "acme", "name": "Acme", "profileId": "e2", "employeeName": "Far", "degree": int64(0)},
		Record{"key": "acme", "name": "Acme", "profileId": nil},
	)
	g := New(mem).WithViewer("me")

	c, err := g.GetCompany(context.Background(), "Acme, Inc.")
	if err != nil || c == nil {
		t.Fatalf("expected company, got %v %v", c, err)
	}
	if c.Name != "Acme" || len(c.Employees) != 2 {
		t.Fatalf("unexpected company: %+v", c)
	}
	if c.Employees[0].ConnectionDegree != 2 || c.Employees[0].Department != "Engineering" {
		t.Errorf("unexpected employee: %+v", c.Employees[0])
	}
	params := mem.ReadCalls()[0].Params
	if params["key"] != "acme" || params["viewer"] != "me" {
		t.Errorf("unexpected params: %v", params)
	}
}

func TestGetCompany_Unknown(t *testing.T) {
	c, err := New(NewMemoryClient()).GetCompany(context.Background(), "globex")
	if c != nil || err != nil {
		t.Errorf("expected nil without error, got %v %v", c, err)
	}
}

func TestActivities(t *testing.T) {
	ts := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	mem := NewMemoryClient().
		PushReadResult(
			Record{"actorId": "x", "targetId": "t", "type": "comment", "timestamp": ts},
			Record{"actorId": "", "targetId": "t"},
		).
		PushReadResult(
			Record{"actorId": "t", "targetId": "y", "type": "like", "timestamp": "2026-01-01T00:00:00Z"},
		)
	g := New(mem)

	in, err := g.ActivitiesForTarget(context.Background(), "t")
	if err != nil || len(in) != 1 || !in[0].Timestamp.Equal(ts) {
		t.Errorf("unexpected inbound: %+v %v", in, err)
	}
	out, err := g.ActivitiesByActor(context.Background(), "t")
	if err != nil || len(out) != 1 || out[0].Timestamp.Month() != time.January {
		t.Errorf("unexpected outbound: %+v %v", out, err)
	}
}

func TestUpsertProfile(t *testing.T) {
	mem := NewMemoryClient().PushReadResult(Record{"person": person("u1", "Old Name")})
	g := New(mem)
	ctx := context.Background()

	if _, err := g.GetNode(ctx, "u1"); err != nil {
		t.Fatal(err)
	}

	p := profile.Profile{
		ID: "u1", Email: "Ada@Example.com", Name: "Ada Lovelace",
		Experience: []profile.Experience{{Company: "Acme Inc", Title: "Engineer", Current: true}},
	}
	if err := g.UpsertProfile(ctx, p); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	calls := mem.WriteCalls()
	if len(calls) != 1 || calls[0].Query != upsertPersonCypher {
		t.Fatalf("unexpected writes: %+v", calls)
	}
	props := calls[0].Params["props"].(map[string]any)
	if props["email"] != "ada@example.com" || props["nameKey"] != "ada lovelace" {
		t.Errorf("unexpected props: %v", props)
	}
	jobs := calls[0].Params["employment"].([]map[string]any)
	if len(jobs) != 1 || jobs[0]["key"] != "acme" {
		t.Errorf("unexpected employment: %v", jobs)
	}

	// Cache invalidated: next lookup reads again.
	mem.PushReadResult(Record{"person": person("u1", "Ada Lovelace")})
	n, _ := g.GetNode(ctx, "u1")
	if n == nil || n.Name != "Ada Lovelace" {
		t.Errorf("expected refreshed node, got %+v", n)
	}

	if err := g.UpsertProfile(ctx, profile.Profile{}); !errors.Is(err, domain.ErrMissingIdentity) {
		t.Errorf("expected ErrMissingIdentity, got %v", err)
	}
}

func TestConnectAndRecord(t *testing.T) {
	mem := NewMemoryClient()
	g := New(mem)
	ctx := context.Background()

	if err := g.Connect(ctx, "a", "b"); err != nil {
		t.Fatal(err)
	}
	if err := g.Record(ctx, network.Activity{ActorID: "a", TargetID: "b", Type: "like"}); err != nil {
		t.Fatal(err)
	}
	calls := mem.WriteCalls()
	if len(calls) != 2 || calls[0].Query != connectCypher || calls[1].Query != recordActivityCypher {
		t.Errorf("unexpected writes: %+v", calls)
	}

	if err := g.Connect(ctx, "", "b"); !errors.Is(err, domain.ErrMissingIdentity) {
		t.Errorf("expected ErrMissingIdentity, got %v", err)
	}
	if err := g.Record(ctx, network.Activity{ActorID: "a"}); !errors.Is(err, domain.ErrInvalidRequest) {
		t.Errorf("expected ErrInvalidRequest, got %v", err)
	}
}

func TestVerifyConnectivity(t *testing.T) {
	down := errors.New("unreachable")
	g := New(NewMemoryClient().WithConnectivityError(down))
	if err := g.VerifyConnectivity(context.Background()); !errors.Is(err, down) {
		t.Errorf("expected connectivity error, got %v", err)
	}
}

func TestGraphSatisfiesContracts(t *testing.T) {
	g := New(NewMemoryClient())
	var (
		_ network.Graph                  = g
		_ network.NodeLookup             = g
		_ network.MutualLookup           = g
		_ network.CompanyDirectory       = g
		_ network.ActivityStore          = g
		_ network.OutboundActivitySource = g
		_ network.ConnectivityChecker    = g
	)
}

func TestNewClient_MissingURI(t *testing.T) {
	if _, err := NewClient(context.Background(), Options{}); !errors.Is(err, ErrMissingURI) {
		t.Errorf("expected ErrMissingURI, got %v", err)
	}
}
