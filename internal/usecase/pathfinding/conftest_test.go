package pathfinding

import (
	"context"
	"sync"
	"time"

	"github.com/kailas-cloud/reachout/internal/domain/network"
	"github.com/kailas-cloud/reachout/internal/domain/profile"
)

// --- Mocks ---

type mockGraph struct {
	mu       sync.Mutex
	conns    map[string][]profile.Profile
	paths    map[string][]profile.Profile
	connErr  map[string]error
	bfsErr   error
	bfsCalls []string
}

func newMockGraph() *mockGraph {
	return &mockGraph{
		conns:   make(map[string][]profile.Profile),
		paths:   make(map[string][]profile.Profile),
		connErr: make(map[string]error),
	}
}

func (m *mockGraph) connect(id string, people ...profile.Profile) *mockGraph {
	m.conns[id] = append(m.conns[id], people...)
	return m
}

func (m *mockGraph) path(nodes ...profile.Profile) *mockGraph {
	m.paths[nodes[0].Key()+"->"+nodes[len(nodes)-1].Key()] = nodes
	return m
}

func (m *mockGraph) GetConnections(_ context.Context, id string) ([]profile.Profile, error) {
	if err := m.connErr[id]; err != nil {
		return nil, err
	}
	return m.conns[id], nil
}

func (m *mockGraph) BidirectionalBFS(_ context.Context, src, dst string) (*network.PathResult, error) {
	m.mu.Lock()
	m.bfsCalls = append(m.bfsCalls, src+"->"+dst)
	m.mu.Unlock()
	if m.bfsErr != nil {
		return nil, m.bfsErr
	}
	p, ok := m.paths[src+"->"+dst]
	if !ok {
		return nil, nil
	}
	return &network.PathResult{Path: p, MutualConnections: max(0, len(p)-2)}, nil
}

// lookupGraph adds node and mutual lookups on top of mockGraph.
type lookupGraph struct {
	*mockGraph
	nodes   map[string]*profile.Profile
	mutuals map[string][]profile.Profile
}

func (l *lookupGraph) GetNode(_ context.Context, id string) (*profile.Profile, error) {
	return l.nodes[id], nil
}

func (l *lookupGraph) GetMutualConnections(_ context.Context, a, b string) ([]profile.Profile, error) {
	return l.mutuals[a+"|"+b], nil
}

type mockDirectory struct {
	companies map[string]*network.Company
	err       error
}

func (m *mockDirectory) GetCompany(_ context.Context, key string) (*network.Company, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.companies[key], nil
}

type mockActivities struct {
	inbound  map[string][]network.Activity
	outbound map[string][]network.Activity
	inErr    error
}

func (m *mockActivities) ActivitiesForTarget(_ context.Context, id string) ([]network.Activity, error) {
	if m.inErr != nil {
		return nil, m.inErr
	}
	return m.inbound[id], nil
}

func (m *mockActivities) ActivitiesByActor(_ context.Context, id string) ([]network.Activity, error) {
	return m.outbound[id], nil
}

type mockSemantic struct {
	match network.SemanticMatch
	err   error
	block bool
	calls int
}

func (m *mockSemantic) Compare(ctx context.Context, _, _ profile.Condensed) (network.SemanticMatch, error) {
	m.calls++
	if m.block {
		<-ctx.Done()
		return network.SemanticMatch{}, ctx.Err()
	}
	return m.match, m.err
}

// --- Fixtures ---

var testNow = time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)

func newTestService() *Service {
	return New(DefaultConfig(), nil).WithClock(func() time.Time { return testNow })
}

func person(id, name string) profile.Profile {
	return profile.Profile{ID: id, Name: name}
}

// richProfile builds a profile with the given comparable attributes. Each
// person gets a distinct employer so companies only overlap for clones.
func richProfile(id, school, industry, location string, skills ...string) profile.Profile {
	p := profile.Profile{
		ID:        id,
		Name:      "Person " + id,
		Email:     id + "@example.com",
		Title:     "Engineer",
		Location:  location,
		Education: []profile.Education{{School: school}},
	}
	if industry != "" {
		p.Experience = []profile.Experience{
			{Company: "Company " + id, Title: "Engineer", Industry: industry, Current: true},
		}
	}
	for _, s := range skills {
		p.Skills = append(p.Skills, profile.Skill{Name: s})
	}
	return p
}
