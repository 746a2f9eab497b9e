// Package memory provides an in-process social graph, company directory and
// activity store, loadable from a YAML fixture.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/kailas-cloud/reachout/internal/domain"
	"github.com/kailas-cloud/reachout/internal/domain/acceptance"
	"github.com/kailas-cloud/reachout/internal/domain/network"
	"github.com/kailas-cloud/reachout/internal/domain/profile"
)

// DefaultMaxHops bounds BidirectionalBFS.
const DefaultMaxHops = 6

// Graph is an undirected connection graph keyed by profile identity.
// It is safe for concurrent use.
type Graph struct {
	mu      sync.RWMutex
	nodes   map[string]profile.Profile
	aliases map[string]string
	adj     map[string]map[string]struct{}
	maxHops int
}

// NewGraph creates an empty graph.
func NewGraph() *Graph {
	return &Graph{
		nodes:   make(map[string]profile.Profile),
		aliases: make(map[string]string),
		adj:     make(map[string]map[string]struct{}),
		maxHops: DefaultMaxHops,
	}
}

// WithMaxHops configures the BFS hop budget.
func (g *Graph) WithMaxHops(n int) *Graph {
	if n > 0 {
		g.maxHops = n
	}
	return g
}

// AddProfile inserts or replaces a node. Email and name become lookup aliases.
func (g *Graph) AddProfile(p profile.Profile) error {
	if err := p.Validate(); err != nil {
		return fmt.Errorf("add profile: %w", err)
	}
	key := p.Key()

	g.mu.Lock()
	defer g.mu.Unlock()

	g.nodes[key] = p
	for _, k := range p.IdentityKeys() {
		g.aliases[alias(k)] = key
	}
	if _, ok := g.adj[key]; !ok {
		g.adj[key] = make(map[string]struct{})
	}
	return nil
}

// Connect adds an undirected edge between two known identities.
func (g *Graph) Connect(a, b string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	ka, ok := g.resolveLocked(a)
	if !ok {
		return fmt.Errorf("connect %s: %w", a, domain.ErrNodeNotFound)
	}
	kb, ok := g.resolveLocked(b)
	if !ok {
		return fmt.Errorf("connect %s: %w", b, domain.ErrNodeNotFound)
	}
	if ka == kb {
		return nil
	}
	g.adj[ka][kb] = struct{}{}
	g.adj[kb][ka] = struct{}{}
	return nil
}

// Len returns the number of nodes.
func (g *Graph) Len() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.nodes)
}

// VerifyConnectivity always succeeds; the graph lives in-process.
func (g *Graph) VerifyConnectivity(context.Context) error {
	return nil
}

// GetNode resolves id, email or name to a node. Unknown identities return nil.
func (g *Graph) GetNode(_ context.Context, id string) (*profile.Profile, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	key, ok := g.resolveLocked(id)
	if !ok {
		return nil, nil
	}
	p := g.nodes[key]
	return &p, nil
}

// GetConnections lists first-degree connections ordered by key.
// Unknown identities have no connections.
func (g *Graph) GetConnections(_ context.Context, id string) ([]profile.Profile, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	key, ok := g.resolveLocked(id)
	if !ok {
		return nil, nil
	}
	return g.profilesLocked(g.neighborsLocked(key)), nil
}

// GetMutualConnections lists nodes connected to both identities.
func (g *Graph) GetMutualConnections(_ context.Context, id1, id2 string) ([]profile.Profile, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	k1, ok1 := g.resolveLocked(id1)
	k2, ok2 := g.resolveLocked(id2)
	if !ok1 || !ok2 {
		return nil, nil
	}
	var shared []string
	for _, n := range g.neighborsLocked(k1) {
		if _, ok := g.adj[k2][n]; ok {
			shared = append(shared, n)
		}
	}
	return g.profilesLocked(shared), nil
}

// BidirectionalBFS finds a shortest path within the hop budget by growing
// frontiers from both ends one level at a time. It returns nil when the
// endpoints are unknown, identical, or farther apart than the budget.
func (g *Graph) BidirectionalBFS(ctx context.Context, sourceID, targetID string) (*network.PathResult, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	src, ok1 := g.resolveLocked(sourceID)
	dst, ok2 := g.resolveLocked(targetID)
	if !ok1 || !ok2 || src == dst {
		return nil, nil
	}

	fwd := newSearch(src)
	bwd := newSearch(dst)

	for fwd.depth+bwd.depth < g.maxHops {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("bidirectional bfs: %w", err)
		}
		if len(fwd.frontier) == 0 || len(bwd.frontier) == 0 {
			return nil, nil
		}

		grow, other := fwd, bwd
		if len(bwd.frontier) < len(fwd.frontier) {
			grow, other = bwd, fwd
		}
		meet, found := g.expandLocked(grow, other)
		if !found {
			continue
		}

		nodes := append(fwd.pathTo(meet), reverse(bwd.pathTo(meet))[1:]...)
		hops := len(nodes) - 1
		return &network.PathResult{
			Path:              g.profilesLocked(nodes),
			Probability:       acceptance.HopCountToRate(hops),
			MutualConnections: hops - 1,
		}, nil
	}
	return nil, nil
}

// expandLocked grows one full level of s and returns the meeting node with
// the shortest total path, ties broken by key.
func (g *Graph) expandLocked(s, other *search) (string, bool) {
	var (
		next  []string
		meet  string
		best  = -1
		found bool
	)
	for _, cur := range s.frontier {
		for _, n := range g.neighborsLocked(cur) {
			if _, seen := s.parent[n]; seen {
				continue
			}
			s.parent[n] = cur
			s.dist[n] = s.depth + 1
			next = append(next, n)

			d, ok := other.dist[n]
			if !ok {
				continue
			}
			total := s.depth + 1 + d
			if !found || total < best || (total == best && n < meet) {
				meet, best, found = n, total, true
			}
		}
	}
	s.frontier = next
	s.depth++
	return meet, found
}

func (g *Graph) resolveLocked(id string) (string, bool) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", false
	}
	if _, ok := g.nodes[id]; ok {
		return id, true
	}
	key, ok := g.aliases[alias(id)]
	return key, ok
}

func (g *Graph) neighborsLocked(key string) []string {
	out := make([]string, 0, len(g.adj[key]))
	for n := range g.adj[key] {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

func (g *Graph) profilesLocked(keys []string) []profile.Profile {
	out := make([]profile.Profile, 0, len(keys))
	for _, k := range keys {
		out = append(out, g.nodes[k])
	}
	return out
}

type search struct {
	parent   map[string]string
	dist     map[string]int
	frontier []string
	depth    int
}

func newSearch(root string) *search {
	return &search{
		parent:   map[string]string{root: ""},
		dist:     map[string]int{root: 0},
		frontier: []string{root},
	}
}

// pathTo returns root..node.
func (s *search) pathTo(node string) []string {
	var path []string
	for n := node; n != ""; n = s.parent[n] {
		path = append(path, n)
	}
	return reverse(path)
}

func reverse(in []string) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[len(in)-1-i] = v
	}
	return out
}

func alias(id string) string {
	return profile.Normalize(id)
}
