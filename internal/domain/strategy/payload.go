package strategy

import (
	"github.com/kailas-cloud/reachout/internal/domain/profile"
)

// Edge is one hop of a ConnectionPath.
type Edge struct {
	From                  string
	To                    string
	Weight                float64
	AcceptanceProbability float64
	MutualConnections     int
	MatchScore            float64
}

// Path is an ordered sequence of profiles from requester to target.
type Path struct {
	Nodes []profile.Profile
	Edges []Edge
}

// NewPath builds a path over nodes with one unit-weight edge per hop,
// each carrying the given acceptance probability.
func NewPath(nodes []profile.Profile, probability float64) Path {
	p := Path{Nodes: nodes}
	if len(nodes) < 2 {
		return p
	}
	p.Edges = make([]Edge, 0, len(nodes)-1)
	for i := 0; i+1 < len(nodes); i++ {
		p.Edges = append(p.Edges, Edge{
			From:                  nodes[i].Key(),
			To:                    nodes[i+1].Key(),
			Weight:                1,
			AcceptanceProbability: probability,
		})
	}
	return p
}

// Hops is the number of edges; it drives the acceptance-rate lookup.
func (p Path) Hops() int {
	if len(p.Nodes) < 2 {
		return 0
	}
	return len(p.Nodes) - 1
}

// MutualConnections counts intermediate nodes only.
func (p Path) MutualConnections() int {
	if len(p.Nodes) < 3 {
		return 0
	}
	return len(p.Nodes) - 2
}

// Direction tags whose network an intermediary comes from.
type Direction string

// Intermediary directions.
const (
	// Outbound: the requester already knows the intermediary.
	Outbound Direction = "outbound"
	// Inbound: the intermediary is one of the target's connections.
	Inbound Direction = "inbound"
)

// Intermediary is a scored introducer.
type Intermediary struct {
	Person         profile.Profile
	Score          float64
	PathStrength   float64
	Direction      Direction
	AcceptanceRate float64
	Reasoning      string
	LowConfidence  bool
}

// Candidate is the person a similarity-driven strategy points at: the target
// itself, or the gateway contact for cold outreach.
type Candidate struct {
	Person        profile.Profile
	Similarity    float64
	SharedContext []string
	TalkingPoints []string
}
