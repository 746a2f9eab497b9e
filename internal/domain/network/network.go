// Package network declares the read-only collaborators the strategy engine
// consumes: the social graph, the company directory, the activity store and
// the semantic similarity service.
package network

import (
	"context"
	"strings"
	"time"

	"github.com/kailas-cloud/reachout/internal/domain/capability"
	"github.com/kailas-cloud/reachout/internal/domain/profile"
)

// PathResult is a shortest path reported by the graph, source and target included.
type PathResult struct {
	Path              []profile.Profile
	Probability       float64
	MutualConnections int
}

// Graph is the minimal read contract of a social graph.
type Graph interface {
	GetConnections(ctx context.Context, id string) ([]profile.Profile, error)
	// BidirectionalBFS returns nil without error when no path exists within
	// the implementation's hop budget.
	BidirectionalBFS(ctx context.Context, sourceID, targetID string) (*PathResult, error)
}

// NodeLookup resolves an identity (id, email or name) to a graph node.
// It returns nil without error when the node is unknown.
type NodeLookup interface {
	GetNode(ctx context.Context, id string) (*profile.Profile, error)
}

// MutualLookup lists connections shared by two nodes.
type MutualLookup interface {
	GetMutualConnections(ctx context.Context, id1, id2 string) ([]profile.Profile, error)
}

// ConnectivityChecker is implemented by graphs backed by a remote store.
type ConnectivityChecker interface {
	VerifyConnectivity(ctx context.Context) error
}

// Capabilities is the result of probing a Graph for optional lookups.
type Capabilities struct {
	Nodes   capability.Option[NodeLookup]
	Mutuals capability.Option[MutualLookup]
}

// Detect probes g for optional capabilities.
func Detect(g Graph) Capabilities {
	return Capabilities{
		Nodes:   capability.Detect[NodeLookup](g),
		Mutuals: capability.Detect[MutualLookup](g),
	}
}

// Employee is a company directory entry annotated with its distance to the directory owner.
type Employee struct {
	ProfileID        string `json:"profile_id" yaml:"profile_id"`
	Name             string `json:"name" yaml:"name"`
	Role             string `json:"role,omitempty" yaml:"role"`
	Department       string `json:"department,omitempty" yaml:"department"`
	ConnectionDegree int    `json:"connection_degree" yaml:"connection_degree"`
}

// Company is a company directory record.
type Company struct {
	Key       string     `json:"key" yaml:"key"`
	Name      string     `json:"name" yaml:"name"`
	Employees []Employee `json:"employees" yaml:"employees"`
}

// CompanyDirectory looks up employer records. It returns nil without error
// for unknown companies.
type CompanyDirectory interface {
	GetCompany(ctx context.Context, companyKey string) (*Company, error)
}

// Activity is a raw engagement record: ActorID engaged with TargetID's content.
type Activity struct {
	ActorID   string    `json:"actor_id" yaml:"actor_id"`
	TargetID  string    `json:"target_id" yaml:"target_id"`
	Type      string    `json:"type" yaml:"type"`
	Timestamp time.Time `json:"timestamp" yaml:"timestamp"`
}

// ActivityStore returns inbound engagement: people who engaged with the target.
type ActivityStore interface {
	ActivitiesForTarget(ctx context.Context, targetID string) ([]Activity, error)
}

// OutboundActivitySource returns engagement performed by an actor.
type OutboundActivitySource interface {
	ActivitiesByActor(ctx context.Context, actorID string) ([]Activity, error)
}

// ActivityRecorder ingests engagement events.
type ActivityRecorder interface {
	Record(ctx context.Context, act Activity) error
}

// SemanticMatch is the semantic similarity service response.
type SemanticMatch struct {
	Similarity    float64  `json:"similarity"`
	SharedContext []string `json:"sharedContext"`
	Reasoning     string   `json:"reasoning"`
	TalkingPoints []string `json:"talkingPoints"`
}

// SemanticService scores two condensed profiles.
type SemanticService interface {
	Compare(ctx context.Context, source, target profile.Condensed) (SemanticMatch, error)
}

var companySuffixes = []string{
	" incorporated", " inc.", " inc", " llc", " ltd.", " ltd", " gmbh", " corp.", " corp",
	" co.", " plc", " s.a.", " ag",
}

// CompanyKey normalizes a company name into a directory key.
func CompanyKey(name string) string {
	k := profile.Normalize(name)
	k = strings.TrimSuffix(k, ",")
	for _, s := range companySuffixes {
		if strings.HasSuffix(k, s) {
			k = strings.TrimSuffix(k, s)
			k = strings.TrimSpace(strings.TrimSuffix(k, ","))
			break
		}
	}
	return k
}
