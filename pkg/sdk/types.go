package reachout

import (
	"github.com/kailas-cloud/reachout/internal/domain/network"
	"github.com/kailas-cloud/reachout/internal/domain/profile"
)

// Profile types shared with the engine.
type (
	Profile    = profile.Profile
	Experience = profile.Experience
	Education  = profile.Education
	Skill      = profile.Skill
	Condensed  = profile.Condensed
)

// Collaborator contracts. Graph is required per call; the rest are optional
// and configured once on the Client.
type (
	Graph                  = network.Graph
	NodeLookup             = network.NodeLookup
	MutualLookup           = network.MutualLookup
	PathResult             = network.PathResult
	CompanyDirectory       = network.CompanyDirectory
	Company                = network.Company
	Employee               = network.Employee
	ActivityStore          = network.ActivityStore
	OutboundActivitySource = network.OutboundActivitySource
	Activity               = network.Activity
	SemanticService        = network.SemanticService
	SemanticMatch          = network.SemanticMatch
)

// StrategyType names a connection strategy.
type StrategyType string

// Strategy type constants.
const (
	StrategyMutual           StrategyType = "mutual"
	StrategyDirectSimilarity StrategyType = "direct-similarity"
	StrategyEngagementBridge StrategyType = "engagement_bridge"
	StrategyCompanyBridge    StrategyType = "company_bridge"
	StrategyIntermediary     StrategyType = "intermediary"
	StrategyColdSimilarity   StrategyType = "cold-similarity"
	StrategyColdOutreach     StrategyType = "cold-outreach"
	StrategySemantic         StrategyType = "semantic"
)

// Strategy is a recommendation for reaching one target.
// At most one of Path, Intermediary and Candidate is set.
type Strategy struct {
	Type           StrategyType
	TargetID       string
	Confidence     float64 // 0..1
	AcceptanceRate float64 // 0..1
	Reasoning      string
	NextSteps      []string
	LowConfidence  bool

	Path         *Path
	Intermediary *Intermediary
	Candidate    *Candidate
}

// Path is a chain of people from requester to target.
type Path struct {
	Nodes             []Profile
	Edges             []Edge
	Hops              int
	MutualConnections int
}

// Edge is one hop of a Path.
type Edge struct {
	From                  string
	To                    string
	Weight                float64
	AcceptanceProbability float64
	MutualConnections     int
	MatchScore            float64
}

// Intermediary is a suggested introducer.
type Intermediary struct {
	Person         Profile
	Score          float64
	PathStrength   float64
	Direction      string // "outbound" or "inbound"
	AcceptanceRate float64
	Reasoning      string
	LowConfidence  bool
}

// Candidate is the person a similarity-driven strategy points at.
type Candidate struct {
	Person        Profile
	Similarity    float64
	SharedContext []string
	TalkingPoints []string
}

// BatchResult is the outcome of BatchDiscoverConnections.
type BatchResult struct {
	// Strategies above the confidence floor, highest confidence first.
	Strategies []Strategy
	// Skipped lists targets that could not be evaluated, in input order.
	Skipped   []SkippedTarget
	Evaluated int
	Filtered  int
}

// SkippedTarget is a batch target that failed validation.
type SkippedTarget struct {
	Index    int
	TargetID string
	Err      error
}
