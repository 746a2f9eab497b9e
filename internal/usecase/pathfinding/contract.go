package pathfinding

import (
	"github.com/kailas-cloud/reachout/internal/domain/network"
)

// Graph is the caller-supplied social graph.
type Graph = network.Graph

// CompanyDirectory looks up employer records for the company bridge.
type CompanyDirectory = network.CompanyDirectory

// ActivityStore supplies inbound engagement for the engagement bridge.
type ActivityStore = network.ActivityStore

// SemanticService scores condensed profiles for the semantic upgrade.
type SemanticService = network.SemanticService
