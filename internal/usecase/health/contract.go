package health

import "context"

// GraphChecker checks graph store connectivity.
type GraphChecker interface {
	VerifyConnectivity(ctx context.Context) error
}

// CachePinger checks cache availability.
type CachePinger interface {
	Ping(ctx context.Context) error
}

// SemanticChecker checks semantic provider availability.
type SemanticChecker interface {
	HealthCheck(ctx context.Context) error
}
