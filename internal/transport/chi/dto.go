package chi

import (
	"time"

	dombatch "github.com/kailas-cloud/reachout/internal/domain/batch"
	"github.com/kailas-cloud/reachout/internal/domain/profile"
	"github.com/kailas-cloud/reachout/internal/domain/strategy"
)

// ErrorCode is a machine-readable error code.
type ErrorCode string

// Error codes.
const (
	ErrorCodeBadRequest         ErrorCode = "bad_request"
	ErrorCodeValidationFailed   ErrorCode = "validation_failed"
	ErrorCodeMissingIdentity    ErrorCode = "missing_identity"
	ErrorCodeUnauthorized       ErrorCode = "unauthorized"
	ErrorCodeNotImplemented     ErrorCode = "not_implemented"
	ErrorCodeServiceUnavailable ErrorCode = "service_unavailable"
	ErrorCodeInternalError      ErrorCode = "internal_error"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Details []string  `json:"details,omitempty"`
}

// StrategyRequest is the body of POST /v1/strategies and /v1/strategies/compare.
type StrategyRequest struct {
	Requester *profile.Profile `json:"requester" validate:"required"`
	Target    *profile.Profile `json:"target" validate:"required"`
}

// BatchRequest is the body of POST /v1/strategies/batch.
type BatchRequest struct {
	Requester *profile.Profile  `json:"requester" validate:"required"`
	Targets   []profile.Profile `json:"targets" validate:"required,min=1,max=1000"`
}

// ActivityRequest is the body of POST /v1/activities.
type ActivityRequest struct {
	ActorID   string     `json:"actor_id" validate:"required,max=256"`
	TargetID  string     `json:"target_id" validate:"required,max=256,nefield=ActorID"`
	Type      string     `json:"type" validate:"required,max=64"`
	Timestamp *time.Time `json:"timestamp,omitempty"`
}

// PersonResponse is the compact profile echoed in payloads.
type PersonResponse struct {
	ID       string `json:"id,omitempty"`
	Name     string `json:"name,omitempty"`
	Title    string `json:"title,omitempty"`
	Company  string `json:"company,omitempty"`
	Location string `json:"location,omitempty"`
}

// EdgeResponse is one hop of a path.
type EdgeResponse struct {
	From                  string  `json:"from"`
	To                    string  `json:"to"`
	Weight                float64 `json:"weight"`
	AcceptanceProbability float64 `json:"acceptance_probability"`
	MutualConnections     int     `json:"mutual_connections"`
	MatchScore            float64 `json:"match_score"`
}

// PathResponse is a connection path from requester to target.
type PathResponse struct {
	Nodes             []PersonResponse `json:"nodes"`
	Edges             []EdgeResponse   `json:"edges"`
	Hops              int              `json:"hops"`
	MutualConnections int              `json:"mutual_connections"`
}

// IntermediaryResponse is a scored introducer.
type IntermediaryResponse struct {
	Person         PersonResponse `json:"person"`
	Score          float64        `json:"score"`
	PathStrength   float64        `json:"path_strength"`
	Direction      string         `json:"direction"`
	AcceptanceRate float64        `json:"acceptance_rate"`
	Reasoning      string         `json:"reasoning"`
	LowConfidence  bool           `json:"low_confidence"`
}

// CandidateResponse is the person a similarity strategy points at.
type CandidateResponse struct {
	Person        PersonResponse `json:"person"`
	Similarity    float64        `json:"similarity"`
	SharedContext []string       `json:"shared_context,omitempty"`
	TalkingPoints []string       `json:"talking_points,omitempty"`
}

// StrategyResponse is a connection strategy.
type StrategyResponse struct {
	Type           string                `json:"type"`
	TargetID       string                `json:"target_id,omitempty"`
	Confidence     float64               `json:"confidence"`
	AcceptanceRate float64               `json:"estimated_acceptance_rate"`
	Reasoning      string                `json:"reasoning"`
	NextSteps      []string              `json:"next_steps"`
	LowConfidence  bool                  `json:"low_confidence"`
	Path           *PathResponse         `json:"path,omitempty"`
	Intermediary   *IntermediaryResponse `json:"intermediary,omitempty"`
	Candidate      *CandidateResponse    `json:"candidate,omitempty"`
}

// SkippedResponse is a batch target that could not be evaluated.
type SkippedResponse struct {
	Index    int       `json:"index"`
	TargetID string    `json:"target_id,omitempty"`
	Code     ErrorCode `json:"code"`
	Message  string    `json:"message"`
}

// BatchResponse is the body returned by POST /v1/strategies/batch.
type BatchResponse struct {
	Strategies []StrategyResponse `json:"strategies"`
	Skipped    []SkippedResponse  `json:"skipped,omitempty"`
	Evaluated  int                `json:"evaluated"`
	Filtered   int                `json:"filtered"`
	Truncated  bool               `json:"truncated,omitempty"`
}

// CompareResponse is the body returned by POST /v1/strategies/compare.
type CompareResponse struct {
	Strategies []StrategyResponse `json:"strategies"`
}

// HealthResponse is the body returned by GET /health.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

func personToResponse(p *profile.Profile) PersonResponse {
	return PersonResponse{
		ID:       p.Key(),
		Name:     p.Name,
		Title:    p.Title,
		Company:  p.CurrentCompany(),
		Location: p.Location,
	}
}

func strategyToResponse(s strategy.Strategy) StrategyResponse {
	resp := StrategyResponse{
		Type:           string(s.Type()),
		TargetID:       s.TargetID(),
		Confidence:     s.Confidence(),
		AcceptanceRate: s.AcceptanceRate(),
		Reasoning:      s.Reasoning(),
		NextSteps:      s.NextSteps(),
		LowConfidence:  s.LowConfidence(),
	}

	if p, ok := s.Path(); ok {
		path := PathResponse{
			Nodes:             make([]PersonResponse, len(p.Nodes)),
			Edges:             make([]EdgeResponse, len(p.Edges)),
			Hops:              p.Hops(),
			MutualConnections: p.MutualConnections(),
		}
		for i := range p.Nodes {
			path.Nodes[i] = personToResponse(&p.Nodes[i])
		}
		for i, e := range p.Edges {
			path.Edges[i] = EdgeResponse(e)
		}
		resp.Path = &path
	}

	if in, ok := s.Intermediary(); ok {
		resp.Intermediary = &IntermediaryResponse{
			Person:         personToResponse(&in.Person),
			Score:          in.Score,
			PathStrength:   in.PathStrength,
			Direction:      string(in.Direction),
			AcceptanceRate: in.AcceptanceRate,
			Reasoning:      in.Reasoning,
			LowConfidence:  in.LowConfidence,
		}
	}

	if c, ok := s.Candidate(); ok {
		resp.Candidate = &CandidateResponse{
			Person:        personToResponse(&c.Person),
			Similarity:    c.Similarity,
			SharedContext: c.SharedContext,
			TalkingPoints: c.TalkingPoints,
		}
	}
	return resp
}

func strategiesToResponse(list []strategy.Strategy) []StrategyResponse {
	out := make([]StrategyResponse, len(list))
	for i, s := range list {
		out[i] = strategyToResponse(s)
	}
	return out
}

func batchToResponse(r dombatch.Report, limit int) BatchResponse {
	list := r.Strategies()
	truncated := false
	if limit > 0 && len(list) > limit {
		list = list[:limit]
		truncated = true
	}

	resp := BatchResponse{
		Strategies: strategiesToResponse(list),
		Evaluated:  r.Evaluated(),
		Filtered:   r.Filtered(),
		Truncated:  truncated,
	}
	for _, sk := range r.Skipped() {
		resp.Skipped = append(resp.Skipped, SkippedResponse{
			Index:    sk.Index,
			TargetID: sk.TargetID,
			Code:     errorCodeFor(sk.Err),
			Message:  safeDomainMessage(sk.Err),
		})
	}
	return resp
}
