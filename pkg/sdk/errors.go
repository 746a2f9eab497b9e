package reachout

import "github.com/kailas-cloud/reachout/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrMissingIdentity         = domain.ErrMissingIdentity
	ErrInvalidRequest          = domain.ErrInvalidRequest
	ErrNodeNotFound            = domain.ErrNodeNotFound
	ErrCollaboratorUnavailable = domain.ErrCollaboratorUnavailable
	ErrSemanticTimeout         = domain.ErrSemanticTimeout
	ErrSemanticProviderError   = domain.ErrSemanticProviderError
	ErrMalformedResponse       = domain.ErrMalformedResponse
)
