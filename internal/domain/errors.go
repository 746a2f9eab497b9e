package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingIdentity signals a profile with no id, email, or name.
	ErrMissingIdentity = errors.New("profile has no identity")
	// ErrNodeNotFound signals that a profile could not be resolved to a graph node.
	ErrNodeNotFound = errors.New("graph node not found")
	// ErrCollaboratorUnavailable signals an absent or failing optional collaborator.
	ErrCollaboratorUnavailable = errors.New("collaborator unavailable")
	// ErrSemanticTimeout signals that the semantic service did not answer in time.
	ErrSemanticTimeout = errors.New("semantic service timeout")
	// ErrSemanticProviderError signals a semantic provider failure.
	ErrSemanticProviderError = errors.New("semantic provider error")
	// ErrMalformedResponse signals an unparseable collaborator response.
	ErrMalformedResponse = errors.New("malformed response")
	// ErrInvalidRequest signals a request the engine refuses to evaluate.
	ErrInvalidRequest = errors.New("invalid request")
)

// StageError records which stage a collaborator failure happened in.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("stage %s: %s", e.Stage, e.Err.Error())
}

func (e *StageError) Unwrap() error { return e.Err }

// NewStageError wraps err with the stage name.
func NewStageError(stage string, err error) error {
	return &StageError{Stage: stage, Err: err}
}
