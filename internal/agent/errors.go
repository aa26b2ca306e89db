// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/pdiddy/research-assistant/pkg/types"
)

// Error kinds recorded in a bundle's agent status.
const (
	KindSchemaValidation = "schema_validation"
	KindRetrieval        = "retrieval"
	KindCompletion       = "completion"
	KindArtifact         = "artifact"
	KindCanceled         = "canceled"
	KindOther            = "error"
)

// ErrEmptyQuery is returned when an agent is invoked with a blank query.
var ErrEmptyQuery = errors.New("research query is empty")

// ErrNoResults is wrapped in a RetrievalError when a lookup succeeds but
// returns nothing to summarize.
var ErrNoResults = errors.New("no results")

// SchemaValidationError reports model output that could not be parsed or
// did not satisfy the agent's output schema.
type SchemaValidationError struct {
	Agent  types.AgentName
	Reason string
	Err    error
}

func (e *SchemaValidationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: invalid model output: %s: %v", e.Agent, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s: invalid model output: %s", e.Agent, e.Reason)
}

func (e *SchemaValidationError) Unwrap() error { return e.Err }

// RetrievalError reports a failed paper index or dataset catalog lookup.
type RetrievalError struct {
	Agent  types.AgentName
	Source string
	Err    error
}

func (e *RetrievalError) Error() string {
	return fmt.Sprintf("%s: %s lookup failed: %v", e.Agent, e.Source, e.Err)
}

func (e *RetrievalError) Unwrap() error { return e.Err }

// CompletionError reports a failed call to the completion service.
type CompletionError struct {
	Agent types.AgentName
	Err   error
}

func (e *CompletionError) Error() string {
	return fmt.Sprintf("%s: model call failed: %v", e.Agent, e.Err)
}

func (e *CompletionError) Unwrap() error { return e.Err }

// ArtifactError reports a failure to persist an agent's output file.
type ArtifactError struct {
	Agent types.AgentName
	Err   error
}

func (e *ArtifactError) Error() string {
	return fmt.Sprintf("%s: writing artifact: %v", e.Agent, e.Err)
}

func (e *ArtifactError) Unwrap() error { return e.Err }

// DependencyUnmetError records that a requested agent was skipped because
// upstream output was missing. It is never returned from a run; the
// orchestrator stores it in the bundle's agent status.
type DependencyUnmetError struct {
	Agent   types.AgentName
	Missing []types.AgentName
}

func (e *DependencyUnmetError) Error() string {
	names := make([]string, len(e.Missing))
	for i, m := range e.Missing {
		names[i] = string(m)
	}
	return fmt.Sprintf("%s: skipped, missing output from %s", e.Agent, strings.Join(names, ", "))
}

// Kind classifies err for the bundle's agent status.
func Kind(err error) string {
	var (
		schemaErr     *SchemaValidationError
		retrievalErr  *RetrievalError
		completionErr *CompletionError
		artifactErr   *ArtifactError
	)
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return KindCanceled
	case errors.As(err, &schemaErr):
		return KindSchemaValidation
	case errors.As(err, &retrievalErr):
		return KindRetrieval
	case errors.As(err, &completionErr):
		return KindCompletion
	case errors.As(err, &artifactErr):
		return KindArtifact
	default:
		return KindOther
	}
}
