// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// ActionPlanResult is the synthesizer's output. No schema is imposed beyond
// well-formed JSON, so the value is carried verbatim.
type ActionPlanResult struct {
	Raw json.RawMessage
}

// NewActionPlanResult wraps data after checking that it is valid JSON.
func NewActionPlanResult(data []byte) (*ActionPlanResult, error) {
	data = bytes.TrimSpace(data)
	if !json.Valid(data) {
		return nil, fmt.Errorf("action plan is not valid JSON")
	}
	return &ActionPlanResult{Raw: append(json.RawMessage(nil), data...)}, nil
}

// MarshalJSON returns the raw plan.
func (a ActionPlanResult) MarshalJSON() ([]byte, error) {
	if len(a.Raw) == 0 {
		return []byte("null"), nil
	}
	return a.Raw, nil
}

// UnmarshalJSON stores a copy of data.
func (a *ActionPlanResult) UnmarshalJSON(data []byte) error {
	a.Raw = append(a.Raw[:0], data...)
	return nil
}

// Decode unmarshals the plan into v.
func (a ActionPlanResult) Decode(v any) error {
	return json.Unmarshal(a.Raw, v)
}

// AgentState is the outcome of one agent within a run.
type AgentState string

const (
	StateNotRequested AgentState = "not_requested"
	StateSucceeded    AgentState = "succeeded"
	StateFailed       AgentState = "failed"
	StateSkipped      AgentState = "skipped"
)

// AgentStatus explains why a bundle section is populated or null.
type AgentStatus struct {
	State AgentState `json:"state" yaml:"state"`

	// ErrorKind classifies a failure (schema_validation, retrieval, completion,
	// artifact, canceled, error).
	ErrorKind string `json:"error_kind,omitempty" yaml:"error_kind,omitempty"`

	// Error is the failure message.
	Error string `json:"error,omitempty" yaml:"error,omitempty"`

	// MissingInputs lists upstream agents whose output was absent when a
	// requested agent was skipped.
	MissingInputs []AgentName `json:"missing_inputs,omitempty" yaml:"missing_inputs,omitempty"`
}

// ResearchBundle is the merged output of one orchestration run. A nil
// section means the agent was not requested, failed, or was skipped;
// AgentStatus says which.
type ResearchBundle struct {
	RunID      string              `json:"run_id"`
	Query      string              `json:"query"`
	Planner    *PlannerResult      `json:"planner"`
	Papers     *PaperAgentResult   `json:"papers"`
	Datasets   *DatasetAgentResult `json:"datasets"`
	ActionPlan *ActionPlanResult   `json:"action_plan"`

	AgentStatus map[AgentName]AgentStatus `json:"agent_status"`
}

// Consistent reports whether the bundle honors the action plan dependency:
// an action plan is present only when both papers and datasets are.
func (b *ResearchBundle) Consistent() bool {
	if b.ActionPlan == nil {
		return true
	}
	return b.Papers != nil && b.Datasets != nil
}
