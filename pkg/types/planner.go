// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the research-assistant pipeline:
// the planner's analysis and subtasks, the retrieval agents' structured
// summaries, the action plan, and the merged research bundle.
package types

import (
	"encoding/json"
	"slices"
)

// AgentName identifies a downstream agent the planner may request.
type AgentName string

const (
	AgentPaper      AgentName = "paper_agent"
	AgentDataset    AgentName = "dataset_agent"
	AgentActionPlan AgentName = "action_plan_agent"

	// AgentPlanner is never requested by a subtask. It names the planner's
	// artifact and its entry in the bundle status.
	AgentPlanner AgentName = "planner_agent"
)

// DownstreamAgents lists the agents a subtask may name, in pipeline order.
var DownstreamAgents = []AgentName{AgentPaper, AgentDataset, AgentActionPlan}

// Valid reports whether a is one of the agents a subtask may request.
func (a AgentName) Valid() bool {
	return slices.Contains(DownstreamAgents, a)
}

// Analysis is the planner's structured reading of the research query.
type Analysis struct {
	// ResearchDomain is the high-level domain (e.g. "Remote Sensing").
	ResearchDomain string `json:"research_domain" yaml:"research_domain"`

	// SubDomain narrows the domain (e.g. "Geohazard Mapping").
	SubDomain string `json:"sub_domain" yaml:"sub_domain"`

	// ProblemType is the core task type (classification, detection, ...).
	ProblemType string `json:"problem_type" yaml:"problem_type"`

	DataModality    []string `json:"data_modality" yaml:"data_modality"`
	KeyTechniques   []string `json:"key_techniques" yaml:"key_techniques"`
	ExpectedOutputs []string `json:"expected_outputs" yaml:"expected_outputs"`
}

// Subtask is a planner instruction naming one agent to run and why.
type Subtask struct {
	Agent     AgentName `json:"agent" yaml:"agent"`
	Goal      string    `json:"goal" yaml:"goal"`
	Rationale string    `json:"rationale" yaml:"rationale"`

	// Inputs is nil when the key was absent from the decoded JSON.
	Inputs []string `json:"inputs" yaml:"inputs"`
}

// PlannerResult is the planner's output. The set of invoked agents is not
// stored: AgentsInvoked projects it from Subtasks every time it is needed,
// and the JSON form carries it only on the way out.
type PlannerResult struct {
	Analysis Analysis  `json:"analysis" yaml:"analysis"`
	Subtasks []Subtask `json:"subtasks" yaml:"subtasks"`
}

// AgentsInvoked returns the distinct agent names across Subtasks in order
// of first appearance.
func (p PlannerResult) AgentsInvoked() []AgentName {
	agents := make([]AgentName, 0, len(p.Subtasks))
	for _, s := range p.Subtasks {
		if !slices.Contains(agents, s.Agent) {
			agents = append(agents, s.Agent)
		}
	}
	return agents
}

// Invokes reports whether any subtask names agent.
func (p PlannerResult) Invokes(agent AgentName) bool {
	for _, s := range p.Subtasks {
		if s.Agent == agent {
			return true
		}
	}
	return false
}

// plannerResultJSON is the wire form of PlannerResult.
type plannerResultJSON struct {
	Analysis      Analysis    `json:"analysis"`
	Subtasks      []Subtask   `json:"subtasks"`
	AgentsInvoked []AgentName `json:"agents_invoked"`
}

// MarshalJSON writes the planner result with agents_invoked derived from
// the subtasks.
func (p PlannerResult) MarshalJSON() ([]byte, error) {
	subtasks := p.Subtasks
	if subtasks == nil {
		subtasks = []Subtask{}
	}
	return json.Marshal(plannerResultJSON{
		Analysis:      p.Analysis,
		Subtasks:      subtasks,
		AgentsInvoked: p.AgentsInvoked(),
	})
}

// UnmarshalJSON reads analysis and subtasks. Any agents_invoked value in
// the input is discarded. Subtasks stays nil when the key is absent or
// null and is non-nil for an empty list.
func (p *PlannerResult) UnmarshalJSON(data []byte) error {
	var w struct {
		Analysis Analysis   `json:"analysis"`
		Subtasks *[]Subtask `json:"subtasks"`
	}
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	p.Analysis = w.Analysis
	p.Subtasks = nil
	if w.Subtasks != nil {
		p.Subtasks = *w.Subtasks
		if p.Subtasks == nil {
			p.Subtasks = []Subtask{}
		}
	}
	return nil
}
