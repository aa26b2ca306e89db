// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func subtasks(agents ...AgentName) []Subtask {
	out := make([]Subtask, len(agents))
	for i, a := range agents {
		out[i] = Subtask{Agent: a, Goal: "goal", Rationale: "why"}
	}
	return out
}

func TestAgentsInvoked(t *testing.T) {
	tests := []struct {
		name     string
		subtasks []Subtask
		want     []AgentName
	}{
		{"none", nil, []AgentName{}},
		{"single", subtasks(AgentPaper), []AgentName{AgentPaper}},
		{"all three", subtasks(AgentPaper, AgentDataset, AgentActionPlan), []AgentName{AgentPaper, AgentDataset, AgentActionPlan}},
		{"duplicates collapse", subtasks(AgentDataset, AgentPaper, AgentDataset, AgentPaper), []AgentName{AgentDataset, AgentPaper}},
		{"order follows first appearance", subtasks(AgentActionPlan, AgentPaper), []AgentName{AgentActionPlan, AgentPaper}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := PlannerResult{Subtasks: tt.subtasks}
			got := p.AgentsInvoked()
			assert.Equal(t, tt.want, got)

			// Every invoked agent appears in a subtask and vice versa.
			for _, s := range tt.subtasks {
				assert.Contains(t, got, s.Agent)
				assert.True(t, p.Invokes(s.Agent))
			}
			assert.Len(t, got, distinct(tt.subtasks))
		})
	}
}

func distinct(ss []Subtask) int {
	seen := map[AgentName]bool{}
	for _, s := range ss {
		seen[s.Agent] = true
	}
	return len(seen)
}

func TestPlannerResultJSONDerivesAgentsInvoked(t *testing.T) {
	p := PlannerResult{Subtasks: subtasks(AgentPaper, AgentPaper, AgentDataset)}

	data, err := json.Marshal(p)
	require.NoError(t, err)

	var wire struct {
		AgentsInvoked []AgentName `json:"agents_invoked"`
	}
	require.NoError(t, json.Unmarshal(data, &wire))
	assert.Equal(t, []AgentName{AgentPaper, AgentDataset}, wire.AgentsInvoked)
}

func TestPlannerResultUnmarshalIgnoresAgentsInvoked(t *testing.T) {
	input := `{
		"analysis": {"research_domain": "Remote Sensing"},
		"subtasks": [{"agent": "paper_agent", "goal": "g", "rationale": "r", "inputs": []}],
		"agents_invoked": ["dataset_agent", "action_plan_agent"]
	}`

	var p PlannerResult
	require.NoError(t, json.Unmarshal([]byte(input), &p))

	assert.Equal(t, []AgentName{AgentPaper}, p.AgentsInvoked())
	assert.False(t, p.Invokes(AgentDataset))
	assert.Equal(t, "Remote Sensing", p.Analysis.ResearchDomain)
}

func TestPlannerResultUnmarshalSubtasksPresence(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantNil   bool
		wantInput bool
	}{
		{"absent", `{"analysis": {}}`, true, false},
		{"null", `{"analysis": {}, "subtasks": null}`, true, false},
		{"empty", `{"analysis": {}, "subtasks": []}`, false, false},
		{"inputs present", `{"subtasks": [{"agent": "paper_agent", "inputs": []}]}`, false, true},
		{"inputs absent", `{"subtasks": [{"agent": "paper_agent"}]}`, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := PlannerResult{Subtasks: []Subtask{{Agent: AgentDataset}}}
			require.NoError(t, json.Unmarshal([]byte(tt.input), &p))
			assert.Equal(t, tt.wantNil, p.Subtasks == nil)
			if len(p.Subtasks) > 0 {
				assert.Equal(t, tt.wantInput, p.Subtasks[0].Inputs != nil)
			}
		})
	}
}

func TestPlannerResultMarshalEmptySubtasks(t *testing.T) {
	data, err := json.Marshal(PlannerResult{})
	require.NoError(t, err)
	assert.Contains(t, string(data), `"subtasks":[]`)
	assert.Contains(t, string(data), `"agents_invoked":[]`)
}

func TestAgentNameValid(t *testing.T) {
	assert.True(t, AgentPaper.Valid())
	assert.True(t, AgentDataset.Valid())
	assert.True(t, AgentActionPlan.Valid())
	assert.False(t, AgentPlanner.Valid())
	assert.False(t, AgentName("gap_agent").Valid())
	assert.False(t, AgentName("").Valid())
}
