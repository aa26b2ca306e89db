// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/pdiddy/research-assistant/internal/history"
	"github.com/pdiddy/research-assistant/pkg/types"
)

func TestPrintRunSummary(t *testing.T) {
	b := &types.ResearchBundle{
		RunID: "run-1",
		AgentStatus: map[types.AgentName]types.AgentStatus{
			types.AgentPlanner: {State: types.StateSucceeded},
			types.AgentPaper:   {State: types.StateFailed, ErrorKind: "retrieval", Error: "arxiv: HTTP 503"},
			types.AgentDataset: {State: types.StateNotRequested},
			types.AgentActionPlan: {
				State:         types.StateSkipped,
				Error:         "action_plan_agent: skipped, missing output from paper_agent, dataset_agent",
				MissingInputs: []types.AgentName{types.AgentPaper, types.AgentDataset},
			},
		},
	}

	var buf bytes.Buffer
	printRunSummary(&buf, b, "outputs/research_bundle.json")
	out := buf.String()

	assert.Contains(t, out, "run run-1\n")
	assert.Contains(t, out, "  planner_agent      succeeded\n")
	assert.Contains(t, out, "  paper_agent        failed (retrieval): arxiv: HTTP 503\n")
	assert.Contains(t, out, "  dataset_agent      not_requested\n")
	assert.Contains(t, out, "  action_plan_agent  skipped: action_plan_agent: skipped, missing output from paper_agent, dataset_agent\n")
	assert.Contains(t, out, "Research bundle created: outputs/research_bundle.json")
}

func TestPrintRunSummaryUnwrittenBundle(t *testing.T) {
	b := &types.ResearchBundle{
		RunID:       "run-2",
		AgentStatus: map[types.AgentName]types.AgentStatus{types.AgentPlanner: {State: types.StateSucceeded}},
	}

	var buf bytes.Buffer
	printRunSummary(&buf, b, "")
	assert.Contains(t, buf.String(), "  planner_agent      succeeded\n")
	assert.NotContains(t, buf.String(), "Research bundle created")
}

func TestAgentsColumn(t *testing.T) {
	got := agentsColumn(map[types.AgentName]types.AgentStatus{
		types.AgentPlanner:    {State: types.StateSucceeded},
		types.AgentPaper:      {State: types.StateSucceeded},
		types.AgentDataset:    {State: types.StateFailed},
		types.AgentActionPlan: {State: types.StateSkipped},
	})
	assert.Equal(t, "paper:ok dataset:x action_plan:skip", got)
	assert.Equal(t, "-", agentsColumn(nil))
}

func TestFormatHistory(t *testing.T) {
	var buf bytes.Buffer
	formatHistory(&buf, nil)
	assert.Equal(t, "No runs recorded.\n", buf.String())

	buf.Reset()
	formatHistory(&buf, []history.Run{{
		RunID:     "0f8c2a4e-1111-2222-3333-444455556666",
		Query:     "Deep learning methods for landslide detection using satellite imagery",
		StartedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		Duration:  2340 * time.Millisecond,
		Outcome:   history.OutcomeCompleted,
		Agents: map[types.AgentName]types.AgentStatus{
			types.AgentPaper: {State: types.StateSucceeded},
		},
	}})
	out := buf.String()
	assert.Contains(t, out, "0f8c2a4e ")
	assert.NotContains(t, out, "0f8c2a4e-1111")
	assert.Contains(t, out, "2.3s")
	assert.Contains(t, out, "paper:ok")
	assert.Contains(t, out, "Deep learning methods for landslide d...")
}
