// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewActionPlanResult(t *testing.T) {
	plan, err := NewActionPlanResult([]byte(`  {"steps": [1, 2]} `))
	require.NoError(t, err)
	assert.JSONEq(t, `{"steps": [1, 2]}`, string(plan.Raw))

	arr, err := NewActionPlanResult([]byte(`["a", "b"]`))
	require.NoError(t, err)
	assert.JSONEq(t, `["a", "b"]`, string(arr.Raw))

	_, err = NewActionPlanResult([]byte(`{"steps": [`))
	assert.Error(t, err)
}

func TestBundleRoundTripKeepsNullSections(t *testing.T) {
	plan, err := NewActionPlanResult([]byte(`{"research_plan": {"title": "x"}}`))
	require.NoError(t, err)

	b := ResearchBundle{
		Query:      "q",
		Papers:     &PaperAgentResult{},
		Datasets:   &DatasetAgentResult{},
		ActionPlan: plan,
	}
	data, err := json.Marshal(b)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"planner":null`)

	var got ResearchBundle
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Nil(t, got.Planner)
	require.NotNil(t, got.ActionPlan)

	var decoded map[string]any
	require.NoError(t, got.ActionPlan.Decode(&decoded))
	assert.Contains(t, decoded, "research_plan")
}

func TestBundleConsistent(t *testing.T) {
	plan := &ActionPlanResult{Raw: json.RawMessage(`{}`)}

	tests := []struct {
		name   string
		bundle ResearchBundle
		want   bool
	}{
		{"empty", ResearchBundle{}, true},
		{"all sections", ResearchBundle{Papers: &PaperAgentResult{}, Datasets: &DatasetAgentResult{}, ActionPlan: plan}, true},
		{"plan without datasets", ResearchBundle{Papers: &PaperAgentResult{}, ActionPlan: plan}, false},
		{"plan without papers", ResearchBundle{Datasets: &DatasetAgentResult{}, ActionPlan: plan}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.bundle.Consistent())
		})
	}
}
