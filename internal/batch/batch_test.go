// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package batch

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/research-assistant/pkg/types"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "queries.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeFile(t, `queries:
  - Deep learning methods for landslide detection
  - "   "
  - Music genre classification
`)
	f, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"Deep learning methods for landslide detection", "Music genre classification"}, f.Queries)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{"no queries", "queries: []\n", "lists no queries"},
		{"blank only", "queries:\n  - ''\n", "lists no queries"},
		{"bad yaml", "queries: [unterminated\n", "parsing query file"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeFile(t, tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "reading query file")
}

type fakeRunner struct {
	fail   map[string]error
	cancel context.CancelFunc
	seen   []string
}

func (f *fakeRunner) Run(_ context.Context, q string) (*types.ResearchBundle, error) {
	f.seen = append(f.seen, q)
	if f.cancel != nil {
		f.cancel()
	}
	if err, ok := f.fail[q]; ok {
		return nil, err
	}
	return &types.ResearchBundle{
		RunID: "id-" + q,
		Query: q,
		AgentStatus: map[types.AgentName]types.AgentStatus{
			types.AgentPlanner: {State: types.StateSucceeded},
			types.AgentPaper:   {State: types.StateFailed, ErrorKind: "retrieval"},
		},
	}, nil
}

func TestRun(t *testing.T) {
	r := &fakeRunner{fail: map[string]error{"b": errors.New("planning: bad output")}}
	var buf bytes.Buffer

	report, err := Run(context.Background(), r, []string{"a", "b", "c"}, &buf)
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "b", "c"}, r.seen, "a failure does not stop the batch")
	assert.Equal(t, Summary{Completed: 2, Failed: 1}, report.Summary)
	assert.Equal(t, 3, report.Summary.Total())
	assert.True(t, report.Summary.HasFailures())

	require.Len(t, report.Results, 3)
	assert.Equal(t, "id-a", report.Results[0].RunID)
	assert.Equal(t, types.StateFailed, report.Results[0].Agents[types.AgentPaper])
	assert.Equal(t, "planning: bad output", report.Results[1].Error)

	out := buf.String()
	assert.Contains(t, out, "completed a (id-a)")
	assert.Contains(t, out, "failed    b: planning: bad output")
	assert.Contains(t, out, "completed: 2, failed: 1")
}

func TestRunStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	r := &fakeRunner{cancel: cancel}

	report, err := Run(ctx, r, []string{"a", "b"}, &bytes.Buffer{})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, []string{"a"}, r.seen)
	assert.Len(t, report.Results, 1)
}

func TestWriteReport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.yaml")
	report := Report{
		Results: []Result{{Query: "a", RunID: "id-a", Agents: map[types.AgentName]types.AgentState{types.AgentPaper: types.StateSucceeded}}},
		Summary: Summary{Completed: 1},
	}
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	require.NoError(t, WriteReport(path, report, now))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var got Report
	require.NoError(t, yaml.Unmarshal(data, &got))
	assert.True(t, now.Equal(got.Time))
	assert.Equal(t, report.Results, got.Results)
	assert.Contains(t, string(data), "paper_agent: succeeded")
}
