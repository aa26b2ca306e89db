// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package metrics

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordAgent(t *testing.T) {
	before := testutil.ToFloat64(AgentOutcomes.WithLabelValues("paper_agent", "failed"))
	RecordAgent("paper_agent", "failed", 2*time.Second)
	RecordAgent("paper_agent", "failed", 0)
	after := testutil.ToFloat64(AgentOutcomes.WithLabelValues("paper_agent", "failed"))
	assert.Equal(t, before+2, after)
}

func TestRecordRun(t *testing.T) {
	before := testutil.ToFloat64(RunsCompleted.WithLabelValues("ok"))
	RecordRun("ok", time.Second)
	assert.Equal(t, before+1, testutil.ToFloat64(RunsCompleted.WithLabelValues("ok")))
}

func TestWriteTextfile(t *testing.T) {
	RunsStarted.Inc()
	path := filepath.Join(t.TempDir(), "research.prom")
	require.NoError(t, WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "research_assistant_runs_started_total")
}

func TestWriteTextfileBadPath(t *testing.T) {
	err := WriteTextfile(filepath.Join(t.TempDir(), "missing", "dir", "x.prom"))
	assert.Error(t, err)
}
