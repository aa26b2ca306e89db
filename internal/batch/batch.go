// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package batch runs a list of research queries read from a YAML file and
// optionally saves a report of the outcomes.
package batch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/research-assistant/pkg/types"
)

// File is the on-disk list of queries.
//
//	queries:
//	  - Deep learning methods for landslide detection using satellite imagery
//	  - Classifying AI-generated versus human-composed music
type File struct {
	Queries []string `yaml:"queries"`
}

// Report is the on-disk record of a batch run.
type Report struct {
	Results []Result  `yaml:"results"`
	Summary Summary   `yaml:"summary"`
	Time    time.Time `yaml:"timestamp"`
}

// Result is the outcome of one query in a batch.
type Result struct {
	Query  string                               `yaml:"query"`
	RunID  string                               `yaml:"run_id,omitempty"`
	Error  string                               `yaml:"error,omitempty"`
	Agents map[types.AgentName]types.AgentState `yaml:"agents,omitempty"`
}

// Summary holds counts from a batch run.
type Summary struct {
	Completed int `yaml:"completed"`
	Failed    int `yaml:"failed"`
}

// Total returns the number of queries processed.
func (s Summary) Total() int {
	return s.Completed + s.Failed
}

// HasFailures reports whether any query failed.
func (s Summary) HasFailures() bool {
	return s.Failed > 0
}

// Runner executes one query.
type Runner interface {
	Run(ctx context.Context, query string) (*types.ResearchBundle, error)
}

// Load reads a query file. Blank entries are dropped; a file with no
// queries is an error.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading query file: %w", err)
	}
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing query file: %w", err)
	}

	queries := f.Queries[:0]
	for _, q := range f.Queries {
		if q = strings.TrimSpace(q); q != "" {
			queries = append(queries, q)
		}
	}
	f.Queries = queries
	if len(f.Queries) == 0 {
		return nil, fmt.Errorf("query file %s lists no queries", path)
	}
	return &f, nil
}

// Run executes every query in order, printing one line per query to w.
// A failed query does not stop the batch. Context cancellation does.
func Run(ctx context.Context, r Runner, queries []string, w io.Writer) (Report, error) {
	var report Report
	for _, q := range queries {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		b, err := r.Run(ctx, q)
		res := Result{Query: q}
		if b != nil {
			res.RunID = b.RunID
			res.Agents = make(map[types.AgentName]types.AgentState, len(b.AgentStatus))
			for name, st := range b.AgentStatus {
				res.Agents[name] = st.State
			}
		}
		if err != nil {
			res.Error = err.Error()
			report.Summary.Failed++
			fmt.Fprintf(w, "failed    %s: %v\n", q, err)
		} else {
			report.Summary.Completed++
			fmt.Fprintf(w, "completed %s (%s)\n", q, res.RunID)
		}
		report.Results = append(report.Results, res)

		if errors.Is(err, context.Canceled) {
			return report, err
		}
	}

	fmt.Fprintf(w, "\ncompleted: %d, failed: %d\n", report.Summary.Completed, report.Summary.Failed)
	return report, nil
}

// WriteReport saves a batch report as YAML, stamping it with now.
func WriteReport(path string, report Report, now time.Time) error {
	report.Time = now.UTC()
	data, err := yaml.Marshal(&report)
	if err != nil {
		return fmt.Errorf("marshaling report: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	return nil
}
