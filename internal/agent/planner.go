// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package agent implements the prompt-driven research agents: the
// analysis planner, the paper and dataset retrieval agents, and the
// action plan synthesizer. Each agent makes at most one model call per
// invocation, validates the response against its output schema, and
// overwrites its artifact file on success.
package agent

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/pdiddy/research-assistant/internal/artifact"
	"github.com/pdiddy/research-assistant/internal/llm"
	"github.com/pdiddy/research-assistant/pkg/types"
)

const plannerTemperature = 0.1

// Planner analyzes a research query and decides which agents to run.
type Planner struct {
	LLM       llm.Completer
	Artifacts *artifact.Store
	Logger    *zap.Logger
}

// Plan returns the analysis and subtasks for query. Any failure is fatal
// to the run; nothing is retried.
func (p *Planner) Plan(ctx context.Context, query string) (*types.PlannerResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, ErrEmptyQuery
	}
	log := nopIfNil(p.Logger).With(zap.String("agent", string(types.AgentPlanner)))
	start := time.Now()

	result, err := structured(ctx, p.LLM, call{
		agent:       types.AgentPlanner,
		system:      plannerSystemPrompt,
		user:        plannerUserTmpl,
		data:        struct{ Query string }{query},
		temperature: plannerTemperature,
	}, validatePlan)
	if err != nil {
		return nil, err
	}

	if err := persist(p.Artifacts, types.AgentPlanner, result); err != nil {
		return nil, err
	}

	log.Info("plan ready",
		zap.Int("subtasks", len(result.Subtasks)),
		zap.Any("agents_invoked", result.AgentsInvoked()),
		zap.Duration("elapsed", time.Since(start)))
	return result, nil
}

// validatePlan checks that every analysis field is populated and that
// each subtask names a known agent with a goal, a rationale, and an inputs
// list. The subtasks key must be present; an empty list is valid and runs
// no downstream agents.
func validatePlan(p *types.PlannerResult) error {
	a := p.Analysis
	var problems []string
	for name, v := range map[string]string{
		"research_domain": a.ResearchDomain,
		"sub_domain":      a.SubDomain,
		"problem_type":    a.ProblemType,
	} {
		if strings.TrimSpace(v) == "" {
			problems = append(problems, "analysis."+name+" is empty")
		}
	}
	for name, v := range map[string][]string{
		"data_modality":    a.DataModality,
		"key_techniques":   a.KeyTechniques,
		"expected_outputs": a.ExpectedOutputs,
	} {
		if len(v) == 0 {
			problems = append(problems, "analysis."+name+" is empty")
		}
	}

	if p.Subtasks == nil {
		problems = append(problems, "subtasks is missing")
	}
	for i, s := range p.Subtasks {
		if !s.Agent.Valid() {
			problems = append(problems, fmt.Sprintf("subtasks[%d].agent %q is not a known agent", i, s.Agent))
		}
		if strings.TrimSpace(s.Goal) == "" {
			problems = append(problems, fmt.Sprintf("subtasks[%d].goal is empty", i))
		}
		if strings.TrimSpace(s.Rationale) == "" {
			problems = append(problems, fmt.Sprintf("subtasks[%d].rationale is empty", i))
		}
		if s.Inputs == nil {
			problems = append(problems, fmt.Sprintf("subtasks[%d].inputs is missing", i))
		}
	}

	if len(problems) == 0 {
		return nil
	}
	slices.Sort(problems)
	return errors.New(strings.Join(problems, "; "))
}
