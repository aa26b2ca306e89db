// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package agent

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/pdiddy/research-assistant/internal/artifact"
	"github.com/pdiddy/research-assistant/internal/llm"
	"github.com/pdiddy/research-assistant/pkg/types"
)

const actionPlanTemperature = 0.2

// ActionPlanAgent turns retrieved papers and datasets into a neutral,
// step-by-step research plan.
type ActionPlanAgent struct {
	LLM       llm.Completer
	Artifacts *artifact.Store
	Logger    *zap.Logger
}

// Synthesize returns the model's plan for query. Inputs are not checked;
// the caller decides whether they are sufficient. Any well-formed JSON
// response is accepted and carried verbatim.
func (a *ActionPlanAgent) Synthesize(ctx context.Context, query string, papers *types.PaperAgentResult, datasets *types.DatasetAgentResult) (*types.ActionPlanResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, ErrEmptyQuery
	}
	log := nopIfNil(a.Logger).With(zap.String("agent", string(types.AgentActionPlan)))
	start := time.Now()

	text, err := complete(ctx, a.LLM, call{
		agent:  types.AgentActionPlan,
		system: actionPlanSystemPrompt,
		user:   actionPlanUserTmpl,
		data: actionPlanPromptData{
			Query:    query,
			Papers:   indentJSON(papers),
			Datasets: indentJSON(datasets),
		},
		temperature: actionPlanTemperature,
	})
	if err != nil {
		return nil, err
	}

	raw, err := llm.ExtractJSON(text)
	if err != nil {
		return nil, &SchemaValidationError{Agent: types.AgentActionPlan, Reason: "response holds no JSON", Err: err}
	}
	plan, err := types.NewActionPlanResult(raw)
	if err != nil {
		return nil, &SchemaValidationError{Agent: types.AgentActionPlan, Reason: "response is not valid JSON", Err: err}
	}

	if err := persist(a.Artifacts, types.AgentActionPlan, plan); err != nil {
		return nil, err
	}

	log.Info("action plan ready", zap.Int("bytes", len(plan.Raw)), zap.Duration("elapsed", time.Since(start)))
	return plan, nil
}
