// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package orchestrator runs the research agents for one query and merges
// their outputs into a research bundle. The planner decides which agents
// run; the paper and dataset agents run independently; the action plan
// agent runs only when both of their outputs exist. Every agent failure
// except the planner's is contained in the bundle's agent status.
package orchestrator

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/research-assistant/internal/agent"
	"github.com/pdiddy/research-assistant/internal/artifact"
	"github.com/pdiddy/research-assistant/internal/catalog"
	"github.com/pdiddy/research-assistant/internal/history"
	"github.com/pdiddy/research-assistant/internal/llm"
	"github.com/pdiddy/research-assistant/internal/metrics"
	"github.com/pdiddy/research-assistant/internal/search"
	"github.com/pdiddy/research-assistant/pkg/types"
)

// Planner produces the analysis and subtasks for a query.
type Planner interface {
	Plan(ctx context.Context, query string) (*types.PlannerResult, error)
}

// PaperRetriever fetches and summarizes papers.
type PaperRetriever interface {
	Retrieve(ctx context.Context, query string, maxResults int) (*types.PaperAgentResult, error)
}

// DatasetRetriever fetches and describes datasets.
type DatasetRetriever interface {
	Retrieve(ctx context.Context, query string, maxResults int) (*types.DatasetAgentResult, error)
}

// Synthesizer builds the action plan from papers and datasets.
type Synthesizer interface {
	Synthesize(ctx context.Context, query string, papers *types.PaperAgentResult, datasets *types.DatasetAgentResult) (*types.ActionPlanResult, error)
}

// Recorder stores a ledger entry for each run.
type Recorder interface {
	Record(ctx context.Context, run history.Run) error
}

// Orchestrator sequences the agents for one query at a time. It holds no
// per-run state, so a single value may serve consecutive runs.
type Orchestrator struct {
	Planner    Planner
	Papers     PaperRetriever
	Datasets   DatasetRetriever
	ActionPlan Synthesizer

	// Artifacts receives the research bundle. Nil skips persistence.
	Artifacts *artifact.Store

	// Recorder, when set, receives a ledger entry after every run.
	Recorder Recorder

	Logger *zap.Logger

	// MaxResults bounds each retrieval lookup (default 5).
	MaxResults int

	// Parallel runs the paper and dataset agents concurrently.
	Parallel bool

	// NewRunID and Now are replaced in tests.
	NewRunID func() string
	Now      func() time.Time
}

// New wires the four agents around one completer, one paper index, and
// one dataset catalog, all writing artifacts to the same store.
func New(c llm.Completer, idx search.Index, cat catalog.Catalog, store *artifact.Store, cfg types.PipelineConfig, logger *zap.Logger) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	maxResults := cfg.PaperIndex.MaxResults
	return &Orchestrator{
		Planner:    &agent.Planner{LLM: c, Artifacts: store, Logger: logger},
		Papers:     &agent.PaperAgent{Index: idx, LLM: c, Artifacts: store, Logger: logger},
		Datasets:   &datasetAgentWithLimit{agent: &agent.DatasetAgent{Catalog: cat, LLM: c, Artifacts: store, Logger: logger}, maxResults: cfg.Catalog.MaxResults},
		ActionPlan: &agent.ActionPlanAgent{LLM: c, Artifacts: store, Logger: logger},
		Artifacts:  store,
		Logger:     logger,
		MaxResults: maxResults,
		Parallel:   cfg.Parallel,
	}
}

// datasetAgentWithLimit lets the catalog carry its own result cap when
// it differs from the paper index's.
type datasetAgentWithLimit struct {
	agent      *agent.DatasetAgent
	maxResults int
}

func (d *datasetAgentWithLimit) Retrieve(ctx context.Context, query string, maxResults int) (*types.DatasetAgentResult, error) {
	if d.maxResults > 0 {
		maxResults = d.maxResults
	}
	return d.agent.Retrieve(ctx, query, maxResults)
}

// outcome is one agent's contribution to a run.
type outcome struct {
	status  types.AgentStatus
	elapsed time.Duration
}

// Run executes the pipeline for query and returns the persisted bundle.
//
// A planner failure aborts the run: no bundle is written and the error is
// returned. Any other agent failure leaves that agent's section null with
// a failed status. If the bundle cannot be written the assembled bundle is
// returned together with the write error.
func (o *Orchestrator) Run(ctx context.Context, query string) (*types.ResearchBundle, error) {
	if strings.TrimSpace(query) == "" {
		return nil, agent.ErrEmptyQuery
	}

	runID := o.runID()
	start := o.now()
	log := o.logger().With(zap.String("run_id", runID))
	metrics.RunsStarted.Inc()
	log.Info("run started", zap.String("query", query))

	// Init -> Planned
	plan, err := o.Planner.Plan(ctx, query)
	elapsed := o.now().Sub(start)
	if err != nil {
		metrics.RecordAgent(string(types.AgentPlanner), string(types.StateFailed), elapsed)
		metrics.RecordRun(history.OutcomeFailed, elapsed)
		log.Error("planner failed, aborting run", zap.Error(err), zap.String("error_kind", agent.Kind(err)))
		o.record(ctx, log, history.Run{
			RunID:     runID,
			Query:     query,
			StartedAt: start,
			Duration:  elapsed,
			Outcome:   history.OutcomeFailed,
			Error:     err.Error(),
			Agents: map[types.AgentName]types.AgentStatus{
				types.AgentPlanner: failedStatus(err),
			},
		})
		return nil, fmt.Errorf("planning: %w", err)
	}
	metrics.RecordAgent(string(types.AgentPlanner), string(types.StateSucceeded), elapsed)
	log.Info("planned", zap.Any("agents_invoked", plan.AgentsInvoked()))

	bundle := &types.ResearchBundle{
		RunID:   runID,
		Query:   query,
		Planner: plan,
		AgentStatus: map[types.AgentName]types.AgentStatus{
			types.AgentPlanner: {State: types.StateSucceeded},
		},
	}

	// Planned -> PapersFetched? -> DatasetsFetched?
	paperOut, datasetOut := o.retrieve(ctx, log, query, plan, bundle)
	bundle.AgentStatus[types.AgentPaper] = paperOut.status
	bundle.AgentStatus[types.AgentDataset] = datasetOut.status

	// -> ActionPlanned?
	planOut := o.synthesize(ctx, log, query, plan, bundle)
	bundle.AgentStatus[types.AgentActionPlan] = planOut.status

	for agentName, out := range map[types.AgentName]outcome{
		types.AgentPaper:      paperOut,
		types.AgentDataset:    datasetOut,
		types.AgentActionPlan: planOut,
	} {
		metrics.RecordAgent(string(agentName), string(out.status.State), out.elapsed)
	}

	// -> Persisted
	var persistErr error
	bundlePath := ""
	if o.Artifacts != nil {
		bundlePath = o.Artifacts.Path(artifact.BundleFile)
		if err := o.Artifacts.WriteBundle(bundle); err != nil {
			persistErr = fmt.Errorf("writing research bundle: %w", err)
			log.Error("bundle not persisted", zap.Error(err))
			bundlePath = ""
		}
	}

	total := o.now().Sub(start)
	runOutcome := history.OutcomeCompleted
	errText := ""
	if persistErr != nil {
		runOutcome = history.OutcomeFailed
		errText = persistErr.Error()
	}
	metrics.RecordRun(runOutcome, total)
	o.record(ctx, log, history.Run{
		RunID:      runID,
		Query:      query,
		StartedAt:  start,
		Duration:   total,
		Outcome:    runOutcome,
		Error:      errText,
		BundlePath: bundlePath,
		Agents:     bundle.AgentStatus,
	})

	log.Info("run finished",
		zap.Bool("papers", bundle.Papers != nil),
		zap.Bool("datasets", bundle.Datasets != nil),
		zap.Bool("action_plan", bundle.ActionPlan != nil),
		zap.Duration("elapsed", total))
	return bundle, persistErr
}

// retrieve runs the requested retrieval agents, concurrently when
// Parallel is set, and stores their results in bundle.
func (o *Orchestrator) retrieve(ctx context.Context, log *zap.Logger, query string, plan *types.PlannerResult, bundle *types.ResearchBundle) (outcome, outcome) {
	var (
		papers            *types.PaperAgentResult
		datasets          *types.DatasetAgentResult
		paperOut, dataOut outcome
	)

	runPapers := func() {
		if !plan.Invokes(types.AgentPaper) {
			paperOut = outcome{status: types.AgentStatus{State: types.StateNotRequested}}
			return
		}
		t := o.now()
		res, err := o.Papers.Retrieve(ctx, query, o.maxResults())
		paperOut = o.finish(log, types.AgentPaper, t, err)
		if err == nil {
			papers = res
		}
	}
	runDatasets := func() {
		if !plan.Invokes(types.AgentDataset) {
			dataOut = outcome{status: types.AgentStatus{State: types.StateNotRequested}}
			return
		}
		t := o.now()
		res, err := o.Datasets.Retrieve(ctx, query, o.maxResults())
		dataOut = o.finish(log, types.AgentDataset, t, err)
		if err == nil {
			datasets = res
		}
	}

	if o.Parallel {
		// Agent failures are contained; neither goroutine returns an error.
		var g errgroup.Group
		g.Go(func() error { runPapers(); return nil })
		g.Go(func() error { runDatasets(); return nil })
		_ = g.Wait()
	} else {
		runPapers()
		runDatasets()
	}

	bundle.Papers = papers
	bundle.Datasets = datasets
	return paperOut, dataOut
}

// synthesize runs the action plan agent when it was requested and both
// retrieval outputs exist. A missing input is recorded as a skip.
func (o *Orchestrator) synthesize(ctx context.Context, log *zap.Logger, query string, plan *types.PlannerResult, bundle *types.ResearchBundle) outcome {
	if !plan.Invokes(types.AgentActionPlan) {
		return outcome{status: types.AgentStatus{State: types.StateNotRequested}}
	}

	var missing []types.AgentName
	if bundle.Papers == nil {
		missing = append(missing, types.AgentPaper)
	}
	if bundle.Datasets == nil {
		missing = append(missing, types.AgentDataset)
	}
	if len(missing) > 0 {
		skip := &agent.DependencyUnmetError{Agent: types.AgentActionPlan, Missing: missing}
		log.Info("agent skipped", zap.String("agent", string(types.AgentActionPlan)), zap.String("reason", skip.Error()))
		return outcome{status: types.AgentStatus{
			State:         types.StateSkipped,
			Error:         skip.Error(),
			MissingInputs: missing,
		}}
	}

	t := o.now()
	res, err := o.ActionPlan.Synthesize(ctx, query, bundle.Papers, bundle.Datasets)
	out := o.finish(log, types.AgentActionPlan, t, err)
	if err == nil {
		bundle.ActionPlan = res
	}
	return out
}

// finish turns an agent's error into its status and logs the outcome.
func (o *Orchestrator) finish(log *zap.Logger, name types.AgentName, started time.Time, err error) outcome {
	elapsed := o.now().Sub(started)
	if err != nil {
		log.Warn("agent failed",
			zap.String("agent", string(name)),
			zap.String("error_kind", agent.Kind(err)),
			zap.Error(err),
			zap.Duration("elapsed", elapsed))
		return outcome{status: failedStatus(err), elapsed: elapsed}
	}
	log.Info("agent succeeded", zap.String("agent", string(name)), zap.Duration("elapsed", elapsed))
	return outcome{status: types.AgentStatus{State: types.StateSucceeded}, elapsed: elapsed}
}

func (o *Orchestrator) record(ctx context.Context, log *zap.Logger, run history.Run) {
	if o.Recorder == nil {
		return
	}
	// The ledger entry is written even when the run's context was cancelled.
	if err := o.Recorder.Record(context.WithoutCancel(ctx), run); err != nil {
		log.Warn("run not recorded in history", zap.Error(err))
	}
}

func failedStatus(err error) types.AgentStatus {
	return types.AgentStatus{
		State:     types.StateFailed,
		ErrorKind: agent.Kind(err),
		Error:     err.Error(),
	}
}

func (o *Orchestrator) runID() string {
	if o.NewRunID != nil {
		return o.NewRunID()
	}
	return uuid.NewString()
}

func (o *Orchestrator) now() time.Time {
	if o.Now != nil {
		return o.Now()
	}
	return time.Now()
}

func (o *Orchestrator) logger() *zap.Logger {
	if o.Logger == nil {
		return zap.NewNop()
	}
	return o.Logger
}

func (o *Orchestrator) maxResults() int {
	if o.MaxResults <= 0 {
		return agent.DefaultMaxResults
	}
	return o.MaxResults
}
