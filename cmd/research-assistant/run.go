// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/pdiddy/research-assistant/internal/artifact"
	"github.com/pdiddy/research-assistant/internal/batch"
	"github.com/pdiddy/research-assistant/internal/catalog"
	"github.com/pdiddy/research-assistant/internal/history"
	"github.com/pdiddy/research-assistant/internal/llm"
	"github.com/pdiddy/research-assistant/internal/metrics"
	"github.com/pdiddy/research-assistant/internal/orchestrator"
	"github.com/pdiddy/research-assistant/internal/search"
	"github.com/pdiddy/research-assistant/pkg/types"
)

var runCmd = &cobra.Command{
	Use:   "run [query...]",
	Short: "Run the research agents for one or more queries",
	Long: `Run plans the research query, then runs the agents the planner asks for:
the paper agent, the dataset agent, and the action plan agent. The action plan
agent runs only when both papers and datasets were retrieved.

Each agent overwrites its artifact in the output directory and the merged
result is written to research_bundle.json. A planner failure aborts the run;
other agent failures are recorded in the bundle's agent_status.

Use --queries-file to run a YAML list of queries in sequence.`,
	RunE: runRun,
}

func runRun(cmd *cobra.Command, args []string) error {
	queriesFile, _ := cmd.Flags().GetString("queries-file")
	reportFile, _ := cmd.Flags().GetString("report-file")
	metricsFile := viper.GetString("metrics_file")

	var queries []string
	switch {
	case queriesFile != "" && len(args) > 0:
		return fmt.Errorf("provide a query or --queries-file, not both")
	case queriesFile != "":
		f, err := batch.Load(queriesFile)
		if err != nil {
			return err
		}
		queries = f.Queries
	case len(args) > 0:
		queries = []string{strings.Join(args, " ")}
	default:
		return fmt.Errorf("research query required: provide it as arguments or use --queries-file")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	logger, err := newLogger(viper.GetBool("verbose"))
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}
	defer logger.Sync()

	cfg := pipelineConfig()
	orch, closeFn, err := buildOrchestrator(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeFn()

	var runErr error
	if len(queries) == 1 {
		bundle, err := orch.Run(ctx, queries[0])
		if bundle != nil {
			bundlePath := ""
			if err == nil {
				bundlePath = orch.Artifacts.Path(artifact.BundleFile)
			}
			printRunSummary(os.Stdout, bundle, bundlePath)
		}
		runErr = err
	} else {
		report, err := batch.Run(ctx, orch, queries, os.Stdout)
		if reportFile != "" {
			if werr := batch.WriteReport(reportFile, report, time.Now()); werr != nil {
				fmt.Fprintf(os.Stderr, "warning: %v\n", werr)
			}
		}
		switch {
		case err != nil:
			runErr = err
		case report.Summary.HasFailures():
			runErr = fmt.Errorf("%d of %d queries failed", report.Summary.Failed, report.Summary.Total())
		}
	}

	if metricsFile != "" {
		if err := metrics.WriteTextfile(metricsFile); err != nil {
			fmt.Fprintf(os.Stderr, "warning: %v\n", err)
		}
	}
	return runErr
}

// buildOrchestrator constructs the completer, paper index, dataset
// catalog, and run ledger for cfg. The returned function releases the
// ledger.
func buildOrchestrator(ctx context.Context, cfg types.PipelineConfig, logger *zap.Logger) (*orchestrator.Orchestrator, func(), error) {
	completer, err := llm.New(ctx, cfg.LLM)
	if err != nil {
		return nil, nil, fmt.Errorf("configuring LLM: %w", err)
	}
	idx, err := search.New(cfg.PaperIndex)
	if err != nil {
		return nil, nil, err
	}
	cat := catalog.New(cfg.Catalog, loadedSecrets.KaggleEnv()...)
	if !cat.Available() {
		fmt.Fprintf(os.Stderr, "warning: %s not found on PATH; dataset lookups will fail\n", cfg.Catalog.Binary)
	}

	store := artifact.NewStore(cfg.Output.Dir)
	orch := orchestrator.New(completer, idx, cat, store, cfg, logger)

	closeFn := func() {}
	if cfg.History.DBPath != "" {
		h, err := history.Open(cfg.History.DBPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: run history disabled: %v\n", err)
		} else {
			orch.Recorder = h
			closeFn = func() { h.Close() }
		}
	}
	return orch, closeFn, nil
}

// printRunSummary reports each agent's outcome and where the bundle went.
// An empty bundlePath means the bundle was not written.
func printRunSummary(w io.Writer, b *types.ResearchBundle, bundlePath string) {
	fmt.Fprintf(w, "run %s\n", b.RunID)
	for _, name := range append([]types.AgentName{types.AgentPlanner}, types.DownstreamAgents...) {
		st, ok := b.AgentStatus[name]
		if !ok {
			continue
		}
		line := string(st.State)
		switch st.State {
		case types.StateFailed:
			line += fmt.Sprintf(" (%s): %s", st.ErrorKind, st.Error)
		case types.StateSkipped:
			line += ": " + st.Error
		}
		fmt.Fprintf(w, "  %-18s %s\n", name, line)
	}
	if bundlePath != "" {
		fmt.Fprintf(w, "\nResearch bundle created: %s\n", bundlePath)
	}
}

func init() {
	runCmd.Flags().String("queries-file", "", "YAML file listing queries to run in sequence")
	runCmd.Flags().String("report-file", "", "write a YAML report of a --queries-file batch")
	runCmd.Flags().String("output-dir", artifact.DefaultDir, "directory for agent artifacts and the research bundle")
	runCmd.Flags().Int("max-results", 5, "records fetched per paper and dataset lookup")
	runCmd.Flags().Bool("parallel", false, "run the paper and dataset agents concurrently")
	runCmd.Flags().String("provider", string(types.ProviderGroq), "LLM provider: groq, claude, or gemini")
	runCmd.Flags().String("model", "", "model identifier (default depends on provider)")
	runCmd.Flags().String("paper-index", search.ProviderArxiv, "paper index: arxiv, semantic_scholar, or openalex")
	runCmd.Flags().String("history-db", defaultHistoryDB, "SQLite run ledger (empty disables)")
	runCmd.Flags().String("metrics-file", "", "write Prometheus metrics to this file after the run")

	viper.BindPFlag("output.dir", runCmd.Flags().Lookup("output-dir"))
	viper.BindPFlag("paper_index.max_results", runCmd.Flags().Lookup("max-results"))
	viper.BindPFlag("parallel", runCmd.Flags().Lookup("parallel"))
	viper.BindPFlag("llm.provider", runCmd.Flags().Lookup("provider"))
	viper.BindPFlag("llm.model", runCmd.Flags().Lookup("model"))
	viper.BindPFlag("paper_index.provider", runCmd.Flags().Lookup("paper-index"))
	viper.BindPFlag("history.db_path", runCmd.Flags().Lookup("history-db"))
	viper.BindPFlag("metrics_file", runCmd.Flags().Lookup("metrics-file"))

	rootCmd.AddCommand(runCmd)
}
