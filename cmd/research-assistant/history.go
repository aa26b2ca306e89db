// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/research-assistant/internal/history"
	"github.com/pdiddy/research-assistant/pkg/types"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List earlier runs from the run ledger",
	Long: `History lists runs recorded in the SQLite run ledger, newest first, with
each agent's outcome. Artifacts are overwritten on every run; the ledger keeps
the outcome of each one.`,
	RunE: runHistory,
}

func runHistory(cmd *cobra.Command, args []string) error {
	dbPath, _ := cmd.Flags().GetString("history-db")
	if dbPath == "" {
		dbPath = viper.GetString("history.db_path")
	}
	if dbPath == "" {
		return fmt.Errorf("no run ledger configured: set --history-db or history.db_path")
	}
	if _, err := os.Stat(dbPath); err != nil {
		return fmt.Errorf("run ledger %s: %w", dbPath, err)
	}

	store, err := history.Open(dbPath)
	if err != nil {
		return err
	}
	defer store.Close()

	limit, _ := cmd.Flags().GetInt("limit")
	contains, _ := cmd.Flags().GetString("search")
	runs, err := store.List(context.Background(), history.ListOptions{Limit: limit, QueryContains: contains})
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(runs)
	}
	formatHistory(os.Stdout, runs)
	return nil
}

func formatHistory(w io.Writer, runs []history.Run) {
	if len(runs) == 0 {
		fmt.Fprintln(w, "No runs recorded.")
		return
	}

	fmt.Fprintf(w, "%-20s  %-8s  %-9s  %-8s  %-22s  %s\n",
		"Started", "Run", "Outcome", "Elapsed", "Agents", "Query")
	fmt.Fprintln(w, strings.Repeat("-", 110))

	for _, r := range runs {
		runID := r.RunID
		if len(runID) > 8 {
			runID = runID[:8]
		}
		query := r.Query
		if len(query) > 40 {
			query = query[:37] + "..."
		}
		fmt.Fprintf(w, "%-20s  %-8s  %-9s  %-8s  %-22s  %s\n",
			r.StartedAt.Local().Format("2006-01-02 15:04:05"),
			runID, r.Outcome, r.Duration.Round(100_000_000), agentsColumn(r.Agents), query)
	}
}

// agentsColumn abbreviates each downstream agent's state to one letter:
// ok, failed, skipped, or not requested.
func agentsColumn(agents map[types.AgentName]types.AgentStatus) string {
	var parts []string
	for _, name := range types.DownstreamAgents {
		st, ok := agents[name]
		if !ok {
			continue
		}
		mark := "-"
		switch st.State {
		case types.StateSucceeded:
			mark = "ok"
		case types.StateFailed:
			mark = "x"
		case types.StateSkipped:
			mark = "skip"
		}
		parts = append(parts, strings.TrimSuffix(string(name), "_agent")+":"+mark)
	}
	if len(parts) == 0 {
		return "-"
	}
	return strings.Join(parts, " ")
}

func init() {
	historyCmd.Flags().String("history-db", "", "SQLite run ledger (default: history.db_path)")
	historyCmd.Flags().Int("limit", 20, "maximum runs to list")
	historyCmd.Flags().String("search", "", "only runs whose query contains this text")
	historyCmd.Flags().Bool("json", false, "output runs as JSON")

	rootCmd.AddCommand(historyCmd)
}
