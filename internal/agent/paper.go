// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/pdiddy/research-assistant/internal/artifact"
	"github.com/pdiddy/research-assistant/internal/llm"
	"github.com/pdiddy/research-assistant/internal/metrics"
	"github.com/pdiddy/research-assistant/internal/search"
	"github.com/pdiddy/research-assistant/pkg/types"
)

const (
	// DefaultMaxResults is the number of records fetched per lookup.
	DefaultMaxResults = 5

	retrievalTemperature = 0.1
)

// PaperAgent fetches papers from an index and has the model summarize them.
type PaperAgent struct {
	Index     search.Index
	LLM       llm.Completer
	Artifacts *artifact.Store
	Logger    *zap.Logger
}

// Retrieve looks up the top maxResults papers for query and returns the
// model's summary of them. A maxResults of zero or less uses
// DefaultMaxResults.
func (a *PaperAgent) Retrieve(ctx context.Context, query string, maxResults int) (*types.PaperAgentResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, ErrEmptyQuery
	}
	if maxResults <= 0 {
		maxResults = DefaultMaxResults
	}
	log := nopIfNil(a.Logger).With(zap.String("agent", string(types.AgentPaper)))
	start := time.Now()

	source := a.Index.Name()
	records, err := a.Index.Search(ctx, query, maxResults)
	if err != nil {
		return nil, &RetrievalError{Agent: types.AgentPaper, Source: source, Err: err}
	}
	if len(records) == 0 {
		return nil, &RetrievalError{Agent: types.AgentPaper, Source: source, Err: ErrNoResults}
	}
	metrics.RecordsRetrieved.WithLabelValues(source).Add(float64(len(records)))
	log.Debug("papers retrieved", zap.String("source", source), zap.Int("count", len(records)))

	result, err := structured(ctx, a.LLM, call{
		agent:       types.AgentPaper,
		system:      paperSystemPrompt,
		user:        paperUserTmpl,
		data:        retrievalPromptData{Query: query, Records: indentJSON(records)},
		temperature: retrievalTemperature,
	}, validatePapers)
	if err != nil {
		return nil, err
	}
	if result.OverallTrends == nil {
		result.OverallTrends = []string{}
	}

	if err := persist(a.Artifacts, types.AgentPaper, result); err != nil {
		return nil, err
	}

	log.Info("papers summarized",
		zap.Int("retrieved", len(records)),
		zap.Int("summarized", len(result.Papers)),
		zap.Duration("elapsed", time.Since(start)))
	return result, nil
}

// validatePapers requires a papers list with a title on every entry.
func validatePapers(r *types.PaperAgentResult) error {
	if r.Papers == nil {
		return errors.New("papers is missing")
	}
	for i, p := range r.Papers {
		if strings.TrimSpace(p.Title) == "" {
			return fmt.Errorf("papers[%d].title is empty", i)
		}
	}
	return nil
}
