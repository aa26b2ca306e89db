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
	"github.com/pdiddy/research-assistant/internal/catalog"
	"github.com/pdiddy/research-assistant/internal/llm"
	"github.com/pdiddy/research-assistant/internal/metrics"
	"github.com/pdiddy/research-assistant/pkg/types"
)

// DefaultCatalogSource names the dataset catalog in errors and metrics.
const DefaultCatalogSource = "kaggle"

// DatasetAgent fetches datasets from a catalog and has the model describe
// their suitability.
type DatasetAgent struct {
	Catalog catalog.Catalog

	// Source names the catalog in errors and metrics (default "kaggle").
	Source string

	LLM       llm.Completer
	Artifacts *artifact.Store
	Logger    *zap.Logger
}

// Retrieve looks up the top maxResults datasets for query and returns
// the model's description of them. An empty catalog listing is passed to
// the model as an empty list.
func (a *DatasetAgent) Retrieve(ctx context.Context, query string, maxResults int) (*types.DatasetAgentResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, ErrEmptyQuery
	}
	if maxResults <= 0 {
		maxResults = DefaultMaxResults
	}
	source := a.Source
	if source == "" {
		source = DefaultCatalogSource
	}
	log := nopIfNil(a.Logger).With(zap.String("agent", string(types.AgentDataset)))
	start := time.Now()

	records, err := a.Catalog.Search(ctx, query, maxResults)
	if err != nil {
		return nil, &RetrievalError{Agent: types.AgentDataset, Source: source, Err: err}
	}
	if len(records) > maxResults {
		records = records[:maxResults]
	}
	if records == nil {
		records = []types.DatasetRecord{}
	}
	metrics.RecordsRetrieved.WithLabelValues(source).Add(float64(len(records)))
	if len(records) == 0 {
		log.Warn("dataset catalog returned no rows", zap.String("source", source))
	}

	result, err := structured(ctx, a.LLM, call{
		agent:       types.AgentDataset,
		system:      datasetSystemPrompt,
		user:        datasetUserTmpl,
		data:        retrievalPromptData{Query: query, Records: indentJSON(records)},
		temperature: retrievalTemperature,
	}, validateDatasets)
	if err != nil {
		return nil, err
	}
	if result.CoverageNotes == nil {
		result.CoverageNotes = []string{}
	}

	if err := persist(a.Artifacts, types.AgentDataset, result); err != nil {
		return nil, err
	}

	log.Info("datasets described",
		zap.Int("retrieved", len(records)),
		zap.Int("described", len(result.Datasets)),
		zap.Duration("elapsed", time.Since(start)))
	return result, nil
}

// validateDatasets requires a datasets list with a name on every entry.
func validateDatasets(r *types.DatasetAgentResult) error {
	if r.Datasets == nil {
		return errors.New("datasets is missing")
	}
	for i, d := range r.Datasets {
		if strings.TrimSpace(d.Name) == "" {
			return fmt.Errorf("datasets[%d].name is empty", i)
		}
	}
	return nil
}
