// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package search looks up candidate papers for a research query in an
// external paper index (arXiv, Semantic Scholar, or OpenAlex).
package search

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/pdiddy/research-assistant/pkg/types"
)

const (
	ProviderArxiv           = "arxiv"
	ProviderSemanticScholar = "semantic_scholar"
	ProviderOpenAlex        = "openalex"

	defaultMaxResults = 5
)

// Index searches a single paper index. Each provider implements this
// interface; results come back ordered by relevance.
type Index interface {
	Name() string
	Search(ctx context.Context, query string, limit int) ([]types.PaperRecord, error)
}

// New returns the index selected by cfg.Provider.
func New(cfg types.PaperIndexConfig) (Index, error) {
	client := &http.Client{Timeout: cfg.Timeout}

	switch cfg.Provider {
	case ProviderArxiv, "":
		return &ArxivIndex{Client: client, UserAgent: cfg.UserAgent}, nil
	case ProviderSemanticScholar:
		return &SemanticScholarIndex{
			Client:     client,
			APIKey:     cfg.APIKey,
			UserAgent:  cfg.UserAgent,
			MaxRetries: cfg.RateLimitRetries,
		}, nil
	case ProviderOpenAlex:
		return &OpenAlexIndex{
			Client:     client,
			Mailto:     cfg.Mailto,
			UserAgent:  cfg.UserAgent,
			MaxRetries: cfg.RateLimitRetries,
		}, nil
	default:
		return nil, fmt.Errorf("unsupported paper index %q: use %s, %s, or %s",
			cfg.Provider, ProviderArxiv, ProviderSemanticScholar, ProviderOpenAlex)
	}
}

func limitOrDefault(limit int) int {
	if limit <= 0 {
		return defaultMaxResults
	}
	return limit
}

// normalizeSpace collapses runs of whitespace, including the line breaks
// arXiv embeds in titles and abstracts.
func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
