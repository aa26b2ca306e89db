// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"strings"

	"github.com/pdiddy/research-assistant/internal/httputil"
	"github.com/pdiddy/research-assistant/pkg/types"
)

// openAlexAPIBase is the OpenAlex works endpoint. Declared as a var so tests
// can substitute an httptest server.
var openAlexAPIBase = "https://api.openalex.org/works"

// OpenAlexIndex queries the OpenAlex works search.
type OpenAlexIndex struct {
	Client *http.Client

	// Mailto joins the OpenAlex polite pool when set.
	Mailto    string
	UserAgent string

	// MaxRetries is the number of re-sends on HTTP 429.
	MaxRetries int
}

// Name returns the index identifier.
func (b *OpenAlexIndex) Name() string { return ProviderOpenAlex }

// Search queries OpenAlex and returns up to limit records.
func (b *OpenAlexIndex) Search(ctx context.Context, query string, limit int) ([]types.PaperRecord, error) {
	q := strings.TrimSpace(query)
	if q == "" {
		return nil, fmt.Errorf("empty OpenAlex query")
	}

	params := url.Values{
		"search":   {q},
		"per_page": {strconv.Itoa(limitOrDefault(limit))},
	}
	if b.Mailto != "" {
		params.Set("mailto", b.Mailto)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, openAlexAPIBase+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating OpenAlex request: %w", err)
	}
	if b.UserAgent != "" {
		req.Header.Set("User-Agent", b.UserAgent)
	}

	resp, err := httputil.DoWithRetry(ctx, b.Client, req, b.MaxRetries)
	if err != nil {
		return nil, fmt.Errorf("OpenAlex API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("OpenAlex API returned HTTP %d", resp.StatusCode)
	}

	var oa openAlexResponse
	if err := json.NewDecoder(resp.Body).Decode(&oa); err != nil {
		return nil, fmt.Errorf("parsing OpenAlex response: %w", err)
	}

	var records []types.PaperRecord
	for _, w := range oa.Results {
		r := types.PaperRecord{
			Identifier: strings.TrimPrefix(w.DOI, "https://doi.org/"),
			Title:      normalizeSpace(w.DisplayName),
			Year:       w.PublicationYear,
			Summary:    normalizeSpace(abstractFromIndex(w.AbstractInvertedIndex)),
			Source:     ProviderOpenAlex,
		}
		if r.Identifier == "" {
			r.Identifier = strings.TrimPrefix(w.ID, "https://openalex.org/")
		}
		for _, a := range w.Authorships {
			r.Authors = append(r.Authors, a.Author.DisplayName)
		}

		switch {
		case w.BestOALocation != nil && w.BestOALocation.PDFURL != "":
			r.PDFURL = w.BestOALocation.PDFURL
		case w.BestOALocation != nil && w.BestOALocation.LandingURL != "":
			r.PDFURL = w.BestOALocation.LandingURL
		case w.DOI != "":
			r.PDFURL = w.DOI
		default:
			r.PDFURL = w.ID
		}

		records = append(records, r)
		if limit > 0 && len(records) == limit {
			break
		}
	}
	return records, nil
}

// abstractFromIndex rebuilds an abstract from OpenAlex's inverted index,
// which maps each word to the positions it occupies.
func abstractFromIndex(idx map[string][]int) string {
	type placed struct {
		pos  int
		word string
	}
	var words []placed
	for w, positions := range idx {
		for _, p := range positions {
			words = append(words, placed{p, w})
		}
	}
	slices.SortFunc(words, func(a, b placed) int { return a.pos - b.pos })

	parts := make([]string, len(words))
	for i, w := range words {
		parts[i] = w.word
	}
	return strings.Join(parts, " ")
}

// OpenAlex API JSON structures.
type openAlexResponse struct {
	Results []openAlexWork `json:"results"`
}

type openAlexWork struct {
	ID                    string            `json:"id"`
	DOI                   string            `json:"doi"`
	DisplayName           string            `json:"display_name"`
	PublicationYear       int               `json:"publication_year"`
	Authorships           []openAlexAuthor  `json:"authorships"`
	AbstractInvertedIndex map[string][]int  `json:"abstract_inverted_index"`
	BestOALocation        *openAlexLocation `json:"best_oa_location"`
}

type openAlexAuthor struct {
	Author struct {
		DisplayName string `json:"display_name"`
	} `json:"author"`
}

type openAlexLocation struct {
	PDFURL     string `json:"pdf_url"`
	LandingURL string `json:"landing_page_url"`
}
