// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pdiddy/research-assistant/internal/httputil"
	"github.com/pdiddy/research-assistant/pkg/types"
)

func withSemanticServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(handler)
	old := semanticAPIBase
	semanticAPIBase = ts.URL
	t.Cleanup(func() {
		semanticAPIBase = old
		ts.Close()
	})
	return ts
}

func TestSemanticSearchRequestParams(t *testing.T) {
	var capturedReq *http.Request
	ts := withSemanticServer(t, func(w http.ResponseWriter, r *http.Request) {
		capturedReq = r
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"total":0,"offset":0,"data":[]}`)
	})

	b := &SemanticScholarIndex{Client: ts.Client(), APIKey: "s2-key", UserAgent: "test/0.1"}
	if _, err := b.Search(context.Background(), "landslide detection", 3); err != nil {
		t.Fatalf("Search: %v", err)
	}

	q := capturedReq.URL.Query()
	if got := q.Get("query"); got != "landslide detection" {
		t.Errorf("query param = %q", got)
	}
	if got := q.Get("limit"); got != "3" {
		t.Errorf("limit param = %q, want 3", got)
	}
	if got := capturedReq.Header.Get("x-api-key"); got != "s2-key" {
		t.Errorf("x-api-key = %q", got)
	}
	if got := capturedReq.Header.Get("User-Agent"); got != "test/0.1" {
		t.Errorf("User-Agent = %q", got)
	}
}

func TestSemanticSearchDefaultLimit(t *testing.T) {
	var limit string
	ts := withSemanticServer(t, func(w http.ResponseWriter, r *http.Request) {
		limit = r.URL.Query().Get("limit")
		fmt.Fprint(w, `{"data":[]}`)
	})

	b := &SemanticScholarIndex{Client: ts.Client()}
	if _, err := b.Search(context.Background(), "q", 0); err != nil {
		t.Fatalf("Search: %v", err)
	}
	if limit != "5" {
		t.Errorf("limit = %q, want default 5", limit)
	}
}

func TestSemanticSearchIdentifierAndPDF(t *testing.T) {
	tests := []struct {
		name    string
		paper   string
		wantID  string
		wantPDF string
	}{
		{
			"open access pdf preferred",
			`{"paperId":"abc","title":"P","year":2020,"externalIds":{"ArXiv":"1706.03762"},"openAccessPdf":{"url":"https://oa.example/p.pdf"}}`,
			"1706.03762",
			"https://oa.example/p.pdf",
		},
		{
			"arXiv pdf when no open access",
			`{"paperId":"abc","title":"P","externalIds":{"ArXiv":"1706.03762","DOI":"10.555/test"}}`,
			"1706.03762",
			"https://arxiv.org/pdf/1706.03762",
		},
		{
			"DOI and landing page",
			`{"paperId":"def","title":"P","url":"https://www.semanticscholar.org/paper/def","externalIds":{"DOI":"10.555/test"}}`,
			"10.555/test",
			"https://www.semanticscholar.org/paper/def",
		},
		{
			"paper id fallback",
			`{"paperId":"ghi789","title":"P","externalIds":{}}`,
			"ghi789",
			"",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := fmt.Sprintf(`{"total":1,"offset":0,"data":[%s]}`, tt.paper)
			ts := withSemanticServer(t, func(w http.ResponseWriter, _ *http.Request) {
				fmt.Fprint(w, resp)
			})

			b := &SemanticScholarIndex{Client: ts.Client()}
			records, err := b.Search(context.Background(), "test", 5)
			if err != nil {
				t.Fatalf("Search: %v", err)
			}
			if len(records) != 1 {
				t.Fatalf("len(records) = %d, want 1", len(records))
			}
			if records[0].Identifier != tt.wantID {
				t.Errorf("Identifier = %q, want %q", records[0].Identifier, tt.wantID)
			}
			if records[0].PDFURL != tt.wantPDF {
				t.Errorf("PDFURL = %q, want %q", records[0].PDFURL, tt.wantPDF)
			}
		})
	}
}

func TestSemanticSearchErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr string
	}{
		{"server error", http.StatusInternalServerError, "", "HTTP 500"},
		{"forbidden", http.StatusForbidden, "", "HTTP 403"},
		{"malformed json", http.StatusOK, `{"data": [`, "parsing Semantic Scholar response"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := withSemanticServer(t, func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				fmt.Fprint(w, tt.body)
			})

			b := &SemanticScholarIndex{Client: ts.Client()}
			_, err := b.Search(context.Background(), "test", 5)
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %v, want it to mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestSemanticSearchRateLimitRetries(t *testing.T) {
	old := httputil.RetryBaseDelay
	httputil.RetryBaseDelay = time.Millisecond
	defer func() { httputil.RetryBaseDelay = old }()

	var calls int32
	ts := withSemanticServer(t, func(w http.ResponseWriter, _ *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		fmt.Fprint(w, `{"data":[{"paperId":"a","title":"T"}]}`)
	})

	b := &SemanticScholarIndex{Client: ts.Client(), MaxRetries: 1}
	records, err := b.Search(context.Background(), "test", 5)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(records) != 1 {
		t.Errorf("len(records) = %d, want 1", len(records))
	}
	if n := atomic.LoadInt32(&calls); n != 2 {
		t.Errorf("calls = %d, want 2", n)
	}
}

func TestNewIndex(t *testing.T) {
	tests := []struct {
		provider string
		wantName string
		wantErr  bool
	}{
		{"", "arxiv", false},
		{"arxiv", "arxiv", false},
		{"semantic_scholar", "semantic_scholar", false},
		{"openalex", "openalex", false},
		{"core", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.provider, func(t *testing.T) {
			idx, err := New(types.PaperIndexConfig{Provider: tt.provider})
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("New: %v", err)
			}
			if idx.Name() != tt.wantName {
				t.Errorf("Name() = %q, want %q", idx.Name(), tt.wantName)
			}
		})
	}
}
