// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package llm is the boundary to the language-model completion service.
// A Completer takes system instructions plus a user payload and returns
// the model's raw text; ExtractJSON recovers the JSON document from that
// text. Backends exist for OpenAI-compatible chat APIs (Groq by default),
// the Claude Messages API, and Gemini.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/pdiddy/research-assistant/pkg/types"
)

const defaultMaxTokens = 4096

// Prompt is one completion request.
type Prompt struct {
	// System carries the fixed agent instructions.
	System string

	// User carries the per-run payload (query, retrieved records).
	User string

	// Temperature is the sampling temperature.
	Temperature float64
}

// Completer abstracts the completion service so tests can supply a mock.
type Completer interface {
	Complete(ctx context.Context, p Prompt) (string, error)
}

// CompleterFunc adapts a function to the Completer interface.
type CompleterFunc func(ctx context.Context, p Prompt) (string, error)

// Complete calls f.
func (f CompleterFunc) Complete(ctx context.Context, p Prompt) (string, error) {
	return f(ctx, p)
}

// New builds the Completer selected by cfg.Provider.
func New(ctx context.Context, cfg types.LLMConfig) (Completer, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("no API key configured for %s", cfg.Provider)
	}
	client := &http.Client{Timeout: cfg.Timeout}

	switch cfg.Provider {
	case types.ProviderGroq, "":
		return &OpenAIBackend{
			APIKey:     cfg.APIKey,
			Model:      orDefault(cfg.Model, DefaultGroqModel),
			BaseURL:    orDefault(cfg.BaseURL, groqAPIURL),
			MaxTokens:  cfg.MaxTokens,
			MaxRetries: cfg.RateLimitRetries,
			Client:     client,
		}, nil
	case types.ProviderClaude:
		return &ClaudeBackend{
			APIKey:     cfg.APIKey,
			Model:      orDefault(cfg.Model, DefaultClaudeModel),
			MaxTokens:  cfg.MaxTokens,
			MaxRetries: cfg.RateLimitRetries,
			Client:     client,
		}, nil
	case types.ProviderGemini:
		return NewGeminiBackend(ctx, cfg.APIKey, orDefault(cfg.Model, DefaultGeminiModel), cfg.MaxTokens)
	default:
		return nil, fmt.Errorf("unsupported LLM provider %q: use groq, claude, or gemini", cfg.Provider)
	}
}

func orDefault(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

func maxTokens(n int) int {
	if n <= 0 {
		return defaultMaxTokens
	}
	return n
}

// ErrNoJSON is returned by ExtractJSON when the text holds no JSON document.
var ErrNoJSON = errors.New("no JSON document in model output")

// ExtractJSON returns the JSON document inside a model response. Models
// often wrap JSON in Markdown code fences or surround it with prose; the
// fenced body is preferred, then the whole text, then the span from the
// first { or [ to its last closing bracket. A document nested inside an
// invalid outer one is never returned.
func ExtractJSON(text string) ([]byte, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrNoJSON
	}

	candidates := []string{}
	if fenced, ok := fencedBody(text); ok {
		candidates = append(candidates, fenced)
	}
	candidates = append(candidates, text)

	for _, c := range candidates {
		c = strings.TrimSpace(c)
		if json.Valid([]byte(c)) {
			return []byte(c), nil
		}
		if span, ok := outermostSpan(c); ok && json.Valid([]byte(span)) {
			return []byte(span), nil
		}
	}
	return nil, ErrNoJSON
}

// outermostSpan returns text from the first opening bracket through the
// last matching closing bracket.
func outermostSpan(text string) (string, bool) {
	start := strings.IndexAny(text, "{[")
	if start < 0 {
		return "", false
	}
	closer := "}"
	if text[start] == '[' {
		closer = "]"
	}
	end := strings.LastIndex(text, closer)
	if end <= start {
		return "", false
	}
	return text[start : end+1], true
}

// fencedBody returns the contents of the first ``` code fence in text.
func fencedBody(text string) (string, bool) {
	const fence = "```"
	start := strings.Index(text, fence)
	if start < 0 {
		return "", false
	}
	rest := text[start+len(fence):]
	// Drop the info string (e.g. "json") on the opening line.
	if nl := strings.IndexByte(rest, '\n'); nl >= 0 {
		rest = rest[nl+1:]
	}
	end := strings.Index(rest, fence)
	if end < 0 {
		return "", false
	}
	return rest[:end], true
}

// Decode extracts the JSON document from text and unmarshals it into v.
func Decode(text string, v any) error {
	data, err := ExtractJSON(text)
	if err != nil {
		return err
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	return dec.Decode(v)
}
