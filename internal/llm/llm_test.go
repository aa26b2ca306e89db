// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/research-assistant/pkg/types"
)

// --- ExtractJSON ---

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		want    string
		wantErr bool
	}{
		{"bare object", `{"a": 1}`, `{"a": 1}`, false},
		{"bare array", `[1, 2]`, `[1, 2]`, false},
		{"fenced json", "Here you go:\n```json\n{\"a\": 1}\n```\nThanks", `{"a": 1}`, false},
		{"fenced no info string", "```\n{\"a\": 2}\n```", `{"a": 2}`, false},
		{"prose around object", `Sure! {"papers": []} Hope this helps.`, `{"papers": []}`, false},
		{"whitespace", "\n\n  {\"a\": 1}  \n", `{"a": 1}`, false},
		{"truncated", `{"datasets": [{"name": "x"`, "", true},
		{"truncated with valid inner array", `{"steps": ["collect data", "train model"], "summary": "cut o`, "", true},
		{"truncated with valid inner object", `{"plan": {"title": "t"}, "steps": [`, "", true},
		{"prose then truncated", `Plan: {"steps": ["a"], "note": "b`, "", true},
		{"plain prose", "I cannot help with that.", "", true},
		{"empty", "   ", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractJSON(tt.text)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrNoJSON)
				return
			}
			require.NoError(t, err)
			assert.JSONEq(t, tt.want, string(got))
		})
	}
}

func TestDecode(t *testing.T) {
	var v struct {
		Papers []string `json:"papers"`
	}
	require.NoError(t, Decode("```json\n{\"papers\": [\"a\"]}\n```", &v))
	assert.Equal(t, []string{"a"}, v.Papers)

	assert.Error(t, Decode(`{"papers": "not a list"}`, &v))
}

// --- New ---

func TestNewSelectsBackend(t *testing.T) {
	ctx := context.Background()

	c, err := New(ctx, types.LLMConfig{Provider: types.ProviderGroq, APIKey: "k"})
	require.NoError(t, err)
	oa, ok := c.(*OpenAIBackend)
	require.True(t, ok)
	assert.Equal(t, DefaultGroqModel, oa.Model)

	c, err = New(ctx, types.LLMConfig{Provider: types.ProviderClaude, APIKey: "k", Model: "m"})
	require.NoError(t, err)
	cb, ok := c.(*ClaudeBackend)
	require.True(t, ok)
	assert.Equal(t, "m", cb.Model)

	_, err = New(ctx, types.LLMConfig{Provider: "bard", APIKey: "k"})
	assert.ErrorContains(t, err, "unsupported LLM provider")

	_, err = New(ctx, types.LLMConfig{Provider: types.ProviderGroq})
	assert.ErrorContains(t, err, "no API key")
}

// --- OpenAI-compatible backend ---

func TestOpenAIBackendComplete(t *testing.T) {
	var captured chatRequest
	var auth string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		body, _ := io.ReadAll(r.Body)
		json.Unmarshal(body, &captured)
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"choices":[{"message":{"role":"assistant","content":"{\"ok\":true}"},"finish_reason":"stop"}]}`)
	}))
	defer ts.Close()

	b := &OpenAIBackend{APIKey: "secret", Model: "llama", BaseURL: ts.URL, Client: ts.Client()}
	out, err := b.Complete(context.Background(), Prompt{System: "sys", User: "usr", Temperature: 0.1})
	require.NoError(t, err)

	assert.Equal(t, `{"ok":true}`, out)
	assert.Equal(t, "Bearer secret", auth)
	assert.Equal(t, "llama", captured.Model)
	assert.Equal(t, 0.1, captured.Temperature)
	assert.Equal(t, defaultMaxTokens, captured.MaxTokens)
	require.Len(t, captured.Messages, 2)
	assert.Equal(t, chatMessage{Role: "system", Content: "sys"}, captured.Messages[0])
	assert.Equal(t, chatMessage{Role: "user", Content: "usr"}, captured.Messages[1])
	require.NotNil(t, captured.ResponseFormat)
	assert.Equal(t, "json_object", captured.ResponseFormat.Type)
}

func TestOpenAIBackendErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr string
	}{
		{"http error", http.StatusUnauthorized, `{"error":"bad key"}`, "HTTP 401"},
		{"no choices", http.StatusOK, `{"choices":[]}`, "no choices"},
		{"bad json", http.StatusOK, `not json`, "decoding"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				fmt.Fprint(w, tt.body)
			}))
			defer ts.Close()

			b := &OpenAIBackend{APIKey: "k", BaseURL: ts.URL, Client: ts.Client()}
			_, err := b.Complete(context.Background(), Prompt{})
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

// --- Claude backend ---

func TestClaudeBackendComplete(t *testing.T) {
	var captured claudeRequest
	var headers http.Header
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		headers = r.Header.Clone()
		body, _ := io.ReadAll(r.Body)
		json.Unmarshal(body, &captured)
		fmt.Fprint(w, `{"content":[{"type":"text","text":"{\"a\":"},{"type":"tool_use"},{"type":"text","text":"1}"}]}`)
	}))
	defer ts.Close()

	old := claudeAPIURL
	claudeAPIURL = ts.URL
	defer func() { claudeAPIURL = old }()

	c := &ClaudeBackend{APIKey: "ak", Model: "claude-test", Client: ts.Client()}
	out, err := c.Complete(context.Background(), Prompt{System: "rules", User: "payload", Temperature: 0.2})
	require.NoError(t, err)

	assert.Equal(t, `{"a":1}`, out)
	assert.Equal(t, "ak", headers.Get("x-api-key"))
	assert.Equal(t, "2023-06-01", headers.Get("anthropic-version"))
	assert.Equal(t, "rules", captured.System)
	assert.Equal(t, 0.2, captured.Temperature)
	require.Len(t, captured.Messages, 1)
	assert.Equal(t, "payload", captured.Messages[0].Content)
}

func TestClaudeBackendEmptyContent(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"content":[]}`)
	}))
	defer ts.Close()

	old := claudeAPIURL
	claudeAPIURL = ts.URL
	defer func() { claudeAPIURL = old }()

	c := &ClaudeBackend{APIKey: "ak", Client: ts.Client()}
	_, err := c.Complete(context.Background(), Prompt{})
	assert.ErrorContains(t, err, "no text content")
}

// --- Gemini backend ---

func TestNewGeminiBackendRequiresKey(t *testing.T) {
	_, err := NewGeminiBackend(context.Background(), "", DefaultGeminiModel, 0)
	assert.ErrorContains(t, err, "API key is required")
}

func TestCompleterFunc(t *testing.T) {
	boom := errors.New("boom")
	var c Completer = CompleterFunc(func(_ context.Context, p Prompt) (string, error) {
		if p.User == "fail" {
			return "", boom
		}
		return p.System + p.User, nil
	})

	out, err := c.Complete(context.Background(), Prompt{System: "a", User: "b"})
	require.NoError(t, err)
	assert.Equal(t, "ab", out)

	_, err = c.Complete(context.Background(), Prompt{User: "fail"})
	assert.ErrorIs(t, err, boom)
}
