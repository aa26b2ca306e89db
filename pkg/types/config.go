package types

import "time"

// HTTPConfig holds shared HTTP settings used by components that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "research-assistant/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`

	// RateLimitRetries is how many times a request answered with HTTP 429 is
	// re-sent after backoff. Zero sends each request once.
	RateLimitRetries int `json:"rate_limit_retries" yaml:"rate_limit_retries"`
}

// LLMProvider selects the language-model completion service.
type LLMProvider string

const (
	ProviderGroq   LLMProvider = "groq"
	ProviderClaude LLMProvider = "claude"
	ProviderGemini LLMProvider = "gemini"
)

// LLMConfig holds settings for the language-model completion service.
type LLMConfig struct {
	HTTPConfig `yaml:",inline"`

	// Provider selects the backend: groq, claude, or gemini.
	Provider LLMProvider `json:"provider" yaml:"provider"`

	// Model is the model identifier (e.g. "llama-3.1-8b-instant").
	Model string `json:"model" yaml:"model"`

	// APIKey is the authentication key for the provider.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// BaseURL overrides the provider endpoint (OpenAI-compatible providers only).
	BaseURL string `json:"base_url,omitempty" yaml:"base_url,omitempty"`

	// MaxTokens caps the completion length (default 4096).
	MaxTokens int `json:"max_tokens" yaml:"max_tokens"`
}

// PaperIndexConfig holds settings for the paper index lookup.
type PaperIndexConfig struct {
	HTTPConfig `yaml:",inline"`

	// Provider selects the index: arxiv, semantic_scholar, or openalex.
	Provider string `json:"provider" yaml:"provider"`

	// Mailto is the contact address sent to OpenAlex.
	Mailto string `json:"mailto,omitempty" yaml:"mailto,omitempty"`

	// APIKey is an optional Semantic Scholar key for higher rate limits.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// MaxResults is the number of papers fetched per query (default 5).
	MaxResults int `json:"max_results" yaml:"max_results"`
}

// DatasetCatalogConfig holds settings for the dataset catalog lookup.
type DatasetCatalogConfig struct {
	// Binary is the catalog CLI executable (default "kaggle").
	Binary string `json:"binary" yaml:"binary"`

	// BaseURL is the prefix the dataset reference is appended to.
	BaseURL string `json:"base_url" yaml:"base_url"`

	// MaxResults is the number of datasets kept per query (default 5).
	MaxResults int `json:"max_results" yaml:"max_results"`
}

// OutputConfig controls where artifacts are written.
type OutputConfig struct {
	// Dir holds the per-agent artifacts and the research bundle (default "outputs").
	Dir string `json:"dir" yaml:"dir"`
}

// HistoryConfig controls the run ledger.
type HistoryConfig struct {
	// DBPath is the SQLite database file. Empty disables the ledger.
	DBPath string `json:"db_path" yaml:"db_path"`
}

// PipelineConfig groups all settings for one orchestration run.
type PipelineConfig struct {
	LLM        LLMConfig            `json:"llm" yaml:"llm"`
	PaperIndex PaperIndexConfig     `json:"paper_index" yaml:"paper_index"`
	Catalog    DatasetCatalogConfig `json:"catalog" yaml:"catalog"`
	Output     OutputConfig         `json:"output" yaml:"output"`
	History    HistoryConfig        `json:"history" yaml:"history"`

	// Parallel runs the paper and dataset agents concurrently.
	Parallel bool `json:"parallel" yaml:"parallel"`
}
