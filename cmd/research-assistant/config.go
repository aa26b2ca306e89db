// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"time"

	"github.com/spf13/viper"

	"github.com/pdiddy/research-assistant/internal/secrets"
	"github.com/pdiddy/research-assistant/pkg/types"
)

const defaultHistoryDB = ".research-assistant/history.db"

func init() {
	viper.SetDefault("llm.timeout", 120*time.Second)
	viper.SetDefault("llm.max_tokens", 4096)
	viper.SetDefault("llm.rate_limit_retries", 0)
	viper.SetDefault("paper_index.timeout", 30*time.Second)
	viper.SetDefault("paper_index.rate_limit_retries", 0)
	viper.SetDefault("catalog.binary", "kaggle")
	viper.SetDefault("catalog.base_url", "https://www.kaggle.com/datasets/")
	viper.SetDefault("history.db_path", defaultHistoryDB)

	// The original deployment read the Groq key from GROQ_API.
	viper.BindEnv("llm.api_key", "RESEARCH_ASSISTANT_LLM_API_KEY", "GROQ_API")
	viper.BindEnv("paper_index.api_key", "RESEARCH_ASSISTANT_PAPER_INDEX_API_KEY", "SEMANTIC_SCHOLAR_API_KEY")
}

// pipelineConfig assembles the run configuration from flags, config file,
// environment, and secrets, in that order of precedence.
func pipelineConfig() types.PipelineConfig {
	userAgent := "research-assistant/" + version

	cfg := types.PipelineConfig{
		LLM: types.LLMConfig{
			HTTPConfig: types.HTTPConfig{
				Timeout:          viper.GetDuration("llm.timeout"),
				UserAgent:        userAgent,
				RateLimitRetries: viper.GetInt("llm.rate_limit_retries"),
			},
			Provider:  types.LLMProvider(viper.GetString("llm.provider")),
			Model:     viper.GetString("llm.model"),
			APIKey:    viper.GetString("llm.api_key"),
			BaseURL:   viper.GetString("llm.base_url"),
			MaxTokens: viper.GetInt("llm.max_tokens"),
		},
		PaperIndex: types.PaperIndexConfig{
			HTTPConfig: types.HTTPConfig{
				Timeout:          viper.GetDuration("paper_index.timeout"),
				UserAgent:        userAgent,
				RateLimitRetries: viper.GetInt("paper_index.rate_limit_retries"),
			},
			Provider:   viper.GetString("paper_index.provider"),
			APIKey:     viper.GetString("paper_index.api_key"),
			Mailto:     viper.GetString("paper_index.mailto"),
			MaxResults: viper.GetInt("paper_index.max_results"),
		},
		Catalog: types.DatasetCatalogConfig{
			Binary:     viper.GetString("catalog.binary"),
			BaseURL:    viper.GetString("catalog.base_url"),
			MaxResults: viper.GetInt("catalog.max_results"),
		},
		Output:   types.OutputConfig{Dir: viper.GetString("output.dir")},
		History:  types.HistoryConfig{DBPath: viper.GetString("history.db_path")},
		Parallel: viper.GetBool("parallel"),
	}

	if cfg.LLM.APIKey == "" {
		cfg.LLM.APIKey = loadedSecrets.LLMKey(cfg.LLM.Provider)
	}
	if cfg.PaperIndex.APIKey == "" {
		cfg.PaperIndex.APIKey = loadedSecrets[secrets.KeySemanticScholar]
	}
	if cfg.Catalog.MaxResults <= 0 {
		cfg.Catalog.MaxResults = cfg.PaperIndex.MaxResults
	}
	return cfg
}
