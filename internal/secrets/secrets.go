// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets loads API keys and credentials from a directory of plain-text files.
// Each file in the directory represents one secret: the filename is the key name and the
// file contents (trimmed) are the value.
package secrets

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdiddy/research-assistant/pkg/types"
)

// DefaultDir is the secrets directory relative to the working directory.
const DefaultDir = ".secrets"

// Key files understood by the research assistant.
const (
	KeyGroq            = "groq-api-key"
	KeyAnthropic       = "anthropic-api-key"
	KeyGemini          = "gemini-api-key"
	KeySemanticScholar = "semantic-scholar-api-key"
	KeyKaggleUsername  = "kaggle-username"
	KeyKaggleKey       = "kaggle-key"
)

// Secrets maps key file names to their values.
type Secrets map[string]string

// Load reads all files in dir and returns their trimmed contents by filename.
// A missing directory or missing files are not errors; Load returns an empty set.
// Unreadable files produce a warning on stderr but do not abort.
func Load(dir string) (Secrets, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return Secrets{}, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	s := make(Secrets)
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: could not read secret %s: %v\n", name, err)
			continue
		}

		if value := strings.TrimSpace(string(data)); value != "" {
			s[name] = value
		}
	}
	return s, nil
}

// LLMKey returns the API key for provider. An empty provider means Groq.
func (s Secrets) LLMKey(provider types.LLMProvider) string {
	switch provider {
	case types.ProviderClaude:
		return s[KeyAnthropic]
	case types.ProviderGemini:
		return s[KeyGemini]
	default:
		return s[KeyGroq]
	}
}

// KaggleEnv returns the environment the Kaggle CLI reads credentials
// from, or nil when either value is missing.
func (s Secrets) KaggleEnv() []string {
	user, key := s[KeyKaggleUsername], s[KeyKaggleKey]
	if user == "" || key == "" {
		return nil
	}
	return []string{"KAGGLE_USERNAME=" + user, "KAGGLE_KEY=" + key}
}
