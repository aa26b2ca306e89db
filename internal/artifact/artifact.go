// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package artifact persists agent outputs and the research bundle as
// indented JSON files in a single output directory. Each write replaces
// the previous file atomically.
package artifact

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pdiddy/research-assistant/pkg/types"
)

const (
	// BundleFile is the merged output of a run.
	BundleFile = "research_bundle.json"

	// DefaultDir is used when no output directory is configured.
	DefaultDir = "outputs"

	indent = "    "
)

// FileName returns the artifact file for an agent, e.g.
// "paper_agent" -> "paper_agent_output.json".
func FileName(agent types.AgentName) string {
	return string(agent) + "_output.json"
}

// Store writes artifacts under Dir.
type Store struct {
	Dir string
}

// NewStore returns a Store rooted at dir, or DefaultDir when dir is empty.
func NewStore(dir string) *Store {
	if dir == "" {
		dir = DefaultDir
	}
	return &Store{Dir: dir}
}

// Path returns the full path of name inside the store.
func (s *Store) Path(name string) string {
	return filepath.Join(s.Dir, name)
}

// WriteAgent persists an agent's output to its artifact file.
func (s *Store) WriteAgent(agent types.AgentName, v any) error {
	return s.Write(FileName(agent), v)
}

// WriteBundle persists the research bundle.
func (s *Store) WriteBundle(b *types.ResearchBundle) error {
	return s.Write(BundleFile, b)
}

// Write marshals v with a four-space indent and a trailing newline and
// replaces name in the store. The file is written to a temporary sibling
// and renamed into place, so readers see either the old or the new
// content.
func (s *Store) Write(name string, v any) error {
	data, err := Marshal(v)
	if err != nil {
		return fmt.Errorf("marshaling %s: %w", name, err)
	}
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return fmt.Errorf("creating output directory %s: %w", s.Dir, err)
	}

	tmp, err := os.CreateTemp(s.Dir, "."+name+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file for %s: %w", name, err)
	}
	tmpName := tmp.Name()
	cleanup := func() { os.Remove(tmpName) }

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		cleanup()
		return fmt.Errorf("writing %s: %w", name, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		cleanup()
		return fmt.Errorf("syncing %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return fmt.Errorf("closing %s: %w", name, err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		cleanup()
		return fmt.Errorf("setting mode on %s: %w", name, err)
	}
	if err := os.Rename(tmpName, s.Path(name)); err != nil {
		cleanup()
		return fmt.Errorf("replacing %s: %w", name, err)
	}
	return nil
}

// Marshal renders v the way Store writes it: four-space indent, no HTML
// escaping, trailing newline.
func Marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", indent)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ReadBundle loads a research bundle written by WriteBundle.
func ReadBundle(path string) (*types.ResearchBundle, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading bundle: %w", err)
	}
	var b types.ResearchBundle
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("parsing bundle %s: %w", path, err)
	}
	return &b, nil
}
