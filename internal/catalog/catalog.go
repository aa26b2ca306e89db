// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package catalog looks up candidate datasets for a research query by
// driving the Kaggle command-line client.
package catalog

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/pdiddy/research-assistant/pkg/types"
)

const (
	DefaultBinary  = "kaggle"
	DefaultBaseURL = "https://www.kaggle.com/datasets/"

	defaultMaxResults = 5
	stderrLimit       = 512
)

// ErrMissingColumns is returned when the catalog output lacks the title or
// ref column.
var ErrMissingColumns = errors.New("catalog output is missing the title or ref column")

// Catalog searches a dataset catalog. Results keep the catalog's order.
type Catalog interface {
	Search(ctx context.Context, query string, limit int) ([]types.DatasetRecord, error)
}

// executor abstracts command execution for testing.
type executor interface {
	LookPath(file string) (string, error)
	Output(ctx context.Context, name string, args, env []string, stdout, stderr io.Writer) error
}

// osExecutor is the production executor backed by os/exec.
type osExecutor struct{}

func (o *osExecutor) LookPath(file string) (string, error) {
	return exec.LookPath(file)
}

func (o *osExecutor) Output(ctx context.Context, name string, args, env []string, stdout, stderr io.Writer) error {
	cmd := exec.CommandContext(ctx, name, args...)
	if len(env) > 0 {
		cmd.Env = append(os.Environ(), env...)
	}
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	return cmd.Run()
}

var defaultExec executor = &osExecutor{}

// KaggleCatalog runs "kaggle datasets list --search <query> --csv" and
// reads the title and ref columns of the result.
type KaggleCatalog struct {
	bin     string
	baseURL string
	env     []string
	exec    executor
}

// New returns a KaggleCatalog configured from cfg, filling defaults for
// the binary and the dataset URL prefix. env entries ("KEY=value") are
// added to the CLI's environment, e.g. KAGGLE_USERNAME and KAGGLE_KEY.
func New(cfg types.DatasetCatalogConfig, env ...string) *KaggleCatalog {
	k := newKaggleCatalog(cfg, defaultExec)
	k.env = env
	return k
}

func newKaggleCatalog(cfg types.DatasetCatalogConfig, exec executor) *KaggleCatalog {
	bin := cfg.Binary
	if bin == "" {
		bin = DefaultBinary
	}
	base := cfg.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}
	return &KaggleCatalog{bin: bin, baseURL: base, exec: exec}
}

// Available reports whether the catalog binary is on PATH.
func (k *KaggleCatalog) Available() bool {
	_, err := k.exec.LookPath(k.bin)
	return err == nil
}

// Search runs the catalog query and returns up to limit records. A zero
// limit keeps the default of five.
func (k *KaggleCatalog) Search(ctx context.Context, query string, limit int) ([]types.DatasetRecord, error) {
	q := strings.TrimSpace(query)
	if q == "" {
		return nil, fmt.Errorf("empty dataset query")
	}
	if limit <= 0 {
		limit = defaultMaxResults
	}

	var stdout, stderr bytes.Buffer
	args := []string{"datasets", "list", "--search", q, "--csv"}
	if err := k.exec.Output(ctx, k.bin, args, k.env, &stdout, &stderr); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if len(msg) > stderrLimit {
			msg = msg[:stderrLimit]
		}
		if msg != "" {
			return nil, fmt.Errorf("running %s datasets list: %w: %s", k.bin, err, msg)
		}
		return nil, fmt.Errorf("running %s datasets list: %w", k.bin, err)
	}

	records, err := parseCSV(&stdout, k.baseURL)
	if err != nil {
		return nil, err
	}
	if len(records) > limit {
		records = records[:limit]
	}
	return records, nil
}

// parseCSV reads the catalog's CSV listing. Rows with an empty ref are
// skipped. Output with no header at all is an empty listing.
func parseCSV(r io.Reader, baseURL string) ([]types.DatasetRecord, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return []types.DatasetRecord{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("parsing catalog output: %w", err)
	}

	titleCol, refCol := -1, -1
	for i, h := range header {
		switch strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))) {
		case "title":
			titleCol = i
		case "ref":
			refCol = i
		}
	}
	if titleCol < 0 || refCol < 0 {
		return nil, fmt.Errorf("%w (header: %s)", ErrMissingColumns, strings.Join(header, ","))
	}

	records := []types.DatasetRecord{}
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parsing catalog output: %w", err)
		}
		if refCol >= len(row) || titleCol >= len(row) {
			continue
		}
		ref := strings.TrimSpace(row[refCol])
		if ref == "" {
			continue
		}
		records = append(records, types.DatasetRecord{
			Name: strings.TrimSpace(row[titleCol]),
			Ref:  ref,
			URL:  baseURL + ref,
		})
	}
	return records, nil
}
