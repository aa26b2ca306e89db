// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// DatasetRecord is one row from the dataset catalog, projected to the
// fields the dataset agent forwards to the model.
type DatasetRecord struct {
	// Name is the dataset title.
	Name string `json:"name" yaml:"name"`

	// Ref is the catalog reference (e.g. "owner/slug").
	Ref string `json:"ref" yaml:"ref"`

	// URL is synthesized from Ref and the catalog's base URL.
	URL string `json:"url" yaml:"url"`
}

// DatasetSummary is the model's structured description of one dataset.
type DatasetSummary struct {
	Name     string `json:"name" yaml:"name"`
	Source   Text   `json:"source" yaml:"source"`
	TaskType Text   `json:"task_type" yaml:"task_type"`
	DataType Text   `json:"data_type" yaml:"data_type"`
	Labels   Text   `json:"labels" yaml:"labels"`
	URL      string `json:"url" yaml:"url"`
}

// DatasetAgentResult is the dataset agent's output.
type DatasetAgentResult struct {
	Datasets      []DatasetSummary `json:"datasets" yaml:"datasets"`
	CoverageNotes []string         `json:"coverage_notes" yaml:"coverage_notes"`
}
