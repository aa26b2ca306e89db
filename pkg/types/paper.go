// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// PaperRecord is a raw match returned by a paper index before any model
// summarization.
type PaperRecord struct {
	// Identifier is the canonical ID from the source (arXiv ID, DOI, or S2 paper ID).
	Identifier string `json:"identifier,omitempty" yaml:"identifier,omitempty"`

	// Title is the paper title as returned by the source.
	Title string `json:"title" yaml:"title"`

	// Year is the publication year, 0 when unknown.
	Year int `json:"year" yaml:"year"`

	// Summary is the paper abstract.
	Summary string `json:"summary" yaml:"summary"`

	// Authors lists the paper authors in source order.
	Authors []string `json:"authors" yaml:"authors"`

	// PDFURL links to the document.
	PDFURL string `json:"pdf_url" yaml:"pdf_url"`

	// Source identifies which index found this record (e.g. "arxiv").
	Source string `json:"source,omitempty" yaml:"source,omitempty"`
}

// PaperSummary is the model's structured summary of one retrieved paper.
type PaperSummary struct {
	Title           string `json:"title" yaml:"title"`
	Year            Text   `json:"year" yaml:"year"`
	Methodology     Text   `json:"methodology" yaml:"methodology"`
	DataUsed        Text   `json:"data_used" yaml:"data_used"`
	KeyContribution Text   `json:"key_contribution" yaml:"key_contribution"`
}

// PaperAgentResult is the paper agent's output.
type PaperAgentResult struct {
	Papers        []PaperSummary `json:"papers" yaml:"papers"`
	OverallTrends []string       `json:"overall_trends" yaml:"overall_trends"`
}
