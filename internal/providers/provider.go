// Package providers contains the generation capability clients.
// A Generator turns a PDF (or a page range of one, framed in the prompt)
// into a structured study-guide fragment.
package providers

import (
	"context"
	"time"
)

// Generator is the primary interface for structured document generation.
type Generator interface {
	// Generate sends a generation request and returns the parsed,
	// schema-validated structured result.
	Generate(ctx context.Context, req *Request) (*StructuredResult, error)

	// Name returns the provider identifier (e.g., "openai", "openrouter").
	Name() string
}

// Request is a generation request.
type Request struct {
	// FileData is the raw PDF bytes sent alongside the prompt.
	FileData []byte

	// MimeType of FileData (normally "application/pdf").
	MimeType string

	// Prompt is the full instruction text, including any page-range framing.
	Prompt string

	// Model selection (uses client default if empty).
	Model string

	// RequestID for tracing (generated if empty).
	RequestID string
}

// PageRecord is the generator's output for a single source page.
type PageRecord struct {
	PageNumber  int      `json:"page_number"`
	Title       string   `json:"title,omitempty"`
	Summary     string   `json:"summary"`
	KeyConcepts []string `json:"key_concepts,omitempty"`
}

// StructuredResult is the generator's page-annotated output for one request.
type StructuredResult struct {
	DocumentTitle  string       `json:"document_title"`
	TotalPages     int          `json:"total_pages"`
	Pages          []PageRecord `json:"pages"`
	OverallSummary string       `json:"overall_summary"`
	LearningPath   []string     `json:"learning_path,omitempty"`

	// Provider info and timing, filled in by the client.
	Provider      string        `json:"-"`
	ModelUsed     string        `json:"-"`
	ExecutionTime time.Duration `json:"-"`
}
