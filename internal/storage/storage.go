package storage

import (
	"context"
	"errors"

	"github.com/clinterm/clinterm-mcp/internal/lexical"
	"github.com/clinterm/clinterm-mcp/pkg/types"
)

var (
	// ErrNotFound is returned when a requested row doesn't exist
	ErrNotFound = errors.New("not found")
)

// Storage defines the interface for the persisted vocabulary datasets
type Storage interface {
	// ImportDataset inserts one vocabulary document atomically
	ImportDataset(ctx context.Context, ds *Dataset) error

	// LoadConcepts returns every concept across all vocabularies
	LoadConcepts(ctx context.Context) ([]types.Concept, error)

	// LoadAbbreviations returns the label -> codes abbreviation table
	LoadAbbreviations(ctx context.Context) (lexical.Abbreviations, error)

	// LoadInteractions returns the drug-drug interaction table
	LoadInteractions(ctx context.Context) ([]types.Interaction, error)

	// CountConcepts reports how many concepts are persisted
	CountConcepts(ctx context.Context) (int, error)

	// Bootstrap seeds the built-in dataset when the store is empty.
	// Returns true when seeding happened.
	Bootstrap(ctx context.Context) (bool, error)

	// Close releases the underlying database
	Close() error
}

// Dataset is the structured document for one vocabulary, as produced by
// external tooling and consumed at load or import time
type Dataset struct {
	Vocabulary    types.Vocabulary     `json:"vocabulary"`
	Concepts      []DatasetConcept     `json:"concepts"`
	Synonyms      map[string][]string  `json:"synonyms,omitempty"`      // code -> alternate labels
	Abbreviations map[string][]string  `json:"abbreviations,omitempty"` // label -> codes
	Interactions  []DatasetInteraction `json:"interactions,omitempty"`
}

// DatasetConcept is one concept row in a vocabulary document
type DatasetConcept struct {
	Code             string            `json:"code"`
	Display          string            `json:"display"`
	Category         string            `json:"category,omitempty"`
	Parent           string            `json:"parent,omitempty"`
	Parents          []string          `json:"parents,omitempty"` // DAG vocabularies
	Inactive         bool              `json:"inactive,omitempty"`
	Billable         bool              `json:"billable,omitempty"`
	Prescribable     bool              `json:"prescribable,omitempty"`
	DoseForm         string            `json:"dose_form,omitempty"`
	Strength         string            `json:"strength,omitempty"`
	DrugClass        string            `json:"drug_class,omitempty"`
	Ingredients      []string          `json:"ingredients,omitempty"`
	Excludes1        []string          `json:"excludes1,omitempty"`
	Excludes2        []string          `json:"excludes2,omitempty"`
	LabelsByLanguage map[string]string `json:"labels_by_language,omitempty"`
}

// DatasetInteraction is one interaction row in a vocabulary document
type DatasetInteraction struct {
	CodeA       string `json:"code_a"`
	CodeB       string `json:"code_b"`
	Severity    string `json:"severity"`
	Description string `json:"description"`
}

// allParents merges the single-parent and multi-parent forms
func (c *DatasetConcept) allParents() []string {
	if c.Parent == "" {
		return c.Parents
	}
	return append([]string{c.Parent}, c.Parents...)
}
