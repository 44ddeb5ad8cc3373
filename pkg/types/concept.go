package types

import "errors"

// Vocabulary identifies the code system a concept belongs to
type Vocabulary string

const (
	VocabICD10  Vocabulary = "icd10"
	VocabSNOMED Vocabulary = "snomed"
	VocabRxNorm Vocabulary = "rxnorm"
)

// Valid checks if the vocabulary is a known code system
func (v Vocabulary) Valid() bool {
	switch v {
	case VocabICD10, VocabSNOMED, VocabRxNorm:
		return true
	default:
		return false
	}
}

// MultiParent reports whether the vocabulary permits multiple parents.
// ICD-10 and RxNorm are trees; SNOMED CT is a directed acyclic graph.
func (v Vocabulary) MultiParent() bool {
	return v == VocabSNOMED
}

// ConceptAttributes holds vocabulary-specific fields. Zero values mean
// "not applicable" for vocabularies that don't use a given field.
type ConceptAttributes struct {
	// ICD-10
	Billable  bool
	Excludes1 []string // mutually exclusive codes
	Excludes2 []string // allowed together, informational note only

	// RxNorm
	Prescribable bool
	DoseForm     string
	Strength     string
	Ingredients  []string
	DrugClass    string

	// SNOMED CT
	LabelsByLanguage map[string]string // BCP 47 tag -> preferred term
}

// Concept represents a canonical clinical entity identified by a unique
// code within a vocabulary. Concepts are created once during load and are
// immutable thereafter; no concurrent mutation occurs after initialization.
type Concept struct {
	Code       string
	Vocabulary Vocabulary
	Display    string
	Labels     []string // synonyms and abbreviation expansions
	Category   string   // chapter or semantic tag
	Active     bool
	Parents    []string
	Children   []string
	Attributes ConceptAttributes
}

// Validate performs comprehensive validation of the concept
func (c *Concept) Validate() error {
	if c.Code == "" {
		return errors.New("concept code cannot be empty")
	}

	if c.Display == "" {
		return errors.New("concept display text cannot be empty")
	}

	if !c.Vocabulary.Valid() {
		return errors.New("invalid vocabulary")
	}

	if !c.Vocabulary.MultiParent() && len(c.Parents) > 1 {
		return errors.New("tree vocabulary concept cannot have multiple parents")
	}

	return nil
}

// HasParent reports whether code is a direct parent of the concept
func (c *Concept) HasParent(code string) bool {
	for _, p := range c.Parents {
		if p == code {
			return true
		}
	}
	return false
}
