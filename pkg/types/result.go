package types

import "time"

// MatchKind represents the retrieval strategy that produced a match
type MatchKind string

const (
	MatchExact        MatchKind = "exact"
	MatchPrefix       MatchKind = "prefix"
	MatchSynonym      MatchKind = "synonym"
	MatchAbbreviation MatchKind = "abbreviation"
	MatchFuzzy        MatchKind = "fuzzy"
	MatchSemantic     MatchKind = "semantic"
	MatchHierarchy    MatchKind = "hierarchy" // child appended via hierarchy expansion
)

// Valid checks if the match kind is a known strategy output
func (k MatchKind) Valid() bool {
	switch k {
	case MatchExact, MatchPrefix, MatchSynonym, MatchAbbreviation,
		MatchFuzzy, MatchSemantic, MatchHierarchy:
		return true
	default:
		return false
	}
}

// ConceptMatch is a concept annotated with its winning match kind and
// confidence score
type ConceptMatch struct {
	Concept    *Concept
	Kind       MatchKind
	Confidence float64 // in [0, 1]
}

// Validate checks if the match is well formed
func (m *ConceptMatch) Validate() error {
	if m.Concept == nil {
		return ErrMissingConcept
	}

	if !m.Kind.Valid() {
		return ErrInvalidMatchKind
	}

	if m.Confidence < 0 || m.Confidence > 1 {
		return ErrInvalidConfidence
	}

	return nil
}

// SearchResult is the ranked outcome of a single query.
//
// Invariants: concept codes are unique within Matches, and confidence
// values are monotonically non-increasing across the ordered list.
type SearchResult struct {
	Query           string
	Matches         []ConceptMatch
	Duration        time.Duration
	TotalCandidates int      // candidates considered before dedup/filtering
	Strategies      []string // strategies that contributed candidates
}

// Validate checks the result invariants
func (r *SearchResult) Validate() error {
	seen := make(map[string]struct{}, len(r.Matches))
	prev := 1.0

	for i := range r.Matches {
		m := &r.Matches[i]
		if err := m.Validate(); err != nil {
			return err
		}
		if _, dup := seen[m.Concept.Code]; dup {
			return ErrDuplicateCode
		}
		seen[m.Concept.Code] = struct{}{}
		if m.Confidence > prev {
			return ErrUnorderedResult
		}
		prev = m.Confidence
	}

	return nil
}
