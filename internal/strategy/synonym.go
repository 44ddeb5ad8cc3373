package strategy

import (
	"github.com/clinterm/clinterm-mcp/internal/lexical"
	"github.com/clinterm/clinterm-mcp/pkg/types"
)

// Synonym matches the query against alternate-label and abbreviation
// maps. Full-label matches score 0.9, abbreviation matches 0.85, and
// partial token-overlap matches 0.75.
type Synonym struct {
	lex *lexical.Index
}

// NewSynonym creates the synonym/abbreviation strategy
func NewSynonym(lex *lexical.Index) *Synonym {
	return &Synonym{lex: lex}
}

func (s *Synonym) Name() string { return "synonym" }

// partialOverlapFloor is the minimum fraction of query tokens a concept
// must share to qualify as a partial match
const partialOverlapFloor = 0.5

func (s *Synonym) Match(query string, limit int) []Candidate {
	var out []Candidate
	seen := make(map[int32]struct{})

	for _, i := range s.lex.LookupLabel(query) {
		out = append(out, Candidate{Index: i, Kind: types.MatchSynonym, Confidence: 0.9})
		seen[i] = struct{}{}
	}

	for _, i := range s.lex.LookupAbbrev(query) {
		if _, dup := seen[i]; dup {
			continue
		}
		out = append(out, Candidate{Index: i, Kind: types.MatchAbbreviation, Confidence: 0.85})
		seen[i] = struct{}{}
	}

	// Partial matches only when full matches left headroom
	if limit > 0 && len(out) >= limit {
		return out
	}

	for i, overlap := range s.lex.TokenOverlap(query) {
		if overlap < partialOverlapFloor {
			continue
		}
		if _, dup := seen[i]; dup {
			continue
		}
		out = append(out, Candidate{Index: i, Kind: types.MatchSynonym, Confidence: 0.75})
	}

	return out
}
