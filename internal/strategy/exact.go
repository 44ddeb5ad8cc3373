package strategy

import (
	"strings"

	"github.com/clinterm/clinterm-mcp/internal/lexical"
	"github.com/clinterm/clinterm-mcp/internal/store"
	"github.com/clinterm/clinterm-mcp/pkg/types"
)

// Exact matches a query against concept codes and normalized display
// text with confidence 1.0
type Exact struct {
	store *store.Store
	lex   *lexical.Index
}

// NewExact creates the exact-match strategy
func NewExact(s *store.Store, lex *lexical.Index) *Exact {
	return &Exact{store: s, lex: lex}
}

func (e *Exact) Name() string { return "exact" }

func (e *Exact) Match(query string, _ int) []Candidate {
	var out []Candidate

	// Code lookup is case-insensitive: codes are stored uppercase for
	// ICD-10 and numerically for SNOMED/RxNorm.
	code := strings.ToUpper(strings.TrimSpace(query))
	if i := e.store.IndexOf(code); i >= 0 {
		out = append(out, Candidate{Index: i, Kind: types.MatchExact, Confidence: 1.0})
	}

	for _, i := range e.lex.LookupLabel(query) {
		if e.store.At(i).Code == code {
			continue // already matched by code
		}
		if lexical.Normalize(e.store.At(i).Display) == lexical.Normalize(query) {
			out = append(out, Candidate{Index: i, Kind: types.MatchExact, Confidence: 1.0})
		}
	}

	return out
}
