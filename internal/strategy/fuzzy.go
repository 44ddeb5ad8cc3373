package strategy

import (
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"

	"github.com/clinterm/clinterm-mcp/internal/lexical"
	"github.com/clinterm/clinterm-mcp/pkg/types"
)

// minSimilarity is the 0-100 similarity floor below which fuzzy
// candidates are discarded
const minSimilarity = 70

// fuzzyWeight scales similarity into confidence so a perfect fuzzy hit
// still ranks below exact and synonym matches
const fuzzyWeight = 0.8

// Fuzzy matches the query against the label corpus using token-sort
// edit-distance similarity. Optional: the pipeline omits it when
// disabled; searching degrades rather than fails.
type Fuzzy struct {
	lex *lexical.Index
}

// NewFuzzy creates the fuzzy-match strategy
func NewFuzzy(lex *lexical.Index) *Fuzzy {
	return &Fuzzy{lex: lex}
}

func (f *Fuzzy) Name() string { return "fuzzy" }

func (f *Fuzzy) Match(query string, _ int) []Candidate {
	q := tokenSort(query)
	if q == "" {
		return nil
	}

	best := make(map[int32]float64)
	for label, postings := range f.lex.Labels() {
		sim := similarity(q, tokenSort(label))
		if sim < minSimilarity {
			continue
		}
		for _, i := range postings {
			if sim > best[i] {
				best[i] = sim
			}
		}
	}

	out := make([]Candidate, 0, len(best))
	for i, sim := range best {
		out = append(out, Candidate{
			Index:      i,
			Kind:       types.MatchFuzzy,
			Confidence: sim / 100 * fuzzyWeight,
		})
	}
	return out
}

// similarity converts Levenshtein distance to a 0-100 ratio
func similarity(a, b string) float64 {
	if a == b {
		return 100
	}
	longest := len(a)
	if len(b) > longest {
		longest = len(b)
	}
	if longest == 0 {
		return 0
	}
	dist := levenshtein.ComputeDistance(a, b)
	return (1 - float64(dist)/float64(longest)) * 100
}

// tokenSort normalizes and alphabetizes tokens so word order doesn't
// penalize the edit distance
func tokenSort(text string) string {
	toks := lexical.Tokens(text)
	sort.Strings(toks)
	return strings.Join(toks, " ")
}
