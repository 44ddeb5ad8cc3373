package lexical

import (
	"sort"
	"strings"
	"unicode"

	"github.com/clinterm/clinterm-mcp/internal/store"
)

// Index is an inverted index from normalized tokens and labels to arena
// indices. It is built once from concept displays, synonyms, and
// abbreviations, and is read-only afterwards.
type Index struct {
	tokens  map[string][]int32 // token -> postings
	labels  map[string][]int32 // full normalized label -> concepts
	abbrevs map[string][]int32 // normalized abbreviation -> concepts
}

// Abbreviations is a label -> codes table supplied by the dataset,
// keyed before normalization
type Abbreviations map[string][]string

// Build constructs the lexical index over every concept in the store
func Build(s *store.Store, abbrevs Abbreviations) *Index {
	idx := &Index{
		tokens:  make(map[string][]int32),
		labels:  make(map[string][]int32),
		abbrevs: make(map[string][]int32),
	}

	for i := int32(0); i < int32(s.Len()); i++ {
		c := s.At(i)
		idx.addLabel(c.Display, i)
		for _, label := range c.Labels {
			idx.addLabel(label, i)
		}
	}

	for label, codes := range abbrevs {
		key := Normalize(label)
		if key == "" {
			continue
		}
		for _, code := range codes {
			if ci := s.IndexOf(code); ci >= 0 {
				idx.abbrevs[key] = appendUnique(idx.abbrevs[key], ci)
			}
		}
	}

	idx.sortPostings()
	return idx
}

func (idx *Index) addLabel(label string, i int32) {
	norm := Normalize(label)
	if norm == "" {
		return
	}

	idx.labels[norm] = appendUnique(idx.labels[norm], i)
	for _, tok := range strings.Fields(norm) {
		idx.tokens[tok] = appendUnique(idx.tokens[tok], i)
	}
}

// sortPostings makes lookup order deterministic
func (idx *Index) sortPostings() {
	for _, m := range []map[string][]int32{idx.tokens, idx.labels, idx.abbrevs} {
		for _, postings := range m {
			sort.Slice(postings, func(a, b int) bool { return postings[a] < postings[b] })
		}
	}
}

// LookupLabel returns concepts whose full display or synonym equals the
// normalized query
func (idx *Index) LookupLabel(query string) []int32 {
	return idx.labels[Normalize(query)]
}

// LookupAbbrev returns concepts registered under the query as an
// abbreviation
func (idx *Index) LookupAbbrev(query string) []int32 {
	return idx.abbrevs[Normalize(query)]
}

// LookupToken returns the postings for a single normalized token
func (idx *Index) LookupToken(token string) []int32 {
	return idx.tokens[token]
}

// TokenOverlap returns concepts sharing at least one token with the
// query, with the fraction of query tokens each concept matched
func (idx *Index) TokenOverlap(query string) map[int32]float64 {
	toks := Tokens(query)
	if len(toks) == 0 {
		return nil
	}

	counts := make(map[int32]int)
	for _, tok := range toks {
		for _, ci := range idx.tokens[tok] {
			counts[ci]++
		}
	}

	overlap := make(map[int32]float64, len(counts))
	for ci, n := range counts {
		overlap[ci] = float64(n) / float64(len(toks))
	}
	return overlap
}

// Labels returns every normalized label with its postings. Used by the
// fuzzy strategy to scan the label corpus.
func (idx *Index) Labels() map[string][]int32 {
	return idx.labels
}

// Normalize lowercases text, strips punctuation, and collapses
// whitespace runs to single spaces
func Normalize(text string) string {
	var b strings.Builder
	b.Grow(len(text))

	lastSpace := true
	for _, r := range strings.ToLower(text) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			lastSpace = false
		case !lastSpace:
			b.WriteByte(' ')
			lastSpace = true
		}
	}

	return strings.TrimSpace(b.String())
}

// Tokens splits text into normalized tokens
func Tokens(text string) []string {
	norm := Normalize(text)
	if norm == "" {
		return nil
	}
	return strings.Fields(norm)
}

func appendUnique(postings []int32, i int32) []int32 {
	for _, p := range postings {
		if p == i {
			return postings
		}
	}
	return append(postings, i)
}
