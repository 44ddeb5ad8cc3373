package strategy

import (
	"math"
	"strings"

	"github.com/clinterm/clinterm-mcp/internal/lexical"
	"github.com/clinterm/clinterm-mcp/internal/store"
	"github.com/clinterm/clinterm-mcp/pkg/types"
)

// minCosine is the cosine similarity floor below which semantic
// candidates are discarded
const minCosine = 0.3

// semanticWeight scales cosine similarity into confidence
const semanticWeight = 0.85

// Semantic matches via term-frequency vector similarity between the
// query and each concept's description text. The per-concept vectors
// are precomputed at construction; queries only vectorize themselves.
// Optional: the pipeline omits it when disabled.
type Semantic struct {
	vectors []map[string]float64 // arena index -> tf vector, unit length
}

// NewSemantic builds term-frequency vectors for every concept
func NewSemantic(s *store.Store) *Semantic {
	vectors := make([]map[string]float64, s.Len())
	for i := int32(0); i < int32(s.Len()); i++ {
		c := s.At(i)
		text := c.Display + " " + strings.Join(c.Labels, " ")
		vectors[i] = vectorize(text)
	}
	return &Semantic{vectors: vectors}
}

func (s *Semantic) Name() string { return "semantic" }

func (s *Semantic) Match(query string, _ int) []Candidate {
	qv := vectorize(query)
	if len(qv) == 0 {
		return nil
	}

	var out []Candidate
	for i, cv := range s.vectors {
		cos := cosine(qv, cv)
		if cos < minCosine {
			continue
		}
		out = append(out, Candidate{
			Index:      int32(i),
			Kind:       types.MatchSemantic,
			Confidence: cos * semanticWeight,
		})
	}
	return out
}

// vectorize builds a unit-length term-frequency vector
func vectorize(text string) map[string]float64 {
	counts := make(map[string]float64)
	for _, tok := range lexical.Tokens(text) {
		counts[tok]++
	}
	if len(counts) == 0 {
		return nil
	}

	var norm float64
	for _, n := range counts {
		norm += n * n
	}
	norm = math.Sqrt(norm)
	for tok, n := range counts {
		counts[tok] = n / norm
	}
	return counts
}

// cosine computes the dot product of two unit vectors, iterating the
// smaller one
func cosine(a, b map[string]float64) float64 {
	if len(b) < len(a) {
		a, b = b, a
	}
	var dot float64
	for tok, av := range a {
		if bv, ok := b[tok]; ok {
			dot += av * bv
		}
	}
	return dot
}
