package lexical

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinterm/clinterm-mcp/internal/store"
	"github.com/clinterm/clinterm-mcp/pkg/types"
)

func setupTestIndex(t *testing.T) (*store.Store, *Index) {
	b := store.NewBuilder(4)
	require.NoError(t, b.Add(types.Concept{
		Code: "J00", Vocabulary: types.VocabICD10, Active: true,
		Display: "Acute nasopharyngitis [common cold]",
		Labels:  []string{"common cold", "head cold"},
	}))
	require.NoError(t, b.Add(types.Concept{
		Code: "J02.0", Vocabulary: types.VocabICD10, Active: true,
		Display: "Streptococcal pharyngitis",
		Labels:  []string{"strep throat"},
	}))
	require.NoError(t, b.Add(types.Concept{
		Code: "J06.9", Vocabulary: types.VocabICD10, Active: true,
		Display: "Acute upper respiratory infection, unspecified",
	}))
	s := b.Build()

	idx := Build(s, Abbreviations{
		"URI": {"J06.9"},
		"XX":  {"unknown-code"}, // silently dropped
	})
	return s, idx
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Common Cold", "common cold"},
		{"  Acute   nasopharyngitis [common cold] ", "acute nasopharyngitis common cold"},
		{"TYPE-2 Diabetes", "type 2 diabetes"},
		{"...", ""},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Normalize(tt.in), tt.in)
	}
}

func TestTokens(t *testing.T) {
	assert.Equal(t, []string{"strep", "throat"}, Tokens("Strep Throat!"))
	assert.Nil(t, Tokens("   "))
}

func TestLookupLabel(t *testing.T) {
	s, idx := setupTestIndex(t)

	postings := idx.LookupLabel("Common Cold")
	require.Len(t, postings, 1)
	assert.Equal(t, "J00", s.At(postings[0]).Code)

	// Display text is also indexed as a label
	postings = idx.LookupLabel("streptococcal pharyngitis")
	require.Len(t, postings, 1)
	assert.Equal(t, "J02.0", s.At(postings[0]).Code)

	assert.Empty(t, idx.LookupLabel("influenza"))
}

func TestLookupAbbrev(t *testing.T) {
	s, idx := setupTestIndex(t)

	postings := idx.LookupAbbrev("uri")
	require.Len(t, postings, 1)
	assert.Equal(t, "J06.9", s.At(postings[0]).Code)

	// Unknown codes in the abbreviation table are dropped at build
	assert.Empty(t, idx.LookupAbbrev("XX"))
}

func TestTokenOverlap(t *testing.T) {
	s, idx := setupTestIndex(t)

	overlap := idx.TokenOverlap("acute cold")
	require.NotEmpty(t, overlap)

	// J00 matches both tokens, J06.9 only "acute"
	j00 := s.IndexOf("J00")
	j069 := s.IndexOf("J06.9")
	assert.InDelta(t, 1.0, overlap[j00], 1e-9)
	assert.InDelta(t, 0.5, overlap[j069], 1e-9)

	assert.Nil(t, idx.TokenOverlap("   "))
}

func TestLabelsCorpus(t *testing.T) {
	_, idx := setupTestIndex(t)

	labels := idx.Labels()
	assert.Contains(t, labels, "strep throat")
	assert.Contains(t, labels, "common cold")
}
