package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConcept(code string) *Concept {
	return &Concept{
		Code:       code,
		Vocabulary: VocabICD10,
		Display:    "Display for " + code,
		Active:     true,
	}
}

func TestConceptMatchValidate(t *testing.T) {
	m := ConceptMatch{Concept: testConcept("J00"), Kind: MatchExact, Confidence: 1.0}
	require.NoError(t, m.Validate())

	t.Run("missing concept", func(t *testing.T) {
		bad := m
		bad.Concept = nil
		assert.ErrorIs(t, bad.Validate(), ErrMissingConcept)
	})

	t.Run("unknown kind", func(t *testing.T) {
		bad := m
		bad.Kind = "oracle"
		assert.ErrorIs(t, bad.Validate(), ErrInvalidMatchKind)
	})

	t.Run("confidence out of range", func(t *testing.T) {
		bad := m
		bad.Confidence = 1.2
		assert.ErrorIs(t, bad.Validate(), ErrInvalidConfidence)

		bad.Confidence = -0.1
		assert.ErrorIs(t, bad.Validate(), ErrInvalidConfidence)
	})
}

func TestSearchResultValidate(t *testing.T) {
	t.Run("ordered unique matches pass", func(t *testing.T) {
		r := SearchResult{
			Query: "cold",
			Matches: []ConceptMatch{
				{Concept: testConcept("J00"), Kind: MatchExact, Confidence: 1.0},
				{Concept: testConcept("J06.9"), Kind: MatchSynonym, Confidence: 0.9},
				{Concept: testConcept("J02.0"), Kind: MatchFuzzy, Confidence: 0.9},
			},
		}
		assert.NoError(t, r.Validate())
	})

	t.Run("duplicate code rejected", func(t *testing.T) {
		r := SearchResult{
			Matches: []ConceptMatch{
				{Concept: testConcept("J00"), Kind: MatchExact, Confidence: 1.0},
				{Concept: testConcept("J00"), Kind: MatchSynonym, Confidence: 0.9},
			},
		}
		assert.ErrorIs(t, r.Validate(), ErrDuplicateCode)
	})

	t.Run("increasing confidence rejected", func(t *testing.T) {
		r := SearchResult{
			Matches: []ConceptMatch{
				{Concept: testConcept("J00"), Kind: MatchSynonym, Confidence: 0.8},
				{Concept: testConcept("J02.0"), Kind: MatchExact, Confidence: 1.0},
			},
		}
		assert.ErrorIs(t, r.Validate(), ErrUnorderedResult)
	})

	t.Run("empty result passes", func(t *testing.T) {
		r := SearchResult{Query: "xyzzy"}
		assert.NoError(t, r.Validate())
	})
}

func TestMatchKindValid(t *testing.T) {
	for _, k := range []MatchKind{MatchExact, MatchPrefix, MatchSynonym, MatchAbbreviation, MatchFuzzy, MatchSemantic, MatchHierarchy} {
		assert.True(t, k.Valid(), string(k))
	}
	assert.False(t, MatchKind("guess").Valid())
}
