package icd10

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinterm/clinterm-mcp/internal/hierarchy"
	"github.com/clinterm/clinterm-mcp/internal/store"
	"github.com/clinterm/clinterm-mcp/pkg/types"
)

func setupTestChecker(t *testing.T) *Checker {
	b := store.NewBuilder(6)
	add := func(c types.Concept) {
		c.Vocabulary = types.VocabICD10
		c.Active = true
		require.NoError(t, b.Add(c))
	}

	add(types.Concept{Code: "E10", Display: "Type 1 diabetes mellitus",
		Attributes: types.ConceptAttributes{Excludes1: []string{"E11"}}})
	add(types.Concept{Code: "E11", Display: "Type 2 diabetes mellitus",
		Attributes: types.ConceptAttributes{Excludes1: []string{"E10"}}})
	add(types.Concept{Code: "E11.9", Display: "Type 2 diabetes without complications",
		Parents:    []string{"E11"},
		Attributes: types.ConceptAttributes{Billable: true}})
	add(types.Concept{Code: "I10", Display: "Essential hypertension",
		Attributes: types.ConceptAttributes{Billable: true, Excludes2: []string{"I15"}}})
	add(types.Concept{Code: "I15", Display: "Secondary hypertension"})
	add(types.Concept{Code: "R51", Display: "Headache",
		Attributes: types.ConceptAttributes{Billable: true}})

	s := b.Build()
	hier, err := hierarchy.Build(s)
	require.NoError(t, err)
	return NewChecker(s, hier)
}

func TestCompatibleUnrelatedCodes(t *testing.T) {
	c := setupTestChecker(t)

	ok, reason, err := c.Compatible("I10", "R51")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Empty(t, reason)
}

func TestCompatibleExcludes1(t *testing.T) {
	c := setupTestChecker(t)

	ok, reason, err := c.Compatible("E10", "E11")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, "E10 is mutually exclusive with E11", reason)

	// Exclusion is symmetric
	ok, reason, err = c.Compatible("E11", "E10")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Contains(t, reason, "mutually exclusive")
}

func TestCompatibleParentChild(t *testing.T) {
	c := setupTestChecker(t)

	ok, reason, err := c.Compatible("E11", "E11.9")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, "E11 is a parent of E11.9", reason)

	ok, reason, err = c.Compatible("E11.9", "E11")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, "E11 is a parent of E11.9", reason)
}

func TestCompatibleExcludes2DoesNotBlock(t *testing.T) {
	c := setupTestChecker(t)

	ok, reason, err := c.Compatible("I10", "I15")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Empty(t, reason)

	notes := c.Notes("I10", "I15")
	require.Len(t, notes, 1)
	assert.Contains(t, notes[0], "excludes2")
}

func TestCompatibleUnknownCode(t *testing.T) {
	c := setupTestChecker(t)

	_, _, err := c.Compatible("Z99", "I10")
	assert.ErrorIs(t, err, types.ErrNotFound)

	_, _, err = c.Compatible("I10", "Z99")
	assert.ErrorIs(t, err, types.ErrNotFound)
}

func TestNotesEmptyForUnrelatedCodes(t *testing.T) {
	c := setupTestChecker(t)
	assert.Empty(t, c.Notes("I10", "R51"))
}

func TestBillable(t *testing.T) {
	billable := &types.Concept{Code: "I10", Vocabulary: types.VocabICD10,
		Attributes: types.ConceptAttributes{Billable: true}}
	category := &types.Concept{Code: "E11", Vocabulary: types.VocabICD10}
	drug := &types.Concept{Code: "5640", Vocabulary: types.VocabRxNorm,
		Attributes: types.ConceptAttributes{Billable: true}}

	assert.True(t, Billable(billable))
	assert.False(t, Billable(category))
	assert.False(t, Billable(drug))
}

func TestChapter(t *testing.T) {
	assert.Equal(t, "Diseases of the respiratory system", Chapter("J00"))
	assert.Equal(t, "Endocrine, nutritional and metabolic diseases", Chapter("E11.9"))
	assert.Equal(t, "Neoplasms", Chapter("C50"))
	assert.Empty(t, Chapter(""))
	assert.Empty(t, Chapter("U07"))
}
