package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinterm/clinterm-mcp/pkg/types"
)

func setupTestDB(t *testing.T) *SQLiteStorage {
	storage, err := NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	require.NotNil(t, storage)
	t.Cleanup(func() { _ = storage.Close() })
	return storage
}

func findConcept(t *testing.T, concepts []types.Concept, code string) *types.Concept {
	for i := range concepts {
		if concepts[i].Code == code {
			return &concepts[i]
		}
	}
	t.Fatalf("concept %s not loaded", code)
	return nil
}

func TestNewSQLiteStorage(t *testing.T) {
	storage := setupTestDB(t)
	assert.NotNil(t, storage.db)
}

func TestSchemaVersionRecorded(t *testing.T) {
	storage := setupTestDB(t)

	version, err := SchemaVersion(context.Background(), storage.db)
	require.NoError(t, err)
	assert.Equal(t, CurrentSchemaVersion, version)
}

func TestApplyMigrationsIdempotent(t *testing.T) {
	storage := setupTestDB(t)

	// Second application is a no-op
	require.NoError(t, ApplyMigrations(context.Background(), storage.db))

	version, err := SchemaVersion(context.Background(), storage.db)
	require.NoError(t, err)
	assert.Equal(t, CurrentSchemaVersion, version)
}

func TestImportDatasetRoundTrip(t *testing.T) {
	storage := setupTestDB(t)
	ctx := context.Background()

	ds := &Dataset{
		Vocabulary: types.VocabICD10,
		Concepts: []DatasetConcept{
			{Code: "J02", Display: "Acute pharyngitis", Category: "respiratory"},
			{Code: "J02.0", Display: "Streptococcal pharyngitis", Category: "respiratory",
				Parent: "J02", Billable: true},
			{Code: "B20", Display: "HIV disease", Inactive: true},
			{Code: "E10", Display: "Type 1 diabetes mellitus", Excludes1: []string{"E11"}},
			{Code: "I10", Display: "Essential hypertension", Excludes2: []string{"I15"}},
		},
		Synonyms: map[string][]string{
			"J02.0": {"strep throat"},
		},
		Abbreviations: map[string][]string{
			"URI": {"J02"},
		},
	}
	require.NoError(t, storage.ImportDataset(ctx, ds))

	concepts, err := storage.LoadConcepts(ctx)
	require.NoError(t, err)
	require.Len(t, concepts, 5)

	strep := findConcept(t, concepts, "J02.0")
	assert.Equal(t, types.VocabICD10, strep.Vocabulary)
	assert.Equal(t, "Streptococcal pharyngitis", strep.Display)
	assert.Equal(t, []string{"J02"}, strep.Parents)
	assert.True(t, strep.Attributes.Billable)
	assert.Contains(t, strep.Labels, "strep throat")

	// Children are rebuilt from parent edges
	parent := findConcept(t, concepts, "J02")
	assert.Equal(t, []string{"J02.0"}, parent.Children)

	assert.False(t, findConcept(t, concepts, "B20").Active)
	assert.Equal(t, []string{"E11"}, findConcept(t, concepts, "E10").Attributes.Excludes1)
	assert.Equal(t, []string{"I15"}, findConcept(t, concepts, "I10").Attributes.Excludes2)

	abbrevs, err := storage.LoadAbbreviations(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"J02"}, abbrevs["URI"])
}

func TestImportDatasetMultiParent(t *testing.T) {
	storage := setupTestDB(t)
	ctx := context.Background()

	ds := &Dataset{
		Vocabulary: types.VocabSNOMED,
		Concepts: []DatasetConcept{
			{Code: "64572001", Display: "Disease"},
			{Code: "50043002", Display: "Disorder of respiratory system", Parent: "64572001"},
			{Code: "233604007", Display: "Pneumonia", Parents: []string{"50043002", "64572001"}},
		},
	}
	require.NoError(t, storage.ImportDataset(ctx, ds))

	concepts, err := storage.LoadConcepts(ctx)
	require.NoError(t, err)

	pneumonia := findConcept(t, concepts, "233604007")
	assert.ElementsMatch(t, []string{"50043002", "64572001"}, pneumonia.Parents)
}

func TestImportDatasetLanguageLabels(t *testing.T) {
	storage := setupTestDB(t)
	ctx := context.Background()

	ds := &Dataset{
		Vocabulary: types.VocabSNOMED,
		Concepts: []DatasetConcept{
			{Code: "82272006", Display: "Common cold",
				LabelsByLanguage: map[string]string{"es": "Resfriado común", "fr": "Rhume banal"}},
		},
	}
	require.NoError(t, storage.ImportDataset(ctx, ds))

	concepts, err := storage.LoadConcepts(ctx)
	require.NoError(t, err)

	cold := findConcept(t, concepts, "82272006")
	assert.Equal(t, "Resfriado común", cold.Attributes.LabelsByLanguage["es"])
	assert.Equal(t, "Rhume banal", cold.Attributes.LabelsByLanguage["fr"])
	assert.Empty(t, cold.Labels)
}

func TestImportDatasetRxNormAttributes(t *testing.T) {
	storage := setupTestDB(t)
	ctx := context.Background()

	ds := &Dataset{
		Vocabulary: types.VocabRxNorm,
		Concepts: []DatasetConcept{
			{Code: "5640", Display: "Ibuprofen", Prescribable: true,
				DoseForm: "tablet", Strength: "200 mg", DrugClass: "NSAID",
				Ingredients: []string{"ibuprofen"}},
		},
		Interactions: []DatasetInteraction{
			{CodeA: "11289", CodeB: "5640", Severity: "high", Description: "bleeding risk"},
		},
	}
	require.NoError(t, storage.ImportDataset(ctx, ds))

	concepts, err := storage.LoadConcepts(ctx)
	require.NoError(t, err)

	ibu := findConcept(t, concepts, "5640")
	assert.True(t, ibu.Attributes.Prescribable)
	assert.Equal(t, "tablet", ibu.Attributes.DoseForm)
	assert.Equal(t, "200 mg", ibu.Attributes.Strength)
	assert.Equal(t, "NSAID", ibu.Attributes.DrugClass)
	assert.Equal(t, []string{"ibuprofen"}, ibu.Attributes.Ingredients)

	interactions, err := storage.LoadInteractions(ctx)
	require.NoError(t, err)
	require.Len(t, interactions, 1)
	assert.Equal(t, types.SeverityHigh, interactions[0].Severity)
	// Pair is normalized to lexicographic order on insert
	assert.Equal(t, "11289", interactions[0].CodeA)
	assert.Equal(t, "5640", interactions[0].CodeB)
}

func TestImportDatasetRejectsInvalid(t *testing.T) {
	storage := setupTestDB(t)
	ctx := context.Background()

	err := storage.ImportDataset(ctx, &Dataset{Vocabulary: "loinc"})
	assert.Error(t, err)

	err = storage.ImportDataset(ctx, &Dataset{
		Vocabulary: types.VocabICD10,
		Concepts:   []DatasetConcept{{Code: "", Display: "no code"}},
	})
	assert.Error(t, err)
}

func TestImportDatasetRejectsCrossVocabularyCode(t *testing.T) {
	storage := setupTestDB(t)
	ctx := context.Background()

	require.NoError(t, storage.ImportDataset(ctx, &Dataset{
		Vocabulary: types.VocabRxNorm,
		Concepts:   []DatasetConcept{{Code: "1191", Display: "Aspirin"}},
	}))

	err := storage.ImportDataset(ctx, &Dataset{
		Vocabulary: types.VocabSNOMED,
		Concepts:   []DatasetConcept{{Code: "1191", Display: "Some finding"}},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `already exists in vocabulary "rxnorm"`)

	// The rejected import must not leave partial rows behind
	concepts, err := storage.LoadConcepts(ctx)
	require.NoError(t, err)
	require.Len(t, concepts, 1)
	assert.Equal(t, types.VocabRxNorm, concepts[0].Vocabulary)
}

func TestImportDatasetReimportReplaces(t *testing.T) {
	storage := setupTestDB(t)
	ctx := context.Background()

	ds := &Dataset{
		Vocabulary: types.VocabICD10,
		Concepts:   []DatasetConcept{{Code: "J00", Display: "Old display"}},
	}
	require.NoError(t, storage.ImportDataset(ctx, ds))

	ds.Concepts[0].Display = "New display"
	require.NoError(t, storage.ImportDataset(ctx, ds))

	concepts, err := storage.LoadConcepts(ctx)
	require.NoError(t, err)
	require.Len(t, concepts, 1)
	assert.Equal(t, "New display", concepts[0].Display)
}

func TestCountConcepts(t *testing.T) {
	storage := setupTestDB(t)
	ctx := context.Background()

	n, err := storage.CountConcepts(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	require.NoError(t, storage.ImportDataset(ctx, &Dataset{
		Vocabulary: types.VocabICD10,
		Concepts:   []DatasetConcept{{Code: "J00", Display: "Common cold"}},
	}))

	n, err = storage.CountConcepts(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestBootstrapSeedsEmptyDatabase(t *testing.T) {
	storage := setupTestDB(t)
	ctx := context.Background()

	seeded, err := storage.Bootstrap(ctx)
	require.NoError(t, err)
	assert.True(t, seeded)

	n, err := storage.CountConcepts(ctx)
	require.NoError(t, err)
	assert.Greater(t, n, 20)

	// All three vocabularies present
	concepts, err := storage.LoadConcepts(ctx)
	require.NoError(t, err)
	vocabs := make(map[types.Vocabulary]bool)
	for _, c := range concepts {
		vocabs[c.Vocabulary] = true
	}
	assert.Len(t, vocabs, 3)

	// Second bootstrap is a no-op
	seeded, err = storage.Bootstrap(ctx)
	require.NoError(t, err)
	assert.False(t, seeded)
}

func TestBootstrapSeedBuildsCleanStore(t *testing.T) {
	storage := setupTestDB(t)
	ctx := context.Background()

	_, err := storage.Bootstrap(ctx)
	require.NoError(t, err)

	concepts, err := storage.LoadConcepts(ctx)
	require.NoError(t, err)

	// Every seed concept passes concept validation
	for i := range concepts {
		assert.NoError(t, concepts[i].Validate(), concepts[i].Code)
	}

	interactions, err := storage.LoadInteractions(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, interactions)

	abbrevs, err := storage.LoadAbbreviations(ctx)
	require.NoError(t, err)
	assert.Contains(t, abbrevs, "URI")
	assert.Contains(t, abbrevs, "HTN")
}

func TestStoragePersistsAcrossReopen(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "clinterm.db")
	ctx := context.Background()

	first, err := NewSQLiteStorage(dbPath)
	require.NoError(t, err)
	require.NoError(t, first.ImportDataset(ctx, &Dataset{
		Vocabulary: types.VocabICD10,
		Concepts:   []DatasetConcept{{Code: "J00", Display: "Common cold"}},
	}))
	require.NoError(t, first.Close())

	second, err := NewSQLiteStorage(dbPath)
	require.NoError(t, err)
	defer second.Close()

	n, err := second.CountConcepts(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
