package storage

import (
	"context"
	"fmt"

	"github.com/clinterm/clinterm-mcp/pkg/types"
)

// Bootstrap seeds the built-in dataset when the store is empty, so the
// engine starts even without an externally produced dataset. Returns
// true when seeding happened.
func (s *SQLiteStorage) Bootstrap(ctx context.Context) (bool, error) {
	n, err := s.CountConcepts(ctx)
	if err != nil {
		return false, err
	}
	if n > 0 {
		return false, nil
	}

	for _, ds := range SeedDatasets() {
		if err := s.ImportDataset(ctx, ds); err != nil {
			return false, fmt.Errorf("failed to seed %s dataset: %w", ds.Vocabulary, err)
		}
	}
	return true, nil
}

// SeedDatasets returns the built-in seed vocabularies: a small but
// representative slice of ICD-10, SNOMED CT, and RxNorm sufficient for
// development and tests.
func SeedDatasets() []*Dataset {
	return []*Dataset{seedICD10(), seedSNOMED(), seedRxNorm()}
}

func seedICD10() *Dataset {
	return &Dataset{
		Vocabulary: types.VocabICD10,
		Concepts: []DatasetConcept{
			{Code: "J00-J06", Display: "Acute upper respiratory infections", Category: "respiratory"},
			{Code: "J00", Display: "Acute nasopharyngitis [common cold]", Category: "respiratory", Parent: "J00-J06", Billable: true},
			{Code: "J02", Display: "Acute pharyngitis", Category: "respiratory", Parent: "J00-J06"},
			{Code: "J02.0", Display: "Streptococcal pharyngitis", Category: "respiratory", Parent: "J02", Billable: true},
			{Code: "J02.9", Display: "Acute pharyngitis, unspecified", Category: "respiratory", Parent: "J02", Billable: true},
			{Code: "J06", Display: "Acute upper respiratory infections of multiple and unspecified sites", Category: "respiratory", Parent: "J00-J06"},
			{Code: "J06.9", Display: "Acute upper respiratory infection, unspecified", Category: "respiratory", Parent: "J06", Billable: true},
			{Code: "J45", Display: "Asthma", Category: "respiratory"},
			{Code: "J45.2", Display: "Mild intermittent asthma", Category: "respiratory", Parent: "J45", Billable: true},
			{Code: "J45.9", Display: "Asthma, unspecified", Category: "respiratory", Parent: "J45", Billable: true},
			{Code: "E10", Display: "Type 1 diabetes mellitus", Category: "endocrine", Excludes1: []string{"E11"}},
			{Code: "E11", Display: "Type 2 diabetes mellitus", Category: "endocrine", Excludes1: []string{"E10"}},
			{Code: "E11.9", Display: "Type 2 diabetes mellitus without complications", Category: "endocrine", Parent: "E11", Billable: true},
			{Code: "I10", Display: "Essential (primary) hypertension", Category: "circulatory", Billable: true, Excludes2: []string{"I15"}},
			{Code: "I15", Display: "Secondary hypertension", Category: "circulatory"},
			{Code: "R51", Display: "Headache", Category: "symptoms", Billable: true},
			{Code: "B20", Display: "Human immunodeficiency virus [HIV] disease", Category: "infectious", Billable: true, Inactive: true},
		},
		Synonyms: map[string][]string{
			"J00":   {"common cold", "acute rhinitis", "head cold"},
			"J02.0": {"strep throat", "streptococcal sore throat"},
			"J45":   {"bronchial asthma"},
			"E11":   {"type 2 diabetes", "adult-onset diabetes"},
			"I10":   {"high blood pressure", "essential hypertension"},
			"R51":   {"cephalgia"},
		},
		Abbreviations: map[string][]string{
			"URI":  {"J06", "J06.9"},
			"T2DM": {"E11"},
			"HTN":  {"I10"},
			"DM":   {"E10", "E11"},
		},
	}
}

func seedSNOMED() *Dataset {
	return &Dataset{
		Vocabulary: types.VocabSNOMED,
		Concepts: []DatasetConcept{
			{Code: "404684003", Display: "Clinical finding", Category: "finding"},
			{Code: "64572001", Display: "Disease", Category: "disorder", Parent: "404684003"},
			{Code: "50043002", Display: "Disorder of respiratory system", Category: "disorder", Parent: "64572001"},
			{Code: "82272006", Display: "Common cold", Category: "disorder", Parent: "50043002",
				LabelsByLanguage: map[string]string{"es": "Resfriado común", "fr": "Rhume banal", "nl": "Verkoudheid"}},
			{Code: "195967001", Display: "Asthma", Category: "disorder", Parent: "50043002"},
			{Code: "233604007", Display: "Pneumonia", Category: "disorder",
				Parents: []string{"50043002", "64572001"}},
			{Code: "73211009", Display: "Diabetes mellitus", Category: "disorder", Parent: "64572001"},
			{Code: "44054006", Display: "Type 2 diabetes mellitus", Category: "disorder", Parent: "73211009"},
			{Code: "38341003", Display: "Hypertensive disorder", Category: "disorder", Parent: "64572001",
				LabelsByLanguage: map[string]string{"es": "Hipertensión arterial"}},
			{Code: "22298006", Display: "Myocardial infarction", Category: "disorder", Parent: "64572001",
				LabelsByLanguage: map[string]string{"es": "Infarto de miocardio"}},
			{Code: "271737000", Display: "Anemia", Category: "disorder", Parent: "64572001"},
		},
		Synonyms: map[string][]string{
			"82272006": {"common cold", "acute coryza"},
			"22298006": {"heart attack", "cardiac infarction"},
			"38341003": {"high blood pressure"},
		},
		Abbreviations: map[string][]string{
			"MI": {"22298006"},
			"DM": {"73211009"},
		},
	}
}

func seedRxNorm() *Dataset {
	return &Dataset{
		Vocabulary: types.VocabRxNorm,
		Concepts: []DatasetConcept{
			{Code: "5640", Display: "Ibuprofen", Category: "nsaid", Prescribable: true,
				DoseForm: "tablet", Strength: "200 mg", DrugClass: "NSAID", Ingredients: []string{"ibuprofen"}},
			{Code: "1191", Display: "Aspirin", Category: "nsaid", Prescribable: true,
				DoseForm: "tablet", Strength: "81 mg", DrugClass: "NSAID", Ingredients: []string{"aspirin"}},
			{Code: "11289", Display: "Warfarin", Category: "anticoagulant", Prescribable: true,
				DoseForm: "tablet", Strength: "5 mg", DrugClass: "anticoagulant", Ingredients: []string{"warfarin"}},
			{Code: "6809", Display: "Metformin", Category: "antidiabetic", Prescribable: true,
				DoseForm: "tablet", Strength: "500 mg", DrugClass: "biguanide", Ingredients: []string{"metformin"}},
			{Code: "29046", Display: "Lisinopril", Category: "antihypertensive", Prescribable: true,
				DoseForm: "tablet", Strength: "10 mg", DrugClass: "ACE inhibitor", Ingredients: []string{"lisinopril"}},
			{Code: "7980", Display: "Penicillin V", Category: "antibiotic", Prescribable: true,
				DoseForm: "tablet", Strength: "500 mg", DrugClass: "penicillin", Ingredients: []string{"penicillin V"}},
			{Code: "161", Display: "Acetaminophen", Category: "analgesic", Prescribable: true,
				DoseForm: "tablet", Strength: "500 mg", DrugClass: "analgesic", Ingredients: []string{"acetaminophen"}},
		},
		Synonyms: map[string][]string{
			"5640": {"Advil", "Motrin"},
			"1191": {"acetylsalicylic acid"},
			"161":  {"Tylenol", "paracetamol"},
		},
		Abbreviations: map[string][]string{
			"ASA":  {"1191"},
			"APAP": {"161"},
		},
		Interactions: []DatasetInteraction{
			{CodeA: "11289", CodeB: "1191", Severity: "high",
				Description: "Concurrent use of warfarin and aspirin significantly increases bleeding risk"},
			{CodeA: "11289", CodeB: "5640", Severity: "high",
				Description: "NSAIDs potentiate warfarin anticoagulation and increase GI bleeding risk"},
			{CodeA: "1191", CodeB: "5640", Severity: "moderate",
				Description: "Ibuprofen may reduce the cardioprotective effect of low-dose aspirin"},
			{CodeA: "29046", CodeB: "5640", Severity: "moderate",
				Description: "NSAIDs may blunt the antihypertensive effect of ACE inhibitors and impair renal function"},
		},
	}
}
