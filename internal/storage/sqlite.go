package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/clinterm/clinterm-mcp/internal/lexical"
	"github.com/clinterm/clinterm-mcp/pkg/types"
)

// SQLiteStorage implements the Storage interface using SQLite
type SQLiteStorage struct {
	db *sql.DB
}

// openDatabase opens a SQLite database with appropriate settings
func openDatabase(dbPath string) (*sql.DB, error) {
	db, err := sql.Open(DriverName, dbPath)
	if err != nil {
		return nil, err
	}

	// Enable WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	// SQLite benefits from a single writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	return db, nil
}

// NewSQLiteStorage creates a new SQLite storage instance
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	db, err := openDatabase(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := ApplyMigrations(context.Background(), db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to apply migrations: %w", err)
	}

	return &SQLiteStorage{db: db}, nil
}

// Close closes the database connection
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// ImportDataset inserts one vocabulary document atomically
func (s *SQLiteStorage) ImportDataset(ctx context.Context, ds *Dataset) error {
	if !ds.Vocabulary.Valid() {
		return fmt.Errorf("dataset has invalid vocabulary %q", ds.Vocabulary)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for i := range ds.Concepts {
		if err := insertConcept(ctx, tx, ds.Vocabulary, &ds.Concepts[i]); err != nil {
			return err
		}
	}

	for code, labels := range ds.Synonyms {
		for _, label := range labels {
			if err := insertLabel(ctx, tx, code, label, "", false); err != nil {
				return err
			}
		}
	}

	for label, codes := range ds.Abbreviations {
		for _, code := range codes {
			if err := insertLabel(ctx, tx, code, label, "", true); err != nil {
				return err
			}
		}
	}

	for _, ix := range ds.Interactions {
		a, b := ix.CodeA, ix.CodeB
		if b < a {
			a, b = b, a
		}
		_, err := tx.ExecContext(ctx, `
			INSERT OR REPLACE INTO drug_interactions (code_a, code_b, severity, description)
			VALUES (?, ?, ?, ?)`,
			a, b, ix.Severity, ix.Description)
		if err != nil {
			return fmt.Errorf("failed to store interaction %s/%s: %w", a, b, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit dataset import: %w", err)
	}
	return nil
}

func insertConcept(ctx context.Context, tx *sql.Tx, vocab types.Vocabulary, c *DatasetConcept) error {
	if c.Code == "" || c.Display == "" {
		return fmt.Errorf("dataset concept requires code and display, got %q/%q", c.Code, c.Display)
	}

	// The engine keys every lookup by bare code, so a code may live in
	// only one vocabulary. Rejecting the collision here keeps a bad
	// import from leaving the persisted dataset unloadable.
	var existing string
	err := tx.QueryRowContext(ctx,
		"SELECT vocabulary FROM concepts WHERE code = ? AND vocabulary != ?",
		c.Code, string(vocab)).Scan(&existing)
	if err != nil && err != sql.ErrNoRows {
		return fmt.Errorf("failed to check concept %q: %w", c.Code, err)
	}
	if err == nil {
		return fmt.Errorf("concept code %q already exists in vocabulary %q", c.Code, existing)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT OR REPLACE INTO concepts
			(code, vocabulary, display, category, active, billable, prescribable, dose_form, strength, drug_class)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.Code, string(vocab), c.Display, c.Category, !c.Inactive,
		c.Billable, c.Prescribable, c.DoseForm, c.Strength, c.DrugClass)
	if err != nil {
		return fmt.Errorf("failed to store concept %q: %w", c.Code, err)
	}

	for _, parent := range c.allParents() {
		if _, err := tx.ExecContext(ctx,
			"INSERT OR IGNORE INTO concept_parents (code, parent_code) VALUES (?, ?)",
			c.Code, parent); err != nil {
			return fmt.Errorf("failed to store parent edge %q->%q: %w", c.Code, parent, err)
		}
	}

	for _, excluded := range c.Excludes1 {
		if err := insertExclusion(ctx, tx, c.Code, excluded, 1); err != nil {
			return err
		}
	}
	for _, excluded := range c.Excludes2 {
		if err := insertExclusion(ctx, tx, c.Code, excluded, 2); err != nil {
			return err
		}
	}

	for _, ingredient := range c.Ingredients {
		if _, err := tx.ExecContext(ctx,
			"INSERT OR IGNORE INTO concept_ingredients (code, ingredient) VALUES (?, ?)",
			c.Code, ingredient); err != nil {
			return fmt.Errorf("failed to store ingredient for %q: %w", c.Code, err)
		}
	}

	for lang, label := range c.LabelsByLanguage {
		if err := insertLabel(ctx, tx, c.Code, label, lang, false); err != nil {
			return err
		}
	}

	return nil
}

func insertLabel(ctx context.Context, tx *sql.Tx, code, label, language string, abbreviation bool) error {
	_, err := tx.ExecContext(ctx, `
		INSERT OR IGNORE INTO concept_labels (code, label, language, is_abbreviation)
		VALUES (?, ?, ?, ?)`,
		code, label, language, abbreviation)
	if err != nil {
		return fmt.Errorf("failed to store label %q for %q: %w", label, code, err)
	}
	return nil
}

func insertExclusion(ctx context.Context, tx *sql.Tx, code, excluded string, kind int) error {
	_, err := tx.ExecContext(ctx, `
		INSERT OR IGNORE INTO concept_exclusions (code, excluded_code, kind)
		VALUES (?, ?, ?)`,
		code, excluded, kind)
	if err != nil {
		return fmt.Errorf("failed to store exclusion %q->%q: %w", code, excluded, err)
	}
	return nil
}

// LoadConcepts returns every concept across all vocabularies, with
// labels, parent edges, children, exclusions, and ingredients resolved
func (s *SQLiteStorage) LoadConcepts(ctx context.Context) ([]types.Concept, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT code, vocabulary, display, category, active, billable, prescribable,
		       dose_form, strength, drug_class
		FROM concepts ORDER BY vocabulary, code`)
	if err != nil {
		return nil, fmt.Errorf("failed to query concepts: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var concepts []types.Concept
	byCode := make(map[string]int)

	for rows.Next() {
		var c types.Concept
		var vocab string
		var category, doseForm, strength, drugClass sql.NullString
		if err := rows.Scan(&c.Code, &vocab, &c.Display, &category, &c.Active,
			&c.Attributes.Billable, &c.Attributes.Prescribable,
			&doseForm, &strength, &drugClass); err != nil {
			return nil, fmt.Errorf("failed to scan concept: %w", err)
		}
		c.Vocabulary = types.Vocabulary(vocab)
		c.Category = category.String
		c.Attributes.DoseForm = doseForm.String
		c.Attributes.Strength = strength.String
		c.Attributes.DrugClass = drugClass.String

		byCode[c.Code] = len(concepts)
		concepts = append(concepts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := s.attachLabels(ctx, concepts, byCode); err != nil {
		return nil, err
	}
	if err := s.attachParents(ctx, concepts, byCode); err != nil {
		return nil, err
	}
	if err := s.attachExclusions(ctx, concepts, byCode); err != nil {
		return nil, err
	}
	if err := s.attachIngredients(ctx, concepts, byCode); err != nil {
		return nil, err
	}

	return concepts, nil
}

func (s *SQLiteStorage) attachLabels(ctx context.Context, concepts []types.Concept, byCode map[string]int) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT code, label, language, is_abbreviation
		FROM concept_labels ORDER BY code, label`)
	if err != nil {
		return fmt.Errorf("failed to query labels: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var code, label string
		var language sql.NullString
		var abbreviation bool
		if err := rows.Scan(&code, &label, &language, &abbreviation); err != nil {
			return fmt.Errorf("failed to scan label: %w", err)
		}

		i, ok := byCode[code]
		if !ok {
			continue // label for a concept outside the loaded set
		}

		if language.String != "" {
			if concepts[i].Attributes.LabelsByLanguage == nil {
				concepts[i].Attributes.LabelsByLanguage = make(map[string]string)
			}
			concepts[i].Attributes.LabelsByLanguage[language.String] = label
			continue
		}
		concepts[i].Labels = append(concepts[i].Labels, label)
	}
	return rows.Err()
}

func (s *SQLiteStorage) attachParents(ctx context.Context, concepts []types.Concept, byCode map[string]int) error {
	rows, err := s.db.QueryContext(ctx,
		"SELECT code, parent_code FROM concept_parents ORDER BY code, parent_code")
	if err != nil {
		return fmt.Errorf("failed to query parent edges: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var code, parent string
		if err := rows.Scan(&code, &parent); err != nil {
			return fmt.Errorf("failed to scan parent edge: %w", err)
		}

		ci, ok := byCode[code]
		if !ok {
			continue
		}
		concepts[ci].Parents = append(concepts[ci].Parents, parent)

		if pi, ok := byCode[parent]; ok {
			concepts[pi].Children = append(concepts[pi].Children, code)
		}
	}
	return rows.Err()
}

func (s *SQLiteStorage) attachExclusions(ctx context.Context, concepts []types.Concept, byCode map[string]int) error {
	rows, err := s.db.QueryContext(ctx,
		"SELECT code, excluded_code, kind FROM concept_exclusions ORDER BY code, excluded_code")
	if err != nil {
		return fmt.Errorf("failed to query exclusions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var code, excluded string
		var kind int
		if err := rows.Scan(&code, &excluded, &kind); err != nil {
			return fmt.Errorf("failed to scan exclusion: %w", err)
		}

		i, ok := byCode[code]
		if !ok {
			continue
		}
		switch kind {
		case 1:
			concepts[i].Attributes.Excludes1 = append(concepts[i].Attributes.Excludes1, excluded)
		case 2:
			concepts[i].Attributes.Excludes2 = append(concepts[i].Attributes.Excludes2, excluded)
		}
	}
	return rows.Err()
}

func (s *SQLiteStorage) attachIngredients(ctx context.Context, concepts []types.Concept, byCode map[string]int) error {
	rows, err := s.db.QueryContext(ctx,
		"SELECT code, ingredient FROM concept_ingredients ORDER BY code, ingredient")
	if err != nil {
		return fmt.Errorf("failed to query ingredients: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var code, ingredient string
		if err := rows.Scan(&code, &ingredient); err != nil {
			return fmt.Errorf("failed to scan ingredient: %w", err)
		}
		if i, ok := byCode[code]; ok {
			concepts[i].Attributes.Ingredients = append(concepts[i].Attributes.Ingredients, ingredient)
		}
	}
	return rows.Err()
}

// LoadAbbreviations returns the label -> codes abbreviation table
func (s *SQLiteStorage) LoadAbbreviations(ctx context.Context) (lexical.Abbreviations, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT label, code FROM concept_labels WHERE is_abbreviation = 1 ORDER BY label, code")
	if err != nil {
		return nil, fmt.Errorf("failed to query abbreviations: %w", err)
	}
	defer func() { _ = rows.Close() }()

	abbrevs := make(lexical.Abbreviations)
	for rows.Next() {
		var label, code string
		if err := rows.Scan(&label, &code); err != nil {
			return nil, fmt.Errorf("failed to scan abbreviation: %w", err)
		}
		abbrevs[label] = append(abbrevs[label], code)
	}
	return abbrevs, rows.Err()
}

// LoadInteractions returns the drug-drug interaction table
func (s *SQLiteStorage) LoadInteractions(ctx context.Context) ([]types.Interaction, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT code_a, code_b, severity, description FROM drug_interactions ORDER BY code_a, code_b")
	if err != nil {
		return nil, fmt.Errorf("failed to query interactions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var interactions []types.Interaction
	for rows.Next() {
		var ix types.Interaction
		var severity string
		if err := rows.Scan(&ix.CodeA, &ix.CodeB, &severity, &ix.Description); err != nil {
			return nil, fmt.Errorf("failed to scan interaction: %w", err)
		}
		ix.Severity = types.InteractionSeverity(severity)
		interactions = append(interactions, ix)
	}
	return interactions, rows.Err()
}

// CountConcepts reports how many concepts are persisted
func (s *SQLiteStorage) CountConcepts(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM concepts").Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count concepts: %w", err)
	}
	return n, nil
}
