package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Masterminds/semver/v3"
)

const (
	// CurrentSchemaVersion tracks the database schema version
	CurrentSchemaVersion = "1.0.0"
)

// Migration represents a database schema migration
type Migration struct {
	Version string
	Up      string
	Down    string
}

// AllMigrations contains all database migrations in order
var AllMigrations = []Migration{
	{
		Version: "1.0.0",
		Up:      migrationV1Up,
		Down:    migrationV1Down,
	},
}

const migrationV1Up = `
-- Schema version tracking
CREATE TABLE IF NOT EXISTS schema_version (
    version TEXT PRIMARY KEY,
    applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

-- Concept table, one row per code across all vocabularies
CREATE TABLE IF NOT EXISTS concepts (
    code TEXT NOT NULL,
    vocabulary TEXT NOT NULL,
    display TEXT NOT NULL,
    category TEXT,
    active BOOLEAN NOT NULL DEFAULT 1,
    billable BOOLEAN NOT NULL DEFAULT 0,
    prescribable BOOLEAN NOT NULL DEFAULT 0,
    dose_form TEXT,
    strength TEXT,
    drug_class TEXT,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    PRIMARY KEY (vocabulary, code)
);

CREATE INDEX IF NOT EXISTS idx_concepts_code ON concepts(code);
CREATE INDEX IF NOT EXISTS idx_concepts_category ON concepts(category);

-- Alternate labels: synonyms, abbreviations, translated preferred terms
CREATE TABLE IF NOT EXISTS concept_labels (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    code TEXT NOT NULL,
    label TEXT NOT NULL,
    language TEXT,
    is_abbreviation BOOLEAN NOT NULL DEFAULT 0,
    UNIQUE(code, label, language)
);

CREATE INDEX IF NOT EXISTS idx_labels_code ON concept_labels(code);
CREATE INDEX IF NOT EXISTS idx_labels_label ON concept_labels(label);

-- Is-a edges: child -> parent
CREATE TABLE IF NOT EXISTS concept_parents (
    code TEXT NOT NULL,
    parent_code TEXT NOT NULL,
    PRIMARY KEY (code, parent_code)
);

CREATE INDEX IF NOT EXISTS idx_parents_parent ON concept_parents(parent_code);

-- ICD-10 exclusion lists; kind 1 = excludes1 (mutual exclusion),
-- kind 2 = excludes2 (informational)
CREATE TABLE IF NOT EXISTS concept_exclusions (
    code TEXT NOT NULL,
    excluded_code TEXT NOT NULL,
    kind INTEGER NOT NULL,
    PRIMARY KEY (code, excluded_code, kind)
);

-- Medication ingredient lists
CREATE TABLE IF NOT EXISTS concept_ingredients (
    code TEXT NOT NULL,
    ingredient TEXT NOT NULL,
    PRIMARY KEY (code, ingredient)
);

-- Drug-drug interaction table, codes stored in lexicographic order
CREATE TABLE IF NOT EXISTS drug_interactions (
    code_a TEXT NOT NULL,
    code_b TEXT NOT NULL,
    severity TEXT NOT NULL,
    description TEXT NOT NULL,
    PRIMARY KEY (code_a, code_b)
);
`

const migrationV1Down = `
DROP TABLE IF EXISTS drug_interactions;
DROP TABLE IF EXISTS concept_ingredients;
DROP TABLE IF EXISTS concept_exclusions;
DROP TABLE IF EXISTS concept_parents;
DROP TABLE IF EXISTS concept_labels;
DROP TABLE IF EXISTS concepts;
DROP TABLE IF EXISTS schema_version;
`

// SchemaVersion returns the most recently applied schema version, or
// "0.0.0" when no migration has run
func SchemaVersion(ctx context.Context, db *sql.DB) (string, error) {
	var version string
	err := db.QueryRowContext(ctx, "SELECT version FROM schema_version ORDER BY applied_at DESC LIMIT 1").Scan(&version)
	if err == sql.ErrNoRows {
		return "0.0.0", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read schema version: %w", err)
	}
	return version, nil
}

// ApplyMigrations runs all pending migrations
func ApplyMigrations(ctx context.Context, db *sql.DB) error {
	var tableName string
	err := db.QueryRowContext(ctx, "SELECT name FROM sqlite_master WHERE type='table' AND name='schema_version'").Scan(&tableName)

	var currentVersion *semver.Version
	if err == sql.ErrNoRows {
		currentVersion = semver.MustParse("0.0.0")
	} else if err != nil {
		return fmt.Errorf("failed to check schema_version table: %w", err)
	} else {
		var currentVersionStr string
		err = db.QueryRowContext(ctx, "SELECT version FROM schema_version ORDER BY applied_at DESC LIMIT 1").Scan(&currentVersionStr)
		if err == sql.ErrNoRows || currentVersionStr == "" {
			currentVersion = semver.MustParse("0.0.0")
		} else if err != nil {
			return fmt.Errorf("failed to read schema_version: %w", err)
		} else {
			currentVersion, err = semver.NewVersion(currentVersionStr)
			if err != nil {
				return fmt.Errorf("invalid current schema version %s: %w", currentVersionStr, err)
			}
		}
	}

	for _, migration := range AllMigrations {
		migrationVersion, err := semver.NewVersion(migration.Version)
		if err != nil {
			return fmt.Errorf("invalid migration version %s: %w", migration.Version, err)
		}

		if !currentVersion.LessThan(migrationVersion) {
			continue // Already applied
		}

		if _, err := db.ExecContext(ctx, migration.Up); err != nil {
			return fmt.Errorf("failed to apply migration %s: %w", migration.Version, err)
		}

		if _, err := db.ExecContext(ctx, "INSERT INTO schema_version (version) VALUES (?)", migration.Version); err != nil {
			return fmt.Errorf("failed to record migration %s: %w", migration.Version, err)
		}

		currentVersion = migrationVersion
	}

	return nil
}
