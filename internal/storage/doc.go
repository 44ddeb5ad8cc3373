// Package storage provides SQLite-based persistence for the vocabulary
// datasets consumed at engine load.
//
// The storage layer manages:
//   - Concept rows per vocabulary (ICD-10, SNOMED CT, RxNorm)
//   - Alternate labels: synonyms, abbreviations, translated terms
//   - Is-a parent edges
//   - ICD-10 exclusion lists (excludes1/excludes2)
//   - Medication ingredients and drug-drug interactions
//
// Datasets arrive as one structured JSON document per vocabulary and
// are imported atomically with ImportDataset. LoadConcepts materializes
// the whole table for the in-memory store; the engine never reads the
// database on the query path.
//
// When the database holds no concepts, Bootstrap inserts a built-in
// seed set so the engine can start without an external dataset.
//
// # Build Tags
//
// Two driver configurations are supported:
//
// CGO build (sqlite_cgo tag), using github.com/mattn/go-sqlite3:
//
//	CGO_ENABLED=1 go build -tags "sqlite_cgo" ./...
//
// Pure Go build (default), using modernc.org/sqlite:
//
//	CGO_ENABLED=0 go build ./...
package storage
