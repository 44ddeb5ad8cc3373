// Package hierarchy provides parent/child traversal over the concept arena.
//
// ICD-10 and RxNorm hierarchies are trees (at most one parent per
// concept); SNOMED CT is a directed acyclic graph with multiple parents.
// Both invariants are enforced at build time, never on the query path.
//
// Traversals are breadth-first. Ancestors returns level-grouped results
// (direct parents first); Descendants returns a flat, deduplicated set.
// An optional max depth bounds traversal; DAG vocabularies fall back to
// DefaultGraphDepth when no bound is given.
package hierarchy
