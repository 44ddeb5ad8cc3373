// Package types provides shared type definitions for the clinterm MCP server.
//
// This package defines domain types used across multiple components of the
// terminology engine: concepts, match kinds, search results, drug
// interactions, and parsed prescription instructions.
//
// # Core Types
//
// Concept represents a canonical clinical entity within one of the three
// supported vocabularies (ICD-10, SNOMED CT, RxNorm):
//
//	concept := &types.Concept{
//	    Code:       "J00",
//	    Vocabulary: types.VocabICD10,
//	    Display:    "Acute nasopharyngitis [common cold]",
//	    Labels:     []string{"common cold", "acute rhinitis"},
//	    Active:     true,
//	}
//
// ConceptMatch annotates a concept with the retrieval strategy that found
// it and a confidence score in [0, 1]:
//
//	match := types.ConceptMatch{
//	    Concept:    concept,
//	    Kind:       types.MatchSynonym,
//	    Confidence: 0.9,
//	}
//
// SearchResult is the ranked outcome of a query. Its Validate method
// enforces the two result invariants: unique concept codes and
// non-increasing confidence ordering.
//
// # Errors
//
// Sentinel errors cover the engine's taxonomy: ErrInvalidQuery for empty
// input, ErrNotFound for absent identifiers, and ErrUnsupportedExpression
// for malformed constraint expressions. Callers should test with
// errors.Is after unwrapping.
package types
