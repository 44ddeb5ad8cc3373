// Package strategy implements the ordered retrieval strategies of the
// terminology search pipeline.
//
// Strategies run in a fixed priority order:
//
//  1. Exact: code or normalized-description equality, confidence 1.0
//  2. Prefix: identifier-shaped queries against all codes sharing the
//     prefix, confidence 0.95 (same length) or 0.85
//  3. Synonym: alternate-label and abbreviation lookup, 0.75-0.9
//  4. Fuzzy: token-sort Levenshtein similarity, kept at >= 70/100
//  5. Semantic: term-frequency cosine similarity, kept at >= 0.3
//
// Fuzzy and Semantic are optional capabilities. BuildPipeline constructs
// the pipeline with only the strategies that are enabled, so availability
// is decided once at startup instead of branched on per query.
package strategy
