// Package mcp implements the Model Context Protocol (MCP) server for
// the clinterm terminology engine.
//
// The server exposes the engine's operations as MCP tools:
//   - search_concepts: Resolve free text to ranked terminology concepts
//   - batch_search: Resolve many queries concurrently
//   - get_concept: Look up one concept by code
//   - get_hierarchy: Navigate parents, children, ancestors, descendants, common ancestors
//   - execute_expression: Evaluate a hierarchical constraint expression
//   - check_compatibility: Check whether two ICD-10 codes may be coded together
//   - check_interactions: Report drug-drug interactions in a medication list
//   - parse_instruction: Extract structure from a prescription sig
//   - get_statistics: Report engine counters
//   - clear_cache: Empty the search result cache
//   - import_dataset: Persist a vocabulary dataset document
//
// # Protocol Overview
//
// MCP is a JSON-RPC 2.0 protocol over stdio transport:
//
//	Client → Server: {"method": "tools/call", "params": {...}}
//	Server → Client: {"result": {...}}
//
// The server listens on stdin for protocol messages and writes
// responses to stdout; logs go to stderr.
//
// # Tool: search_concepts
//
// Resolve a clinical query:
//
//	Request:
//	{
//	  "name": "search_concepts",
//	  "arguments": {
//	    "query": "common cold",
//	    "limit": 10,
//	    "vocabulary": "icd10"
//	  }
//	}
//
//	Response:
//	{
//	  "query": "common cold",
//	  "matches": [
//	    {
//	      "code": "J00",
//	      "vocabulary": "icd10",
//	      "display": "Acute nasopharyngitis [common cold]",
//	      "match_kind": "synonym",
//	      "confidence": 0.9
//	    }
//	  ],
//	  "strategies": ["exact", "prefix", "synonym"],
//	  "duration_ms": 1
//	}
//
// The query may equally be a bare code ("J02.0"), an abbreviation
// ("URI"), or a misspelling ("ibuprofin"); the strategy pipeline picks
// the cheapest way to resolve it.
//
// # Tool: execute_expression
//
// Evaluate a constraint over the hierarchy:
//
//	Request:
//	{
//	  "name": "execute_expression",
//	  "arguments": {"expression": "<< 404684003"}
//	}
//
// Operators: bare code (the concept itself), < (descendants),
// << (the concept and its descendants), > (ancestors), >> (the concept
// and its ancestors).
//
// # Error Codes
//
// Beyond the standard JSON-RPC codes, the server uses:
//
//	-32001  concept code not found in the loaded dataset
//	-32002  expression not in the supported grammar
//	-32003  empty query
//
// # Dataset Import
//
// import_dataset persists one vocabulary document to storage. The
// in-memory indexes are immutable after startup, so imported data is
// loaded on the next engine start.
package mcp
