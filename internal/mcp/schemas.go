package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// searchConceptsTool returns the tool definition for search_concepts
func searchConceptsTool() mcp.Tool {
	return mcp.Tool{
		Name:        "search_concepts",
		Description: "Resolve a free-text clinical query to ranked terminology concepts",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"query": map[string]interface{}{
					"type":        "string",
					"description": "Free-text query: a code, a term, an abbreviation, or a misspelling",
				},
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Maximum number of matches to return (1-100)",
					"default":     20,
					"minimum":     1,
					"maximum":     100,
				},
				"vocabulary": map[string]interface{}{
					"type":        "string",
					"description": "Restrict matches to one vocabulary",
					"enum":        []string{"icd10", "snomed", "rxnorm"},
				},
				"category": map[string]interface{}{
					"type":        "string",
					"description": "Restrict matches to one concept category",
				},
				"min_confidence": map[string]interface{}{
					"type":        "number",
					"description": "Minimum match confidence (0.0-1.0)",
					"minimum":     0.0,
					"maximum":     1.0,
				},
				"include_inactive": map[string]interface{}{
					"type":        "boolean",
					"description": "If true, include deprecated concepts",
					"default":     false,
				},
				"include_children": map[string]interface{}{
					"type":        "boolean",
					"description": "If true, expand matches with their direct children at reduced confidence",
					"default":     false,
				},
				"billable_only": map[string]interface{}{
					"type":        "boolean",
					"description": "If true, keep only billable ICD-10 codes",
					"default":     false,
				},
				"prescribable_only": map[string]interface{}{
					"type":        "boolean",
					"description": "If true, keep only prescribable RxNorm concepts",
					"default":     false,
				},
				"no_cache": map[string]interface{}{
					"type":        "boolean",
					"description": "If true, bypass the result cache for this query",
					"default":     false,
				},
			},
			Required: []string{"query"},
		},
	}
}

// batchSearchTool returns the tool definition for batch_search
func batchSearchTool() mcp.Tool {
	return mcp.Tool{
		Name:        "batch_search",
		Description: "Resolve multiple independent queries concurrently",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"queries": map[string]interface{}{
					"type":        "array",
					"description": "Queries to resolve; duplicates are searched once",
					"items": map[string]interface{}{
						"type": "string",
					},
				},
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Maximum number of matches per query (1-100)",
					"default":     20,
					"minimum":     1,
					"maximum":     100,
				},
				"vocabulary": map[string]interface{}{
					"type":        "string",
					"description": "Restrict matches to one vocabulary",
					"enum":        []string{"icd10", "snomed", "rxnorm"},
				},
			},
			Required: []string{"queries"},
		},
	}
}

// getConceptTool returns the tool definition for get_concept
func getConceptTool() mcp.Tool {
	return mcp.Tool{
		Name:        "get_concept",
		Description: "Look up a single concept by its code",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"code": map[string]interface{}{
					"type":        "string",
					"description": "Concept code, e.g. 'J02.0' or '5640'",
				},
				"language": map[string]interface{}{
					"type":        "string",
					"description": "Accept-Language value for the display label, e.g. 'es, fr;q=0.8'",
				},
			},
			Required: []string{"code"},
		},
	}
}

// getHierarchyTool returns the tool definition for get_hierarchy
func getHierarchyTool() mcp.Tool {
	return mcp.Tool{
		Name:        "get_hierarchy",
		Description: "Navigate a concept's hierarchy: parents, children, ancestors, descendants, or common ancestors",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"code": map[string]interface{}{
					"type":        "string",
					"description": "Concept code to navigate from",
				},
				"relation": map[string]interface{}{
					"type":        "string",
					"description": "Which relation to traverse",
					"enum":        []string{"parents", "children", "ancestors", "descendants", "common_ancestors"},
					"default":     "parents",
				},
				"codes": map[string]interface{}{
					"type":        "array",
					"description": "Codes for common_ancestors; used instead of 'code'",
					"items": map[string]interface{}{
						"type": "string",
					},
				},
				"max_depth": map[string]interface{}{
					"type":        "integer",
					"description": "Traversal depth limit for ancestors/descendants (0 = unlimited for ICD-10/RxNorm; SNOMED traversals cap at 10 levels)",
					"default":     0,
					"minimum":     0,
				},
			},
		},
	}
}

// executeExpressionTool returns the tool definition for execute_expression
func executeExpressionTool() mcp.Tool {
	return mcp.Tool{
		Name:        "execute_expression",
		Description: "Evaluate a hierarchical constraint expression, e.g. '<< 404684003'",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"expression": map[string]interface{}{
					"type":        "string",
					"description": "Expression: a bare code, or a code prefixed with <, <<, >, or >>",
				},
			},
			Required: []string{"expression"},
		},
	}
}

// checkCompatibilityTool returns the tool definition for check_compatibility
func checkCompatibilityTool() mcp.Tool {
	return mcp.Tool{
		Name:        "check_compatibility",
		Description: "Check whether two ICD-10 codes may be coded together on one record",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"code_a": map[string]interface{}{
					"type":        "string",
					"description": "First ICD-10 code",
				},
				"code_b": map[string]interface{}{
					"type":        "string",
					"description": "Second ICD-10 code",
				},
			},
			Required: []string{"code_a", "code_b"},
		},
	}
}

// checkInteractionsTool returns the tool definition for check_interactions
func checkInteractionsTool() mcp.Tool {
	return mcp.Tool{
		Name:        "check_interactions",
		Description: "Report pairwise drug-drug interactions within a medication list",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"codes": map[string]interface{}{
					"type":        "array",
					"description": "RxNorm concept codes of the medications",
					"items": map[string]interface{}{
						"type": "string",
					},
				},
			},
			Required: []string{"codes"},
		},
	}
}

// parseInstructionTool returns the tool definition for parse_instruction
func parseInstructionTool() mcp.Tool {
	return mcp.Tool{
		Name:        "parse_instruction",
		Description: "Extract drug, dose, route, frequency, and duration from a prescription sig",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"text": map[string]interface{}{
					"type":        "string",
					"description": "Instruction text, e.g. 'ibuprofen 400mg po tid prn for 5 days'",
				},
			},
			Required: []string{"text"},
		},
	}
}

// getStatisticsTool returns the tool definition for get_statistics
func getStatisticsTool() mcp.Tool {
	return mcp.Tool{
		Name:        "get_statistics",
		Description: "Report engine counters: concept totals, cache hits and misses, active strategies",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}
}

// clearCacheTool returns the tool definition for clear_cache
func clearCacheTool() mcp.Tool {
	return mcp.Tool{
		Name:        "clear_cache",
		Description: "Empty the search result cache",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}
}

// importDatasetTool returns the tool definition for import_dataset
func importDatasetTool() mcp.Tool {
	return mcp.Tool{
		Name:        "import_dataset",
		Description: "Persist a vocabulary dataset document; loaded on next engine start",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"dataset": map[string]interface{}{
					"type":        "object",
					"description": "Dataset document: vocabulary, concepts, synonyms, abbreviations, interactions",
				},
			},
			Required: []string{"dataset"},
		},
	}
}
