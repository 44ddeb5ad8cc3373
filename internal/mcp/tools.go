package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/clinterm/clinterm-mcp/internal/searcher"
	"github.com/clinterm/clinterm-mcp/internal/storage"
	"github.com/clinterm/clinterm-mcp/pkg/types"
)

// MCP error codes
const (
	ErrorCodeInvalidParams   = -32602 // Invalid method parameters
	ErrorCodeInternalError   = -32603 // Internal JSON-RPC error
	ErrorCodeConceptNotFound = -32001 // Code does not exist in the loaded dataset
	ErrorCodeBadExpression   = -32002 // Expression not in the supported grammar
	ErrorCodeEmptyQuery      = -32003 // Query parameter is empty
)

// handleSearchConcepts handles the search_concepts tool invocation
func (s *Server) handleSearchConcepts(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	query, ok := args["query"].(string)
	if !ok || query == "" {
		return nil, newMCPError(ErrorCodeEmptyQuery, "query parameter is required and cannot be empty", map[string]interface{}{
			"param":  "query",
			"reason": "missing or empty",
		})
	}

	opts, err := optionsFromArgs(args)
	if err != nil {
		return nil, err
	}

	result, err := s.engine.Search(ctx, query, opts)
	if err != nil {
		if errors.Is(err, types.ErrInvalidQuery) {
			return nil, newMCPError(ErrorCodeEmptyQuery, "query cannot be blank", nil)
		}
		return nil, newMCPError(ErrorCodeInternalError, "search failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	return mcp.NewToolResultText(formatJSON(searchResultMap(result))), nil
}

// handleBatchSearch handles the batch_search tool invocation
func (s *Server) handleBatchSearch(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	raw, ok := args["queries"].([]interface{})
	if !ok || len(raw) == 0 {
		return nil, newMCPError(ErrorCodeInvalidParams, "queries parameter is required and cannot be empty", map[string]interface{}{
			"param":  "queries",
			"reason": "missing or empty",
		})
	}

	queries := make([]string, 0, len(raw))
	for _, q := range raw {
		str, ok := q.(string)
		if !ok {
			return nil, newMCPError(ErrorCodeInvalidParams, "queries must be strings", map[string]interface{}{
				"param": "queries",
			})
		}
		queries = append(queries, str)
	}

	opts, err := optionsFromArgs(args)
	if err != nil {
		return nil, err
	}

	items := s.engine.BatchSearch(ctx, queries, opts)

	results := make(map[string]interface{}, len(items))
	succeeded := 0
	for query, item := range items {
		if item.Err != nil {
			results[query] = map[string]interface{}{"error": item.Err.Error()}
			continue
		}
		succeeded++
		results[query] = searchResultMap(item.Result)
	}

	response := map[string]interface{}{
		"queries":   len(items),
		"succeeded": succeeded,
		"results":   results,
	}
	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleGetConcept handles the get_concept tool invocation
func (s *Server) handleGetConcept(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	code, ok := args["code"].(string)
	if !ok || code == "" {
		return nil, newMCPError(ErrorCodeInvalidParams, "code parameter is required", map[string]interface{}{
			"param":  "code",
			"reason": "missing or empty",
		})
	}

	concept, err := s.engine.GetConcept(code)
	if err != nil {
		return nil, notFoundError(err, code)
	}

	response := conceptMap(concept)
	if lang := getStringDefault(args, "language", ""); lang != "" {
		label, err := s.engine.PreferredLabel(code, lang)
		if err == nil {
			response["display"] = label
		}
	}

	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleGetHierarchy handles the get_hierarchy tool invocation
func (s *Server) handleGetHierarchy(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	relation := getStringDefault(args, "relation", "parents")
	maxDepth := getIntDefault(args, "max_depth", 0)
	if maxDepth < 0 {
		return nil, newMCPError(ErrorCodeInvalidParams, "max_depth cannot be negative", map[string]interface{}{
			"param": "max_depth",
			"value": maxDepth,
		})
	}

	if relation == "common_ancestors" {
		return s.commonAncestors(args)
	}

	code, ok := args["code"].(string)
	if !ok || code == "" {
		return nil, newMCPError(ErrorCodeInvalidParams, "code parameter is required", map[string]interface{}{
			"param":  "code",
			"reason": "missing or empty",
		})
	}

	response := map[string]interface{}{
		"code":     code,
		"relation": relation,
	}

	switch relation {
	case "parents":
		concepts, err := s.engine.GetParents(code)
		if err != nil {
			return nil, notFoundError(err, code)
		}
		response["concepts"] = conceptSummaries(concepts)
	case "children":
		concepts, err := s.engine.GetChildren(code)
		if err != nil {
			return nil, notFoundError(err, code)
		}
		response["concepts"] = conceptSummaries(concepts)
	case "ancestors":
		levels, err := s.engine.GetAncestors(code, maxDepth)
		if err != nil {
			return nil, notFoundError(err, code)
		}
		out := make([]interface{}, 0, len(levels))
		for _, level := range levels {
			out = append(out, conceptSummaries(level))
		}
		response["levels"] = out
	case "descendants":
		concepts, err := s.engine.GetDescendants(code, maxDepth)
		if err != nil {
			return nil, notFoundError(err, code)
		}
		response["concepts"] = conceptSummaries(concepts)
	default:
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid relation", map[string]interface{}{
			"param":   "relation",
			"value":   relation,
			"allowed": []string{"parents", "children", "ancestors", "descendants", "common_ancestors"},
		})
	}

	return mcp.NewToolResultText(formatJSON(response)), nil
}

// commonAncestors serves the common_ancestors relation of get_hierarchy
func (s *Server) commonAncestors(args map[string]interface{}) (*mcp.CallToolResult, error) {
	raw, ok := args["codes"].([]interface{})
	if !ok || len(raw) == 0 {
		return nil, newMCPError(ErrorCodeInvalidParams, "codes parameter is required for common_ancestors", map[string]interface{}{
			"param":  "codes",
			"reason": "missing or empty",
		})
	}

	codes := make([]string, 0, len(raw))
	for _, c := range raw {
		str, ok := c.(string)
		if !ok {
			return nil, newMCPError(ErrorCodeInvalidParams, "codes must be strings", map[string]interface{}{
				"param": "codes",
			})
		}
		codes = append(codes, str)
	}

	concepts, err := s.engine.GetCommonAncestors(codes)
	if err != nil {
		return nil, notFoundError(err, "")
	}

	response := map[string]interface{}{
		"relation": "common_ancestors",
		"codes":    codes,
		"concepts": conceptSummaries(concepts),
	}
	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleExecuteExpression handles the execute_expression tool invocation
func (s *Server) handleExecuteExpression(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	expr, ok := args["expression"].(string)
	if !ok || expr == "" {
		return nil, newMCPError(ErrorCodeInvalidParams, "expression parameter is required", map[string]interface{}{
			"param":  "expression",
			"reason": "missing or empty",
		})
	}

	concepts, err := s.engine.ExecuteExpression(expr)
	if err != nil {
		if errors.Is(err, types.ErrUnsupportedExpression) {
			return nil, newMCPError(ErrorCodeBadExpression, "unsupported expression", map[string]interface{}{
				"expression": expr,
				"reason":     err.Error(),
			})
		}
		return nil, newMCPError(ErrorCodeInternalError, "expression evaluation failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	response := map[string]interface{}{
		"expression": expr,
		"count":      len(concepts),
		"concepts":   conceptSummaries(concepts),
	}
	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleCheckCompatibility handles the check_compatibility tool invocation
func (s *Server) handleCheckCompatibility(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	codeA, ok := args["code_a"].(string)
	if !ok || codeA == "" {
		return nil, newMCPError(ErrorCodeInvalidParams, "code_a parameter is required", map[string]interface{}{
			"param":  "code_a",
			"reason": "missing or empty",
		})
	}
	codeB, ok := args["code_b"].(string)
	if !ok || codeB == "" {
		return nil, newMCPError(ErrorCodeInvalidParams, "code_b parameter is required", map[string]interface{}{
			"param":  "code_b",
			"reason": "missing or empty",
		})
	}

	compatible, reason, err := s.engine.CheckCompatibility(codeA, codeB)
	if err != nil {
		return nil, notFoundError(err, "")
	}

	response := map[string]interface{}{
		"code_a":     codeA,
		"code_b":     codeB,
		"compatible": compatible,
	}
	if reason != "" {
		response["reason"] = reason
	}
	if notes := s.engine.CompatibilityNotes(codeA, codeB); len(notes) > 0 {
		response["notes"] = notes
	}

	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleCheckInteractions handles the check_interactions tool invocation
func (s *Server) handleCheckInteractions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	raw, ok := args["codes"].([]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "codes parameter is required", map[string]interface{}{
			"param":  "codes",
			"reason": "missing",
		})
	}

	codes := make([]string, 0, len(raw))
	for _, c := range raw {
		str, ok := c.(string)
		if !ok {
			return nil, newMCPError(ErrorCodeInvalidParams, "codes must be strings", map[string]interface{}{
				"param": "codes",
			})
		}
		codes = append(codes, str)
	}

	interactions := s.engine.CheckInteractions(codes)

	out := make([]interface{}, 0, len(interactions))
	for _, in := range interactions {
		out = append(out, map[string]interface{}{
			"code_a":      in.CodeA,
			"code_b":      in.CodeB,
			"severity":    string(in.Severity),
			"description": in.Description,
		})
	}

	response := map[string]interface{}{
		"medications":  codes,
		"count":        len(out),
		"interactions": out,
	}
	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleParseInstruction handles the parse_instruction tool invocation
func (s *Server) handleParseInstruction(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	text, ok := args["text"].(string)
	if !ok || text == "" {
		return nil, newMCPError(ErrorCodeInvalidParams, "text parameter is required", map[string]interface{}{
			"param":  "text",
			"reason": "missing or empty",
		})
	}

	parsed := s.engine.ParseInstruction(text)

	response := map[string]interface{}{
		"raw":       parsed.Raw,
		"drug":      parsed.Drug,
		"as_needed": parsed.AsNeeded,
	}
	if parsed.DoseValue > 0 {
		response["dose_value"] = parsed.DoseValue
		response["dose_unit"] = parsed.DoseUnit
	}
	if parsed.Route != "" {
		response["route"] = parsed.Route
	}
	if parsed.Frequency != "" {
		response["frequency"] = parsed.Frequency
	}
	if parsed.DurationDays > 0 {
		response["duration_days"] = parsed.DurationDays
	}

	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleGetStatistics handles the get_statistics tool invocation
func (s *Server) handleGetStatistics(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	stats := s.engine.Stats()

	response := map[string]interface{}{
		"total_concepts":  stats.TotalConcepts,
		"active_concepts": stats.ActiveConcepts,
		"cache_hits":      stats.CacheHits,
		"cache_misses":    stats.CacheMisses,
		"cache_entries":   stats.CacheEntries,
		"strategies":      stats.Strategies,
	}
	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleClearCache handles the clear_cache tool invocation
func (s *Server) handleClearCache(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.engine.ClearCache()
	return mcp.NewToolResultText(formatJSON(map[string]interface{}{
		"cleared": true,
	})), nil
}

// handleImportDataset handles the import_dataset tool invocation
func (s *Server) handleImportDataset(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	raw, ok := args["dataset"].(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "dataset parameter is required", map[string]interface{}{
			"param":  "dataset",
			"reason": "missing or not an object",
		})
	}

	// Round-trip through JSON to get the typed dataset document
	encoded, err := json.Marshal(raw)
	if err != nil {
		return nil, newMCPError(ErrorCodeInvalidParams, "dataset is not valid JSON", map[string]interface{}{
			"error": err.Error(),
		})
	}
	var ds storage.Dataset
	if err := json.Unmarshal(encoded, &ds); err != nil {
		return nil, newMCPError(ErrorCodeInvalidParams, "dataset does not match the expected document shape", map[string]interface{}{
			"error": err.Error(),
		})
	}
	if !ds.Vocabulary.Valid() {
		return nil, newMCPError(ErrorCodeInvalidParams, "dataset vocabulary is not recognized", map[string]interface{}{
			"param": "dataset.vocabulary",
			"value": string(ds.Vocabulary),
		})
	}

	if err := s.engine.ImportDataset(ctx, &ds); err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "dataset import failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	s.log.Info().
		Str("vocabulary", string(ds.Vocabulary)).
		Int("concepts", len(ds.Concepts)).
		Msg("dataset imported")

	response := map[string]interface{}{
		"imported":   true,
		"vocabulary": string(ds.Vocabulary),
		"concepts":   len(ds.Concepts),
		"message":    "Dataset persisted. Restart the server to load it into the search indexes.",
	}
	return mcp.NewToolResultText(formatJSON(response)), nil
}

// Helper functions

// optionsFromArgs builds search options from tool arguments shared by
// search_concepts and batch_search
func optionsFromArgs(args map[string]interface{}) (searcher.Options, error) {
	limit := getIntDefault(args, "limit", 0)
	if limit < 0 || limit > searcher.MaxLimit {
		return searcher.Options{}, newMCPError(ErrorCodeInvalidParams, fmt.Sprintf("limit must be between 1 and %d", searcher.MaxLimit), map[string]interface{}{
			"param": "limit",
			"value": limit,
		})
	}

	vocab := types.Vocabulary(getStringDefault(args, "vocabulary", ""))
	if vocab != "" && !vocab.Valid() {
		return searcher.Options{}, newMCPError(ErrorCodeInvalidParams, "invalid vocabulary", map[string]interface{}{
			"param":   "vocabulary",
			"value":   string(vocab),
			"allowed": []string{"icd10", "snomed", "rxnorm"},
		})
	}

	minConfidence := getFloatDefault(args, "min_confidence", 0)
	if minConfidence < 0 || minConfidence > 1 {
		return searcher.Options{}, newMCPError(ErrorCodeInvalidParams, "min_confidence must be between 0 and 1", map[string]interface{}{
			"param": "min_confidence",
			"value": minConfidence,
		})
	}

	return searcher.Options{
		Limit:            limit,
		IncludeInactive:  getBoolDefault(args, "include_inactive", false),
		IncludeChildren:  getBoolDefault(args, "include_children", false),
		Category:         getStringDefault(args, "category", ""),
		Vocabulary:       vocab,
		MinConfidence:    minConfidence,
		BillableOnly:     getBoolDefault(args, "billable_only", false),
		PrescribableOnly: getBoolDefault(args, "prescribable_only", false),
		NoCache:          getBoolDefault(args, "no_cache", false),
	}, nil
}

// searchResultMap formats a search result for the wire
func searchResultMap(result *types.SearchResult) map[string]interface{} {
	matches := make([]interface{}, 0, len(result.Matches))
	for _, m := range result.Matches {
		entry := conceptMap(m.Concept)
		entry["match_kind"] = string(m.Kind)
		entry["confidence"] = m.Confidence
		matches = append(matches, entry)
	}

	return map[string]interface{}{
		"query":            result.Query,
		"matches":          matches,
		"total_candidates": result.TotalCandidates,
		"strategies":       result.Strategies,
		"duration_ms":      result.Duration.Milliseconds(),
	}
}

// conceptMap formats a full concept for the wire
func conceptMap(c *types.Concept) map[string]interface{} {
	out := map[string]interface{}{
		"code":       c.Code,
		"vocabulary": string(c.Vocabulary),
		"display":    c.Display,
		"active":     c.Active,
	}
	if c.Category != "" {
		out["category"] = c.Category
	}
	if len(c.Labels) > 0 {
		out["labels"] = c.Labels
	}
	if len(c.Parents) > 0 {
		out["parents"] = c.Parents
	}
	if len(c.Children) > 0 {
		out["children"] = c.Children
	}

	switch c.Vocabulary {
	case types.VocabICD10:
		out["billable"] = c.Attributes.Billable
		if len(c.Attributes.Excludes1) > 0 {
			out["excludes1"] = c.Attributes.Excludes1
		}
		if len(c.Attributes.Excludes2) > 0 {
			out["excludes2"] = c.Attributes.Excludes2
		}
	case types.VocabRxNorm:
		out["prescribable"] = c.Attributes.Prescribable
		if c.Attributes.DoseForm != "" {
			out["dose_form"] = c.Attributes.DoseForm
		}
		if c.Attributes.Strength != "" {
			out["strength"] = c.Attributes.Strength
		}
		if c.Attributes.DrugClass != "" {
			out["drug_class"] = c.Attributes.DrugClass
		}
		if len(c.Attributes.Ingredients) > 0 {
			out["ingredients"] = c.Attributes.Ingredients
		}
	case types.VocabSNOMED:
		if len(c.Attributes.LabelsByLanguage) > 0 {
			out["labels_by_language"] = c.Attributes.LabelsByLanguage
		}
	}

	return out
}

// conceptSummaries formats hierarchy results: code and display only
func conceptSummaries(concepts []*types.Concept) []interface{} {
	out := make([]interface{}, 0, len(concepts))
	for _, c := range concepts {
		out = append(out, map[string]interface{}{
			"code":       c.Code,
			"vocabulary": string(c.Vocabulary),
			"display":    c.Display,
			"active":     c.Active,
		})
	}
	return out
}

// notFoundError maps engine lookup failures onto MCP error codes
func notFoundError(err error, code string) error {
	if errors.Is(err, types.ErrNotFound) {
		data := map[string]interface{}{}
		if code != "" {
			data["code"] = code
		}
		data["error"] = err.Error()
		return newMCPError(ErrorCodeConceptNotFound, "concept not found", data)
	}
	return newMCPError(ErrorCodeInternalError, "lookup failed", map[string]interface{}{
		"error": err.Error(),
	})
}

// newMCPError creates a properly formatted MCP error
func newMCPError(code int, message string, data interface{}) error {
	return &MCPError{
		Code:    code,
		Message: message,
		Data:    data,
	}
}

// MCPError represents an MCP protocol error
type MCPError struct {
	Code    int
	Message string
	Data    interface{}
}

func (e *MCPError) Error() string {
	return fmt.Sprintf("MCP error %d: %s", e.Code, e.Message)
}

// formatJSON formats a map as indented JSON
func formatJSON(data map[string]interface{}) string {
	bytes, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", data)
	}
	return string(bytes)
}

// getBoolDefault extracts a boolean parameter with a default value
func getBoolDefault(args map[string]interface{}, key string, defaultValue bool) bool {
	if val, ok := args[key].(bool); ok {
		return val
	}
	return defaultValue
}

// getIntDefault extracts an integer parameter with a default value
func getIntDefault(args map[string]interface{}, key string, defaultValue int) int {
	if val, ok := args[key].(float64); ok {
		return int(val)
	}
	if val, ok := args[key].(int); ok {
		return val
	}
	return defaultValue
}

// getFloatDefault extracts a numeric parameter with a default value
func getFloatDefault(args map[string]interface{}, key string, defaultValue float64) float64 {
	if val, ok := args[key].(float64); ok {
		return val
	}
	return defaultValue
}

// getStringDefault extracts a string parameter with a default value
func getStringDefault(args map[string]interface{}, key string, defaultValue string) string {
	if val, ok := args[key].(string); ok {
		return val
	}
	return defaultValue
}
