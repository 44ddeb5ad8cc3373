package mcp

import (
	"context"
	"encoding/json"
	"testing"

	mcpgo "github.com/mark3labs/mcp-go/mcp"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinterm/clinterm-mcp/internal/engine"
)

func setupTestServer(t *testing.T) *Server {
	server, err := NewServer(context.Background(), engine.Config{DBPath: ":memory:"}, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = server.engine.Close() })
	return server
}

func callRequest(name string, args map[string]interface{}) mcpgo.CallToolRequest {
	return mcpgo.CallToolRequest{
		Params: mcpgo.CallToolParams{
			Name:      name,
			Arguments: args,
		},
	}
}

// decodeResult unpacks the JSON text payload of a tool result
func decodeResult(t *testing.T, result *mcpgo.CallToolResult) map[string]interface{} {
	t.Helper()
	require.NotNil(t, result)
	require.NotEmpty(t, result.Content)

	text, ok := result.Content[0].(mcpgo.TextContent)
	require.True(t, ok, "expected text content")

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(text.Text), &decoded))
	return decoded
}

func mcpErrorCode(t *testing.T, err error) int {
	t.Helper()
	require.Error(t, err)
	mcpErr, ok := err.(*MCPError)
	require.True(t, ok, "expected MCPError, got %T", err)
	return mcpErr.Code
}

func TestServerInitialization(t *testing.T) {
	server := setupTestServer(t)

	assert.NotNil(t, server.mcp)
	assert.NotNil(t, server.engine)
}

func TestHandleSearchConcepts(t *testing.T) {
	server := setupTestServer(t)

	result, err := server.handleSearchConcepts(context.Background(),
		callRequest("search_concepts", map[string]interface{}{
			"query":      "common cold",
			"vocabulary": "icd10",
		}))
	require.NoError(t, err)

	decoded := decodeResult(t, result)
	assert.Equal(t, "common cold", decoded["query"])

	matches, ok := decoded["matches"].([]interface{})
	require.True(t, ok)
	require.NotEmpty(t, matches)

	top := matches[0].(map[string]interface{})
	assert.Equal(t, "J00", top["code"])
	assert.Equal(t, "icd10", top["vocabulary"])
	assert.NotEmpty(t, top["match_kind"])
}

func TestHandleSearchConceptsValidation(t *testing.T) {
	server := setupTestServer(t)
	ctx := context.Background()

	_, err := server.handleSearchConcepts(ctx,
		callRequest("search_concepts", map[string]interface{}{}))
	assert.Equal(t, ErrorCodeEmptyQuery, mcpErrorCode(t, err))

	_, err = server.handleSearchConcepts(ctx,
		callRequest("search_concepts", map[string]interface{}{
			"query": "cold", "limit": float64(500),
		}))
	assert.Equal(t, ErrorCodeInvalidParams, mcpErrorCode(t, err))

	_, err = server.handleSearchConcepts(ctx,
		callRequest("search_concepts", map[string]interface{}{
			"query": "cold", "vocabulary": "loinc",
		}))
	assert.Equal(t, ErrorCodeInvalidParams, mcpErrorCode(t, err))
}

func TestHandleBatchSearch(t *testing.T) {
	server := setupTestServer(t)

	result, err := server.handleBatchSearch(context.Background(),
		callRequest("batch_search", map[string]interface{}{
			"queries": []interface{}{"J00", "E11", "   "},
		}))
	require.NoError(t, err)

	decoded := decodeResult(t, result)
	assert.Equal(t, float64(3), decoded["queries"])
	assert.Equal(t, float64(2), decoded["succeeded"])

	results, ok := decoded["results"].(map[string]interface{})
	require.True(t, ok)
	require.Len(t, results, 3)

	// Blank query carries its error in its own slot
	blank := results["   "].(map[string]interface{})
	assert.NotEmpty(t, blank["error"])
}

func TestHandleBatchSearchValidation(t *testing.T) {
	server := setupTestServer(t)

	_, err := server.handleBatchSearch(context.Background(),
		callRequest("batch_search", map[string]interface{}{}))
	assert.Equal(t, ErrorCodeInvalidParams, mcpErrorCode(t, err))

	_, err = server.handleBatchSearch(context.Background(),
		callRequest("batch_search", map[string]interface{}{
			"queries": []interface{}{1, 2},
		}))
	assert.Equal(t, ErrorCodeInvalidParams, mcpErrorCode(t, err))
}

func TestHandleGetConcept(t *testing.T) {
	server := setupTestServer(t)

	result, err := server.handleGetConcept(context.Background(),
		callRequest("get_concept", map[string]interface{}{"code": "J02.0"}))
	require.NoError(t, err)

	decoded := decodeResult(t, result)
	assert.Equal(t, "J02.0", decoded["code"])
	assert.Equal(t, "Streptococcal pharyngitis", decoded["display"])
	assert.Equal(t, true, decoded["billable"])
}

func TestHandleGetConceptLanguage(t *testing.T) {
	server := setupTestServer(t)

	result, err := server.handleGetConcept(context.Background(),
		callRequest("get_concept", map[string]interface{}{
			"code": "82272006", "language": "es",
		}))
	require.NoError(t, err)

	decoded := decodeResult(t, result)
	assert.Equal(t, "Resfriado común", decoded["display"])
}

func TestHandleGetConceptNotFound(t *testing.T) {
	server := setupTestServer(t)

	_, err := server.handleGetConcept(context.Background(),
		callRequest("get_concept", map[string]interface{}{"code": "Z99.99"}))
	assert.Equal(t, ErrorCodeConceptNotFound, mcpErrorCode(t, err))
}

func TestHandleGetHierarchy(t *testing.T) {
	server := setupTestServer(t)
	ctx := context.Background()

	result, err := server.handleGetHierarchy(ctx,
		callRequest("get_hierarchy", map[string]interface{}{
			"code": "J02.0", "relation": "parents",
		}))
	require.NoError(t, err)

	decoded := decodeResult(t, result)
	concepts := decoded["concepts"].([]interface{})
	require.Len(t, concepts, 1)
	assert.Equal(t, "J02", concepts[0].(map[string]interface{})["code"])

	result, err = server.handleGetHierarchy(ctx,
		callRequest("get_hierarchy", map[string]interface{}{
			"code": "J02.0", "relation": "ancestors",
		}))
	require.NoError(t, err)

	decoded = decodeResult(t, result)
	levels := decoded["levels"].([]interface{})
	assert.Len(t, levels, 2)
}

func TestHandleGetHierarchyCommonAncestors(t *testing.T) {
	server := setupTestServer(t)

	result, err := server.handleGetHierarchy(context.Background(),
		callRequest("get_hierarchy", map[string]interface{}{
			"relation": "common_ancestors",
			"codes":    []interface{}{"J00", "J02.0"},
		}))
	require.NoError(t, err)

	decoded := decodeResult(t, result)
	concepts := decoded["concepts"].([]interface{})
	require.Len(t, concepts, 1)
	assert.Equal(t, "J00-J06", concepts[0].(map[string]interface{})["code"])
}

func TestHandleGetHierarchyValidation(t *testing.T) {
	server := setupTestServer(t)
	ctx := context.Background()

	_, err := server.handleGetHierarchy(ctx,
		callRequest("get_hierarchy", map[string]interface{}{
			"code": "J00", "relation": "siblings",
		}))
	assert.Equal(t, ErrorCodeInvalidParams, mcpErrorCode(t, err))

	_, err = server.handleGetHierarchy(ctx,
		callRequest("get_hierarchy", map[string]interface{}{
			"code": "missing", "relation": "children",
		}))
	assert.Equal(t, ErrorCodeConceptNotFound, mcpErrorCode(t, err))
}

func TestHandleExecuteExpression(t *testing.T) {
	server := setupTestServer(t)

	result, err := server.handleExecuteExpression(context.Background(),
		callRequest("execute_expression", map[string]interface{}{
			"expression": "<< 64572001",
		}))
	require.NoError(t, err)

	decoded := decodeResult(t, result)
	assert.Greater(t, decoded["count"], float64(1))
}

func TestHandleExecuteExpressionBadSyntax(t *testing.T) {
	server := setupTestServer(t)

	_, err := server.handleExecuteExpression(context.Background(),
		callRequest("execute_expression", map[string]interface{}{
			"expression": "<< a AND << b",
		}))
	assert.Equal(t, ErrorCodeBadExpression, mcpErrorCode(t, err))
}

func TestHandleCheckCompatibility(t *testing.T) {
	server := setupTestServer(t)

	result, err := server.handleCheckCompatibility(context.Background(),
		callRequest("check_compatibility", map[string]interface{}{
			"code_a": "E10", "code_b": "E11",
		}))
	require.NoError(t, err)

	decoded := decodeResult(t, result)
	assert.Equal(t, false, decoded["compatible"])
	assert.Contains(t, decoded["reason"], "mutually exclusive")
}

func TestHandleCheckInteractions(t *testing.T) {
	server := setupTestServer(t)

	result, err := server.handleCheckInteractions(context.Background(),
		callRequest("check_interactions", map[string]interface{}{
			"codes": []interface{}{"11289", "1191", "6809"},
		}))
	require.NoError(t, err)

	decoded := decodeResult(t, result)
	assert.Equal(t, float64(1), decoded["count"])

	interactions := decoded["interactions"].([]interface{})
	first := interactions[0].(map[string]interface{})
	assert.Equal(t, "high", first["severity"])
}

func TestHandleParseInstruction(t *testing.T) {
	server := setupTestServer(t)

	result, err := server.handleParseInstruction(context.Background(),
		callRequest("parse_instruction", map[string]interface{}{
			"text": "ibuprofen 400mg po tid prn for 5 days",
		}))
	require.NoError(t, err)

	decoded := decodeResult(t, result)
	assert.Equal(t, "ibuprofen", decoded["drug"])
	assert.Equal(t, float64(400), decoded["dose_value"])
	assert.Equal(t, "mg", decoded["dose_unit"])
	assert.Equal(t, "oral", decoded["route"])
	assert.Equal(t, "three times daily", decoded["frequency"])
	assert.Equal(t, true, decoded["as_needed"])
	assert.Equal(t, float64(5), decoded["duration_days"])
}

func TestHandleGetStatisticsAndClearCache(t *testing.T) {
	server := setupTestServer(t)
	ctx := context.Background()

	_, err := server.handleSearchConcepts(ctx,
		callRequest("search_concepts", map[string]interface{}{"query": "cold"}))
	require.NoError(t, err)

	result, err := server.handleGetStatistics(ctx, callRequest("get_statistics", nil))
	require.NoError(t, err)

	decoded := decodeResult(t, result)
	assert.Greater(t, decoded["total_concepts"], float64(20))
	assert.Equal(t, float64(1), decoded["cache_entries"])

	result, err = server.handleClearCache(ctx, callRequest("clear_cache", nil))
	require.NoError(t, err)
	assert.Equal(t, true, decodeResult(t, result)["cleared"])

	result, err = server.handleGetStatistics(ctx, callRequest("get_statistics", nil))
	require.NoError(t, err)
	assert.Equal(t, float64(0), decodeResult(t, result)["cache_entries"])
}

func TestHandleImportDataset(t *testing.T) {
	server := setupTestServer(t)

	result, err := server.handleImportDataset(context.Background(),
		callRequest("import_dataset", map[string]interface{}{
			"dataset": map[string]interface{}{
				"vocabulary": "icd10",
				"concepts": []interface{}{
					map[string]interface{}{"code": "K21", "display": "Gastro-esophageal reflux disease"},
				},
			},
		}))
	require.NoError(t, err)

	decoded := decodeResult(t, result)
	assert.Equal(t, true, decoded["imported"])
	assert.Equal(t, float64(1), decoded["concepts"])
}

func TestHandleImportDatasetValidation(t *testing.T) {
	server := setupTestServer(t)
	ctx := context.Background()

	_, err := server.handleImportDataset(ctx,
		callRequest("import_dataset", map[string]interface{}{}))
	assert.Equal(t, ErrorCodeInvalidParams, mcpErrorCode(t, err))

	_, err = server.handleImportDataset(ctx,
		callRequest("import_dataset", map[string]interface{}{
			"dataset": map[string]interface{}{"vocabulary": "loinc"},
		}))
	assert.Equal(t, ErrorCodeInvalidParams, mcpErrorCode(t, err))
}
