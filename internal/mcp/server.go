package mcp

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"

	"github.com/clinterm/clinterm-mcp/internal/engine"
)

const (
	// ServerName is the MCP server name
	ServerName = "clinterm-mcp"
	// ServerVersion is the current server version
	ServerVersion = "1.0.0"
)

// Server wraps the MCP server with the terminology engine
type Server struct {
	mcp    *server.MCPServer
	engine *engine.Engine
	log    zerolog.Logger
}

// NewServer builds the terminology engine and registers every tool
func NewServer(ctx context.Context, cfg engine.Config, log zerolog.Logger) (*Server, error) {
	eng, err := engine.New(ctx, cfg, log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize engine: %w", err)
	}

	mcpServer := server.NewMCPServer(
		ServerName,
		ServerVersion,
	)

	s := &Server{
		mcp:    mcpServer,
		engine: eng,
		log:    log,
	}
	s.registerTools()

	return s, nil
}

// Serve starts the MCP server on stdio and blocks until shutdown
func (s *Server) Serve(ctx context.Context) error {
	defer func() { _ = s.engine.Close() }()
	return server.ServeStdio(s.mcp)
}

// registerTools registers all MCP tools
func (s *Server) registerTools() {
	s.mcp.AddTool(searchConceptsTool(), s.handleSearchConcepts)
	s.mcp.AddTool(batchSearchTool(), s.handleBatchSearch)
	s.mcp.AddTool(getConceptTool(), s.handleGetConcept)
	s.mcp.AddTool(getHierarchyTool(), s.handleGetHierarchy)
	s.mcp.AddTool(executeExpressionTool(), s.handleExecuteExpression)
	s.mcp.AddTool(checkCompatibilityTool(), s.handleCheckCompatibility)
	s.mcp.AddTool(checkInteractionsTool(), s.handleCheckInteractions)
	s.mcp.AddTool(parseInstructionTool(), s.handleParseInstruction)
	s.mcp.AddTool(getStatisticsTool(), s.handleGetStatistics)
	s.mcp.AddTool(clearCacheTool(), s.handleClearCache)
	s.mcp.AddTool(importDatasetTool(), s.handleImportDataset)
}
