package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/isdmx/nexus/config"
	"github.com/isdmx/nexus/models"
)

// ToolName is the name under which the loop is exposed to MCP clients
const ToolName = "generate_verified_code"

const serverVersion = "1.0.0"

// Runner executes one generate, audit and execute run
type Runner interface {
	Run(ctx context.Context, task string) (models.RunResult, error)
}

// MCPServer represents the MCP server
type MCPServer struct {
	config    *config.Config
	logger    *zap.Logger
	runner    Runner
	mcpServer *server.MCPServer
}

// New creates a new MCPServer
func New(cfg *config.Config, logger *zap.Logger, runner Runner) (*MCPServer, error) {
	s := &MCPServer{
		config: cfg,
		logger: logger.Named("mcp"),
		runner: runner,
	}

	logger.Info("configuration loaded",
		zap.String("server.transport", cfg.Server.Transport),
		zap.Int("server.http_port", cfg.Server.HTTPPort),
		zap.String("llm.base_url", cfg.LLM.BaseURL),
		zap.String("llm.model", cfg.LLM.Model),
		zap.Int("loop.max_retries", cfg.Loop.MaxRetries),
		zap.Int("loop.max_concurrent_runs", cfg.Loop.MaxConcurrentRuns),
		zap.String("sandbox.backend", cfg.Sandbox.Backend),
		zap.Int("sandbox.timeout_sec", cfg.Sandbox.TimeoutSec),
		zap.Int("sandbox.memory_mb", cfg.Sandbox.MemoryMB),
		zap.Bool("sandbox.network_enabled", cfg.Sandbox.NetworkEnabled),
	)

	s.mcpServer = server.NewMCPServer("nexus", serverVersion,
		server.WithToolCapabilities(false),
		server.WithRecovery(),
	)
	s.registerGenerateTool()

	return s, nil
}

func (s *MCPServer) registerGenerateTool() {
	tool := mcp.NewTool(ToolName,
		mcp.WithDescription("Generate Python code for a task, audit it for security issues and run it in a sandbox, "+
			"retrying with the failure feedback until the code runs cleanly or the retry budget is spent"),
		mcp.WithString("task",
			mcp.Required(),
			mcp.Description("Natural-language description of what the code should do"),
		),
	)

	s.mcpServer.AddTool(tool, s.handleGenerate)
}

func (s *MCPServer) handleGenerate(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	task, err := request.RequireString("task")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("task parameter is required: %v", err)), nil
	}

	s.logger.Info("generation requested", zap.Int("task_len", len(task)))

	result, err := s.runner.Run(ctx, task)
	if err != nil {
		s.logger.Error("run failed", zap.Error(err), zap.String("run_id", result.RunID))
		return mcp.NewToolResultError(fmt.Sprintf("Run failed: %v", err)), nil
	}

	payload, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("failed to encode run result: %w", err)
	}

	s.logger.Info("generation completed",
		zap.String("run_id", result.RunID),
		zap.String("status", string(result.Status)),
		zap.Int("attempts", result.Attempts))

	return mcp.NewToolResultText(string(payload)), nil
}

// ServeStdio starts the server on stdio
func (s *MCPServer) ServeStdio() error {
	s.logger.Info("starting MCP server on stdio")
	return server.ServeStdio(s.mcpServer)
}

// HTTPHandler returns the streamable HTTP transport for mounting on the API router
func (s *MCPServer) HTTPHandler() http.Handler {
	return server.NewStreamableHTTPServer(s.mcpServer)
}
