// Package mcp exposes the inspector as Model Context Protocol tools.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"

	"github.com/coral-mesh/clockwork-mcp/internal/constants"
	"github.com/coral-mesh/clockwork-mcp/internal/inspector"
	"github.com/coral-mesh/clockwork-mcp/internal/metrics"
	"github.com/coral-mesh/clockwork-mcp/pkg/version"
)

// Config contains configuration for the MCP server.
type Config struct {
	// Name is announced to clients. Defaults to clockwork-mcp.
	Name string

	// EnabledTools optionally restricts which tools are available.
	// If empty, all tools are enabled.
	EnabledTools []string

	// AuditEnabled logs every tool call with its arguments.
	AuditEnabled bool
}

// toolFunc runs a tool on JSON arguments and returns its result value.
type toolFunc func(ctx context.Context, args []byte) (any, error)

type registeredTool struct {
	tool mcp.Tool
	run  toolFunc
}

// Server is an MCP server over an Inspector.
type Server struct {
	mcpServer *server.MCPServer
	inspector *inspector.Inspector
	config    Config
	logger    zerolog.Logger
	metrics   *metrics.Metrics

	tools map[string]registeredTool
	order []string
}

// New creates an MCP server with every enabled tool registered.
// A nil metrics disables instrumentation.
func New(insp *inspector.Inspector, config Config, logger zerolog.Logger, m *metrics.Metrics) (*Server, error) {
	if insp == nil {
		return nil, fmt.Errorf("inspector is required")
	}
	if config.Name == "" {
		config.Name = constants.ServerName
	}

	s := &Server{
		mcpServer: server.NewMCPServer(
			config.Name,
			version.Version,
			server.WithToolCapabilities(false),
			server.WithRecovery(),
		),
		inspector: insp,
		config:    config,
		logger:    logger,
		metrics:   m,
		tools:     make(map[string]registeredTool),
	}

	if err := s.registerTools(); err != nil {
		return nil, fmt.Errorf("failed to register tools: %w", err)
	}
	for _, name := range config.EnabledTools {
		if _, ok := s.tools[name]; !ok {
			logger.Warn().Str("tool", name).Msg("Enabled tool does not exist")
		}
	}

	logger.Debug().
		Int("tool_count", len(s.order)).
		Bool("audit_enabled", config.AuditEnabled).
		Msg("MCP server initialized")
	return s, nil
}

// register adds a tool whose arguments decode into In.
func register[In any](s *Server, name, description string, fn func(ctx context.Context, in In) (any, error)) error {
	if !s.isToolEnabled(name) {
		return nil
	}
	if _, dup := s.tools[name]; dup {
		return fmt.Errorf("tool %s registered twice", name)
	}

	var zero In
	inputSchema, err := generateInputSchema(zero)
	if err != nil {
		return fmt.Errorf("failed to generate input schema for %s: %w", name, err)
	}
	schemaBytes, err := json.Marshal(inputSchema)
	if err != nil {
		return fmt.Errorf("failed to marshal schema for %s: %w", name, err)
	}
	tool := mcp.NewToolWithRawSchema(name, description, schemaBytes)

	run := func(ctx context.Context, args []byte) (any, error) {
		var in In
		if len(args) > 0 && string(args) != "null" {
			if err := json.Unmarshal(args, &in); err != nil {
				return nil, fmt.Errorf("failed to parse arguments: %w", err)
			}
		}
		if v, ok := any(in).(interface{ Validate() error }); ok {
			if err := v.Validate(); err != nil {
				return nil, err
			}
		}
		return fn(ctx, in)
	}

	s.tools[name] = registeredTool{tool: tool, run: run}
	s.order = append(s.order, name)
	s.mcpServer.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var args []byte
		if request.Params.Arguments != nil {
			b, err := json.Marshal(request.Params.Arguments)
			if err != nil {
				return mcp.NewToolResultError(fmt.Sprintf("failed to marshal arguments: %v", err)), nil
			}
			args = b
		}
		text, err := s.call(ctx, name, args)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(text), nil
	})
	return nil
}

// call runs a registered tool with auditing and metrics, returning indented JSON.
func (s *Server) call(ctx context.Context, name string, args []byte) (string, error) {
	t, ok := s.tools[name]
	if !ok {
		return "", fmt.Errorf("tool not found or not enabled: %s", name)
	}

	callID := uuid.NewString()
	s.auditToolCall(callID, name, args)

	start := time.Now()
	result, err := t.run(ctx, args)
	elapsed := time.Since(start)
	s.metrics.ObserveToolCall(name, err, elapsed)

	if err != nil {
		s.logger.Warn().
			Err(err).
			Str("tool", name).
			Str("call_id", callID).
			Msg("Tool call failed")
		return "", err
	}

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal result: %w", err)
	}
	s.logger.Debug().
		Str("tool", name).
		Str("call_id", callID).
		Dur("elapsed", elapsed).
		Int("bytes", len(out)).
		Msg("Tool call completed")
	return string(out), nil
}

// ExecuteTool executes an MCP tool by name with JSON-encoded arguments.
func (s *Server) ExecuteTool(ctx context.Context, toolName string, argumentsJSON string) (string, error) {
	return s.call(ctx, toolName, []byte(argumentsJSON))
}

// ListToolNames returns the registered tool names in registration order.
func (s *Server) ListToolNames() []string {
	return slices.Clone(s.order)
}

// IsToolEnabled checks if a tool is enabled based on configuration.
func (s *Server) IsToolEnabled(toolName string) bool {
	return s.isToolEnabled(toolName)
}

// ToolMetadata contains metadata about an MCP tool including its schema.
type ToolMetadata struct {
	Name            string `json:"name"`
	Description     string `json:"description"`
	InputSchemaJSON string `json:"inputSchema"`
}

// GetToolMetadata returns metadata for all registered tools including their input schemas.
func (s *Server) GetToolMetadata() []ToolMetadata {
	metadata := make([]ToolMetadata, 0, len(s.order))
	for _, name := range s.order {
		t := s.tools[name].tool
		metadata = append(metadata, ToolMetadata{
			Name:            name,
			Description:     t.Description,
			InputSchemaJSON: string(t.RawInputSchema),
		})
	}
	return metadata
}

// MCPServer returns the underlying mcp-go server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// isToolEnabled checks if a tool is enabled based on configuration.
func (s *Server) isToolEnabled(toolName string) bool {
	if len(s.config.EnabledTools) == 0 {
		// All tools enabled by default.
		return true
	}
	return slices.Contains(s.config.EnabledTools, toolName)
}

// auditToolCall logs a tool invocation if auditing is enabled.
func (s *Server) auditToolCall(callID, toolName string, args []byte) {
	if !s.config.AuditEnabled {
		return
	}
	if len(args) == 0 || !json.Valid(args) {
		args = []byte("{}")
	}
	s.logger.Info().
		Str("tool", toolName).
		Str("call_id", callID).
		RawJSON("args", args).
		Msg("MCP tool called")
}
