// Package mcpserver exposes the dialogue engine as an MCP server so agent
// hosts can drive conversations as tools.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/aretw0/parley"
	"github.com/aretw0/parley/internal/sanitize"
	"github.com/aretw0/parley/pkg/domain"
	"github.com/aretw0/parley/pkg/session"
)

// StartResponse is the result of the start_conversation tool.
type StartResponse struct {
	SessionID string `json:"session_id" jsonschema_description:"The session identifier for subsequent turns"`
	StateID   string `json:"state_id" jsonschema_description:"The state the conversation starts in"`
	Prompt    string `json:"prompt" jsonschema_description:"The opening scripted prompt"`
}

// TurnResponse is the result of the send_message tool.
type TurnResponse struct {
	Response     string            `json:"response" jsonschema_description:"The engine's reply"`
	StateID      string            `json:"state_id" jsonschema_description:"The state after the turn"`
	Disqualified bool              `json:"disqualified" jsonschema_description:"Whether the conversation was terminated by a disqualification rule"`
	UsedFallback bool              `json:"used_fallback" jsonschema_description:"Whether the generative model produced the reply"`
	Usage        domain.TokenUsage `json:"usage" jsonschema_description:"Cumulative token usage for the session"`
}

// Server wraps the engine and exposes it over MCP.
type Server struct {
	engine    *parley.Engine
	sessions  *session.Manager
	mcpServer *server.MCPServer
}

// NewServer creates a new MCP server instance.
func NewServer(engine *parley.Engine, sessions *session.Manager) *Server {
	s := &Server{
		engine:    engine,
		sessions:  sessions,
		mcpServer: server.NewMCPServer("parley-mcp", strings.TrimSpace(parley.Version)),
	}
	s.registerTools()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

func (s *Server) registerTools() {
	startTool := mcp.NewTool("start_conversation",
		mcp.WithDescription("Start a new conversation session. Returns the session ID and opening prompt."),
		mcp.WithString("session_id", mcp.Description("Session ID to use (optional, generated when omitted)")),
		mcp.WithOutputSchema[StartResponse](),
	)
	s.mcpServer.AddTool(startTool, mcp.NewStructuredToolHandler(s.handleStart))

	sendTool := mcp.NewTool("send_message",
		mcp.WithDescription("Send a user message to an existing conversation and get the engine's reply."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session ID returned by start_conversation")),
		mcp.WithString("message", mcp.Required(), mcp.Description("The user's message")),
		mcp.WithOutputSchema[TurnResponse](),
	)
	s.mcpServer.AddTool(sendTool, mcp.NewStructuredToolHandler(s.handleSend))

	s.mcpServer.AddTool(mcp.NewTool("get_session",
		mcp.WithDescription("Get the full session snapshot: state, facts, history and token usage."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session ID")),
	), s.handleGetSession)

	s.mcpServer.AddTool(mcp.NewTool("get_flow",
		mcp.WithDescription("Get the conversation definition for introspection."),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		jsonBytes, err := json.Marshal(s.engine.Definition())
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("marshal failed: %v", err)), nil
		}
		return mcp.NewToolResultText(string(jsonBytes)), nil
	})
}

func (s *Server) handleStart(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (StartResponse, error) {
	sessionID, _ := args["session_id"].(string)
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	def := s.engine.Definition()
	sess, err := s.sessions.LoadOrStart(ctx, sessionID, def.InitialStateID)
	if err != nil {
		return StartResponse{}, fmt.Errorf("failed to start session: %w", err)
	}

	prompt := ""
	if state, ok := def.State(sess.CurrentStateID); ok {
		prompt = state.Prompt
	}

	return StartResponse{
		SessionID: sess.ID,
		StateID:   sess.CurrentStateID,
		Prompt:    prompt,
	}, nil
}

func (s *Server) handleSend(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (TurnResponse, error) {
	sessionID, _ := args["session_id"].(string)
	message, _ := args["message"].(string)
	if sessionID == "" || message == "" {
		return TurnResponse{}, fmt.Errorf("session_id and message are required")
	}
	message, err := sanitize.Input(message)
	if err != nil {
		return TurnResponse{}, fmt.Errorf("input rejected: %w", err)
	}

	var out TurnResponse
	err = s.sessions.WithLock(ctx, sessionID, func(ctx context.Context) error {
		// Direct store access: the manager's lock is already held.
		sess, err := s.sessions.Store().Load(ctx, sessionID)
		if err != nil {
			return err
		}

		result, err := s.engine.ProcessUtterance(ctx, sess, message)
		if err != nil {
			return err
		}

		out = TurnResponse{
			Response:     result.Response,
			StateID:      result.NextStateID,
			Disqualified: result.Disqualified,
			UsedFallback: result.UsedFallback,
			Usage:        sess.Usage,
		}

		return s.sessions.Store().Save(ctx, sess)
	})
	if err != nil {
		return TurnResponse{}, fmt.Errorf("turn failed: %w", err)
	}

	return out, nil
}

func (s *Server) handleGetSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, err := request.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	sess, err := s.sessions.Load(ctx, sessionID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("load failed: %v", err)), nil
	}

	jsonBytes, err := json.Marshal(sess)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("marshal failed: %v", err)), nil
	}
	return mcp.NewToolResultText(string(jsonBytes)), nil
}
