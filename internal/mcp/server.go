// Package mcp exposes the suggestion loop to agents over the Model Context
// Protocol on stdio.
package mcp

import (
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/ziadkadry99/stylelens/internal/popup"
)

// Version is set via ldflags at build time.
var Version = "dev"

// Server holds one popup session for the life of the process, so
// ask_followup questions refer to the latest suggest_design result.
type Server struct {
	ctrl    *popup.Controller
	session *popup.Session
	logger  *zap.Logger
	mcp     *server.MCPServer
}

// NewServer creates a new MCP server around ctrl.
func NewServer(ctrl *popup.Controller, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		ctrl:    ctrl,
		session: popup.NewSession(),
		logger:  logger,
	}

	s.mcp = server.NewMCPServer(
		"stylelens",
		Version,
		server.WithToolCapabilities(false),
	)
	s.mcp.AddTool(suggestDesignTool, s.handleSuggestDesign)
	s.mcp.AddTool(askFollowUpTool, s.handleAskFollowUp)

	return s
}

// Serve starts the MCP server on stdio. Stdout is used for MCP protocol
// messages; all logging must go to stderr.
func (s *Server) Serve() error {
	return server.ServeStdio(s.mcp)
}
