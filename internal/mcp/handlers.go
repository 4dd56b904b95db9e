package mcp

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"go.uber.org/zap"

	"github.com/ziadkadry99/stylelens/internal/analysis"
	"github.com/ziadkadry99/stylelens/internal/popup"
)

func (s *Server) handleSuggestDesign(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	url, err := request.RequireString("url")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: url"), nil
	}

	if out := s.ctrl.Extract(ctx, s.session, url); out.Kind.Failed() {
		return failed(out), nil
	}
	out := s.ctrl.Suggest(ctx, s.session)
	s.logger.Info("suggest_design", zap.String("url", url), zap.String("kind", string(out.Kind)))
	if out.Kind.Failed() {
		return failed(out), nil
	}

	return mcp.NewToolResultText(analysis.Markdown(out.Text)), nil
}

func (s *Server) handleAskFollowUp(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	question, err := request.RequireString("question")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: question"), nil
	}

	out := s.ctrl.Ask(ctx, s.session, question)
	if out.Kind.Failed() {
		return failed(out), nil
	}
	return mcp.NewToolResultText(out.Text), nil
}

func failed(out popup.Outcome) *mcp.CallToolResult {
	msg := string(out.Kind)
	if out.Err != nil {
		msg = fmt.Sprintf("%s: %v", out.Kind, out.Err)
	}
	return mcp.NewToolResultError(msg)
}
