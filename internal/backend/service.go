// Package backend is a local implementation of the design-suggestion
// service the popup talks to: page markup in, sectioned AI advice out.
package backend

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/ziadkadry99/stylelens/internal/llm"
)

// maxRequestBytes bounds request bodies. Captured pages are truncated well
// below this by the client.
const maxRequestBytes = 1 << 20

// Service answers suggestion and follow-up requests with an LLM.
type Service struct {
	provider llm.Provider
	logger   *zap.Logger
}

// NewService creates a Service.
func NewService(provider llm.Provider, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{provider: provider, logger: logger}
}

// RegisterRoutes mounts the service endpoints on r.
func RegisterRoutes(r chi.Router, svc *Service) {
	r.Post("/api/suggest", svc.handleSuggest)
	r.Post("/api/prompt", svc.handlePrompt)
}

type suggestRequest struct {
	HTML string `json:"html"`
	CSS  string `json:"css"`
}

type promptRequest struct {
	Prompt  string `json:"prompt"`
	Content string `json:"content"`
}

type suggestResponse struct {
	Success  bool   `json:"success"`
	Analysis string `json:"analysis"`
}

type promptResponse struct {
	Success  bool   `json:"success"`
	Response string `json:"response"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Service) handleSuggest(w http.ResponseWriter, r *http.Request) {
	var req suggestRequest
	if err := decode(w, r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	if strings.TrimSpace(req.HTML) == "" && strings.TrimSpace(req.CSS) == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "html or css is required"})
		return
	}

	system, user := suggestMessages(req.HTML, req.CSS)
	text, err := s.complete(r.Context(), "suggest", system, user)
	if err != nil {
		writeJSON(w, http.StatusBadGateway, errorResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, suggestResponse{Success: true, Analysis: text})
}

func (s *Service) handlePrompt(w http.ResponseWriter, r *http.Request) {
	var req promptRequest
	if err := decode(w, r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	req.Prompt = strings.TrimSpace(req.Prompt)
	if req.Prompt == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "prompt is required"})
		return
	}
	if strings.TrimSpace(req.Content) == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "content is required"})
		return
	}

	system, user := followUpMessages(req.Prompt, req.Content)
	text, err := s.complete(r.Context(), "prompt", system, user)
	if err != nil {
		writeJSON(w, http.StatusBadGateway, errorResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, promptResponse{Success: true, Response: text})
}

func (s *Service) complete(ctx context.Context, op, system, user string) (string, error) {
	req := llm.CompletionRequest{Messages: []llm.Message{
		{Role: llm.RoleSystem, Content: system},
		{Role: llm.RoleUser, Content: user},
	}}

	start := time.Now()
	resp, err := s.provider.Complete(ctx, req)
	if err != nil {
		s.logger.Warn("completion failed", zap.String("op", op), zap.String("provider", s.provider.Name()), zap.Error(err))
		return "", errors.New("AI provider request failed")
	}
	if strings.TrimSpace(resp.Content) == "" {
		return "", errors.New("AI provider returned an empty response")
	}

	in, out := llm.Usage(req, resp)
	s.logger.Info("completion",
		zap.String("op", op),
		zap.String("provider", s.provider.Name()),
		zap.String("model", resp.Model),
		zap.Int("input_tokens", in),
		zap.Int("output_tokens", out),
		zap.Float64("cost_usd", llm.EstimateCost(resp.Model, in, out)),
		zap.Duration("elapsed", time.Since(start)))
	return resp.Content, nil
}

func decode(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes))
	if err := dec.Decode(v); err != nil {
		return errors.New("invalid JSON body")
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
