// Package webui serves the popup in a browser: the embedded page, the
// session API it drives and a websocket for follow-up chat.
package webui

import (
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/ziadkadry99/stylelens/internal/popup"
)

// UI binds popup sessions to HTTP.
type UI struct {
	sessions *popup.Sessions
	ctrl     *popup.Controller
	logger   *zap.Logger
}

// New creates a UI.
func New(sessions *popup.Sessions, ctrl *popup.Controller, logger *zap.Logger) *UI {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UI{sessions: sessions, ctrl: ctrl, logger: logger}
}

// RegisterRoutes mounts the page and session API on r.
func (u *UI) RegisterRoutes(r chi.Router) {
	r.Get("/", u.ServeIndex)
	r.Post("/api/sessions", u.handleCreateSession)
	r.Route("/api/sessions/{id}", func(r chi.Router) {
		r.Delete("/", u.handleDeleteSession)
		r.Post("/extract", u.handleExtract)
		r.Post("/suggestions", u.handleSuggest)
		r.Post("/followups", u.handleFollowUp)
	})
}

// RegisterSocket mounts the follow-up websocket on r. It must not sit
// behind a request timeout.
func (u *UI) RegisterSocket(r chi.Router) {
	r.Get("/ws/sessions/{id}", u.handleWebSocket)
}
