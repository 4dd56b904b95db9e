package webui

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ziadkadry99/stylelens/internal/popup"
)

// outcomeResponse is the JSON form of a popup.Outcome.
type outcomeResponse struct {
	Kind  popup.Kind `json:"kind"`
	HTML  string     `json:"html"`
	Error string     `json:"error,omitempty"`
}

type extractRequest struct {
	URL string `json:"url"`
}

type followUpRequest struct {
	Question string `json:"question"`
}

func (u *UI) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	sess := u.sessions.Create()
	writeJSON(w, http.StatusCreated, map[string]string{"id": sess.ID})
}

func (u *UI) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	u.sessions.Delete(chi.URLParam(r, "id"))
	w.WriteHeader(http.StatusNoContent)
}

func (u *UI) handleExtract(w http.ResponseWriter, r *http.Request) {
	sess, ok := u.session(w, r)
	if !ok {
		return
	}
	var req extractRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.URL == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "url is required"})
		return
	}
	u.writeOutcome(w, u.ctrl.Extract(r.Context(), sess, req.URL))
}

func (u *UI) handleSuggest(w http.ResponseWriter, r *http.Request) {
	sess, ok := u.session(w, r)
	if !ok {
		return
	}
	u.writeOutcome(w, u.ctrl.Suggest(r.Context(), sess))
}

func (u *UI) handleFollowUp(w http.ResponseWriter, r *http.Request) {
	sess, ok := u.session(w, r)
	if !ok {
		return
	}
	var req followUpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
		return
	}
	u.writeOutcome(w, u.ctrl.Ask(r.Context(), sess, req.Question))
}

func (u *UI) session(w http.ResponseWriter, r *http.Request) (*popup.Session, bool) {
	sess, ok := u.sessions.Get(chi.URLParam(r, "id"))
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "session not found"})
	}
	return sess, ok
}

// writeOutcome answers 200 for every outcome the page can display, and 409
// when the session already has the same kind of call in flight.
func (u *UI) writeOutcome(w http.ResponseWriter, out popup.Outcome) {
	status := http.StatusOK
	if errors.Is(out.Err, popup.ErrInFlight) {
		status = http.StatusConflict
	}
	writeJSON(w, status, toResponse(out))
}

func toResponse(out popup.Outcome) outcomeResponse {
	resp := outcomeResponse{Kind: out.Kind, HTML: out.HTML()}
	if out.Err != nil {
		resp.Error = out.Err.Error()
	}
	return resp
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
