package history

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

// RegisterRoutes mounts history endpoints under /api/history.
func RegisterRoutes(r chi.Router, store *Store) {
	r.Route("/api/history", func(r chi.Router) {
		r.Get("/", handleRecent(store))
		r.Get("/{session}/followups", handleFollowUps(store))
	})
}

func handleRecent(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := 20
		if v := r.URL.Query().Get("limit"); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				limit = n
			}
		}
		runs, err := store.Recent(r.Context(), limit)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if runs == nil {
			runs = []Run{}
		}
		writeJSON(w, map[string]any{"runs": runs})
	}
}

func handleFollowUps(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		followups, err := store.FollowUps(r.Context(), chi.URLParam(r, "session"))
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if followups == nil {
			followups = []FollowUp{}
		}
		writeJSON(w, map[string]any{"followups": followups})
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}
