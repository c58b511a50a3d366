package web

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/abdul-hamid-achik/robomem/internal/memsvc"
	"github.com/abdul-hamid-achik/robomem/internal/observe"
	"github.com/abdul-hamid-achik/robomem/internal/version"
)

// Handler handles JSON API requests.
type Handler struct {
	retriever   *observe.Retriever
	aggregator  *observe.Aggregator
	defaultUser string
}

// NewHandler creates a new Handler.
func NewHandler(svc memsvc.Service, defaultUser string) *Handler {
	return &Handler{
		retriever:   observe.NewRetriever(svc),
		aggregator:  observe.NewAggregator(svc),
		defaultUser: defaultUser,
	}
}

// Health reports service liveness.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": version.Version,
	})
}

// APIRecall searches stored observations.
func (h *Handler) APIRecall(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "query parameter 'q' is required"})
		return
	}

	results := h.retriever.Recall(r.Context(), query, h.user(r))
	if results == nil {
		results = []memsvc.Result{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"query":   query,
		"results": results,
	})
}

// APIMap builds the spatial map for a user.
func (h *Handler) APIMap(w http.ResponseWriter, r *http.Request) {
	report, err := h.aggregator.BuildSpatialMap(r.Context(), h.user(r))
	if err != nil {
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": "failed to build spatial map"})
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// user resolves the user query parameter against the configured default.
func (h *Handler) user(r *http.Request) string {
	if user := r.URL.Query().Get("user"); user != "" {
		return user
	}
	return h.defaultUser
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("web: failed to encode response: %v", err)
	}
}
