package backend

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"playerscout/internal/errors"
	"playerscout/models"
	"playerscout/ports"
)

const (
	msgNoName   = "No name provided"
	msgNotFound = "Player not found"
)

// Handler serves the search endpoint and the service's informational routes
type Handler struct {
	store    ports.PlayerRepository
	analyzer ports.OverviewAnalyzer
}

func NewHandler(store ports.PlayerRepository, analyzer ports.OverviewAnalyzer) *Handler {
	return &Handler{store: store, analyzer: analyzer}
}

// SearchPlayer answers GET /api/player/search?name=
func (h *Handler) SearchPlayer(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSpace(r.URL.Query().Get("name"))
	if name == "" {
		respondJSON(w, http.StatusBadRequest, models.SearchResponse{Error: msgNoName})
		return
	}

	record, err := h.store.FindByName(r.Context(), name)
	if err != nil {
		if errors.IsNotFound(err) {
			log.Printf("[Backend] No player matches %q", name)
			respondJSON(w, http.StatusOK, models.SearchResponse{Error: msgNotFound})
			return
		}
		log.Printf("[Backend] Search for %q failed: %v", name, err)
		respondJSON(w, http.StatusInternalServerError, models.SearchResponse{Error: err.Error()})
		return
	}

	respondJSON(w, http.StatusOK, models.SearchResponse{
		Success: true,
		Data:    h.withOverview(r, record),
	})
}

// withOverview fills in a missing overview. The stored record is never mutated;
// an analyzed copy is written back so the next lookup is served from the store.
func (h *Handler) withOverview(r *http.Request, record *models.PlayerRecord) *models.PlayerRecord {
	if h.analyzer == nil || record.HasOverview() {
		return record
	}

	overview, err := h.analyzer.Analyze(record)
	if err != nil {
		log.Printf("[Backend] Analysis of %q failed, serving without overview: %v", record.GeneralInfo.Name, err)
		return record
	}

	analyzed := *record
	analyzed.PlayerOverview = overview
	if err := h.store.Upsert(r.Context(), &analyzed); err != nil {
		log.Printf("[Backend] Failed to store overview for %q: %v", record.GeneralInfo.Name, err)
	}
	return &analyzed
}

// HealthCheck answers GET /health
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"message": "Server is running",
	})
}

// Welcome answers GET /
func (h *Handler) Welcome(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"message": "Welcome to the PlayerScout statistics API",
		"version": Version,
	})
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("[Backend] Failed to encode response: %v", err)
	}
}
