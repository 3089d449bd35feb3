package web

import (
	"encoding/json"
	"net/http"
	"strconv"

	"go.uber.org/zap"
)

func (s *Server) writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("Failed to encode response", zap.Error(err))
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	usage := s.service.Usage()
	s.writeJSON(w, map[string]interface{}{
		"status":      "ok",
		"last_price":  s.service.LastPrice(),
		"layers":      len(s.service.Layers()),
		"calls_today": usage.Calls,
		"spend_usd":   usage.SpendUSD,
	})
}

func (s *Server) handleLayers(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, s.service.Layers())
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	snap := s.service.Snapshot()
	if snap == nil {
		http.Error(w, "window still filling", http.StatusServiceUnavailable)
		return
	}
	s.writeJSON(w, snap)
}

func (s *Server) handleUsage(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, s.service.Usage())
}

func (s *Server) handleSignals(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 500 {
			limit = n
		}
	}
	signals, err := s.repo.ListSignals(r.Context(), limit)
	if err != nil {
		s.logger.Error("Failed to list signals", zap.Error(err))
		http.Error(w, "Failed to list signals", http.StatusInternalServerError)
		return
	}
	s.writeJSON(w, signals)
}
