package api

import (
	"net/http"
)

func (s *Server) handleLLMStats(w http.ResponseWriter, r *http.Request) {
	if s.stats == nil {
		jsonError(w, "llm stats unavailable", http.StatusServiceUnavailable)
		return
	}

	queueDepth := 0
	if s.orchestrator != nil {
		queueDepth = s.orchestrator.QueueDepth()
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"model":       s.cfg.GeminiModel,
		"pro_model":   s.cfg.GeminiProModel,
		"queue_depth": queueDepth,
		"stats":       s.stats.Snapshot(),
	})
}
