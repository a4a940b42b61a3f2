package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dgallion1/agridoc/internal/assistant"
	"github.com/dgallion1/agridoc/internal/pipeline"
	"github.com/dgallion1/agridoc/internal/render"
)

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	if s.orchestrator == nil {
		jsonError(w, "generation is not configured", http.StatusServiceUnavailable)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes)
	var p assistant.Prompt
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		jsonError(w, "invalid json body: "+err.Error(), bodyErrorStatus(err))
		return
	}
	kind, err := assistant.ParseKind(string(p.Kind))
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	p.Kind = kind

	job, err := s.orchestrator.Submit(p)
	switch {
	case errors.Is(err, pipeline.ErrQueueFull), errors.Is(err, pipeline.ErrStopped):
		jsonError(w, err.Error(), http.StatusServiceUnavailable)
		return
	case err != nil:
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]any{
		"job_id":   job.ID,
		"kind":     kind,
		"status":   pipeline.StatusQueued,
		"poll_url": fmt.Sprintf("/api/ask/%s", job.ID),
	})
}

// handleAskStatus returns the job with its text parsed so far. A format
// query parameter renders just the document in that format instead.
func (s *Server) handleAskStatus(w http.ResponseWriter, r *http.Request) {
	if s.orchestrator == nil {
		jsonError(w, "generation is not configured", http.StatusServiceUnavailable)
		return
	}
	job := s.orchestrator.GetJob(chi.URLParam(r, "jobID"))
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}
	snap := job.Snapshot()

	if f := r.URL.Query().Get("format"); f != "" {
		format, err := render.ParseFormat(f)
		if err != nil {
			jsonError(w, err.Error(), http.StatusBadRequest)
			return
		}
		if snap.Document == nil {
			jsonError(w, "reply is not a marker-text document", http.StatusConflict)
			return
		}
		s.writeDocument(w, *snap.Document, format, render.Options{})
		return
	}
	writeJSON(w, http.StatusOK, snap)
}
