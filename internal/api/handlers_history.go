package api

import (
	"errors"
	"net/http"
	"strconv"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"

	"github.com/dgallion1/agridoc/internal/assistant"
	"github.com/dgallion1/agridoc/internal/document"
	"github.com/dgallion1/agridoc/internal/fields"
	"github.com/dgallion1/agridoc/internal/history"
	"github.com/dgallion1/agridoc/internal/parser"
)

const previewChars = 160

type historySummary struct {
	history.Item
	Preview string `json:"preview"`
}

type historyDetail struct {
	history.Item
	Document *document.Document `json:"document,omitempty"`
	Fields   any                `json:"fields,omitempty"`
}

func (s *Server) handleListHistory(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			jsonError(w, "limit must be a non-negative integer", http.StatusBadRequest)
			return
		}
		limit = n
	}

	items, err := s.history.List(r.Context(), limit)
	if err != nil {
		s.log.Error("history list failed", "error", err)
		jsonError(w, "failed to list history", http.StatusInternalServerError)
		return
	}

	out := make([]historySummary, 0, len(items))
	for _, item := range items {
		preview := item.Content
		if !isJSONKind(item.Kind) {
			preview = parser.ParseWith(item.Content, parser.HistoryDialect).PlainText()
		}
		summary := historySummary{Item: item, Preview: truncateRunes(preview, previewChars)}
		summary.Content = ""
		out = append(out, summary)
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"items":     out,
		"max_items": s.history.MaxItems(),
	})
}

// handleGetHistory parses the stored reply again on every read.
func (s *Server) handleGetHistory(w http.ResponseWriter, r *http.Request) {
	item, err := s.history.Get(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, history.ErrNotFound) {
		jsonError(w, "history item not found", http.StatusNotFound)
		return
	}
	if err != nil {
		s.log.Error("history get failed", "error", err)
		jsonError(w, "failed to read history", http.StatusInternalServerError)
		return
	}

	detail := historyDetail{Item: item}
	if isJSONKind(item.Kind) {
		v, err := fields.RenderFields(r.Context(), []byte(assistant.StripCodeFence(item.Content)), parser.HistoryDialect)
		if err != nil {
			jsonError(w, "stored reply is not valid json: "+err.Error(), http.StatusInternalServerError)
			return
		}
		detail.Fields = v
	} else {
		doc := parser.ParseWith(item.Content, parser.HistoryDialect)
		s.metrics.ObserveParse("history", len(item.Content), doc)
		detail.Document = &doc
	}
	writeJSON(w, http.StatusOK, detail)
}

func (s *Server) handleClearHistory(w http.ResponseWriter, r *http.Request) {
	if err := s.history.Clear(r.Context()); err != nil {
		s.log.Error("history clear failed", "error", err)
		jsonError(w, "failed to clear history", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"cleared": true})
}

func isJSONKind(kind string) bool {
	return assistant.Kind(kind).JSONReply()
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n]) + "…"
}
