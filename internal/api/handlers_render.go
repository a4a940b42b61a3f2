package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/dgallion1/agridoc/internal/document"
	"github.com/dgallion1/agridoc/internal/fields"
	"github.com/dgallion1/agridoc/internal/parser"
	"github.com/dgallion1/agridoc/internal/render"
	"github.com/dgallion1/agridoc/internal/source"
)

type renderRequest struct {
	Text    string `json:"text"`
	Dialect string `json:"dialect,omitempty"`
	Format  string `json:"format,omitempty"`
	Width   int    `json:"width,omitempty"`
	Style   string `json:"style,omitempty"`
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes)
	var req renderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid json body: "+err.Error(), bodyErrorStatus(err))
		return
	}

	opts, ok := parser.DialectByName(req.Dialect)
	if !ok {
		jsonError(w, fmt.Sprintf("unknown dialect %q (want one of %s)", req.Dialect, strings.Join(parser.DialectNames(), ", ")), http.StatusBadRequest)
		return
	}
	format, err := render.ParseFormat(req.Format)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	doc := parser.ParseWith(req.Text, opts)
	s.metrics.ObserveParse(dialectLabel(req.Dialect), len(req.Text), doc)
	s.writeDocument(w, doc, format, render.Options{Width: req.Width, Style: req.Style})
}

func (s *Server) handleRenderFields(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes)
	raw, err := io.ReadAll(r.Body)
	if err != nil {
		jsonError(w, "failed to read body: "+err.Error(), bodyErrorStatus(err))
		return
	}

	dialect := r.URL.Query().Get("dialect")
	opts, ok := parser.DialectByName(dialect)
	if !ok {
		jsonError(w, fmt.Sprintf("unknown dialect %q", dialect), http.StatusBadRequest)
		return
	}

	v, err := fields.RenderFields(r.Context(), raw, opts)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (s *Server) handleRenderUpload(w http.ResponseWriter, r *http.Request) {
	// Limit total request size.
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1024*1024) // extra 1MB for form overhead

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		jsonError(w, "invalid multipart form: "+err.Error(), bodyErrorStatus(err))
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		jsonError(w, "file is required: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer file.Close()

	filename := sanitizeFilename(header.Filename)
	extractor, err := source.ForFile(filename, source.Options{PDFFallbackPdftotext: s.cfg.PDFFallbackPdftotext})
	if err != nil {
		jsonError(w, fmt.Sprintf("unsupported file type: %s", filepath.Ext(filename)), http.StatusBadRequest)
		return
	}

	data, err := io.ReadAll(io.LimitReader(file, s.cfg.MaxUploadBytes+1))
	if err != nil {
		jsonError(w, "failed to read file", http.StatusInternalServerError)
		return
	}
	if int64(len(data)) > s.cfg.MaxUploadBytes {
		jsonError(w, fmt.Sprintf("file exceeds max size (%d bytes)", s.cfg.MaxUploadBytes), http.StatusRequestEntityTooLarge)
		return
	}

	dialect := r.FormValue("dialect")
	opts, ok := parser.DialectByName(dialect)
	if !ok {
		jsonError(w, fmt.Sprintf("unknown dialect %q", dialect), http.StatusBadRequest)
		return
	}
	format, err := render.ParseFormat(r.FormValue("format"))
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	text, err := extractor.Extract(bytes.NewReader(data), filename)
	if err != nil {
		s.log.Warn("extract failed", "filename", filename, "error", err)
		jsonError(w, "extract: "+err.Error(), http.StatusUnprocessableEntity)
		return
	}

	doc := parser.ParseWith(text, opts)
	s.metrics.ObserveParse(dialectLabel(dialect), len(text), doc)
	if format == render.FormatJSON {
		writeJSON(w, http.StatusOK, map[string]any{
			"filename": filename,
			"text":     text,
			"document": doc,
		})
		return
	}
	s.writeDocument(w, doc, format, render.Options{})
}

// writeDocument renders doc into a buffer first so a render failure can
// still be reported as a JSON error.
func (s *Server) writeDocument(w http.ResponseWriter, doc document.Document, format render.Format, opts render.Options) {
	var buf bytes.Buffer
	if err := render.Render(&buf, doc, format, opts); err != nil {
		s.log.Error("render failed", "format", format, "error", err)
		jsonError(w, "render: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", format.ContentType())
	w.Write(buf.Bytes())
}

func dialectLabel(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return "full"
	}
	return name
}

func bodyErrorStatus(err error) int {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return http.StatusRequestEntityTooLarge
	}
	return http.StatusBadRequest
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func sanitizeFilename(name string) string {
	// Strip path components, keep only the base name.
	name = filepath.Base(name)
	// Remove any path separators that might have survived.
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "\\", "_")
	name = strings.ReplaceAll(name, "..", "_")
	if name == "" || name == "." {
		name = "unnamed"
	}
	return name
}
