package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strconv"
	"time"

	"github.com/sheetcheck/sheetcheck"
	"github.com/sheetcheck/sheetcheck/extract"
)

// maxUploadBytes bounds multipart uploads. Answer sheets are small; a
// scanned PDF rarely exceeds a few tens of megabytes.
const maxUploadBytes = 50 << 20

type handler struct {
	checker *sheetcheck.Checker
}

func newHandler(c *sheetcheck.Checker) *handler {
	return &handler{checker: c}
}

// POST /extractFileText
// Accepts a multipart upload under the "file" field and returns the
// recovered text with the per-page method log.
func (h *handler) handleExtract(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Minute)
	defer cancel()

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart request")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "file field is required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxUploadBytes+1))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to read upload")
		slog.Error("reading upload", "error", err)
		return
	}
	if len(data) > maxUploadBytes {
		writeError(w, http.StatusRequestEntityTooLarge, "file too large")
		return
	}

	safeName := filepath.Base(header.Filename)

	result, err := h.checker.ExtractFile(ctx, safeName, data)
	if err != nil {
		switch {
		case errors.Is(err, sheetcheck.ErrUnsupportedFormat):
			writeError(w, http.StatusUnsupportedMediaType, err.Error())
		case errors.Is(err, sheetcheck.ErrDocumentParse):
			writeError(w, http.StatusUnprocessableEntity, "document could not be parsed")
			slog.Error("extract parse error", "filename", safeName, "error", err)
		case errors.Is(err, sheetcheck.ErrTranscription):
			writeError(w, http.StatusBadGateway, "transcription service failed")
			slog.Error("extract transcription error", "filename", safeName, "error", err)
		case errors.Is(err, sheetcheck.ErrRasterUnavailable):
			writeError(w, http.StatusServiceUnavailable, "transcription is not available")
		default:
			writeError(w, http.StatusInternalServerError, "extraction failed")
			slog.Error("extract error", "filename", safeName, "error", err)
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message":        "File processed successfully",
		"filename":       result.Filename,
		"size":           result.Size,
		"size_units":     "bytes",
		"type":           result.Format,
		"extracted_text": result.Text,
		"quality":        result.Quality,
		"pages":          result.Pages,
	})
}

// POST /evaluation
func (h *handler) handleEvaluation(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Minute)
	defer cancel()

	var req struct {
		Model   string `json:"model"`
		Student string `json:"student"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	// Empty model or student text is a valid input: the scorer defines
	// keyword ratio 0 for an empty reference rather than rejecting it.
	result, err := h.checker.Evaluate(ctx, req.Model, req.Student)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "evaluation failed")
		slog.Error("evaluation error", "error", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message":   "200 OK",
		"keyword":   result.Keyword,
		"semantics": result.Semantics,
		"tone":      result.Tone,
		"toneScore": result.ToneScore,
	})
}

// GET /
// Capability descriptor so clients can discover supported formats.
func (h *handler) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message":                "answer sheet checking service",
		"supportedTypes":         extract.SupportedExtensions,
		"transcriptionAvailable": h.checker.TranscriptionAvailable(),
		"endpoints":              []string{"POST /extractFileText", "POST /evaluation", "GET /extractions", "GET /evaluations/export", "GET /health"},
	})
}

// GET /extractions
func (h *handler) handleListExtractions(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 || n > 1000 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}

	records, err := h.checker.RecentExtractions(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list extractions")
		slog.Error("list extractions error", "error", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"extractions": records,
	})
}

// GET /evaluations/export
func (h *handler) handleExportEvaluations(w http.ResponseWriter, r *http.Request) {
	data, err := h.checker.ExportEvaluations(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "export failed")
		slog.Error("export error", "error", err)
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="evaluations.xlsx"`)
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// GET /health
func (h *handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": fmt.Sprintf("%s", msg)})
}
