package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/dropradar/dropradar/internal/analyzer"
	"github.com/dropradar/dropradar/internal/cache"
	"github.com/dropradar/dropradar/internal/models"
	"github.com/dropradar/dropradar/internal/storage"
)

// Analyzer is the core pipeline surface the API exposes.
type Analyzer interface {
	Analyze(ctx context.Context, req analyzer.Request) *models.AnalysisRecord
}

// Handlers serves the analysis API. Storage and cache are optional
// collaborators: a nil store disables history, a nil cache disables result
// reuse.
type Handlers struct {
	analyzer Analyzer
	store    *storage.Store
	cache    *cache.AnalysisCache
	logger   *slog.Logger
}

func NewHandlers(a Analyzer, store *storage.Store, analysisCache *cache.AnalysisCache, logger *slog.Logger) *Handlers {
	return &Handlers{
		analyzer: a,
		store:    store,
		cache:    analysisCache,
		logger:   logger,
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

// Analyze runs a full analysis for a URL or free-text product query.
func (h *Handlers) Analyze(w http.ResponseWriter, r *http.Request) {
	var req analyzer.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		h.respondError(w, http.StatusBadRequest, "query is required")
		return
	}

	if h.cache != nil {
		if record, err := h.cache.Get(r.Context(), req.Query); err == nil {
			h.logger.Info("serving cached analysis", "query", req.Query)
			h.respondJSON(w, http.StatusOK, record)
			return
		} else if !errors.Is(err, cache.ErrMiss) {
			h.logger.Warn("cache lookup failed", "error", err)
		}
	}

	record := h.analyzer.Analyze(r.Context(), req)

	if h.cache != nil {
		if err := h.cache.Set(r.Context(), req.Query, record); err != nil {
			h.logger.Warn("failed to cache analysis", "error", err)
		}
	}
	if h.store != nil {
		if err := h.store.SaveAnalysis(r.Context(), record); err != nil {
			h.logger.Error("failed to persist analysis", "id", record.ID, "error", err)
		}
	}

	h.respondJSON(w, http.StatusOK, record)
}

// GetAnalysis returns a previously stored analysis by id.
func (h *Handlers) GetAnalysis(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		h.respondError(w, http.StatusNotImplemented, "storage is not configured")
		return
	}

	id := chi.URLParam(r, "id")
	record, err := h.store.GetAnalysis(r.Context(), id)
	if errors.Is(err, storage.ErrNotFound) {
		h.respondError(w, http.StatusNotFound, "analysis not found")
		return
	}
	if err != nil {
		h.logger.Error("failed to load analysis", "id", id, "error", err)
		h.respondError(w, http.StatusInternalServerError, "failed to load analysis")
		return
	}

	h.respondJSON(w, http.StatusOK, record)
}

// ListAnalyses returns recent analyses, newest first.
func (h *Handlers) ListAnalyses(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		h.respondError(w, http.StatusNotImplemented, "storage is not configured")
		return
	}

	records, err := h.store.RecentAnalyses(r.Context(), 20)
	if err != nil {
		h.logger.Error("failed to list analyses", "error", err)
		h.respondError(w, http.StatusInternalServerError, "failed to list analyses")
		return
	}

	h.respondJSON(w, http.StatusOK, records)
}

func (h *Handlers) Health(w http.ResponseWriter, _ *http.Request) {
	h.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handlers) respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

func (h *Handlers) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, errorResponse{Error: message})
}
