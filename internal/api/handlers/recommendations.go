package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/RylynnLai/trading-tips/internal/contracts"
	"github.com/RylynnLai/trading-tips/pkg/logger"
)

// RecommendationStore reads persisted batch results.
type RecommendationStore interface {
	GetByDate(ctx context.Context, date time.Time) ([]contracts.Recommendation, error)
	GetSkipped(ctx context.Context, date time.Time) ([]contracts.SkippedSymbol, error)
	LatestBatchDate(ctx context.Context) (time.Time, error)
}

// RecommendationHandler serves stored recommendation batches.
// ⭐ SSOT: recommendation API handlers live in this struct only
type RecommendationHandler struct {
	store  RecommendationStore
	logger *logger.Logger
}

// NewRecommendationHandler creates a new recommendation handler.
func NewRecommendationHandler(store RecommendationStore, log *logger.Logger) *RecommendationHandler {
	return &RecommendationHandler{
		store:  store,
		logger: log,
	}
}

// GetRecommendations returns the batch for a date, latest by default.
// GET /api/recommendations?date=2025-06-13
func (h *RecommendationHandler) GetRecommendations(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	date, ok := h.resolveDate(w, r)
	if !ok {
		return
	}
	if date.IsZero() {
		respondError(w, http.StatusNotFound, "No recommendation batch stored yet")
		return
	}

	recs, err := h.store.GetByDate(ctx, date)
	if err != nil {
		h.logger.WithError(err).Error("Failed to load recommendations")
		respondError(w, http.StatusInternalServerError, "Failed to load recommendations")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"date":            date.Format("2006-01-02"),
		"count":           len(recs),
		"recommendations": recs,
	})
}

// GetSkipped returns the symbols excluded from a batch.
// GET /api/recommendations/skipped?date=2025-06-13
func (h *RecommendationHandler) GetSkipped(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	date, ok := h.resolveDate(w, r)
	if !ok {
		return
	}
	if date.IsZero() {
		respondError(w, http.StatusNotFound, "No recommendation batch stored yet")
		return
	}

	skipped, err := h.store.GetSkipped(ctx, date)
	if err != nil {
		h.logger.WithError(err).Error("Failed to load skipped symbols")
		respondError(w, http.StatusInternalServerError, "Failed to load skipped symbols")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"date":    date.Format("2006-01-02"),
		"count":   len(skipped),
		"skipped": skipped,
	})
}

// resolveDate parses the date query parameter, falling back to the
// latest stored batch. The second return is false after an error
// response has already been written.
func (h *RecommendationHandler) resolveDate(w http.ResponseWriter, r *http.Request) (time.Time, bool) {
	if raw := r.URL.Query().Get("date"); raw != "" {
		date, err := time.Parse("2006-01-02", raw)
		if err != nil {
			respondError(w, http.StatusBadRequest, "Invalid date (expected YYYY-MM-DD)")
			return time.Time{}, false
		}
		return date, true
	}

	date, err := h.store.LatestBatchDate(r.Context())
	if err != nil {
		h.logger.WithError(err).Error("Failed to resolve latest batch date")
		respondError(w, http.StatusInternalServerError, "Failed to resolve latest batch date")
		return time.Time{}, false
	}
	return date, true
}
