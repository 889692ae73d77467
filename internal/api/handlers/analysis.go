package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/RylynnLai/trading-tips/internal/contracts"
	"github.com/RylynnLai/trading-tips/internal/strategy"
	"github.com/RylynnLai/trading-tips/pkg/logger"
)

// BarSource loads the price history for on-demand analysis.
type BarSource interface {
	GetBars(ctx context.Context, symbol string, lookback int) ([]contracts.Bar, error)
}

// AnalysisResponse is the on-demand analysis payload for one symbol.
type AnalysisResponse struct {
	Symbol         string                    `json:"symbol"`
	Recommendation *contracts.Recommendation `json:"recommendation,omitempty"`
	Trend          *contracts.TrendInfo      `json:"trend"`
	Signals        *contracts.SignalSet      `json:"signals"`
}

// AnalysisHandler runs the pipeline for a single symbol on request.
// ⭐ SSOT: on-demand analysis API handlers live in this struct only
type AnalysisHandler struct {
	bars     BarSource
	analyzer *strategy.Analyzer
	lookback int
	logger   *logger.Logger
}

// NewAnalysisHandler creates a new analysis handler. lookback bounds how
// many bars are loaded per request.
func NewAnalysisHandler(bars BarSource, analyzer *strategy.Analyzer, lookback int, log *logger.Logger) *AnalysisHandler {
	return &AnalysisHandler{
		bars:     bars,
		analyzer: analyzer,
		lookback: lookback,
		logger:   log,
	}
}

// AnalyzeSymbol runs the full pipeline for one symbol.
// GET /api/analysis/{symbol}?lookback=420
func (h *AnalysisHandler) AnalyzeSymbol(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	symbol := mux.Vars(r)["symbol"]

	lookback := h.lookback
	if raw := r.URL.Query().Get("lookback"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			respondError(w, http.StatusBadRequest, "Invalid lookback (expected a positive integer)")
			return
		}
		if parsed < lookback {
			lookback = parsed
		}
	}

	bars, err := h.bars.GetBars(ctx, symbol, lookback)
	if err != nil {
		h.logger.WithError(err).WithField("symbol", symbol).Error("Failed to load bars")
		respondError(w, http.StatusInternalServerError, "Failed to load price history")
		return
	}
	if len(bars) == 0 {
		respondError(w, http.StatusNotFound, "Unknown symbol or no price history")
		return
	}

	rec, detail, err := h.analyzer.AnalyzeSymbol(symbol, bars)
	if err != nil {
		if errors.Is(err, contracts.ErrInsufficientData) || errors.Is(err, contracts.ErrMalformedSeries) {
			respondError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		h.logger.WithError(err).WithField("symbol", symbol).Error("Analysis failed")
		respondError(w, http.StatusInternalServerError, "Analysis failed")
		return
	}

	respondJSON(w, http.StatusOK, AnalysisResponse{
		Symbol:         symbol,
		Recommendation: rec,
		Trend:          detail.Trend,
		Signals:        detail.Signals,
	})
}
