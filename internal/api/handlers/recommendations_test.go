package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RylynnLai/trading-tips/internal/contracts"
	"github.com/RylynnLai/trading-tips/pkg/logger"
)

type fakeRecStore struct {
	recs    map[string][]contracts.Recommendation
	skipped map[string][]contracts.SkippedSymbol
	latest  time.Time
	err     error
}

func (f *fakeRecStore) GetByDate(ctx context.Context, date time.Time) ([]contracts.Recommendation, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.recs[date.Format("2006-01-02")], nil
}

func (f *fakeRecStore) GetSkipped(ctx context.Context, date time.Time) ([]contracts.SkippedSymbol, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.skipped[date.Format("2006-01-02")], nil
}

func (f *fakeRecStore) LatestBatchDate(ctx context.Context) (time.Time, error) {
	if f.err != nil {
		return time.Time{}, f.err
	}
	return f.latest, nil
}

func storeWithBatch() *fakeRecStore {
	return &fakeRecStore{
		recs: map[string][]contracts.Recommendation{
			"2025-06-13": {
				{Symbol: "005930", Strategy: contracts.StrategyBreakout, Score: 92},
				{Symbol: "000660", Strategy: contracts.StrategyPullback, Score: 85},
			},
		},
		skipped: map[string][]contracts.SkippedSymbol{
			"2025-06-13": {
				{Symbol: "TINY", Reason: contracts.SkipInsufficientData},
			},
		},
		latest: time.Date(2025, 6, 13, 0, 0, 0, 0, time.UTC),
	}
}

func TestGetRecommendationsLatest(t *testing.T) {
	h := NewRecommendationHandler(storeWithBatch(), logger.Nop())

	req := httptest.NewRequest(http.MethodGet, "/api/recommendations", nil)
	rec := httptest.NewRecorder()
	h.GetRecommendations(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Date            string                     `json:"date"`
		Count           int                        `json:"count"`
		Recommendations []contracts.Recommendation `json:"recommendations"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "2025-06-13", body.Date)
	assert.Equal(t, 2, body.Count)
	assert.Equal(t, "005930", body.Recommendations[0].Symbol)
}

func TestGetRecommendationsByDate(t *testing.T) {
	h := NewRecommendationHandler(storeWithBatch(), logger.Nop())

	req := httptest.NewRequest(http.MethodGet, "/api/recommendations?date=2025-06-12", nil)
	rec := httptest.NewRecorder()
	h.GetRecommendations(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Count int `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 0, body.Count)
}

func TestGetRecommendationsInvalidDate(t *testing.T) {
	h := NewRecommendationHandler(storeWithBatch(), logger.Nop())

	req := httptest.NewRequest(http.MethodGet, "/api/recommendations?date=13-06-2025", nil)
	rec := httptest.NewRecorder()
	h.GetRecommendations(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetRecommendationsNoBatches(t *testing.T) {
	h := NewRecommendationHandler(&fakeRecStore{}, logger.Nop())

	req := httptest.NewRequest(http.MethodGet, "/api/recommendations", nil)
	rec := httptest.NewRecorder()
	h.GetRecommendations(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetRecommendationsStoreError(t *testing.T) {
	h := NewRecommendationHandler(&fakeRecStore{err: errors.New("db down")}, logger.Nop())

	req := httptest.NewRequest(http.MethodGet, "/api/recommendations", nil)
	rec := httptest.NewRecorder()
	h.GetRecommendations(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestGetSkipped(t *testing.T) {
	h := NewRecommendationHandler(storeWithBatch(), logger.Nop())

	req := httptest.NewRequest(http.MethodGet, "/api/recommendations/skipped", nil)
	rec := httptest.NewRecorder()
	h.GetSkipped(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Skipped []contracts.SkippedSymbol `json:"skipped"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Skipped, 1)
	assert.Equal(t, "TINY", body.Skipped[0].Symbol)
}
