package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/RylynnLai/trading-tips/internal/contracts"
)

// RecommendationRepository persists batch analysis output.
// ⭐ SSOT: recommendation persistence goes through this repository
type RecommendationRepository struct {
	pool *pgxpool.Pool
}

// NewRecommendationRepository creates a new recommendation repository
func NewRecommendationRepository(pool *pgxpool.Pool) *RecommendationRepository {
	return &RecommendationRepository{pool: pool}
}

// SaveBatch replaces the stored recommendations for the batch date.
// Reruns of the same day overwrite, so one date has one result set.
func (r *RecommendationRepository) SaveBatch(ctx context.Context, result *contracts.BatchResult) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		`DELETE FROM analysis.recommendations WHERE batch_date = $1`, result.Date,
	); err != nil {
		return err
	}

	insert := `
		INSERT INTO analysis.recommendations
			(batch_date, symbol, strategy, score, entry_signal, hold_signal,
			 current_price, reasons, targets, stop_loss, prediction)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	for _, rec := range result.Recommendations {
		reasons, err := json.Marshal(rec.Reasons)
		if err != nil {
			return err
		}
		targets, err := json.Marshal(rec.Targets)
		if err != nil {
			return err
		}
		stopLoss, err := json.Marshal(rec.StopLoss)
		if err != nil {
			return err
		}
		var prediction []byte
		if rec.Prediction != nil {
			if prediction, err = json.Marshal(rec.Prediction); err != nil {
				return err
			}
		}

		if _, err := tx.Exec(ctx, insert,
			result.Date, rec.Symbol, string(rec.Strategy), rec.Score,
			rec.EntrySignal, rec.HoldSignal, rec.CurrentPrice,
			reasons, targets, stopLoss, prediction,
		); err != nil {
			return err
		}
	}

	skipped := `
		INSERT INTO analysis.skipped_symbols (batch_date, symbol, reason, detail)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (batch_date, symbol) DO UPDATE SET
			reason = EXCLUDED.reason,
			detail = EXCLUDED.detail
	`
	for _, skip := range result.Skipped {
		if _, err := tx.Exec(ctx, skipped,
			result.Date, skip.Symbol, string(skip.Reason), skip.Detail,
		); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

// GetByDate loads the recommendations stored for a batch date, score
// descending with a symbol tie-break, same as the batch emits them.
func (r *RecommendationRepository) GetByDate(ctx context.Context, date time.Time) ([]contracts.Recommendation, error) {
	query := `
		SELECT symbol, strategy, score, entry_signal, hold_signal,
		       current_price, reasons, targets, stop_loss, prediction
		FROM analysis.recommendations
		WHERE batch_date = $1
		ORDER BY score DESC, symbol ASC
	`

	rows, err := r.pool.Query(ctx, query, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var recs []contracts.Recommendation
	for rows.Next() {
		var rec contracts.Recommendation
		var strategy string
		var reasons, targets, stopLoss, prediction []byte
		if err := rows.Scan(
			&rec.Symbol, &strategy, &rec.Score, &rec.EntrySignal, &rec.HoldSignal,
			&rec.CurrentPrice, &reasons, &targets, &stopLoss, &prediction,
		); err != nil {
			return nil, err
		}
		rec.Strategy = contracts.Strategy(strategy)
		if err := json.Unmarshal(reasons, &rec.Reasons); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(targets, &rec.Targets); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(stopLoss, &rec.StopLoss); err != nil {
			return nil, err
		}
		if len(prediction) > 0 {
			rec.Prediction = &contracts.Prediction{}
			if err := json.Unmarshal(prediction, rec.Prediction); err != nil {
				return nil, err
			}
		}
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}

// LatestBatchDate returns the most recent stored batch date, or the zero
// time when no batch has been stored yet.
func (r *RecommendationRepository) LatestBatchDate(ctx context.Context) (time.Time, error) {
	var date *time.Time
	err := r.pool.QueryRow(ctx,
		`SELECT MAX(batch_date) FROM analysis.recommendations`,
	).Scan(&date)
	if err != nil {
		return time.Time{}, err
	}
	if date == nil {
		return time.Time{}, nil
	}
	return *date, nil
}

// GetSkipped loads the skip entries for a batch date, symbol ascending.
func (r *RecommendationRepository) GetSkipped(ctx context.Context, date time.Time) ([]contracts.SkippedSymbol, error) {
	query := `
		SELECT symbol, reason, detail
		FROM analysis.skipped_symbols
		WHERE batch_date = $1
		ORDER BY symbol ASC
	`

	rows, err := r.pool.Query(ctx, query, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var skips []contracts.SkippedSymbol
	for rows.Next() {
		var s contracts.SkippedSymbol
		var reason string
		if err := rows.Scan(&s.Symbol, &reason, &s.Detail); err != nil {
			return nil, err
		}
		s.Reason = contracts.SkipReason(reason)
		skips = append(skips, s)
	}
	return skips, rows.Err()
}
