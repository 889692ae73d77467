// Package store holds the PostgreSQL repositories: daily prices in,
// analysis results out.
package store

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/RylynnLai/trading-tips/internal/contracts"
)

// PriceRepository loads and saves daily bars.
// ⭐ SSOT: price history access goes through this repository
type PriceRepository struct {
	pool *pgxpool.Pool
}

// NewPriceRepository creates a new price repository
func NewPriceRepository(pool *pgxpool.Pool) *PriceRepository {
	return &PriceRepository{pool: pool}
}

// GetBars retrieves the most recent lookback bars for a symbol, oldest
// first, ready for analysis.
func (r *PriceRepository) GetBars(ctx context.Context, symbol string, lookback int) ([]contracts.Bar, error) {
	query := `
		SELECT trade_date, open_price, high_price, low_price, close_price, volume, amount
		FROM data.daily_bars
		WHERE symbol = $1
		ORDER BY trade_date DESC
		LIMIT $2
	`

	rows, err := r.pool.Query(ctx, query, symbol, lookback)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bars []contracts.Bar
	for rows.Next() {
		var b contracts.Bar
		if err := rows.Scan(&b.Date, &b.Open, &b.High, &b.Low, &b.Close, &b.Volume, &b.Amount); err != nil {
			return nil, err
		}
		bars = append(bars, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Newest-first from the query, oldest-first for the engine.
	for i, j := 0, len(bars)-1; i < j; i, j = i+1, j-1 {
		bars[i], bars[j] = bars[j], bars[i]
	}
	return bars, nil
}

// GetUniverseBars loads bars for every symbol at once, keyed by symbol.
func (r *PriceRepository) GetUniverseBars(ctx context.Context, symbols []string, lookback int) (map[string][]contracts.Bar, error) {
	out := make(map[string][]contracts.Bar, len(symbols))
	for _, symbol := range symbols {
		bars, err := r.GetBars(ctx, symbol, lookback)
		if err != nil {
			return nil, err
		}
		out[symbol] = bars
	}
	return out, nil
}

// ListSymbols returns every symbol with at least minBars of history as
// of the latest trade date.
func (r *PriceRepository) ListSymbols(ctx context.Context, minBars int) ([]string, error) {
	query := `
		SELECT symbol
		FROM data.daily_bars
		GROUP BY symbol
		HAVING COUNT(*) >= $1
		ORDER BY symbol
	`

	rows, err := r.pool.Query(ctx, query, minBars)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var symbols []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		symbols = append(symbols, s)
	}
	return symbols, rows.Err()
}

// LatestDate returns the most recent trade date in the store.
func (r *PriceRepository) LatestDate(ctx context.Context) (time.Time, error) {
	var date time.Time
	err := r.pool.QueryRow(ctx, `SELECT MAX(trade_date) FROM data.daily_bars`).Scan(&date)
	return date, err
}

// Save upserts a single bar.
func (r *PriceRepository) Save(ctx context.Context, symbol string, bar contracts.Bar) error {
	query := `
		INSERT INTO data.daily_bars (symbol, trade_date, open_price, high_price, low_price, close_price, volume, amount)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (symbol, trade_date) DO UPDATE SET
			open_price = EXCLUDED.open_price,
			high_price = EXCLUDED.high_price,
			low_price = EXCLUDED.low_price,
			close_price = EXCLUDED.close_price,
			volume = EXCLUDED.volume,
			amount = EXCLUDED.amount
	`

	_, err := r.pool.Exec(ctx, query,
		symbol, bar.Date, bar.Open, bar.High, bar.Low, bar.Close, bar.Volume, bar.Amount,
	)
	return err
}

// SaveBatch upserts multiple bars for a symbol.
func (r *PriceRepository) SaveBatch(ctx context.Context, symbol string, bars []contracts.Bar) error {
	for _, bar := range bars {
		if err := r.Save(ctx, symbol, bar); err != nil {
			return err
		}
	}
	return nil
}
