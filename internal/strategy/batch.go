package strategy

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/RylynnLai/trading-tips/internal/contracts"
	"github.com/RylynnLai/trading-tips/internal/indicator"
	"github.com/RylynnLai/trading-tips/internal/signal"
	"github.com/RylynnLai/trading-tips/internal/trend"
	"github.com/RylynnLai/trading-tips/pkg/logger"
)

// Analyzer wires the full pipeline: indicators, trend classification,
// signal detection, scoring, prediction. One instance serves any number
// of runs; all components are stateless between calls.
type Analyzer struct {
	engine     *indicator.Engine
	classifier *trend.Classifier
	detector   *signal.Detector
	scorer     *Scorer
	predictor  *Predictor
	cfg        Config
	logger     *logger.Logger
}

// NewAnalyzer creates an analyzer from pre-built components.
func NewAnalyzer(
	engine *indicator.Engine,
	classifier *trend.Classifier,
	detector *signal.Detector,
	scorer *Scorer,
	cfg Config,
	log *logger.Logger,
) *Analyzer {
	return &Analyzer{
		engine:     engine,
		classifier: classifier,
		detector:   detector,
		scorer:     scorer,
		predictor:  NewPredictor(),
		cfg:        cfg,
		logger:     log.WithField("module", "analyzer"),
	}
}

// AnalyzeSymbol runs the pipeline for one symbol. The recommendation is
// nil when no strategy clears the minimum score; the detail is always
// populated on success so report consumers see the full picture.
func (a *Analyzer) AnalyzeSymbol(symbol string, bars []contracts.Bar) (*contracts.Recommendation, *contracts.SymbolDetail, error) {
	series, err := contracts.NewSeries(symbol, bars)
	if err != nil {
		return nil, nil, err
	}

	frame, err := a.engine.Compute(series)
	if err != nil {
		return nil, nil, err
	}

	trendInfo, err := a.classifier.Classify(frame)
	if err != nil {
		return nil, nil, err
	}

	signals, err := a.detector.Detect(frame)
	if err != nil {
		return nil, nil, err
	}

	detail := &contracts.SymbolDetail{Trend: trendInfo, Signals: signals}

	rec := a.scorer.Score(trendInfo, signals)
	if rec != nil {
		volatility := 0.0
		if atr, ok := frame.ATRAt(frame.LastIndex()); ok && trendInfo.CurrentPrice > 0 {
			volatility = atr / trendInfo.CurrentPrice
		}
		rec.Prediction = a.predictor.Predict(rec.Strategy, trendInfo, signals, volatility)
	}
	return rec, detail, nil
}

type symbolJob struct {
	symbol string
	bars   []contracts.Bar
}

type symbolResult struct {
	symbol string
	rec    *contracts.Recommendation
	detail *contracts.SymbolDetail
	err    error
}

// AnalyzeBatch runs the pipeline across symbols on a worker pool. Each
// symbol is independent; a symbol's failure becomes a skip entry and
// never aborts the batch. A cancelled context stops submitting further
// symbols; results already produced remain valid.
func (a *Analyzer) AnalyzeBatch(ctx context.Context, series map[string][]contracts.Bar) *contracts.BatchResult {
	workers := a.cfg.Workers
	if workers < 1 {
		workers = 1
	}

	a.logger.WithFields(map[string]interface{}{
		"symbols": len(series),
		"workers": workers,
	}).Info("Starting batch analysis")

	jobCh := make(chan symbolJob, len(series))
	resultCh := make(chan symbolResult, len(series))

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobCh {
				rec, detail, err := a.AnalyzeSymbol(job.symbol, job.bars)
				resultCh <- symbolResult{symbol: job.symbol, rec: rec, detail: detail, err: err}
			}
		}()
	}

	submitted := 0
	for symbol, bars := range series {
		if ctx.Err() != nil {
			break
		}
		jobCh <- symbolJob{symbol: symbol, bars: bars}
		submitted++
	}
	close(jobCh)

	go func() {
		wg.Wait()
		close(resultCh)
	}()

	result := &contracts.BatchResult{
		Details: make(map[string]*contracts.SymbolDetail),
	}
	for i := 0; i < submitted; i++ {
		r := <-resultCh
		if r.err != nil {
			skip := contracts.SkippedSymbol{
				Symbol: r.symbol,
				Reason: skipReason(r.err),
				Detail: r.err.Error(),
			}
			result.Skipped = append(result.Skipped, skip)
			a.logger.WithField("symbol", r.symbol).WithError(r.err).Warn("Symbol skipped")
			continue
		}
		result.Details[r.symbol] = r.detail
		if r.rec != nil {
			result.Recommendations = append(result.Recommendations, *r.rec)
		}
		if d := r.detail; d != nil && d.Trend != nil {
			if last := barsDate(series[r.symbol]); last.After(result.Date) {
				result.Date = last
			}
		}
	}

	sortRecommendations(result.Recommendations)
	if len(result.Recommendations) > a.cfg.MaxRecommendations {
		result.Recommendations = result.Recommendations[:a.cfg.MaxRecommendations]
	}
	sort.Slice(result.Skipped, func(i, j int) bool {
		return result.Skipped[i].Symbol < result.Skipped[j].Symbol
	})

	a.logger.WithFields(map[string]interface{}{
		"recommendations": len(result.Recommendations),
		"skipped":         len(result.Skipped),
	}).Info("Batch analysis completed")

	return result
}

// sortRecommendations orders by score descending with a symbol
// tie-break so batch output is deterministic run to run.
func sortRecommendations(recs []contracts.Recommendation) {
	sort.Slice(recs, func(i, j int) bool {
		if recs[i].Score != recs[j].Score {
			return recs[i].Score > recs[j].Score
		}
		return recs[i].Symbol < recs[j].Symbol
	})
}

func skipReason(err error) contracts.SkipReason {
	switch {
	case errors.Is(err, contracts.ErrInsufficientData):
		return contracts.SkipInsufficientData
	case errors.Is(err, contracts.ErrMalformedSeries):
		return contracts.SkipMalformedSeries
	default:
		return contracts.SkipAnalysisFailed
	}
}

func barsDate(bars []contracts.Bar) time.Time {
	if len(bars) == 0 {
		return time.Time{}
	}
	return bars[len(bars)-1].Date
}
