package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/RylynnLai/trading-tips/internal/pipeline"
	"github.com/RylynnLai/trading-tips/pkg/logger"
)

// DailyAnalysisJob runs the full analysis pipeline after market close
// ⭐ SSOT: the daily analysis schedule lives in this job only
type DailyAnalysisJob struct {
	runner   *pipeline.Runner
	schedule string
	timeout  time.Duration
	logger   *logger.Logger
}

// NewDailyAnalysisJob creates the daily analysis job. The schedule comes
// from SCHEDULE_CRON so deployments can shift it per market.
func NewDailyAnalysisJob(runner *pipeline.Runner, schedule string, log *logger.Logger) *DailyAnalysisJob {
	return &DailyAnalysisJob{
		runner:   runner,
		schedule: schedule,
		timeout:  30 * time.Minute,
		logger:   log,
	}
}

// Name returns the job name
func (j *DailyAnalysisJob) Name() string {
	return "daily_analysis"
}

// Schedule returns the cron schedule
func (j *DailyAnalysisJob) Schedule() string {
	return j.schedule
}

// Run executes one full analysis pass
func (j *DailyAnalysisJob) Run(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, j.timeout)
	defer cancel()

	j.logger.Info("Starting scheduled analysis run")

	result, err := j.runner.Run(ctx)
	if err != nil {
		return fmt.Errorf("analysis run failed: %w", err)
	}

	j.logger.WithFields(map[string]interface{}{
		"date":            result.Date.Format("2006-01-02"),
		"recommendations": len(result.Recommendations),
		"skipped":         len(result.Skipped),
	}).Info("Scheduled analysis run completed")

	return nil
}
