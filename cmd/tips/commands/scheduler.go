package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/RylynnLai/trading-tips/internal/notify"
	"github.com/RylynnLai/trading-tips/internal/pipeline"
	"github.com/RylynnLai/trading-tips/internal/scheduler"
	"github.com/RylynnLai/trading-tips/internal/scheduler/jobs"
	"github.com/RylynnLai/trading-tips/internal/store"
	"github.com/RylynnLai/trading-tips/pkg/config"
	"github.com/RylynnLai/trading-tips/pkg/database"
	"github.com/RylynnLai/trading-tips/pkg/httputil"
	"github.com/RylynnLai/trading-tips/pkg/logger"
	"github.com/RylynnLai/trading-tips/pkg/redis"
)

// schedulerCmd represents the scheduler command
var schedulerCmd = &cobra.Command{
	Use:   "scheduler",
	Short: "Manage the scheduler",
	Long: `Starts the scheduler daemon or inspects its jobs.

Registered jobs:
- daily_analysis: full analysis run after market close (SCHEDULE_CRON)

Subcommands:
  start   - start the scheduler daemon
  list    - list registered jobs
  run     - run a job immediately

Example:
  go run ./cmd/tips scheduler start
  go run ./cmd/tips scheduler run daily_analysis`,
}

var (
	schedulerStartCmd = &cobra.Command{
		Use:   "start",
		Short: "Start the scheduler daemon",
		RunE:  runScheduler,
	}

	schedulerListCmd = &cobra.Command{
		Use:   "list",
		Short: "List registered jobs",
		RunE:  listJobs,
	}

	schedulerRunCmd = &cobra.Command{
		Use:   "run [job_name]",
		Short: "Run a job immediately",
		Args:  cobra.ExactArgs(1),
		RunE:  runJobNow,
	}
)

func init() {
	rootCmd.AddCommand(schedulerCmd)
	schedulerCmd.AddCommand(schedulerStartCmd)
	schedulerCmd.AddCommand(schedulerListCmd)
	schedulerCmd.AddCommand(schedulerRunCmd)
}

// initScheduler wires the scheduler with the daily analysis job.
func initScheduler() (*scheduler.Scheduler, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	log := logger.New(cfg)

	db, err := database.New(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to database: %w", err)
	}

	redisClient, err := redis.New(cfg)
	if err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("connect to redis: %w", err)
	}

	cleanup := func() {
		redisClient.Close()
		db.Close()
	}

	analyzer, _, err := buildAnalyzer(cfg, log)
	if err != nil {
		cleanup()
		return nil, nil, err
	}

	priceRepo := store.NewPriceRepository(db.Pool)
	recRepo := store.NewRecommendationRepository(db.Pool)
	cache := redis.NewCache(redisClient, "tips")
	webhookClient := httputil.New(cfg, log).
		WithRateLimiter(redis.NewRateLimiter(redisClient, "tips"), redis.WebhookRateLimit)
	notifier := notify.New(cfg, webhookClient, log)

	runner := pipeline.NewRunner(priceRepo, recRepo, analyzer, cache, notifier, pipeline.DefaultConfig(), log)

	sched := scheduler.New(log)
	if err := sched.AddJob(jobs.NewDailyAnalysisJob(runner, cfg.ScheduleCron, log)); err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("register daily analysis job: %w", err)
	}

	return sched, cleanup, nil
}

func runScheduler(cmd *cobra.Command, args []string) error {
	sched, cleanup, err := initScheduler()
	if err != nil {
		return err
	}
	defer cleanup()

	sched.Start()

	fmt.Println("✅ Scheduler started successfully")
	fmt.Println("\nRegistered jobs:")
	for _, jobName := range sched.GetAllJobs() {
		fmt.Printf("  - %s\n", jobName)
	}
	fmt.Println("\nPress Ctrl+C to stop")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	fmt.Println("\nShutting down scheduler...")
	sched.Stop()
	fmt.Println("Scheduler stopped")

	return nil
}

func listJobs(cmd *cobra.Command, args []string) error {
	sched, cleanup, err := initScheduler()
	if err != nil {
		return err
	}
	defer cleanup()

	fmt.Println("Registered jobs:")
	for name, stats := range sched.GetJobStats() {
		fmt.Printf("  - %s (%s)\n", name, stats.Schedule)
	}
	return nil
}

func runJobNow(cmd *cobra.Command, args []string) error {
	sched, cleanup, err := initScheduler()
	if err != nil {
		return err
	}
	defer cleanup()

	jobName := args[0]
	if err := sched.RunJob(jobName); err != nil {
		return err
	}

	fmt.Printf("Job %s triggered\n", jobName)
	fmt.Println("Press Ctrl+C to stop waiting")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	return nil
}
