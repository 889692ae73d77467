package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/RylynnLai/trading-tips/internal/api"
	"github.com/RylynnLai/trading-tips/internal/api/handlers"
	"github.com/RylynnLai/trading-tips/internal/pipeline"
	"github.com/RylynnLai/trading-tips/internal/store"
	"github.com/RylynnLai/trading-tips/pkg/config"
	"github.com/RylynnLai/trading-tips/pkg/database"
	"github.com/RylynnLai/trading-tips/pkg/logger"
)

// apiCmd represents the api command
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Start the API server",
	Long: `Starts the REST API server.

Endpoints:
  GET  /health                        - Health check
  GET  /api/recommendations           - Latest (or ?date=) recommendation batch
  GET  /api/recommendations/skipped   - Symbols excluded from a batch
  GET  /api/analysis/{symbol}         - On-demand analysis for one symbol

Example:
  go run ./cmd/tips api
  go run ./cmd/tips api --port 8087`,
	RunE: runAPIServer,
}

var apiPort string

func init() {
	rootCmd.AddCommand(apiCmd)

	apiCmd.Flags().StringVar(&apiPort, "port", "", "API server port (default from PORT)")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if apiPort != "" {
		cfg.Port = apiPort
	}

	log := logger.New(cfg)

	log.WithFields(map[string]interface{}{
		"port": cfg.Port,
		"env":  cfg.Env,
	}).Info("Initializing API server")

	db, err := database.New(cfg)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()

	log.Info("Connected to database")

	analyzer, _, err := buildAnalyzer(cfg, log)
	if err != nil {
		return err
	}

	priceRepo := store.NewPriceRepository(db.Pool)
	recRepo := store.NewRecommendationRepository(db.Pool)

	recHandler := handlers.NewRecommendationHandler(recRepo, log)
	analysisHandler := handlers.NewAnalysisHandler(priceRepo, analyzer, pipeline.DefaultConfig().Lookback, log)

	router := api.NewRouter(recHandler, analysisHandler, log)
	server := api.New(cfg, log, router)

	go func() {
		if err := server.Start(); err != nil {
			log.WithError(err).Fatal("Failed to start server")
		}
	}()

	log.Info("API server started successfully")
	fmt.Printf("\n✅ Server running on http://localhost:%s\n", cfg.Port)
	fmt.Println("\nAvailable endpoints:")
	fmt.Println("  GET  /health")
	fmt.Println("  GET  /api/recommendations")
	fmt.Println("  GET  /api/recommendations/skipped")
	fmt.Println("  GET  /api/analysis/{symbol}")
	fmt.Println("\nPress Ctrl+C to stop")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Info("Server stopped")
	return nil
}
