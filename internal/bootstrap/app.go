// Package bootstrap handles application initialization and lifecycle management
// for the review-classifier service.
package bootstrap

import (
	"context"
	"fmt"

	infralogger "github.com/visiona/review-classifier/infrastructure/logger"
	"github.com/visiona/review-classifier/internal/api"
	"github.com/visiona/review-classifier/internal/service"
	"github.com/visiona/review-classifier/internal/telemetry"
)

// Start initializes and runs the review-classifier service until it receives
// a shutdown signal.
func Start() error {
	ctx := context.Background()

	// Phase 1: Load config and create logger
	cfg, err := LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log, err := CreateLogger(cfg)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	tp := telemetry.NewProvider()

	// Phase 2: Setup review store
	store, err := SetupStore(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("failed to set up review store: %w", err)
	}
	defer store.Close(log)

	// Phase 3: Setup event publisher (optional)
	eventComps := SetupEventPublisher(ctx, cfg, log, tp)
	defer eventComps.Close(log)

	// Phase 4: Setup classifier
	cls, err := SetupClassifier(cfg, log, tp)
	if err != nil {
		return fmt.Errorf("failed to set up classifier: %w", err)
	}

	// Phase 5: Setup and run HTTP server
	svc := service.NewReviewService(store.Reviews, cls, eventComps.Publisher, log)
	server := api.NewServer(api.NewHandler(svc, log), api.ServerConfig{
		Name:        cfg.Service.Name,
		Version:     cfg.Service.Version,
		Port:        cfg.Service.Port,
		Debug:       cfg.Service.Debug,
		CORSOrigins: cfg.Service.CORSOrigins,
		Metrics:     tp.Handler(),
		DBPing:      store.PingFunc(),
		RedisPing:   eventComps.PingFunc(),
	}, log)

	log.Info("Starting HTTP server",
		infralogger.Int("port", cfg.Service.Port),
		infralogger.String("llm_provider", cfg.LLM.Provider),
		infralogger.Bool("database", cfg.Database.Enabled),
		infralogger.Bool("events", eventComps.Publisher != nil),
	)

	if runErr := server.RunWithGracefulShutdown(ctx); runErr != nil {
		log.Error("Server error", infralogger.Error(runErr))
		return fmt.Errorf("server error: %w", runErr)
	}

	log.Info("Server exited")
	return nil
}
