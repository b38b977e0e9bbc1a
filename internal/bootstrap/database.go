package bootstrap

import (
	"context"

	"github.com/jmoiron/sqlx"

	infracontext "github.com/visiona/review-classifier/infrastructure/context"
	infraerrors "github.com/visiona/review-classifier/infrastructure/errors"
	infralogger "github.com/visiona/review-classifier/infrastructure/logger"
	"github.com/visiona/review-classifier/internal/config"
	"github.com/visiona/review-classifier/internal/database"
	"github.com/visiona/review-classifier/internal/service"
)

// StoreComponents holds the review store and, when PostgreSQL is enabled,
// its connection.
type StoreComponents struct {
	Reviews service.ReviewStore
	db      *sqlx.DB
}

// SetupStore connects to PostgreSQL, or returns an in-memory store when the
// database is disabled.
func SetupStore(ctx context.Context, cfg *config.Config, log infralogger.Logger) (*StoreComponents, error) {
	if !cfg.Database.Enabled {
		log.Warn("Database disabled, reviews are kept in memory")
		return &StoreComponents{Reviews: database.NewMemoryReviewRepository()}, nil
	}

	log.Info("Connecting to PostgreSQL database",
		infralogger.String("host", cfg.Database.Host),
		infralogger.Int("port", cfg.Database.Port),
		infralogger.String("database", cfg.Database.Database),
	)

	db, err := database.NewPostgresConnection(ctx, database.Config{
		Host:            cfg.Database.Host,
		Port:            cfg.Database.Port,
		User:            cfg.Database.User,
		Password:        cfg.Database.Password,
		DBName:          cfg.Database.Database,
		SSLMode:         cfg.Database.SSLMode,
		MaxOpenConns:    cfg.Database.MaxConnections,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	})
	if err != nil {
		return nil, infraerrors.WrapWithContextf(err, "database connection %s:%d", cfg.Database.Host, cfg.Database.Port)
	}

	log.Info("Database connected successfully")
	return &StoreComponents{Reviews: database.NewReviewRepository(db), db: db}, nil
}

// PingFunc returns the database health check, or nil for the in-memory store.
func (s *StoreComponents) PingFunc() func() error {
	if s.db == nil {
		return nil
	}
	return func() error {
		ctx, cancel := infracontext.WithPingTimeout(context.Background())
		defer cancel()
		return s.db.PingContext(ctx)
	}
}

// Close releases the database connection, if any.
func (s *StoreComponents) Close(log infralogger.Logger) {
	if s.db == nil {
		return
	}
	if err := s.db.Close(); err != nil {
		log.Error("Failed to close database", infralogger.Error(err))
	}
}
