package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	infragin "github.com/visiona/review-classifier/infrastructure/gin"
	infralogger "github.com/visiona/review-classifier/infrastructure/logger"
)

// Default timeout values.
const (
	defaultReadTimeout  = 15 * time.Second
	defaultWriteTimeout = 30 * time.Second
	defaultIdleTimeout  = 60 * time.Second
)

// ServerConfig holds server configuration. Nil ping functions skip the
// corresponding health check.
type ServerConfig struct {
	Name        string
	Version     string
	Port        int
	Debug       bool
	CORSOrigins []string

	Metrics   http.Handler
	DBPing    func() error
	RedisPing func() error
}

// NewServer creates the HTTP server using the infrastructure gin package.
func NewServer(handler *Handler, cfg ServerConfig, log infralogger.Logger) *infragin.Server {
	builder := infragin.NewServerBuilder(cfg.Name, cfg.Port).
		WithLogger(log).
		WithDebug(cfg.Debug).
		WithVersion(cfg.Version).
		WithCORSOrigins(cfg.CORSOrigins).
		WithTimeouts(defaultReadTimeout, defaultWriteTimeout, defaultIdleTimeout)

	if cfg.DBPing != nil {
		builder = builder.WithDatabaseHealthCheck(cfg.DBPing)
	}
	if cfg.RedisPing != nil {
		builder = builder.WithRedisHealthCheck(cfg.RedisPing)
	}

	return builder.
		WithRoutes(func(router *gin.Engine) {
			SetupRoutes(router, handler, cfg.Metrics)
		}).
		Build()
}
