package middleware

import (
	"github.com/ErzenXz/monolith/internal/config"
	"github.com/ErzenXz/monolith/internal/ratelimit"
	"github.com/ErzenXz/monolith/pkg/logger"
)

type MiddlewareManager struct {
	cfg     *config.Config
	limiter ratelimit.Limiter
	origins []string
	logger  logger.Logger
}

// Middleware manager constructor
func NewMiddlewareManager(cfg *config.Config, limiter ratelimit.Limiter, origins []string, logger logger.Logger) *MiddlewareManager {
	return &MiddlewareManager{cfg: cfg, limiter: limiter, origins: origins, logger: logger}
}
