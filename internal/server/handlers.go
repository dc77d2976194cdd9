package server

import (
	"net/http"
	"time"

	"github.com/ErzenXz/monolith/internal/broker"
	jobsHttp "github.com/ErzenXz/monolith/internal/jobs/delivery/http"
	jobsRepository "github.com/ErzenXz/monolith/internal/jobs/repository"
	jobsUsecase "github.com/ErzenXz/monolith/internal/jobs/usecase"
	"github.com/ErzenXz/monolith/internal/engine"
	"github.com/ErzenXz/monolith/internal/middleware"
	"github.com/ErzenXz/monolith/internal/ratelimit"
	"github.com/ErzenXz/monolith/pkg/utils"
	"github.com/labstack/echo/v4"
)

func (s *Server) MapHandlers(e *echo.Echo) error {
	jRepo := jobsRepository.NewJobRedisRepo(s.redisClient, s.cfg.Queue.RecordTTL())
	jStorage := jobsRepository.NewS3Storage(s.s3Client, s.cfg)

	jobUC := jobsUsecase.NewJobQueue(s.cfg, jRepo, jStorage, s.publisher, s.logger)
	mediaEngine := engine.NewMediaEngine(s.cfg, s.logger)
	processor := jobsUsecase.NewJobProcessor(s.cfg, jobUC, jRepo, mediaEngine, jStorage, s.logger)

	verifier := broker.NewVerifier(s.cfg.Broker.CurrentSigningKey, s.cfg.Broker.NextSigningKey)
	jobHandlers := jobsHttp.NewJobHandlers(s.cfg, jobUC, processor, verifier, s.logger)

	limiter := ratelimit.NewRedisLimiter(s.redisClient, s.cfg.RateLimit.MaxRequests, s.cfg.RateLimit.Window())
	mw := middleware.NewMiddlewareManager(s.cfg, limiter, []string{"*"}, s.logger)

	started := time.Now()

	v1 := e.Group("/api/v1")
	health := v1.Group("/health")
	compressGroup := v1.Group("/compress")
	jobsGroup := v1.Group("/jobs")

	jobsHttp.MapJobRoutes(compressGroup, jobsGroup, jobHandlers, mw)

	health.GET("", func(c echo.Context) error {
		s.logger.Infof("Health check RequestID: %s", utils.GetRequestID(c))
		ctx := c.Request().Context()

		redisStatus := "up"
		if err := jRepo.Ping(ctx); err != nil {
			redisStatus = "down"
		}
		storageStatus := "up"
		if err := jStorage.Ping(ctx); err != nil {
			storageStatus = "down"
		}
		status := http.StatusOK
		overall := "ok"
		if redisStatus == "down" || storageStatus == "down" {
			status = http.StatusServiceUnavailable
			overall = "degraded"
		}
		return c.JSON(status, map[string]interface{}{
			"status":  overall,
			"version": s.cfg.Server.AppVersion,
			"uptime":  time.Since(started).Round(time.Second).String(),
			"services": map[string]string{
				"redis":   redisStatus,
				"storage": storageStatus,
			},
			"limits": map[string]interface{}{
				"maxFileSize": utils.FormatSize(s.cfg.Server.MaxFileSize),
				"rateLimit":   s.cfg.RateLimit.MaxRequests,
				"windowMs":    s.cfg.RateLimit.WindowMs,
			},
		})
	})
	return nil
}
