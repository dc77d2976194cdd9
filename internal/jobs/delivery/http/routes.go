package http

import (
	"github.com/ErzenXz/monolith/internal/jobs"
	"github.com/ErzenXz/monolith/internal/middleware"
	"github.com/labstack/echo/v4"
)

// MapJobRoutes wires the public surface. The process endpoint is broker
// authenticated through its signature, not through the api-key middleware.
func MapJobRoutes(compressGroup, jobsGroup *echo.Group, h jobs.Handlers, mw *middleware.MiddlewareManager) {
	compressGroup.Use(mw.APIKeyMiddleware(), mw.RateLimitMiddleware())
	compressGroup.POST("/image", h.CompressImage())
	compressGroup.POST("/video", h.CompressVideo())
	compressGroup.POST("/audio", h.CompressAudio())

	jobsGroup.POST("/process", h.ProcessJob())

	authed := jobsGroup.Group("", mw.APIKeyMiddleware(), mw.RateLimitMiddleware())
	authed.GET("", h.ListJobs())
	authed.GET("/status/:id", h.GetJobStatus())
	authed.DELETE("/delete/:id", h.DeleteJob())
}
