package http

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/ErzenXz/monolith/internal/broker"
	"github.com/ErzenXz/monolith/internal/config"
	"github.com/ErzenXz/monolith/internal/jobs"
	"github.com/ErzenXz/monolith/internal/models"
	"github.com/ErzenXz/monolith/pkg/logger"
	"github.com/ErzenXz/monolith/pkg/utils"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

type jobHandlers struct {
	cfg       *config.Config
	jobUC     jobs.UseCase
	processor jobs.Processor
	verifier  *broker.Verifier
	logger    logger.Logger
}

func NewJobHandlers(
	cfg *config.Config,
	jobUC jobs.UseCase,
	processor jobs.Processor,
	verifier *broker.Verifier,
	log logger.Logger,
) jobs.Handlers {
	return &jobHandlers{
		cfg:       cfg,
		jobUC:     jobUC,
		processor: processor,
		verifier:  verifier,
		logger:    log,
	}
}

func (h *jobHandlers) CompressImage() echo.HandlerFunc {
	return func(c echo.Context) error {
		file, err := h.readUpload(c, models.JobTypeImage)
		if err != nil {
			return c.JSON(http.StatusBadRequest, errorBody(err))
		}

		opts := &models.ImageOptions{
			Format:        formValueOr(c, "format", h.cfg.Compression.Image.DefaultFormat),
			StripMetadata: c.FormValue("strip_metadata") != "false",
		}
		if err := decodeIntList(c, "qualities", &opts.Qualities); err != nil {
			return c.JSON(http.StatusBadRequest, errorBody(err))
		}
		if err := decodeIntList(c, "thumbnails", &opts.Thumbnails); err != nil {
			return c.JSON(http.StatusBadRequest, errorBody(err))
		}
		if len(opts.Qualities) == 0 {
			opts.Qualities = h.cfg.Compression.Image.Qualities
		}
		if len(opts.Thumbnails) == 0 {
			opts.Thumbnails = h.cfg.Compression.Image.Thumbnails
		}
		if err := utils.ValidateStruct(c.Request().Context(), opts); err != nil {
			return c.JSON(http.StatusBadRequest, errorBody(err))
		}

		return h.enqueue(c, models.JobTypeImage, file, models.CompressionOptions{Image: opts},
			"Image compression job queued successfully")
	}
}

func (h *jobHandlers) CompressVideo() echo.HandlerFunc {
	return func(c echo.Context) error {
		file, err := h.readUpload(c, models.JobTypeVideo)
		if err != nil {
			return c.JSON(http.StatusBadRequest, errorBody(err))
		}

		defaults := h.cfg.Compression.Video
		opts := &models.VideoOptions{
			Format:     formValueOr(c, "format", defaults.DefaultFormat),
			Codec:      defaults.Codec,
			AudioCodec: defaults.AudioCodec,
			CRF:        defaults.CRF,
			Preset:     formValueOr(c, "preset", defaults.Preset),
			Thumbnails: defaults.Thumbnails,
		}
		if err := decodeIntList(c, "qualities", &opts.Qualities); err != nil {
			return c.JSON(http.StatusBadRequest, errorBody(err))
		}
		if err := decodeInt(c, "thumbnails", &opts.Thumbnails); err != nil {
			return c.JSON(http.StatusBadRequest, errorBody(err))
		}
		if len(opts.Qualities) == 0 {
			opts.Qualities = defaults.Qualities
		}
		if err := utils.ValidateStruct(c.Request().Context(), opts); err != nil {
			return c.JSON(http.StatusBadRequest, errorBody(err))
		}

		return h.enqueue(c, models.JobTypeVideo, file, models.CompressionOptions{Video: opts},
			"Video compression job queued successfully")
	}
}

func (h *jobHandlers) CompressAudio() echo.HandlerFunc {
	return func(c echo.Context) error {
		file, err := h.readUpload(c, models.JobTypeAudio)
		if err != nil {
			return c.JSON(http.StatusBadRequest, errorBody(err))
		}

		defaults := h.cfg.Compression.Audio
		opts := &models.AudioOptions{
			Format:     formValueOr(c, "format", defaults.DefaultFormat),
			SampleRate: defaults.DefaultSampleRate,
		}
		if err := decodeIntList(c, "bitrates", &opts.Bitrates); err != nil {
			return c.JSON(http.StatusBadRequest, errorBody(err))
		}
		if err := decodeInt(c, "sample_rate", &opts.SampleRate); err != nil {
			return c.JSON(http.StatusBadRequest, errorBody(err))
		}
		if len(opts.Bitrates) == 0 {
			opts.Bitrates = defaults.Bitrates
		}
		if err := utils.ValidateStruct(c.Request().Context(), opts); err != nil {
			return c.JSON(http.StatusBadRequest, errorBody(err))
		}

		return h.enqueue(c, models.JobTypeAudio, file, models.CompressionOptions{Audio: opts},
			"Audio compression job queued successfully")
	}
}

func (h *jobHandlers) GetJobStatus() echo.HandlerFunc {
	return func(c echo.Context) error {
		projection, err := h.jobUC.GetStatus(c.Request().Context(), c.Param("id"))
		if err != nil {
			if errors.Is(err, jobs.ErrJobNotFound) {
				return c.JSON(http.StatusNotFound, errorBody(err))
			}
			h.logger.Errorf("GetJobStatus - RequestID: %s, error: %v", utils.GetRequestID(c), err)
			return c.JSON(http.StatusInternalServerError, errorBody(err))
		}
		return c.JSON(http.StatusOK, projection)
	}
}

func (h *jobHandlers) DeleteJob() echo.HandlerFunc {
	return func(c echo.Context) error {
		err := h.jobUC.DeleteJob(c.Request().Context(), c.Param("id"))
		if err != nil {
			if errors.Is(err, jobs.ErrJobNotFound) {
				return c.JSON(http.StatusNotFound, errorBody(err))
			}
			h.logger.Errorf("DeleteJob - RequestID: %s, error: %v", utils.GetRequestID(c), err)
			return c.JSON(http.StatusInternalServerError, errorBody(err))
		}
		return c.JSON(http.StatusOK, map[string]interface{}{
			"success": true,
			"message": "Job and associated files deleted",
		})
	}
}

func (h *jobHandlers) ListJobs() echo.HandlerFunc {
	return func(c echo.Context) error {
		limit, offset, err := utils.GetLimitOffsetFromCtx(c)
		if err != nil {
			return c.JSON(http.StatusBadRequest, errorBody(err))
		}
		list, err := h.jobUC.ListJobs(c.Request().Context(), limit, offset)
		if err != nil {
			h.logger.Errorf("ListJobs - RequestID: %s, error: %v", utils.GetRequestID(c), err)
			return c.JSON(http.StatusInternalServerError, errorBody(err))
		}
		return c.JSON(http.StatusOK, list)
	}
}

// ProcessJob receives the broker trigger. The signature is verified over the
// raw body before anything is parsed; duplicate triggers come back 200 so
// the broker stops redelivering, while a busy instance answers 503 to ask
// for redelivery.
func (h *jobHandlers) ProcessJob() echo.HandlerFunc {
	return func(c echo.Context) error {
		body, err := io.ReadAll(c.Request().Body)
		if err != nil {
			return c.JSON(http.StatusBadRequest, errorBody(err))
		}

		if err := h.verifier.Verify(c.Request().Header.Get(broker.SignatureHeader), body); err != nil {
			h.logger.Warnf("ProcessJob - signature rejected: %v", err)
			return c.JSON(http.StatusUnauthorized, errorBody(err))
		}

		var msg broker.TriggerMessage
		if err := json.Unmarshal(body, &msg); err != nil || msg.JobID == "" {
			return c.JSON(http.StatusBadRequest, errorBody(fmt.Errorf("jobId is required")))
		}

		err = h.processor.Process(c.Request().Context(), msg.JobID)
		switch {
		case err == nil:
			return c.JSON(http.StatusOK, map[string]interface{}{
				"success": true,
				"message": "Job processed successfully",
			})
		case errors.Is(err, jobs.ErrAlreadyProcessed):
			return c.JSON(http.StatusOK, map[string]interface{}{
				"success": true,
				"message": "Job already processed",
			})
		case errors.Is(err, jobs.ErrJobNotFound):
			return c.JSON(http.StatusNotFound, errorBody(err))
		case errors.Is(err, jobs.ErrServerBusy):
			return c.JSON(http.StatusServiceUnavailable, errorBody(err))
		default:
			return c.JSON(http.StatusInternalServerError, errorBody(err))
		}
	}
}

func (h *jobHandlers) readUpload(c echo.Context, jobType models.JobType) (*models.PayloadFile, error) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return nil, fmt.Errorf("no file provided")
	}
	if fileHeader.Size > h.cfg.Server.MaxFileSize {
		return nil, fmt.Errorf("file size exceeds maximum allowed size of %s", utils.FormatSize(h.cfg.Server.MaxFileSize))
	}

	src, err := fileHeader.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	defer src.Close()

	data, err := io.ReadAll(io.LimitReader(src, h.cfg.Server.MaxFileSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	if int64(len(data)) > h.cfg.Server.MaxFileSize {
		return nil, fmt.Errorf("file size exceeds maximum allowed size of %s", utils.FormatSize(h.cfg.Server.MaxFileSize))
	}

	mimeType := fileHeader.Header.Get("Content-Type")
	if utils.MediaTypeFromMime(mimeType) != string(jobType) {
		return nil, fmt.Errorf("invalid file type, expected %s", jobType)
	}

	return &models.PayloadFile{
		Data: data,
		Name: fileHeader.Filename,
		Type: mimeType,
		Size: int64(len(data)),
	}, nil
}

func (h *jobHandlers) enqueue(c echo.Context, jobType models.JobType, file *models.PayloadFile, opts models.CompressionOptions, message string) error {
	apiKey, _ := c.Get("api_key").(string)

	out, err := h.jobUC.Enqueue(c.Request().Context(), &jobs.EnqueueInput{
		Type: jobType,
		Payload: models.JobPayload{
			File:      *file,
			Options:   opts,
			APIKey:    apiKey,
			Extension: utils.ExtensionFromMime(file.Type),
		},
		Priority: models.JobPriority(c.FormValue("priority")),
	})
	if err != nil {
		h.logger.Errorf("enqueue - RequestID: %s, type: %s, error: %v", utils.GetRequestID(c), jobType, err)
		return c.JSON(http.StatusInternalServerError, errorBody(fmt.Errorf("failed to queue job")))
	}

	return c.JSON(http.StatusAccepted, map[string]interface{}{
		"success":       true,
		"jobId":         out.JobID,
		"status":        out.Status,
		"estimatedTime": out.EstimatedTime,
		"message":       message,
	})
}

func errorBody(err error) map[string]interface{} {
	return map[string]interface{}{"success": false, "error": err.Error()}
}

func formValueOr(c echo.Context, name, fallback string) string {
	if v := c.FormValue(name); v != "" {
		return v
	}
	return fallback
}

// decodeIntList parses a JSON-encoded numeric array form field, e.g.
// qualities="[80,60,40]". An absent field leaves dst untouched.
func decodeIntList(c echo.Context, name string, dst *[]int) error {
	raw := c.FormValue(name)
	if raw == "" {
		return nil
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		return fmt.Errorf("invalid JSON for %s: %s", name, raw)
	}
	return nil
}

func decodeInt(c echo.Context, name string, dst *int) error {
	raw := c.FormValue(name)
	if raw == "" {
		return nil
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		return fmt.Errorf("invalid value for %s: %s", name, raw)
	}
	return nil
}
