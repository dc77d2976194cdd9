package engine

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ErzenXz/monolith/internal/models"
)

func (e *MediaEngine) compressVideo(ctx context.Context, data []byte, opts *models.VideoOptions) (*models.CompressionResult, error) {
	defaults := e.cfg.Compression.Video

	format := opts.Format
	if format == "" {
		format = defaults.DefaultFormat
	}
	codec := opts.Codec
	if codec == "" {
		codec = defaults.Codec
	}
	audioCodec := opts.AudioCodec
	if audioCodec == "" {
		audioCodec = defaults.AudioCodec
	}
	crf := opts.CRF
	if crf <= 0 {
		crf = defaults.CRF
	}
	preset := opts.Preset
	if preset == "" {
		preset = defaults.Preset
	}
	thumbCount := opts.Thumbnails
	if thumbCount <= 0 {
		thumbCount = defaults.Thumbnails
	}

	dir, input, err := writeTempInput(data, "video")
	if err != nil {
		return nil, fmt.Errorf("failed to stage video input: %w", err)
	}
	defer os.RemoveAll(dir)

	probe, err := probeVideo(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to probe video: %w", err)
	}

	result := &models.CompressionResult{
		Original: models.OriginalMetadata{
			Width:    probe.Width,
			Height:   probe.Height,
			Duration: probe.Duration,
			Format:   format,
			Size:     int64(len(data)),
			Bitrate:  probe.Bitrate,
		},
	}

	for _, height := range opts.Qualities {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		output := filepath.Join(dir, fmt.Sprintf("out-%d.%s", height, format))
		args := []string{
			"-y", "-i", input,
			"-vf", fmt.Sprintf("scale=-2:%d", height),
			"-c:v", codec,
			"-crf", fmt.Sprintf("%d", crf),
			"-preset", preset,
			"-c:a", audioCodec,
			"-movflags", "+faststart",
			output,
		}
		if err := runFFmpeg(ctx, args...); err != nil {
			return nil, fmt.Errorf("failed to transcode %dp: %w", height, err)
		}
		out, err := os.ReadFile(output)
		if err != nil {
			return nil, fmt.Errorf("failed to read transcoded output: %w", err)
		}
		width := scaledWidth(probe.Width, probe.Height, height)
		result.Compressed = append(result.Compressed, models.CompressedFile{
			Label:      fmt.Sprintf("%dp", height),
			Data:       out,
			Size:       int64(len(out)),
			Format:     format,
			Dimensions: &models.Dimensions{Width: width, Height: height},
		})
	}

	interval := float64(defaults.ThumbnailInterval)
	for i := 0; i < thumbCount; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		offset := float64(i+1) * interval
		if probe.Duration > 0 && offset >= probe.Duration {
			break
		}
		output := filepath.Join(dir, fmt.Sprintf("thumb-%d.jpg", i))
		args := []string{
			"-y", "-ss", fmt.Sprintf("%.2f", offset),
			"-i", input,
			"-vframes", "1",
			"-vf", "scale=-2:300",
			"-q:v", "3",
			output,
		}
		if err := runFFmpeg(ctx, args...); err != nil {
			return nil, fmt.Errorf("failed to extract thumbnail at %.0fs: %w", offset, err)
		}
		out, err := os.ReadFile(output)
		if err != nil {
			return nil, fmt.Errorf("failed to read thumbnail: %w", err)
		}
		result.Thumbnails = append(result.Thumbnails, models.Thumbnail{
			Label:     fmt.Sprintf("%.0fs", offset),
			Data:      out,
			Size:      int64(len(out)),
			Format:    "jpeg",
			Timestamp: fmt.Sprintf("%.0fs", offset),
		})
	}

	return result, nil
}

// scaledWidth mirrors ffmpeg's scale=-2:h behavior: keep the aspect ratio
// and round the width down to an even number.
func scaledWidth(srcW, srcH, dstH int) int {
	if srcH == 0 {
		return 0
	}
	w := srcW * dstH / srcH
	if w%2 != 0 {
		w--
	}
	return w
}
