package engine

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ErzenXz/monolith/internal/models"
)

var audioCodecs = map[string]string{
	"mp3":  "libmp3lame",
	"aac":  "aac",
	"opus": "libopus",
	"wav":  "pcm_s16le",
}

func (e *MediaEngine) compressAudio(ctx context.Context, data []byte, opts *models.AudioOptions) (*models.CompressionResult, error) {
	defaults := e.cfg.Compression.Audio

	format := opts.Format
	if format == "" {
		format = defaults.DefaultFormat
	}
	codec, ok := audioCodecs[format]
	if !ok {
		return nil, fmt.Errorf("unsupported audio format %q", format)
	}
	sampleRate := opts.SampleRate
	if sampleRate <= 0 {
		sampleRate = defaults.DefaultSampleRate
	}

	dir, input, err := writeTempInput(data, "audio")
	if err != nil {
		return nil, fmt.Errorf("failed to stage audio input: %w", err)
	}
	defer os.RemoveAll(dir)

	probe, err := probeAudio(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to probe audio: %w", err)
	}

	result := &models.CompressionResult{
		Original: models.OriginalMetadata{
			Duration:   probe.Duration,
			Format:     format,
			Size:       int64(len(data)),
			Bitrate:    probe.Bitrate,
			SampleRate: probe.SampleRate,
			Channels:   probe.Channels,
		},
	}

	for _, bitrate := range opts.Bitrates {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		output := filepath.Join(dir, fmt.Sprintf("out-%d.%s", bitrate, format))
		args := []string{
			"-y", "-i", input,
			"-vn",
			"-c:a", codec,
			"-b:a", fmt.Sprintf("%dk", bitrate),
			"-ar", fmt.Sprintf("%d", sampleRate),
			output,
		}
		if err := runFFmpeg(ctx, args...); err != nil {
			return nil, fmt.Errorf("failed to transcode %dkbps: %w", bitrate, err)
		}
		out, err := os.ReadFile(output)
		if err != nil {
			return nil, fmt.Errorf("failed to read transcoded output: %w", err)
		}
		result.Compressed = append(result.Compressed, models.CompressedFile{
			Label:      fmt.Sprintf("%dkbps", bitrate),
			Data:       out,
			Size:       int64(len(out)),
			Format:     format,
			SampleRate: sampleRate,
		})
	}

	return result, nil
}
