package engine

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/ErzenXz/monolith/internal/models"
	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"
)

const thumbnailQuality = 80

func (e *MediaEngine) compressImage(ctx context.Context, data []byte, opts *models.ImageOptions) (*models.CompressionResult, error) {
	img, srcFormat, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	format := opts.Format
	if format == "" {
		format = e.cfg.Compression.Image.DefaultFormat
	}

	bounds := img.Bounds()
	result := &models.CompressionResult{
		Original: models.OriginalMetadata{
			Width:  bounds.Dx(),
			Height: bounds.Dy(),
			Format: srcFormat,
			Size:   int64(len(data)),
		},
	}

	for _, quality := range opts.Qualities {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		out, err := encodeImage(img, format, quality)
		if err != nil {
			return nil, fmt.Errorf("failed to encode quality %d: %w", quality, err)
		}
		result.Compressed = append(result.Compressed, models.CompressedFile{
			Label:      fmt.Sprintf("%d%%", quality),
			Data:       out,
			Size:       int64(len(out)),
			Format:     format,
			Dimensions: &models.Dimensions{Width: bounds.Dx(), Height: bounds.Dy()},
		})
	}

	for _, size := range opts.Thumbnails {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		thumb := imaging.Fit(img, size, size, imaging.Lanczos)
		out, err := encodeImage(thumb, format, thumbnailQuality)
		if err != nil {
			return nil, fmt.Errorf("failed to encode thumbnail %d: %w", size, err)
		}
		tb := thumb.Bounds()
		result.Thumbnails = append(result.Thumbnails, models.Thumbnail{
			Label:      fmt.Sprintf("%dpx", size),
			Data:       out,
			Size:       int64(len(out)),
			Format:     format,
			Dimensions: &models.Dimensions{Width: tb.Dx(), Height: tb.Dy()},
		})
	}

	return result, nil
}

func encodeImage(img image.Image, format string, quality int) ([]byte, error) {
	var buf bytes.Buffer
	switch format {
	case "jpeg", "jpg":
		if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(quality)); err != nil {
			return nil, err
		}
	case "png":
		if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
			return nil, err
		}
	case "webp":
		if err := webp.Encode(&buf, img, &webp.Options{Quality: float32(quality)}); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unsupported image format %q", format)
	}
	return buf.Bytes(), nil
}
