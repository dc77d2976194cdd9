package utils

import (
	"fmt"
	"math"
	"strings"
)

// MediaTypeFromMime maps a MIME type onto the closed set of media kinds the
// API accepts; anything else yields "".
func MediaTypeFromMime(mimeType string) string {
	switch {
	case strings.HasPrefix(mimeType, "image/"):
		return "image"
	case strings.HasPrefix(mimeType, "video/"):
		return "video"
	case strings.HasPrefix(mimeType, "audio/"):
		return "audio"
	}
	return ""
}

var mimeToExtension = map[string]string{
	"image/jpeg":      "jpg",
	"image/png":       "png",
	"image/webp":      "webp",
	"image/gif":       "gif",
	"video/mp4":       "mp4",
	"video/webm":      "webm",
	"video/quicktime": "mov",
	"audio/mpeg":      "mp3",
	"audio/mp3":       "mp3",
	"audio/aac":       "aac",
	"audio/opus":      "opus",
	"audio/wav":       "wav",
	"audio/x-wav":     "wav",
}

func ExtensionFromMime(mimeType string) string {
	if ext, ok := mimeToExtension[mimeType]; ok {
		return ext
	}
	return "bin"
}

var extensionToContentType = map[string]string{
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"png":  "image/png",
	"webp": "image/webp",
	"gif":  "image/gif",
	"mp4":  "video/mp4",
	"webm": "video/webm",
	"mov":  "video/quicktime",
	"mp3":  "audio/mpeg",
	"aac":  "audio/aac",
	"opus": "audio/opus",
	"wav":  "audio/wav",
}

func ContentTypeFromExtension(extension string) string {
	if ct, ok := extensionToContentType[strings.ToLower(extension)]; ok {
		return ct
	}
	return "application/octet-stream"
}

// CalculateCompressionRatio formats the saving of the first variant against
// the original as a percentage with two decimals. Zero original or no
// variant saving reference yields "0%".
func CalculateCompressionRatio(originalSize, compressedSize int64) string {
	if originalSize == 0 {
		return "0%"
	}
	ratio := float64(originalSize-compressedSize) / float64(originalSize) * 100
	return fmt.Sprintf("%.2f%%", ratio)
}

func FormatSize(bytes int64) string {
	if bytes == 0 {
		return "0 Bytes"
	}
	sizes := []string{"Bytes", "KB", "MB", "GB"}
	i := int(math.Floor(math.Log(float64(bytes)) / math.Log(1024)))
	if i >= len(sizes) {
		i = len(sizes) - 1
	}
	v := float64(bytes) / math.Pow(1024, float64(i))
	return fmt.Sprintf("%v %s", math.Round(v*100)/100, sizes[i])
}

// EstimateTime is the rough human-facing processing estimate per media kind.
func EstimateTime(jobType string) string {
	switch jobType {
	case "image":
		return "30-60 seconds"
	case "video":
		return "2-5 minutes"
	case "audio":
		return "1-2 minutes"
	}
	return "1-3 minutes"
}
