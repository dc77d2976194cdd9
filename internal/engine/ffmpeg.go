package engine

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
)

// mediaProbe is the subset of ffprobe output the engines care about.
type mediaProbe struct {
	Width      int
	Height     int
	Duration   float64
	Bitrate    int
	SampleRate int
	Channels   int
}

func runFFmpeg(ctx context.Context, args ...string) error {
	cmd := exec.CommandContext(ctx, "ffmpeg", args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("ffmpeg failed: %v: %s", err, lastLine(stderr.String()))
	}
	return nil
}

func probeOutput(ctx context.Context, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "ffprobe", args...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("ffprobe error: %v output: %s", err, string(out))
	}
	return strings.TrimSpace(string(out)), nil
}

func probeVideo(ctx context.Context, path string) (*mediaProbe, error) {
	out, err := probeOutput(ctx, "-v", "error", "-select_streams", "v:0",
		"-show_entries", "stream=width,height", "-of", "csv=p=0", path)
	if err != nil {
		return nil, err
	}
	parts := strings.Split(strings.TrimRight(out, ","), ",")
	if len(parts) != 2 {
		return nil, fmt.Errorf("unexpected ffprobe output: %s", out)
	}
	width, err := strconv.Atoi(parts[0])
	if err != nil {
		return nil, fmt.Errorf("invalid width: %v", err)
	}
	height, err := strconv.Atoi(parts[1])
	if err != nil {
		return nil, fmt.Errorf("invalid height: %v", err)
	}

	duration, bitrate, err := probeFormat(ctx, path)
	if err != nil {
		return nil, err
	}
	return &mediaProbe{Width: width, Height: height, Duration: duration, Bitrate: bitrate}, nil
}

func probeAudio(ctx context.Context, path string) (*mediaProbe, error) {
	out, err := probeOutput(ctx, "-v", "error", "-select_streams", "a:0",
		"-show_entries", "stream=sample_rate,channels", "-of", "csv=p=0", path)
	if err != nil {
		return nil, err
	}
	probe := &mediaProbe{}
	parts := strings.Split(strings.TrimRight(out, ","), ",")
	if len(parts) == 2 {
		probe.SampleRate, _ = strconv.Atoi(parts[0])
		probe.Channels, _ = strconv.Atoi(parts[1])
	}

	probe.Duration, probe.Bitrate, err = probeFormat(ctx, path)
	if err != nil {
		return nil, err
	}
	return probe, nil
}

func probeFormat(ctx context.Context, path string) (duration float64, bitrate int, err error) {
	out, err := probeOutput(ctx, "-v", "error", "-show_entries",
		"format=duration,bit_rate", "-of", "csv=p=0", path)
	if err != nil {
		return 0, 0, err
	}
	parts := strings.Split(strings.TrimRight(out, ","), ",")
	if len(parts) > 0 {
		duration, _ = strconv.ParseFloat(parts[0], 64)
	}
	if len(parts) > 1 {
		bitrate, _ = strconv.Atoi(parts[1])
	}
	return duration, bitrate, nil
}

// writeTempInput materializes the payload buffer for ffmpeg, which wants a
// seekable file. Caller cleans up the whole directory.
func writeTempInput(data []byte, extension string) (dir, path string, err error) {
	dir, err = os.MkdirTemp("", "monolith-engine-")
	if err != nil {
		return "", "", err
	}
	path = filepath.Join(dir, "input."+extension)
	if err = os.WriteFile(path, data, 0o600); err != nil {
		os.RemoveAll(dir)
		return "", "", err
	}
	return dir, path, nil
}

func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	if len(lines) == 0 {
		return s
	}
	return lines[len(lines)-1]
}
