package utils

import "testing"

func TestMediaTypeFromMime(t *testing.T) {
	cases := map[string]string{
		"image/jpeg":      "image",
		"image/png":       "image",
		"video/mp4":       "video",
		"audio/mpeg":      "audio",
		"application/pdf": "",
		"":                "",
	}
	for mime, want := range cases {
		if got := MediaTypeFromMime(mime); got != want {
			t.Errorf("MediaTypeFromMime(%q) = %q; want %q", mime, got, want)
		}
	}
}

func TestCalculateCompressionRatio(t *testing.T) {
	cases := []struct {
		original, compressed int64
		want                 string
	}{
		{1000, 400, "60.00%"},
		{1000, 1000, "0.00%"},
		{0, 400, "0%"},
		{3, 2, "33.33%"},
		{1000, 1200, "-20.00%"},
	}
	for _, tc := range cases {
		if got := CalculateCompressionRatio(tc.original, tc.compressed); got != tc.want {
			t.Errorf("CalculateCompressionRatio(%d, %d) = %q; want %q", tc.original, tc.compressed, got, tc.want)
		}
	}
}

func TestFormatSize(t *testing.T) {
	cases := []struct {
		bytes int64
		want  string
	}{
		{0, "0 Bytes"},
		{512, "512 Bytes"},
		{1024, "1 KB"},
		{1536, "1.5 KB"},
		{10 << 20, "10 MB"},
	}
	for _, tc := range cases {
		if got := FormatSize(tc.bytes); got != tc.want {
			t.Errorf("FormatSize(%d) = %q; want %q", tc.bytes, got, tc.want)
		}
	}
}

func TestEstimateTime(t *testing.T) {
	cases := map[string]string{
		"image": "30-60 seconds",
		"video": "2-5 minutes",
		"audio": "1-2 minutes",
		"other": "1-3 minutes",
	}
	for jobType, want := range cases {
		if got := EstimateTime(jobType); got != want {
			t.Errorf("EstimateTime(%q) = %q; want %q", jobType, got, want)
		}
	}
}

func TestExtensionRoundTrips(t *testing.T) {
	if got := ExtensionFromMime("image/jpeg"); got != "jpg" {
		t.Errorf("ExtensionFromMime(image/jpeg) = %q; want jpg", got)
	}
	if got := ExtensionFromMime("application/zip"); got != "bin" {
		t.Errorf("ExtensionFromMime(application/zip) = %q; want bin", got)
	}
	if got := ContentTypeFromExtension("JPG"); got != "image/jpeg" {
		t.Errorf("ContentTypeFromExtension(JPG) = %q; want image/jpeg", got)
	}
	if got := ContentTypeFromExtension("xyz"); got != "application/octet-stream" {
		t.Errorf("ContentTypeFromExtension(xyz) = %q; want octet-stream", got)
	}
}
