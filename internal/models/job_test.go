package models

import (
	"encoding/json"
	"testing"
	"time"
)

func TestJobStatusTerminal(t *testing.T) {
	cases := map[JobStatus]bool{
		JobStatusQueued:     false,
		JobStatusProcessing: false,
		JobStatusCompleted:  true,
		JobStatusFailed:     true,
	}
	for status, want := range cases {
		if got := status.Terminal(); got != want {
			t.Errorf("%s.Terminal() = %v; want %v", status, got, want)
		}
	}
}

func TestOptionsMatch(t *testing.T) {
	img := CompressionOptions{Image: &ImageOptions{Qualities: []int{80}}}
	if err := img.Match(JobTypeImage); err != nil {
		t.Errorf("image options on image job: %v", err)
	}
	if err := img.Match(JobTypeVideo); err == nil {
		t.Error("image options accepted on a video job")
	}
	if err := (CompressionOptions{}).Match(JobTypeImage); err == nil {
		t.Error("empty options accepted")
	}
	both := CompressionOptions{Image: &ImageOptions{}, Audio: &AudioOptions{}}
	if err := both.Match(JobTypeImage); err == nil {
		t.Error("options with two branches accepted")
	}
}

func TestPayloadFileJSONRoundTripsBinaryData(t *testing.T) {
	in := PayloadFile{Data: []byte{0x00, 0xff, 0x10, 0x80}, Name: "a.bin", Type: "image/png", Size: 4}
	raw, err := json.Marshal(in)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var out PayloadFile
	if err := json.Unmarshal(raw, &out); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if string(out.Data) != string(in.Data) {
		t.Errorf("Data = %v; want %v", out.Data, in.Data)
	}
}

func TestProjectionOmitsPayload(t *testing.T) {
	now := time.Now().UTC()
	errMsg := "boom"
	job := &Job{
		ID:        "job_1",
		Type:      JobTypeAudio,
		Status:    JobStatusFailed,
		CreatedAt: now,
		Progress:  30,
		Error:     &errMsg,
		Payload: JobPayload{
			File:   PayloadFile{Data: []byte("secret bytes"), Name: "x.mp3"},
			APIKey: "key-1",
		},
	}

	p := job.Projection()
	if p.JobID != "job_1" || p.Status != JobStatusFailed || p.Progress != 30 {
		t.Errorf("projection = %+v; want id/status/progress carried over", p)
	}
	if p.Error == nil || *p.Error != "boom" {
		t.Errorf("projection error = %v; want boom", p.Error)
	}

	raw, err := json.Marshal(p)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var asMap map[string]interface{}
	_ = json.Unmarshal(raw, &asMap)
	if _, ok := asMap["payload"]; ok {
		t.Error("projection serializes the payload; polling responses must not carry it")
	}
	if _, ok := asMap["api_key"]; ok {
		t.Error("projection serializes the api key")
	}
}

func TestArtifactURLsOrder(t *testing.T) {
	r := &JobResult{
		Original:   OriginalArtifact{URL: "u-orig"},
		Compressed: []VariantArtifact{{URL: "u-c1"}, {URL: "u-c2"}},
		Thumbnails: []ThumbnailArtifact{{URL: "u-t1"}},
	}
	urls := r.ArtifactURLs()
	want := []string{"u-orig", "u-c1", "u-c2", "u-t1"}
	if len(urls) != len(want) {
		t.Fatalf("got %d urls; want %d", len(urls), len(want))
	}
	for i := range want {
		if urls[i] != want[i] {
			t.Errorf("urls[%d] = %q; want %q", i, urls[i], want[i])
		}
	}

	empty := &JobResult{}
	if got := empty.ArtifactURLs(); len(got) != 0 {
		t.Errorf("empty result yields %v; want none", got)
	}
}
