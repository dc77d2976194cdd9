package models

type Dimensions struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// OriginalMetadata describes the source media as probed by the engine.
// Fields that do not apply to a media kind stay zero.
type OriginalMetadata struct {
	Width      int     `json:"width,omitempty"`
	Height     int     `json:"height,omitempty"`
	Duration   float64 `json:"duration,omitempty"`
	Format     string  `json:"format"`
	Size       int64   `json:"size"`
	Bitrate    int     `json:"bitrate,omitempty"`
	SampleRate int     `json:"sample_rate,omitempty"`
	Channels   int     `json:"channels,omitempty"`
}

// CompressedFile is one variant produced by the engine, still in memory.
// The engine emits variants in the same order as the requested
// quality/bitrate list; everything downstream depends on that ordering.
type CompressedFile struct {
	Label      string      `json:"label"`
	Data       []byte      `json:"-"`
	Size       int64       `json:"size"`
	Format     string      `json:"format"`
	Dimensions *Dimensions `json:"dimensions,omitempty"`
	SampleRate int         `json:"sample_rate,omitempty"`
}

// Thumbnail label is either a pixel size ("300px") or a timestamp ("10s").
type Thumbnail struct {
	Label      string      `json:"label"`
	Data       []byte      `json:"-"`
	Size       int64       `json:"size"`
	Format     string      `json:"format"`
	Dimensions *Dimensions `json:"dimensions,omitempty"`
	Timestamp  string      `json:"timestamp,omitempty"`
}

// CompressionResult is what the engine hands back before anything is
// uploaded.
type CompressionResult struct {
	Original   OriginalMetadata `json:"original"`
	Compressed []CompressedFile `json:"compressed"`
	Thumbnails []Thumbnail      `json:"thumbnails"`
}

// JobResult is the persisted outcome of a completed job. Compressed and
// thumbnail entries keep the positional order of the engine output, which in
// turn follows the requested option lists.
type JobResult struct {
	Original         OriginalArtifact    `json:"original"`
	Compressed       []VariantArtifact   `json:"compressed"`
	Thumbnails       []ThumbnailArtifact `json:"thumbnails"`
	CompressionRatio string              `json:"compressionRatio"`
}

type OriginalArtifact struct {
	URL      string  `json:"url"`
	Size     int64   `json:"size"`
	Duration float64 `json:"duration,omitempty"`
}

type VariantArtifact struct {
	Label      string      `json:"label"`
	URL        string      `json:"url"`
	Size       int64       `json:"size"`
	Format     string      `json:"format"`
	Dimensions *Dimensions `json:"dimensions,omitempty"`
	SampleRate int         `json:"sampleRate,omitempty"`
}

type ThumbnailArtifact struct {
	Label      string      `json:"label"`
	URL        string      `json:"url"`
	Size       int64       `json:"size"`
	Dimensions *Dimensions `json:"dimensions,omitempty"`
	Timestamp  string      `json:"timestamp,omitempty"`
}

// ArtifactURLs collects every stored URL referenced by the result, in the
// order original, variants, thumbnails.
func (r *JobResult) ArtifactURLs() []string {
	urls := make([]string, 0, 1+len(r.Compressed)+len(r.Thumbnails))
	if r.Original.URL != "" {
		urls = append(urls, r.Original.URL)
	}
	for _, c := range r.Compressed {
		if c.URL != "" {
			urls = append(urls, c.URL)
		}
	}
	for _, t := range r.Thumbnails {
		if t.URL != "" {
			urls = append(urls, t.URL)
		}
	}
	return urls
}
