package models

import "fmt"

// CompressionOptions is a tagged variant over the three media kinds: exactly
// one branch is set, and it must agree with the job type. The processor
// matches it exhaustively.
type CompressionOptions struct {
	Image *ImageOptions `json:"image,omitempty"`
	Video *VideoOptions `json:"video,omitempty"`
	Audio *AudioOptions `json:"audio,omitempty"`
}

type ImageOptions struct {
	Qualities     []int  `json:"qualities,omitempty" validate:"omitempty,min=1,max=10,dive,gte=1,lte=100"`
	Thumbnails    []int  `json:"thumbnails,omitempty" validate:"omitempty,min=1,max=10,dive,gte=16,lte=4096"`
	Format        string `json:"format,omitempty" validate:"omitempty,oneof=jpeg png webp"`
	StripMetadata bool   `json:"strip_metadata"`
}

type VideoOptions struct {
	Qualities  []int  `json:"qualities,omitempty" validate:"omitempty,min=1,max=10,dive,gte=144,lte=2160"`
	Thumbnails int    `json:"thumbnails,omitempty" validate:"omitempty,gte=1,lte=10"`
	Format     string `json:"format,omitempty" validate:"omitempty,oneof=mp4 webm mov"`
	Codec      string `json:"codec,omitempty"`
	AudioCodec string `json:"audio_codec,omitempty"`
	CRF        int    `json:"crf,omitempty" validate:"omitempty,gte=0,lte=51"`
	Preset     string `json:"preset,omitempty" validate:"omitempty,oneof=ultrafast superfast veryfast faster fast medium slow slower veryslow"`
}

type AudioOptions struct {
	Bitrates   []int  `json:"bitrates,omitempty" validate:"omitempty,min=1,max=10,dive,gte=32,lte=320"`
	Format     string `json:"format,omitempty" validate:"omitempty,oneof=mp3 aac opus wav"`
	SampleRate int    `json:"sample_rate,omitempty" validate:"omitempty,oneof=44100 48000"`
}

// Match returns an error unless exactly the branch for jobType is set.
func (o CompressionOptions) Match(jobType JobType) error {
	set := 0
	if o.Image != nil {
		set++
	}
	if o.Video != nil {
		set++
	}
	if o.Audio != nil {
		set++
	}
	if set != 1 {
		return fmt.Errorf("options must carry exactly one variant, got %d", set)
	}
	switch jobType {
	case JobTypeImage:
		if o.Image == nil {
			return fmt.Errorf("image job carries non-image options")
		}
	case JobTypeVideo:
		if o.Video == nil {
			return fmt.Errorf("video job carries non-video options")
		}
	case JobTypeAudio:
		if o.Audio == nil {
			return fmt.Errorf("audio job carries non-audio options")
		}
	default:
		return fmt.Errorf("unknown job type %q", jobType)
	}
	return nil
}
