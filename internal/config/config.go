package config

import (
	"errors"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server      ServerConfig
	Redis       RedisConfig
	S3          S3Config
	Logger      Logger
	Auth        AuthConfig
	RateLimit   RateLimitConfig
	Broker      BrokerConfig
	Queue       QueueConfig
	Compression CompressionConfig
	Worker      WorkerConfig
}

type ServerConfig struct {
	AppVersion   string
	Port         string
	Mode         string
	BaseURL      string
	MaxFileSize  int64
	ReadTimeout  int
	WriteTimeout int
}

type RedisConfig struct {
	RedisAddr     string
	RedisPassword string
	DB            int
	MinIdleConns  int
	PoolSize      int
	PoolTimeout   int
	UseTLS        bool
}

type S3Config struct {
	Endpoint      string
	Region        string
	AccessKey     string
	SecretKey     string
	Bucket        string
	PublicBaseURL string
}

type Logger struct {
	Development       bool
	DisableCaller     bool
	DisableStacktrace bool
	Encoding          string
	Level             string
}

type AuthConfig struct {
	APIKeys []string
}

type RateLimitConfig struct {
	MaxRequests int
	WindowMs    int
}

func (c RateLimitConfig) Window() time.Duration {
	return time.Duration(c.WindowMs) * time.Millisecond
}

// BrokerConfig drives both sides of the trigger channel: the publisher that
// delivers {jobId} messages and the receiver that verifies their signatures.
type BrokerConfig struct {
	ProcessURL        string
	CurrentSigningKey string
	NextSigningKey    string
	MaxAttempts       int
	RetryDelayMs      int
	Workers           int
	QueueSize         int
}

func (c BrokerConfig) RetryDelay() time.Duration {
	return time.Duration(c.RetryDelayMs) * time.Millisecond
}

type QueueConfig struct {
	MaxAttempts int
	JobTimeout  int
	// JobTTL is applied to the record on terminal transition; 0 keeps
	// records forever.
	JobTTL int
}

func (c QueueConfig) JobDeadline() time.Duration {
	if c.JobTimeout <= 0 {
		return 5 * time.Minute
	}
	return time.Duration(c.JobTimeout) * time.Second
}

func (c QueueConfig) RecordTTL() time.Duration {
	return time.Duration(c.JobTTL) * time.Second
}

type CompressionConfig struct {
	Image ImageDefaults
	Video VideoDefaults
	Audio AudioDefaults
}

type ImageDefaults struct {
	Qualities     []int
	Thumbnails    []int
	DefaultFormat string
	StripMetadata bool
}

type VideoDefaults struct {
	Qualities         []int
	Thumbnails        int
	ThumbnailInterval int
	DefaultFormat     string
	Codec             string
	AudioCodec        string
	CRF               int
	Preset            string
}

type AudioDefaults struct {
	Bitrates          []int
	DefaultFormat     string
	DefaultSampleRate int
}

type WorkerConfig struct {
	MaxCPUUsage float64
}

func LoadConfig(filename string) (*viper.Viper, error) {
	if err := godotenv.Load(".env"); err != nil {
		log.Println("No .env file found; proceeding with OS environment variables")
	}
	v := viper.New()
	v.SetConfigFile(filename)
	v.AddConfigPath(".")
	v.AutomaticEnv()
	if err := v.ReadInConfig(); err != nil {
		var configFileNotFound viper.ConfigFileNotFoundError
		if errors.As(err, &configFileNotFound) {
			return nil, errors.New("config file not found")
		}
		return nil, err
	}
	return v, nil
}

func ParseConfig(v *viper.Viper) (*Config, error) {
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, err
	}
	applyDefaults(&c)
	return &c, nil
}

func applyDefaults(c *Config) {
	if c.Server.MaxFileSize <= 0 {
		c.Server.MaxFileSize = 500 << 20
	}
	if c.RateLimit.MaxRequests <= 0 {
		c.RateLimit.MaxRequests = 100
	}
	if c.RateLimit.WindowMs <= 0 {
		c.RateLimit.WindowMs = 60000
	}
	if c.Broker.MaxAttempts <= 0 {
		c.Broker.MaxAttempts = 3
	}
	if c.Broker.RetryDelayMs <= 0 {
		c.Broker.RetryDelayMs = 5000
	}
	if c.Broker.Workers <= 0 {
		c.Broker.Workers = 2
	}
	if c.Broker.QueueSize <= 0 {
		c.Broker.QueueSize = 256
	}
	if c.Queue.MaxAttempts <= 0 {
		c.Queue.MaxAttempts = 3
	}
	if len(c.Compression.Image.Qualities) == 0 {
		c.Compression.Image.Qualities = []int{90, 75, 60, 45}
	}
	if len(c.Compression.Image.Thumbnails) == 0 {
		c.Compression.Image.Thumbnails = []int{100, 300, 500}
	}
	if c.Compression.Image.DefaultFormat == "" {
		c.Compression.Image.DefaultFormat = "webp"
	}
	if len(c.Compression.Video.Qualities) == 0 {
		c.Compression.Video.Qualities = []int{1080, 720, 480, 360}
	}
	if c.Compression.Video.Thumbnails <= 0 {
		c.Compression.Video.Thumbnails = 3
	}
	if c.Compression.Video.ThumbnailInterval <= 0 {
		c.Compression.Video.ThumbnailInterval = 10
	}
	if c.Compression.Video.DefaultFormat == "" {
		c.Compression.Video.DefaultFormat = "mp4"
	}
	if c.Compression.Video.Codec == "" {
		c.Compression.Video.Codec = "libx264"
	}
	if c.Compression.Video.AudioCodec == "" {
		c.Compression.Video.AudioCodec = "aac"
	}
	if c.Compression.Video.CRF <= 0 {
		c.Compression.Video.CRF = 23
	}
	if c.Compression.Video.Preset == "" {
		c.Compression.Video.Preset = "medium"
	}
	if len(c.Compression.Audio.Bitrates) == 0 {
		c.Compression.Audio.Bitrates = []int{320, 192, 128, 64}
	}
	if c.Compression.Audio.DefaultFormat == "" {
		c.Compression.Audio.DefaultFormat = "mp3"
	}
	if c.Compression.Audio.DefaultSampleRate <= 0 {
		c.Compression.Audio.DefaultSampleRate = 44100
	}
	if c.Worker.MaxCPUUsage <= 0 {
		c.Worker.MaxCPUUsage = 90
	}
}
