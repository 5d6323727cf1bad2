package config

import (
	"os"
	"strings"

	"github.com/spf13/viper"
)

// readSecret reads a Docker secret from a file path specified by an env var
// with _FILE suffix. If FOO is already set directly, the file is skipped.
// If FOO_FILE is set, reads the file content and sets FOO.
func readSecret(envKey string) {
	if os.Getenv(envKey) != "" {
		return
	}
	fileKey := envKey + "_FILE"
	filePath := os.Getenv(fileKey)
	if filePath == "" {
		return
	}
	data, err := os.ReadFile(filePath)
	if err != nil {
		return
	}
	val := strings.TrimSpace(string(data))
	os.Setenv(envKey, val)
}

type Config struct {
	Server    ServerConfig
	Redis     RedisConfig
	Worker    WorkerConfig
	Storage   StorageConfig
	StatusAPI StatusAPIConfig
	Media     MediaConfig
	Haptic    HapticConfig
}

type ServerConfig struct {
	Port     string
	Env      string
	LogLevel string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type WorkerConfig struct {
	Concurrency int
	Queue       string
	MaxRetry    int
}

type StorageConfig struct {
	AccountID       string
	AccessKeyID     string
	SecretAccessKey string
	InputBucket     string
	OutputBucket    string
	PublicURL       string
}

type StatusAPIConfig struct {
	BaseURL string
	APIKey  string
	Timeout int // seconds
}

type MediaConfig struct {
	FFmpegPath  string
	SampleRate  int
	MaxDuration int // seconds of audio analyzed, longer inputs are truncated
	Timeout     int // seconds allowed for one ffmpeg invocation
}

type HapticConfig struct {
	MinEventGap    float64
	BeatIntensity  float64
	BeatDuration   float64
	BeatSharpness  float64
	OnsetIntensity float64
	OnsetDuration  float64
	OnsetSharpness float64
}

func Load() (*Config, error) {
	// Read Docker Swarm secrets from _FILE env vars before Viper binds
	readSecret("REDIS_PASSWORD")
	readSecret("STATUS_API_KEY")
	readSecret("STORAGE_ACCOUNT_ID")
	readSecret("STORAGE_ACCESS_KEY_ID")
	readSecret("STORAGE_SECRET_ACCESS_KEY")

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	// Environment variables
	viper.AutomaticEnv()

	// Bind environment variables with underscores to nested config keys
	_ = viper.BindEnv("server.port", "SERVER_PORT")
	_ = viper.BindEnv("server.env", "SERVER_ENV")
	_ = viper.BindEnv("server.log_level", "LOG_LEVEL")
	_ = viper.BindEnv("redis.addr", "REDIS_ADDR")
	_ = viper.BindEnv("redis.password", "REDIS_PASSWORD")
	_ = viper.BindEnv("redis.db", "REDIS_DB")
	_ = viper.BindEnv("worker.concurrency", "WORKER_CONCURRENCY")
	_ = viper.BindEnv("worker.queue", "WORKER_QUEUE")
	_ = viper.BindEnv("worker.max_retry", "WORKER_MAX_RETRY")
	_ = viper.BindEnv("storage.account_id", "STORAGE_ACCOUNT_ID")
	_ = viper.BindEnv("storage.access_key_id", "STORAGE_ACCESS_KEY_ID")
	_ = viper.BindEnv("storage.secret_access_key", "STORAGE_SECRET_ACCESS_KEY")
	_ = viper.BindEnv("storage.input_bucket", "STORAGE_INPUT_BUCKET")
	_ = viper.BindEnv("storage.output_bucket", "STORAGE_OUTPUT_BUCKET")
	_ = viper.BindEnv("storage.public_url", "STORAGE_PUBLIC_URL")
	_ = viper.BindEnv("statusapi.base_url", "STATUS_API_BASE_URL")
	_ = viper.BindEnv("statusapi.api_key", "STATUS_API_KEY")
	_ = viper.BindEnv("statusapi.timeout", "STATUS_API_TIMEOUT")
	_ = viper.BindEnv("media.ffmpeg_path", "FFMPEG_PATH")
	_ = viper.BindEnv("media.sample_rate", "MEDIA_SAMPLE_RATE")
	_ = viper.BindEnv("media.max_duration", "MEDIA_MAX_DURATION")
	_ = viper.BindEnv("media.timeout", "MEDIA_TIMEOUT")

	// Defaults
	viper.SetDefault("server.port", "8084")
	viper.SetDefault("server.env", "development")
	viper.SetDefault("server.log_level", "info")
	viper.SetDefault("redis.addr", "localhost:6379")
	viper.SetDefault("redis.password", "")
	viper.SetDefault("redis.db", 0)
	viper.SetDefault("worker.concurrency", 10)
	viper.SetDefault("worker.queue", "haptic")
	viper.SetDefault("worker.max_retry", 3)
	viper.SetDefault("statusapi.base_url", "http://localhost:3000")
	viper.SetDefault("statusapi.timeout", 15)
	viper.SetDefault("media.ffmpeg_path", "ffmpeg")
	viper.SetDefault("media.sample_rate", 44100)
	viper.SetDefault("media.max_duration", 180)
	viper.SetDefault("media.timeout", 120)

	// Haptic synthesis policy. Fixed values, not derived from the signal.
	viper.SetDefault("haptic.min_event_gap", 0.05)
	viper.SetDefault("haptic.beat_intensity", 1.0)
	viper.SetDefault("haptic.beat_duration", 0.1)
	viper.SetDefault("haptic.beat_sharpness", 0.8)
	viper.SetDefault("haptic.onset_intensity", 0.6)
	viper.SetDefault("haptic.onset_duration", 0.05)
	viper.SetDefault("haptic.onset_sharpness", 0.5)

	// Try to read config file (optional)
	_ = viper.ReadInConfig()

	cfg := &Config{
		Server: ServerConfig{
			Port:     viper.GetString("server.port"),
			Env:      viper.GetString("server.env"),
			LogLevel: viper.GetString("server.log_level"),
		},
		Redis: RedisConfig{
			Addr:     viper.GetString("redis.addr"),
			Password: viper.GetString("redis.password"),
			DB:       viper.GetInt("redis.db"),
		},
		Worker: WorkerConfig{
			Concurrency: viper.GetInt("worker.concurrency"),
			Queue:       viper.GetString("worker.queue"),
			MaxRetry:    viper.GetInt("worker.max_retry"),
		},
		Storage: StorageConfig{
			AccountID:       viper.GetString("storage.account_id"),
			AccessKeyID:     viper.GetString("storage.access_key_id"),
			SecretAccessKey: viper.GetString("storage.secret_access_key"),
			InputBucket:     viper.GetString("storage.input_bucket"),
			OutputBucket:    viper.GetString("storage.output_bucket"),
			PublicURL:       viper.GetString("storage.public_url"),
		},
		StatusAPI: StatusAPIConfig{
			BaseURL: viper.GetString("statusapi.base_url"),
			APIKey:  viper.GetString("statusapi.api_key"),
			Timeout: viper.GetInt("statusapi.timeout"),
		},
		Media: MediaConfig{
			FFmpegPath:  viper.GetString("media.ffmpeg_path"),
			SampleRate:  viper.GetInt("media.sample_rate"),
			MaxDuration: viper.GetInt("media.max_duration"),
			Timeout:     viper.GetInt("media.timeout"),
		},
		Haptic: HapticConfig{
			MinEventGap:    viper.GetFloat64("haptic.min_event_gap"),
			BeatIntensity:  viper.GetFloat64("haptic.beat_intensity"),
			BeatDuration:   viper.GetFloat64("haptic.beat_duration"),
			BeatSharpness:  viper.GetFloat64("haptic.beat_sharpness"),
			OnsetIntensity: viper.GetFloat64("haptic.onset_intensity"),
			OnsetDuration:  viper.GetFloat64("haptic.onset_duration"),
			OnsetSharpness: viper.GetFloat64("haptic.onset_sharpness"),
		},
	}

	return cfg, nil
}
