package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	NATS     NATSConfig     `yaml:"nats"`
	MinIO    MinIOConfig    `yaml:"minio"`
	Vision   VisionConfig   `yaml:"vision"`
	Moment   MomentConfig   `yaml:"moment"`
	Logging  LoggingConfig  `yaml:"logging"`
}

type ServerConfig struct {
	Port   int    `yaml:"port"`
	APIKey string `yaml:"api_key"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	MaxConns int    `yaml:"max_conns"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		d.User, d.Password, d.Host, d.Port, d.Name)
}

type NATSConfig struct {
	URL string `yaml:"url"`
}

type MinIOConfig struct {
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Bucket    string `yaml:"bucket"`
	UseSSL    bool   `yaml:"use_ssl"`
}

// VisionConfig holds face detection and matching thresholds.
// Faces with missing confidence or quality data are dropped, never defaulted.
type VisionConfig struct {
	ModelsDir string `yaml:"models_dir"`
	// MinConfidence is the detection confidence cutoff for still images (percent).
	MinConfidence float64 `yaml:"min_confidence"`
	// MinBrightness and MinSharpness gate faces found in video frames.
	MinBrightness float64 `yaml:"min_brightness"`
	MinSharpness  float64 `yaml:"min_sharpness"`
	// MatchSimilarity is the percent similarity at which two face crops are
	// considered the same identity.
	MatchSimilarity float64 `yaml:"match_similarity"`
	// SampleFPS controls how densely video detection jobs sample frames.
	SampleFPS   int `yaml:"sample_fps"`
	WorkerCount int `yaml:"worker_count"`
}

type MomentConfig struct {
	OutputWidth   int `yaml:"output_width"`
	OutputHeight  int `yaml:"output_height"`
	OutputFPS     int `yaml:"output_fps"`
	ImageDuration int `yaml:"image_duration_seconds"`
	// ClusterGap and ClusterBuffer shape how per-identity timestamps are
	// merged into trim ranges.
	ClusterGap    time.Duration `yaml:"cluster_gap"`
	ClusterBuffer time.Duration `yaml:"cluster_buffer"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Load reads config from YAML file and applies environment variable overrides.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	applyEnvOverrides(cfg)
	setDefaults(cfg)

	return cfg, nil
}

func setDefaults(cfg *Config) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.Database.MaxConns == 0 {
		cfg.Database.MaxConns = 20
	}
	if cfg.Vision.MinConfidence == 0 {
		cfg.Vision.MinConfidence = 70
	}
	if cfg.Vision.MinBrightness == 0 {
		cfg.Vision.MinBrightness = 40
	}
	if cfg.Vision.MinSharpness == 0 {
		cfg.Vision.MinSharpness = 30
	}
	if cfg.Vision.MatchSimilarity == 0 {
		cfg.Vision.MatchSimilarity = 90
	}
	if cfg.Vision.SampleFPS == 0 {
		cfg.Vision.SampleFPS = 1
	}
	if cfg.Vision.WorkerCount == 0 {
		cfg.Vision.WorkerCount = 4
	}
	if cfg.Moment.OutputWidth == 0 {
		cfg.Moment.OutputWidth = 1280
	}
	if cfg.Moment.OutputHeight == 0 {
		cfg.Moment.OutputHeight = 720
	}
	if cfg.Moment.OutputFPS == 0 {
		cfg.Moment.OutputFPS = 24
	}
	if cfg.Moment.ImageDuration == 0 {
		cfg.Moment.ImageDuration = 4
	}
	if cfg.Moment.ClusterGap == 0 {
		cfg.Moment.ClusterGap = 3 * time.Second
	}
	if cfg.Moment.ClusterBuffer == 0 {
		cfg.Moment.ClusterBuffer = 500 * time.Millisecond
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("MM_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("MM_API_KEY"); v != "" {
		cfg.Server.APIKey = v
	}
	if v := os.Getenv("MM_DB_HOST"); v != "" {
		cfg.Database.Host = v
	}
	if v := os.Getenv("MM_DB_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Database.Port = port
		}
	}
	if v := os.Getenv("MM_DB_NAME"); v != "" {
		cfg.Database.Name = v
	}
	if v := os.Getenv("MM_DB_USER"); v != "" {
		cfg.Database.User = v
	}
	if v := os.Getenv("MM_DB_PASSWORD"); v != "" {
		cfg.Database.Password = v
	}
	if v := os.Getenv("MM_NATS_URL"); v != "" {
		cfg.NATS.URL = v
	}
	if v := os.Getenv("MM_MINIO_ENDPOINT"); v != "" {
		cfg.MinIO.Endpoint = v
	}
	if v := os.Getenv("MM_MINIO_ACCESS_KEY"); v != "" {
		cfg.MinIO.AccessKey = v
	}
	if v := os.Getenv("MM_MINIO_SECRET_KEY"); v != "" {
		cfg.MinIO.SecretKey = v
	}
	if v := os.Getenv("MM_MINIO_BUCKET"); v != "" {
		cfg.MinIO.Bucket = v
	}
	if v := os.Getenv("MM_MODELS_DIR"); v != "" {
		cfg.Vision.ModelsDir = v
	}
	if v := os.Getenv("MM_VISION_WORKER_COUNT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Vision.WorkerCount = n
		}
	}
}
