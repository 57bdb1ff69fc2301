// Package config loads service configuration from an optional YAML file
// with environment variable overrides. Components never read the
// environment themselves; every directory and name is passed down from
// here through constructors.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// MinPort is the minimum valid port number
	MinPort = 1
	// MaxPort is the maximum valid port number
	MaxPort = 65535
)

// Config represents the complete application configuration.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Redis   RedisConfig   `yaml:"redis"`
	Queue   QueueConfig   `yaml:"queue"`
	Render  RenderConfig  `yaml:"render"`
	Storage StorageConfig `yaml:"storage"`
	Logging LoggingConfig `yaml:"logging"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port            int           `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// RedisConfig holds the wake-up queue connection settings.
type RedisConfig struct {
	Addr string `yaml:"addr"`
}

// QueueConfig holds the persistent job queue settings. Dir is the
// directory holding one JSON record file per job; it is created if
// absent. Name is the redis list used to wake the worker.
type QueueConfig struct {
	Dir  string `yaml:"dir"`
	Name string `yaml:"name"`
}

// RenderConfig holds the rendering engine settings.
type RenderConfig struct {
	// ManimBin is the rendering engine executable.
	ManimBin string `yaml:"manim_bin"`
	// FFmpegBin is the concatenation tool executable.
	FFmpegBin string `yaml:"ffmpeg_bin"`
	// WorkDir is the engine working directory; artifacts land under
	// WorkDir/media.
	WorkDir string `yaml:"work_dir"`
	// TmpDir receives per-request script files. Empty means the OS
	// default temp directory.
	TmpDir string `yaml:"tmp_dir"`
	// SceneTimeout bounds a single scene render.
	SceneTimeout time.Duration `yaml:"scene_timeout"`
	// Bucket prefixes uploaded object keys.
	Bucket string `yaml:"bucket"`
}

// GDriveConfig holds Google Drive credentials.
type GDriveConfig struct {
	ClientID     string `yaml:"client_id"`
	ClientSecret string `yaml:"client_secret"`
	RefreshToken string `yaml:"refresh_token"`
	FolderID     string `yaml:"folder_id"`
}

// StorageConfig selects and configures the object storage provider.
type StorageConfig struct {
	Provider     string       `yaml:"provider"`
	LocalRoot    string       `yaml:"local_root"`
	LocalBaseURL string       `yaml:"local_base_url"`
	GDrive       GDriveConfig `yaml:"gdrive"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level     string `yaml:"level"`
	Format    string `yaml:"format"`
	AddSource bool   `yaml:"add_source"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    10 * time.Minute,
			IdleTimeout:     120 * time.Second,
			ShutdownTimeout: 30 * time.Second,
		},
		Redis: RedisConfig{Addr: "localhost:6379"},
		Queue: QueueConfig{
			Dir:  "job_queue",
			Name: "reel:jobs",
		},
		Render: RenderConfig{
			ManimBin:     "manim",
			FFmpegBin:    "ffmpeg",
			WorkDir:      ".",
			SceneTimeout: 300 * time.Second,
			Bucket:       "videos",
		},
		Storage: StorageConfig{
			Provider:  "localfs",
			LocalRoot: "/data",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load builds the configuration: defaults, then the YAML file at path
// (if non-empty), then environment overrides.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	cfg.applyEnv()
	return cfg, nil
}

// FromEnv builds the configuration from defaults and environment only.
// CONFIG_PATH, when set, points at the YAML file.
func FromEnv() (*Config, error) {
	return Load(strings.TrimSpace(os.Getenv("CONFIG_PATH")))
}

func (c *Config) applyEnv() {
	setInt(&c.Server.Port, "HTTP_PORT")
	setStr(&c.Redis.Addr, "REDIS_ADDR")
	setStr(&c.Queue.Dir, "JOB_QUEUE_DIR")
	setStr(&c.Queue.Name, "JOB_QUEUE_NAME")
	setStr(&c.Render.ManimBin, "MANIM_BIN")
	setStr(&c.Render.FFmpegBin, "FFMPEG_BIN")
	setStr(&c.Render.WorkDir, "RENDER_WORK_DIR")
	setStr(&c.Render.TmpDir, "RENDER_TMP_DIR")
	setDur(&c.Render.SceneTimeout, "RENDER_SCENE_TIMEOUT")
	setStr(&c.Render.Bucket, "VIDEO_BUCKET")
	setStr(&c.Storage.Provider, "STORAGE_PROVIDER")
	setStr(&c.Storage.LocalRoot, "STORAGE_LOCAL_ROOT")
	setStr(&c.Storage.LocalBaseURL, "STORAGE_PUBLIC_BASEURL")
	setStr(&c.Storage.GDrive.ClientID, "GDRIVE_CLIENT_ID")
	setStr(&c.Storage.GDrive.ClientSecret, "GDRIVE_CLIENT_SECRET")
	setStr(&c.Storage.GDrive.RefreshToken, "GDRIVE_REFRESH_TOKEN")
	setStr(&c.Storage.GDrive.FolderID, "GDRIVE_FOLDER_ID")
	setStr(&c.Logging.Level, "LOG_LEVEL")
	setStr(&c.Logging.Format, "LOG_FORMAT")
	if v := strings.TrimSpace(os.Getenv("LOG_SOURCE")); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Logging.AddSource = b
		}
	}
}

// Validate checks settings the API service depends on.
func (c *Config) ValidateAPIConfig() error {
	if c.Server.Port < MinPort || c.Server.Port > MaxPort {
		return fmt.Errorf("invalid server port: %d (must be between %d and %d)", c.Server.Port, MinPort, MaxPort)
	}
	if c.Redis.Addr == "" {
		return fmt.Errorf("redis addr is required")
	}
	if c.Queue.Dir == "" {
		return fmt.Errorf("queue dir is required")
	}
	if c.Queue.Name == "" {
		return fmt.Errorf("queue name is required")
	}
	return c.validateRender()
}

// Validate checks settings the worker service depends on.
func (c *Config) ValidateWorkerConfig() error {
	if c.Redis.Addr == "" {
		return fmt.Errorf("redis addr is required")
	}
	if c.Queue.Dir == "" {
		return fmt.Errorf("queue dir is required")
	}
	if c.Queue.Name == "" {
		return fmt.Errorf("queue name is required")
	}
	return c.validateRender()
}

func (c *Config) validateRender() error {
	if c.Render.ManimBin == "" {
		return fmt.Errorf("render manim_bin is required")
	}
	if c.Render.FFmpegBin == "" {
		return fmt.Errorf("render ffmpeg_bin is required")
	}
	if c.Render.SceneTimeout <= 0 {
		return fmt.Errorf("render scene_timeout must be greater than 0")
	}
	if c.Render.Bucket == "" {
		return fmt.Errorf("render bucket is required")
	}
	return nil
}

func setStr(dst *string, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setDur(dst *time.Duration, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			*dst = d
		}
	}
}
