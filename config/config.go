package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server      ServerConfig      `yaml:"server"`
	Paths       PathsConfig       `yaml:"paths"`
	Whisper     WhisperConfig     `yaml:"whisper"`
	YtDlp       YtDlpConfig       `yaml:"ytdlp"`
	Gemini      GeminiConfig      `yaml:"gemini"`
	Logging     LoggingConfig     `yaml:"logging"`
	Performance PerformanceConfig `yaml:"performance"`
	Watcher     WatcherConfig     `yaml:"watcher"`
}

type ServerConfig struct {
	Addr string `yaml:"addr"`
}

type PathsConfig struct {
	Uploads     string `yaml:"uploads"`
	Processed   string `yaml:"processed"`
	Transcripts string `yaml:"transcripts"`
	Database    string `yaml:"database"`
}

type WhisperConfig struct {
	BinaryPath string `yaml:"binary_path"`
	ModelPath  string `yaml:"model_path"`
	Language   string `yaml:"language"`
	Threads    int    `yaml:"threads"`
}

type YtDlpConfig struct {
	BinaryPath string `yaml:"binary_path"`
}

type GeminiConfig struct {
	Model   string   `yaml:"model"`
	APIKeys []string `yaml:"api_keys"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
}

type PerformanceConfig struct {
	MaxWorkers   int `yaml:"max_workers"`
	JobQueueSize int `yaml:"job_queue_size"`
}

type WatcherConfig struct {
	Enabled bool   `yaml:"enabled"`
	Dir     string `yaml:"dir"`
}

// Load reads and validates a YAML config file. A missing file yields the
// defaults so the server can start with zero configuration.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	// GEMINI_API_KEY from the environment takes precedence over the file.
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		cfg.Gemini.APIKeys = append([]string{key}, cfg.Gemini.APIKeys...)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate fills defaults and rejects unusable combinations.
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Paths.Uploads == "" {
		c.Paths.Uploads = "storage/uploads"
	}
	if c.Paths.Processed == "" {
		c.Paths.Processed = "storage/processed"
	}
	if c.Paths.Transcripts == "" {
		c.Paths.Transcripts = "storage/transcripts"
	}
	if c.Paths.Database == "" {
		c.Paths.Database = "storage/library.db"
	}
	if c.Whisper.BinaryPath == "" {
		c.Whisper.BinaryPath = "whisper-cli"
	}
	if c.Whisper.ModelPath == "" {
		return fmt.Errorf("whisper.model_path is required")
	}
	if c.Whisper.Language == "" {
		c.Whisper.Language = "en"
	}
	if c.Whisper.Threads == 0 {
		c.Whisper.Threads = 4
	}
	if c.YtDlp.BinaryPath == "" {
		c.YtDlp.BinaryPath = "yt-dlp"
	}
	if c.Gemini.Model == "" {
		c.Gemini.Model = "gemini-2.5-flash"
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Performance.MaxWorkers == 0 {
		c.Performance.MaxWorkers = 2
	}
	if c.Performance.JobQueueSize == 0 {
		c.Performance.JobQueueSize = 16
	}
	if c.Watcher.Enabled && c.Watcher.Dir == "" {
		c.Watcher.Dir = "storage/inbox"
	}
	return nil
}

// EnsureDirs creates the storage directories the stores expect.
func (c *Config) EnsureDirs() error {
	dirs := []string{c.Paths.Uploads, c.Paths.Processed, c.Paths.Transcripts, filepath.Dir(c.Paths.Database)}
	if c.Watcher.Enabled {
		dirs = append(dirs, c.Watcher.Dir)
	}
	for _, d := range dirs {
		if err := os.MkdirAll(d, 0755); err != nil {
			return fmt.Errorf("create dir %s: %w", d, err)
		}
	}
	return nil
}
