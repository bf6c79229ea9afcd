package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"gopkg.in/yaml.v3"
)

// Config is the main configuration struct.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Logging   LoggingConfig   `yaml:"logging"`
	Sweep     SweepConfig     `yaml:"sweep"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Instances []string        `yaml:"instances"`
}

// ServerConfig holds the admin HTTP listener and data directory.
type ServerConfig struct {
	Address string `yaml:"address"`
	Port    int    `yaml:"port"`
	DataDir string `yaml:"data_dir"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// SweepConfig holds configuration for the eviction engine and its
// scheduling shell.
type SweepConfig struct {
	Enabled bool   `yaml:"enabled"`
	Cron    string `yaml:"cron"`
	// Window is the retention window; records with timestamp <= now-window
	// are purged together with their dependents.
	Window Duration `yaml:"window"`
	// BatchSize bounds one expired-key index page.
	BatchSize int `yaml:"batch_size"`
	// Debounce collapses trigger bursts into one deferred run.
	Debounce Duration `yaml:"debounce"`
	// PagesPerSecond paces index page fetches; 0 disables pacing.
	PagesPerSecond float64 `yaml:"pages_per_second"`
}

// TelemetryConfig controls the async trace writer.
type TelemetryConfig struct {
	Enabled       bool      `yaml:"enabled"`
	Dir           string    `yaml:"dir"`
	BufferSize    SizeBytes `yaml:"buffer_size"`
	QueueCapacity int       `yaml:"queue_capacity"`
	FlushInterval Duration  `yaml:"flush_interval"`
	MaxFileSize   SizeBytes `yaml:"max_file_size"`
}

// SizeBytes represents a number of bytes, unmarshaled from human-friendly
// strings like "64MB" or plain integers.
type SizeBytes int64

func (s *SizeBytes) UnmarshalYAML(node *yaml.Node) error {
	if node == nil {
		*s = 0
		return nil
	}
	raw := strings.TrimSpace(node.Value)
	if raw == "" {
		*s = 0
		return nil
	}
	if v, err := humanize.ParseBytes(raw); err == nil {
		*s = SizeBytes(v)
		return nil
	}
	if i, err := strconv.ParseInt(raw, 10, 64); err == nil {
		*s = SizeBytes(i)
		return nil
	}
	return fmt.Errorf("invalid size value: %q", node.Value)
}

func (s SizeBytes) Int64() int64 { return int64(s) }

// Duration is a wrapper around time.Duration that supports YAML parsing
// from strings like "5m" or plain numbers (interpreted as seconds).
type Duration time.Duration

func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	if node == nil {
		*d = Duration(0)
		return nil
	}
	raw := strings.TrimSpace(node.Value)
	if raw == "" {
		*d = Duration(0)
		return nil
	}
	if td, err := time.ParseDuration(raw); err == nil {
		*d = Duration(td)
		return nil
	}
	// allow numeric seconds
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		*d = Duration(time.Duration(f * float64(time.Second)))
		return nil
	}
	return fmt.Errorf("invalid duration value: %q", node.Value)
}

func (d Duration) Duration() time.Duration { return time.Duration(d) }
