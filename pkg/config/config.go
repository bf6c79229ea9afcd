package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Defaults for the sweep engine and its shell.
const (
	defaultSweepCron      = "0 * * * *" // hourly
	defaultSweepWindow    = 14 * 24 * time.Hour
	defaultSweepBatch     = 20
	defaultSweepDebounce  = 5 * time.Minute
	defaultTelemetryBuf   = 64 * 1024
	defaultTelemetryQueue = 256
	defaultTelemetryFlush = 2 * time.Second
	defaultTelemetryFile  = 40 * 1024 * 1024
)

// Addr returns the admin HTTP address as host:port.
func (c *Config) Addr() string {
	addr := c.Server.Address
	if addr == "" {
		addr = "127.0.0.1"
	}
	port := c.Server.Port
	if port == 0 {
		port = 8080
	}
	return fmt.Sprintf("%s:%d", addr, port)
}

// Load reads the config file (optional), applies defaults and environment
// overrides, and validates the result.
func Load(path string) (*Config, error) {
	var cfg Config
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				return nil, fmt.Errorf("config file not found: %s", path)
			}
			return nil, err
		}
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}
	applyDefaults(&cfg)
	applyEnv(&cfg)
	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Server.DataDir == "" {
		cfg.Server.DataDir = "./data"
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Sweep.Cron == "" {
		cfg.Sweep.Cron = defaultSweepCron
	}
	if cfg.Sweep.Window.Duration() == 0 {
		cfg.Sweep.Window = Duration(defaultSweepWindow)
	}
	if cfg.Sweep.BatchSize == 0 {
		cfg.Sweep.BatchSize = defaultSweepBatch
	}
	if cfg.Sweep.Debounce.Duration() == 0 {
		cfg.Sweep.Debounce = Duration(defaultSweepDebounce)
	}
	if cfg.Telemetry.BufferSize == 0 {
		cfg.Telemetry.BufferSize = defaultTelemetryBuf
	}
	if cfg.Telemetry.QueueCapacity == 0 {
		cfg.Telemetry.QueueCapacity = defaultTelemetryQueue
	}
	if cfg.Telemetry.FlushInterval.Duration() == 0 {
		cfg.Telemetry.FlushInterval = Duration(defaultTelemetryFlush)
	}
	if cfg.Telemetry.MaxFileSize == 0 {
		cfg.Telemetry.MaxFileSize = defaultTelemetryFile
	}
}

// applyEnv overlays TIMELINEDB_* environment variables on the loaded file.
func applyEnv(cfg *Config) {
	if v := os.Getenv("TIMELINEDB_ADDRESS"); v != "" {
		cfg.Server.Address = v
	}
	if v := os.Getenv("TIMELINEDB_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = p
		}
	}
	if v := os.Getenv("TIMELINEDB_DATA_DIR"); v != "" {
		cfg.Server.DataDir = v
	}
	if v := os.Getenv("TIMELINEDB_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("TIMELINEDB_SWEEP_ENABLED"); v != "" {
		cfg.Sweep.Enabled = v == "true" || v == "1"
	}
	if v := os.Getenv("TIMELINEDB_SWEEP_CRON"); v != "" {
		cfg.Sweep.Cron = v
	}
	if v := os.Getenv("TIMELINEDB_SWEEP_WINDOW"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Sweep.Window = Duration(d)
		}
	}
	if v := os.Getenv("TIMELINEDB_INSTANCES"); v != "" {
		cfg.Instances = nil
		for _, inst := range strings.Split(v, ",") {
			if inst = strings.TrimSpace(inst); inst != "" {
				cfg.Instances = append(cfg.Instances, inst)
			}
		}
	}
}
