package config

import (
	"fmt"

	"github.com/adhocore/gronx"
)

func Validate(cfg *Config) error {
	if cfg.Server.Port < 0 || cfg.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d", cfg.Server.Port)
	}
	if cfg.Sweep.Enabled && cfg.Sweep.Cron != "" && !gronx.New().IsValid(cfg.Sweep.Cron) {
		return fmt.Errorf("invalid sweep cron expression: %q", cfg.Sweep.Cron)
	}
	if cfg.Sweep.Window.Duration() < 0 {
		return fmt.Errorf("sweep window must not be negative")
	}
	if cfg.Sweep.BatchSize < 0 {
		return fmt.Errorf("sweep batch_size must not be negative")
	}
	if cfg.Sweep.PagesPerSecond < 0 {
		return fmt.Errorf("sweep pages_per_second must not be negative")
	}
	seen := make(map[string]struct{}, len(cfg.Instances))
	for _, inst := range cfg.Instances {
		if inst == "" {
			return fmt.Errorf("empty instance name")
		}
		if _, dup := seen[inst]; dup {
			return fmt.Errorf("duplicate instance: %s", inst)
		}
		seen[inst] = struct{}{}
	}
	return nil
}
