package app

import (
	"context"
	"fmt"
	"net/http"
	"path/filepath"

	"timelinedb/internal/sweep"
	"timelinedb/pkg/config"
	"timelinedb/pkg/purge"
	"timelinedb/pkg/state/logger"
	"timelinedb/pkg/store/registry"
	"timelinedb/pkg/telemetry"
)

// App owns the instance stores, the sweep manager and the admin listener.
type App struct {
	cfg     *config.Config
	reg     *registry.Registry
	manager *sweep.Manager
	srv     *http.Server
}

func New(ctx context.Context, cfg *config.Config) (*App, error) {
	reg := registry.New(cfg.Server.DataDir)
	for _, instance := range cfg.Instances {
		if err := reg.Add(instance); err != nil {
			_ = reg.Close()
			return nil, err
		}
	}

	runner := purge.NewRunner(reg, cfg.Sweep.Window.Duration(), cfg.Sweep.BatchSize, cfg.Sweep.PagesPerSecond)

	cron := ""
	if cfg.Sweep.Enabled {
		cron = cfg.Sweep.Cron
	}
	manager, err := sweep.NewManager(ctx, cron, cfg.Sweep.Debounce.Duration(), reg, runner, nil)
	if err != nil {
		_ = reg.Close()
		return nil, err
	}

	if cfg.Telemetry.Enabled {
		dir := cfg.Telemetry.Dir
		if dir == "" {
			dir = filepath.Join(cfg.Server.DataDir, "telemetry")
		}
		telemetry.Init(dir, int(cfg.Telemetry.BufferSize.Int64()), cfg.Telemetry.QueueCapacity,
			cfg.Telemetry.FlushInterval.Duration(), cfg.Telemetry.MaxFileSize.Int64())
	}

	a := &App{cfg: cfg, reg: reg, manager: manager}
	a.srv = &http.Server{Addr: cfg.Addr(), Handler: a.routes()}
	return a, nil
}

// Start launches the sweep scheduler and the admin listener. Blocks until
// the listener exits.
func (a *App) Start() error {
	a.manager.Start()
	logger.Info("admin_listening", "addr", a.srv.Addr)
	if err := a.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("admin listener: %w", err)
	}
	return nil
}

func (a *App) Shutdown(ctx context.Context) error {
	a.manager.Stop()
	err := a.srv.Shutdown(ctx)
	telemetry.Close()
	if cerr := a.reg.Close(); err == nil {
		err = cerr
	}
	return err
}

// Manager exposes the sweep shell for the admin routes.
func (a *App) Manager() *sweep.Manager { return a.manager }
