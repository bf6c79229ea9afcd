package sweep

import (
	"context"
	"errors"
	"time"

	"github.com/adhocore/gronx"

	"timelinedb/pkg/purge"
	"timelinedb/pkg/state/logger"
	"timelinedb/pkg/store/registry"
	"timelinedb/pkg/timeutil"
)

// Manager is the scheduling shell around the cleanup engine. Cron ticks and
// external Request calls feed a debounced trigger; the trigger defers one
// fan-out pass to the idle scheduler; the pass walks the logged-in instances
// in order and runs one cleanup per instance, isolating failures.
type Manager struct {
	cron    string
	reg     *registry.Registry
	runner  *purge.Runner
	sched   Scheduler
	trigger *Trigger
	ctx     context.Context
	cancel  context.CancelFunc
	ownQ    *IdleQueue
}

// NewManager wires the shell. sched may be nil, in which case a private
// IdleQueue is created and owned.
func NewManager(ctx context.Context, cron string, debounce time.Duration, reg *registry.Registry, runner *purge.Runner, sched Scheduler) (*Manager, error) {
	if cron != "" && !gronx.New().IsValid(cron) {
		return nil, errors.New("invalid sweep cron expression: " + cron)
	}
	ctx2, cancel := context.WithCancel(ctx)
	m := &Manager{
		cron:   cron,
		reg:    reg,
		runner: runner,
		sched:  sched,
		ctx:    ctx2,
		cancel: cancel,
	}
	if m.sched == nil {
		m.ownQ = NewIdleQueue(16)
		m.sched = m.ownQ
	}
	m.trigger = NewTrigger(debounce, func() {
		m.sched.Schedule(m.sweepAll)
	})
	return m, nil
}

// Start launches the cron loop. With an empty cron expression the manager
// only reacts to explicit Request / RunImmediate calls.
func (m *Manager) Start() {
	if m.cron == "" {
		logger.Info("sweep_cron_disabled")
		return
	}
	logger.Info("sweep_enabled", "cron", m.cron)
	go m.scheduleLoop()
}

func (m *Manager) scheduleLoop() {
	for {
		now := timeutil.Now()
		next, err := gronx.NextTickAfter(m.cron, now, false)
		if err != nil {
			logger.Error("sweep_nexttick_failed", "cron", m.cron, "error", err)
			select {
			case <-time.After(30 * time.Second):
			case <-m.ctx.Done():
				return
			}
			continue
		}

		wait := time.Until(next)
		if wait <= 0 {
			m.Request()
			select {
			case <-time.After(time.Second):
			case <-m.ctx.Done():
				return
			}
			continue
		}

		select {
		case <-time.After(wait):
			m.Request()
		case <-m.ctx.Done():
			return
		}
	}
}

// Request asks for a cleanup cycle over all instances. Bursts within the
// debounce window collapse into one deferred cycle.
func (m *Manager) Request() {
	m.trigger.Request()
}

// sweepAll fans out over the instance registry in order. One instance's
// failure does not stop the others; the next scheduled trigger is the
// retry mechanism.
func (m *Manager) sweepAll() {
	for _, instance := range m.reg.Instances() {
		if m.ctx.Err() != nil {
			return
		}
		if err := m.runner.Run(m.ctx, instance); err != nil {
			logger.Error("sweep_instance_failed", "instance", instance, "error", err)
		}
	}
}

// RunImmediate bypasses the debounce and idle deferral and sweeps every
// instance synchronously. Used by the admin trigger and tests. Returns the
// joined per-instance errors.
func (m *Manager) RunImmediate(ctx context.Context) error {
	var errs []error
	for _, instance := range m.reg.Instances() {
		if err := m.runner.Run(ctx, instance); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m *Manager) Stop() {
	m.trigger.Stop()
	m.cancel()
	if m.ownQ != nil {
		m.ownQ.Close()
	}
}
