package purge

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"timelinedb/pkg/metrics"
	"timelinedb/pkg/state/logger"
	"timelinedb/pkg/store/db/storedb"
	"timelinedb/pkg/store/registry"
	"timelinedb/pkg/telemetry"
	"timelinedb/pkg/timeutil"
)

const (
	DefaultWindow   = 14 * 24 * time.Hour
	DefaultPageSize = 20
)

// Runner executes cleanup passes. One pass covers one instance: a single
// read-write transaction spanning all eight stores, one cutoff, four rules.
type Runner struct {
	reg      *registry.Registry
	window   time.Duration
	pageSize int
	limiter  *rate.Limiter
}

func NewRunner(reg *registry.Registry, window time.Duration, pageSize int, pagesPerSecond float64) *Runner {
	if window <= 0 {
		window = DefaultWindow
	}
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	var limiter *rate.Limiter
	if pagesPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(pagesPerSecond), 1)
	}
	return &Runner{reg: reg, window: window, pageSize: pageSize, limiter: limiter}
}

// Run performs one cleanup pass over one instance. The transaction either
// commits in full or aborts with nothing applied; an abort is safe to retry
// on the next scheduled trigger.
func (r *Runner) Run(ctx context.Context, instance string) error {
	store, err := r.reg.Get(instance)
	if err != nil {
		metrics.SweepRuns.WithLabelValues("unavailable").Inc()
		return err
	}

	runID := uuid.NewString()
	cutoff := timeutil.NowMillis() - r.window.Milliseconds()
	logger.Info("sweep_run_start", "run_id", runID, "instance", instance, "cutoff", cutoff)
	tr := telemetry.Track("sweep")
	defer tr.Finish()
	start := timeutil.Now()

	var p *pass
	err = store.Update(func(tx *storedb.Txn) error {
		p = newPass(ctx, tx, cutoff, r.pageSize, r.limiter)
		return p.run()
	})
	if err != nil {
		metrics.SweepRuns.WithLabelValues("aborted").Inc()
		logger.Error("sweep_run_aborted", "run_id", runID, "instance", instance, "error", err)
		return fmt.Errorf("sweep %s: transaction aborted: %w", instance, err)
	}
	tr.Mark("commit")

	elapsed := timeutil.Now().Sub(start)
	metrics.SweepRuns.WithLabelValues("ok").Inc()
	metrics.SweepDuration.Observe(elapsed.Seconds())
	total := 0
	for store, n := range p.deleted {
		metrics.SweepDeleted.WithLabelValues(store).Add(float64(n))
		total += n
	}
	logger.Info("sweep_run_done",
		"run_id", runID,
		"instance", instance,
		"deleted", total,
		"statuses", p.deleted[storeStatuses],
		"notifications", p.deleted[storeNotifications],
		"accounts", p.deleted[storeAccounts],
		"relationships", p.deleted[storeRelationships],
		"elapsed_ms", elapsed.Milliseconds(),
	)
	return nil
}
