package scheduler

import (
	"context"
	"log/slog"

	"firstlight/internal/types"
)

// DefaultTriggerSpecs returns the built-in warmup cadence: one sweep as
// each upstream model run becomes available (the 00/06/12/18Z cycles
// plus publication lag) and one ahead of dawn on the Australian east
// coast, where every catalogued point sits.
func DefaultTriggerSpecs() []types.TriggerSpec {
	return []types.TriggerSpec{
		{Hour: 4, Minute: 10, Label: "model-00z"},
		{Hour: 10, Minute: 10, Label: "model-06z"},
		{Hour: 16, Minute: 10, Label: "model-12z"},
		{Hour: 22, Minute: 10, Label: "model-18z"},
		{Hour: 3, Minute: 30, TZ: "Australia/Sydney", Label: "pre-dawn"},
	}
}

// CacheWarmer is the slice of the forecast service the warmup runner
// drives: prime every catalogued grid cell, then drop entries the sweep
// aged out.
type CacheWarmer interface {
	Warmup(ctx context.Context, label string) *types.WarmupReport
	SweepCache() int
}

// WarmupRunner wires warmup triggers to the forecast service. A failed
// sweep is logged and swallowed; a bad run must never take the
// scheduler down with it.
type WarmupRunner struct {
	warmer    CacheWarmer
	scheduler types.Scheduler
	logger    *slog.Logger
}

// NewWarmupRunner builds a runner. A nil logger falls back to
// slog.Default().
func NewWarmupRunner(warmer CacheWarmer, scheduler types.Scheduler, logger *slog.Logger) *WarmupRunner {
	if logger == nil {
		logger = slog.Default()
	}
	return &WarmupRunner{
		warmer:    warmer,
		scheduler: scheduler,
		logger:    logger,
	}
}

// Register installs the given triggers, or DefaultTriggerSpecs when
// specs is empty. Call once at startup, before the scheduler starts.
func (r *WarmupRunner) Register(specs []types.TriggerSpec) error {
	if len(specs) == 0 {
		specs = DefaultTriggerSpecs()
	}
	return r.scheduler.Schedule(specs, r.Run)
}

// Run executes one warmup sweep followed by a cache sweep. It is the
// job body behind every registered trigger and is also safe to invoke
// directly; it never reports an error to the caller.
func (r *WarmupRunner) Run(ctx context.Context, label string) {
	report := r.warmer.Warmup(ctx, label)
	swept := r.warmer.SweepCache()
	r.logger.InfoContext(ctx, "warmup trigger handled",
		"label", label,
		"failed", report.Failed,
		"duration_ms", report.DurationMS,
		"swept", swept,
	)
}
