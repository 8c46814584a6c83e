// Package scheduler fires the cache warmup sweeps on a wall-clock cadence.
//
// Triggers are declared as types.TriggerSpec values (daily HH:MM firing
// times, optionally zone-qualified) and registered against the generic
// types.Scheduler interface. CronScheduler is the production
// implementation, backed by robfig/cron; tests substitute hand-rolled
// fakes. The default trigger set tracks the upstream model publication
// cadence so the first live request after a model run lands on a warm
// cache.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"firstlight/internal/types"
)

// CronScheduler dispatches registered trigger functions at their
// wall-clock firing times. Unqualified triggers fire in UTC. The zero
// value is not usable; construct with NewCronScheduler.
type CronScheduler struct {
	cron   *cron.Cron
	logger *slog.Logger

	// base is handed to every fired job and cancelled once Stop gives
	// up waiting, so overrunning jobs see the shutdown.
	base   context.Context
	cancel context.CancelFunc
}

// NewCronScheduler builds a scheduler. A nil logger falls back to
// slog.Default().
func NewCronScheduler(logger *slog.Logger) *CronScheduler {
	if logger == nil {
		logger = slog.Default()
	}
	adapter := cronLogger{logger: logger}
	base, cancel := context.WithCancel(context.Background())
	return &CronScheduler{
		cron: cron.New(
			cron.WithLocation(time.UTC),
			cron.WithLogger(adapter),
			cron.WithChain(cron.Recover(adapter)),
		),
		logger: logger,
		base:   base,
		cancel: cancel,
	}
}

// Schedule implements types.Scheduler. Every spec becomes one cron
// entry. An invalid spec or a duplicate label rejects the whole batch
// before anything is registered, so a typo cannot silently drop a
// single trigger.
func (s *CronScheduler) Schedule(specs []types.TriggerSpec, fn func(ctx context.Context, label string)) error {
	if err := types.ValidateTriggerSpecs(specs); err != nil {
		return err
	}
	for _, spec := range specs {
		label := spec.Label
		if _, err := s.cron.AddFunc(cronExpr(spec), func() {
			fn(s.base, label)
		}); err != nil {
			return fmt.Errorf("registering trigger %q: %w", spec.Label, err)
		}
		s.logger.Info("warmup trigger registered", "trigger", spec.String())
	}
	return nil
}

// Start implements types.Scheduler. It returns immediately; dispatching
// happens on the cron goroutine.
func (s *CronScheduler) Start() {
	s.cron.Start()
}

// Stop implements types.Scheduler. Dispatching halts at once; Stop then
// waits for in-flight jobs to drain or for ctx to expire, whichever
// comes first.
func (s *CronScheduler) Stop(ctx context.Context) error {
	drained := s.cron.Stop()
	defer s.cancel()
	select {
	case <-drained.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// cronExpr renders a TriggerSpec as a five-field cron line, zone-prefixed
// when the spec names one.
func cronExpr(spec types.TriggerSpec) string {
	expr := fmt.Sprintf("%d %d * * *", spec.Minute, spec.Hour)
	if spec.TZ != "" {
		expr = "CRON_TZ=" + spec.TZ + " " + expr
	}
	return expr
}

// cronLogger adapts slog to the logging interface robfig/cron expects.
// Cron's scheduling chatter lands at debug level; only real errors
// surface at error level.
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	args := append([]interface{}{"error", err}, keysAndValues...)
	l.logger.Error(msg, args...)
}
