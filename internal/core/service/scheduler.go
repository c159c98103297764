package service

import (
	"context"
	"time"

	"github.com/exportguard/exportguardd/internal/core/domain"
	"github.com/exportguard/exportguardd/internal/core/port"
	"github.com/exportguard/exportguardd/internal/events"

	"go.uber.org/zap"
)

type CycleRunner interface {
	RunCycle(ctx context.Context) (domain.CycleResult, error)
}

type SafetyChecker interface {
	Check(ctx context.Context) domain.SafetyResult
}

// Scheduler drives the control loop: run one cycle to completion, then
// sleep the full interval, forever. Exactly one cycle is ever in flight;
// there is no catch-up and no backoff, the interval floor already
// rate-limits device load.
type Scheduler struct {
	Interval  time.Duration
	Window    *domain.ScheduleWindow
	Control   CycleRunner
	Safety    SafetyChecker
	Status    *events.StatusStore
	Publisher port.TelemetryPublisher
	Logger    *zap.Logger

	// Now is swappable for tests; defaults to time.Now.
	Now func() time.Time
}

// Run loops until ctx is cancelled. The only error it returns besides
// ctx.Err() is a fatal configuration error surfaced by the first cycles
// (controlled serial missing from telemetry); everything transient has
// already been absorbed at the cycle boundary.
func (s *Scheduler) Run(ctx context.Context) error {
	timer := time.NewTimer(0)
	if !timer.Stop() {
		<-timer.C
	}
	for {
		if s.windowAllows() {
			if err := s.cycle(ctx); err != nil {
				return err
			}
		} else {
			s.Logger.Debug("outside active window, skipping cycle")
		}
		timer.Reset(s.Interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

func (s *Scheduler) windowAllows() bool {
	if s.Window == nil {
		return true
	}
	return s.Window.Contains(s.now().Hour())
}

func (s *Scheduler) cycle(ctx context.Context) error {
	result, err := s.Control.RunCycle(ctx)
	if err != nil {
		return err
	}
	var safety *domain.SafetyResult
	if result.Outcome == domain.OutcomeDeferredToSafety {
		r := s.Safety.Check(ctx)
		safety = &r
	}
	status := events.NewCycleStatus(s.now(), result, safety)
	if s.Status != nil {
		s.Status.Set(status)
	}
	if s.Publisher != nil {
		if err := s.Publisher.PublishCycle(status); err != nil {
			s.Logger.Debug("telemetry publish failed", zap.Error(err))
		}
	}
	return nil
}

func (s *Scheduler) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}
