package worker

import (
	"context"
	"sync/atomic"
	"time"

	"churnguard/internal/domain/service/predict"
)

// CanaryWorker periodically scores the canary customer so a broken model or
// artifact shows up in readiness and metrics before a real request hits it.
type CanaryWorker struct {
	service  *predict.Service
	interval time.Duration

	healthy atomic.Bool
}

func NewCanaryWorker(service *predict.Service) *CanaryWorker {
	w := &CanaryWorker{
		service:  service,
		interval: time.Minute,
	}
	w.healthy.Store(true)

	return w
}

func (w *CanaryWorker) WithInterval(interval time.Duration) *CanaryWorker {
	if interval > 0 {
		w.interval = interval
	}
	return w
}

// Healthy reports the result of the last canary run. Safe to call from the
// readiness probe while Run ticks.
func (w *CanaryWorker) Healthy() bool {
	return w.healthy.Load()
}

// Run checks once immediately, then on every tick until the context ends.
func (w *CanaryWorker) Run(ctx context.Context) error {
	logger(ctx).Info("canary worker started", "interval", w.interval.String())

	w.check(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger(ctx).Info("canary worker stopped")
			return ctx.Err()
		case <-ticker.C:
			w.check(ctx)
		}
	}
}

func (w *CanaryWorker) check(ctx context.Context) {
	if err := w.service.HealthCheck(ctx); err != nil {
		w.healthy.Store(false)
		logger(ctx).Error("canary prediction failed", "error", err)
		return
	}

	if !w.healthy.Swap(true) {
		logger(ctx).Info("canary prediction recovered")
	}
}
