package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/user/classifier-service/internal/repository"
	"github.com/user/classifier-service/pkg/metrics"
)

// HeartbeatMonitor asks the pool to replace this worker when no job
// completed during a whole interval. An idle worker is replaced the same way
// as a stuck one.
type HeartbeatMonitor struct {
	state    *RunState
	pool     repository.PoolManager
	interval time.Duration

	// onTerminate runs once after the termination request, typically to cancel the root context.
	onTerminate func()
}

// NewHeartbeatMonitor creates a monitor ticking every interval.
func NewHeartbeatMonitor(state *RunState, pool repository.PoolManager, interval time.Duration, onTerminate func()) *HeartbeatMonitor {
	return &HeartbeatMonitor{state: state, pool: pool, interval: interval, onTerminate: onTerminate}
}

// Tick applies the heartbeat rule once and reports whether the worker was alive.
// At most one termination request is ever sent.
func (h *HeartbeatMonitor) Tick(ctx context.Context) bool {
	if h.state.consumeBeat() {
		metrics.HeartbeatTicksTotal.WithLabelValues("alive").Inc()
		slog.Debug("Heartbeat ok")
		return true
	}
	metrics.HeartbeatTicksTotal.WithLabelValues("stalled").Inc()

	if !h.state.markTerminating() {
		return false
	}

	slog.Warn("No job completed during heartbeat interval, requesting self-termination",
		"namespace", h.state.Namespace, "worker_id", h.state.WorkerID, "interval", h.interval.String())
	metrics.SelfTerminationsTotal.Inc()
	if err := h.pool.RequestSelfTermination(ctx, h.state.Namespace, h.state.WorkerID); err != nil {
		slog.Error("Self-termination request failed", "error", err)
	}
	if h.onTerminate != nil {
		h.onTerminate()
	}
	return false
}

// Run ticks until ctx is cancelled.
func (h *HeartbeatMonitor) Run(ctx context.Context) {
	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			h.Tick(ctx)
		}
	}
}
