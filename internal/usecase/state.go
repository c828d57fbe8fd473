package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/user/classifier-service/internal/repository"
)

// RunState is the state shared by one worker lifetime: its identity, the
// version stamp read at startup, and the heartbeat flag.
type RunState struct {
	WorkerID  string
	Namespace string
	// VersionID is stamped on every entity written during this lifetime. Never changes after startup.
	VersionID string

	heartbeat   atomic.Bool
	terminating atomic.Bool
}

// NewRunState builds the state for one worker lifetime.
func NewRunState(workerID, namespace, versionID string) *RunState {
	return &RunState{WorkerID: workerID, Namespace: namespace, VersionID: versionID}
}

// LoadRunState reads the version marker once. A failure here is fatal for the
// worker: it asks the pool to replace it and returns the error.
func LoadRunState(ctx context.Context, versions repository.VersionRepository, pool repository.PoolManager, workerID, namespace string) (*RunState, error) {
	versionID, err := versions.Latest(ctx)
	if err == nil && versionID == "" {
		err = repository.ErrNotFound
	}
	if err != nil {
		slog.Error("Failed to read version marker, requesting self-termination", "error", err)
		if termErr := pool.RequestSelfTermination(ctx, namespace, workerID); termErr != nil {
			slog.Error("Self-termination request failed", "error", termErr)
		}
		return nil, fmt.Errorf("read version marker: %w", err)
	}
	return NewRunState(workerID, namespace, versionID), nil
}

// Beat records that a job finished.
func (s *RunState) Beat() {
	s.heartbeat.Store(true)
}

// Alive reports the current heartbeat flag.
func (s *RunState) Alive() bool {
	return s.heartbeat.Load()
}

// consumeBeat clears the flag and reports whether it was set.
func (s *RunState) consumeBeat() bool {
	return s.heartbeat.Swap(false)
}

// markTerminating latches termination; only the first caller gets true.
func (s *RunState) markTerminating() bool {
	return s.terminating.CompareAndSwap(false, true)
}

// Terminating reports whether self-termination has been requested.
func (s *RunState) Terminating() bool {
	return s.terminating.Load()
}
