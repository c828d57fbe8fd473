package repository

import "context"

// PoolManager is the elastically scaled worker pool's control channel.
type PoolManager interface {
	// RequestSelfTermination asks the pool to remove this worker. Fire-and-forget.
	RequestSelfTermination(ctx context.Context, namespace, workerID string) error
}
