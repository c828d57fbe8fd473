package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/user/classifier-service/internal/entity"
)

// PoolManagerImpl implements repository.PoolManager by queueing termination
// requests for the pool controller, which deletes the named worker.
type PoolManagerImpl struct {
	client *redis.Client
	queue  string
	now    func() time.Time
}

// NewPoolManager creates a PoolManagerImpl that writes to the given queue.
func NewPoolManager(client *redis.Client, queue string) *PoolManagerImpl {
	return &PoolManagerImpl{client: client, queue: queue, now: time.Now}
}

// RequestSelfTermination pushes one request and returns without waiting for the controller.
func (p *PoolManagerImpl) RequestSelfTermination(ctx context.Context, namespace, workerID string) error {
	payload, err := json.Marshal(entity.TerminationRequest{
		Namespace:   namespace,
		WorkerID:    workerID,
		RequestedAt: p.now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("marshal termination request: %w", err)
	}
	if err := p.client.RPush(ctx, p.queue, payload).Err(); err != nil {
		return fmt.Errorf("push termination request for %s/%s: %w", namespace, workerID, err)
	}
	return nil
}
