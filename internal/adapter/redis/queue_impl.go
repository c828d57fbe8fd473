package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/user/classifier-service/internal/repository"
)

// defaultPollTimeout bounds a single BLPOP so Pop can notice cancellation.
const defaultPollTimeout = 5 * time.Second

// QueueRepoImpl implements repository.QueueRepository on Redis lists.
// Producers RPUSH and consumers BLPOP, so each list is FIFO.
type QueueRepoImpl struct {
	client      *redis.Client
	pollTimeout time.Duration
}

// NewQueueRepo creates a new instance of QueueRepoImpl.
func NewQueueRepo(client *redis.Client) *QueueRepoImpl {
	return &QueueRepoImpl{client: client, pollTimeout: defaultPollTimeout}
}

// Push appends a payload to the tail of the list.
func (r *QueueRepoImpl) Push(ctx context.Context, queue string, payload []byte) error {
	return r.client.RPush(ctx, queue, payload).Err()
}

// Pop blocks until a payload arrives or ctx is done. The payload is removed
// from Redis as soon as BLPOP returns it, so a crash afterwards loses it.
func (r *QueueRepoImpl) Pop(ctx context.Context, queue string) ([]byte, error) {
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		res, err := r.client.BLPop(ctx, r.pollTimeout, queue).Result()
		if errors.Is(err, redis.Nil) {
			// Poll window elapsed with an empty list.
			continue
		}
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			if errors.Is(err, redis.ErrClosed) {
				return nil, fmt.Errorf("%w: %v", repository.ErrQueueClosed, err)
			}
			return nil, fmt.Errorf("blpop %s: %w", queue, err)
		}
		// BLPOP replies with [key, value].
		if len(res) != 2 {
			return nil, fmt.Errorf("blpop %s: unexpected reply of %d elements", queue, len(res))
		}
		return []byte(res[1]), nil
	}
}

// Size returns the current number of items in the list.
func (r *QueueRepoImpl) Size(ctx context.Context, queue string) (int64, error) {
	return r.client.LLen(ctx, queue).Result()
}
