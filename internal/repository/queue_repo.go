package repository

import "context"

// QueueRepository defines a named FIFO queue of opaque payloads.
type QueueRepository interface {
	// Pop removes and returns the oldest payload, blocking until one is available
	// or ctx is done.
	Pop(ctx context.Context, queue string) ([]byte, error)
	// Push appends a payload to the end of the queue.
	Push(ctx context.Context, queue string, payload []byte) error
	// Size returns the current number of items in the queue.
	Size(ctx context.Context, queue string) (int64, error)
}
