package usecase

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/user/classifier-service/internal/entity"
	"github.com/user/classifier-service/internal/repository"
)

// DownstreamNotifier hands classified products to the next pipeline stage.
type DownstreamNotifier struct {
	queue     repository.QueueRepository
	queueName string
}

// NewDownstreamNotifier creates a notifier pushing to queueName.
func NewDownstreamNotifier(queue repository.QueueRepository, queueName string) *DownstreamNotifier {
	return &DownstreamNotifier{queue: queue, queueName: queueName}
}

// Notify pushes one summary record. The caller does not wait for the consumer.
func (n *DownstreamNotifier) Notify(ctx context.Context, summary entity.Summary) error {
	payload, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("marshal summary for %s: %w", summary.ProductID, err)
	}
	if err := n.queue.Push(ctx, n.queueName, payload); err != nil {
		return fmt.Errorf("push summary for %s: %w", summary.ProductID, err)
	}
	return nil
}
