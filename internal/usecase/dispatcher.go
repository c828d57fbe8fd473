package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/user/classifier-service/internal/entity"
	"github.com/user/classifier-service/internal/repository"
	"github.com/user/classifier-service/pkg/metrics"
)

const popBackoff = time.Second

// Dispatcher pulls jobs off the intake queue one at a time and hands them to
// the classifier. A job is removed from the queue before it runs, so a crash
// mid-job loses it.
type Dispatcher struct {
	queue      repository.QueueRepository
	queueName  string
	classifier Classifier
	state      *RunState
	backoff    time.Duration
}

// NewDispatcher creates a dispatcher consuming queueName.
func NewDispatcher(queue repository.QueueRepository, queueName string, classifier Classifier, state *RunState) *Dispatcher {
	return &Dispatcher{
		queue:      queue,
		queueName:  queueName,
		classifier: classifier,
		state:      state,
		backoff:    popBackoff,
	}
}

// Run processes jobs until ctx is cancelled. Failures of a single job never stop the loop.
func (d *Dispatcher) Run(ctx context.Context) error {
	slog.Info("Dispatcher started", "queue", d.queueName)
	for {
		if ctx.Err() != nil {
			slog.Info("Dispatcher stopped")
			return nil
		}
		if err := d.ProcessNext(ctx); err != nil {
			if ctx.Err() != nil {
				continue
			}
			slog.Error("Failed to pop job", "queue", d.queueName, "error", err)
			if errors.Is(err, repository.ErrQueueClosed) {
				return err
			}
			select {
			case <-ctx.Done():
			case <-time.After(d.backoff):
			}
		}
	}
}

// ProcessNext blocks for one job and processes it. Only a failed pop is
// returned; job failures are logged and count as completed work.
func (d *Dispatcher) ProcessNext(ctx context.Context) error {
	payload, err := d.queue.Pop(ctx, d.queueName)
	if err != nil {
		return fmt.Errorf("pop from %s: %w", d.queueName, err)
	}
	if size, err := d.queue.Size(ctx, d.queueName); err == nil {
		metrics.QueueLength.Set(float64(size))
	}

	d.handle(ctx, payload)
	d.state.Beat()
	return nil
}

func (d *Dispatcher) handle(ctx context.Context, payload []byte) {
	defer func() {
		if r := recover(); r != nil {
			metrics.JobsTotal.WithLabelValues("panic").Inc()
			slog.Error("Recovered from panic while classifying", "panic", r)
		}
	}()

	job, err := entity.DecodeJob(payload)
	if err != nil {
		metrics.JobsTotal.WithLabelValues("invalid").Inc()
		slog.Error("Dropping malformed job", "error", err)
		return
	}

	if err := d.classifier.Classify(ctx, job); err != nil {
		slog.Error("Classification failed", "product_id", job.ProductID, "error", err)
	}
}
