package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/user/classifier-service/internal/entity"
	"github.com/user/classifier-service/internal/repository"
)

const deduplicationExpiry = 48 * time.Hour

// JobSubmitter defines the interface for enqueueing products for classification.
type JobSubmitter interface {
	Submit(ctx context.Context, job *entity.Job, force bool) error
	Status(ctx context.Context, productID string) (string, error)
}

type jobSubmitterUseCase struct {
	submissionRepo repository.SubmissionRepository
	queueRepo      repository.QueueRepository
	queueName      string
}

// NewJobSubmitter creates a JobSubmitter pushing onto queueName.
func NewJobSubmitter(submissionRepo repository.SubmissionRepository, queueRepo repository.QueueRepository, queueName string) JobSubmitter {
	return &jobSubmitterUseCase{
		submissionRepo: submissionRepo,
		queueRepo:      queueRepo,
		queueName:      queueName,
	}
}

func (uc *jobSubmitterUseCase) Submit(ctx context.Context, job *entity.Job, force bool) error {
	if err := job.Validate(); err != nil {
		return err
	}

	if force {
		if err := uc.submissionRepo.RemoveSubmitted(ctx, job.ProductID); err != nil {
			slog.Warn("Failed to clear submission marker for forced job", "product_id", job.ProductID, "error", err)
		}
	} else {
		submitted, err := uc.submissionRepo.IsSubmitted(ctx, job.ProductID)
		if err != nil {
			return err
		}
		if submitted {
			return ErrProductRecentlySubmitted
		}
	}

	payload, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshal job %s: %w", job.ProductID, err)
	}
	if err := uc.queueRepo.Push(ctx, uc.queueName, payload); err != nil {
		return fmt.Errorf("enqueue job %s: %w", job.ProductID, err)
	}

	if err := uc.submissionRepo.MarkSubmitted(ctx, job.ProductID, deduplicationExpiry); err != nil {
		// The job is queued; at worst a duplicate submission slips through.
		slog.Error("Failed to mark product as submitted after queueing", "product_id", job.ProductID, "error", err)
	}
	return nil
}

// Status reports "submitted" for a product queued within the dedupe window,
// whether or not it has been classified since, else "not_found".
func (uc *jobSubmitterUseCase) Status(ctx context.Context, productID string) (string, error) {
	submitted, err := uc.submissionRepo.IsSubmitted(ctx, productID)
	if err != nil {
		return "", err
	}
	if submitted {
		return "submitted", nil
	}
	return "not_found", nil
}
