package repository

import (
	"context"
	"time"
)

// SubmissionRepository deduplicates product jobs submitted to the intake queue.
type SubmissionRepository interface {
	// MarkSubmitted marks a product as submitted with a specific expiry time.
	MarkSubmitted(ctx context.Context, productID string, expiry time.Duration) error
	// IsSubmitted checks if a product has been submitted recently.
	IsSubmitted(ctx context.Context, productID string) (bool, error)
	// RemoveSubmitted clears the marker, used for forced resubmission.
	RemoveSubmitted(ctx context.Context, productID string) error
}
