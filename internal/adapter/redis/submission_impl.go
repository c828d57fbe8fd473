package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/user/classifier-service/pkg/utils"
)

const submittedPrefix = "classify:submitted:"

// SubmissionRepoImpl implements repository.SubmissionRepository with expiring keys.
type SubmissionRepoImpl struct {
	client *redis.Client
}

// NewSubmissionRepo creates a new instance of SubmissionRepoImpl.
func NewSubmissionRepo(client *redis.Client) *SubmissionRepoImpl {
	return &SubmissionRepoImpl{client: client}
}

func (r *SubmissionRepoImpl) key(productID string) string {
	return fmt.Sprintf("%s%s", submittedPrefix, utils.HashKey(productID))
}

// MarkSubmitted sets the product's marker with an expiry.
func (r *SubmissionRepoImpl) MarkSubmitted(ctx context.Context, productID string, expiry time.Duration) error {
	return r.client.SetEx(ctx, r.key(productID), "1", expiry).Err()
}

// IsSubmitted reports whether the marker exists.
func (r *SubmissionRepoImpl) IsSubmitted(ctx context.Context, productID string) (bool, error) {
	n, err := r.client.Exists(ctx, r.key(productID)).Result()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// RemoveSubmitted deletes the marker, used for forced resubmission.
func (r *SubmissionRepoImpl) RemoveSubmitted(ctx context.Context, productID string) error {
	return r.client.Del(ctx, r.key(productID)).Err()
}
