package repository

import (
	"context"

	"github.com/user/classifier-service/internal/entity"
)

// FeatureRepository persists feature vectors of objects.
type FeatureRepository interface {
	// Create inserts the feature and returns its generated id.
	Create(ctx context.Context, f *entity.Feature) (int64, error)
}
