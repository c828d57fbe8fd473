package repository

import (
	"context"

	"github.com/user/classifier-service/internal/entity"
)

// ProductRepository patches product rows owned by the upstream crawler.
type ProductRepository interface {
	// Update applies only the non-nil fields of patch.
	Update(ctx context.Context, productID string, patch entity.ProductPatch) error
}
