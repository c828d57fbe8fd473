package repository

import (
	"context"

	"github.com/user/classifier-service/internal/entity"
)

// ImageRepository persists product-level classification records.
type ImageRepository interface {
	// Create inserts the image and returns its generated id.
	Create(ctx context.Context, img *entity.Image) (int64, error)
	// FindByID loads one image.
	FindByID(ctx context.Context, id int64) (*entity.Image, error)
}
