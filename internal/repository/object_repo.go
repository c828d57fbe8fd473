package repository

import (
	"context"

	"github.com/user/classifier-service/internal/entity"
)

// ObjectRepository persists detected objects.
type ObjectRepository interface {
	// Create inserts the object and returns its generated id.
	Create(ctx context.Context, obj *entity.Object) (int64, error)
	// SetImageID back-fills the image reference of one object.
	SetImageID(ctx context.Context, objectID, imageID int64) error
	// FindOrphans lists objects that never received an image reference.
	// Used by out-of-band cleanup only.
	FindOrphans(ctx context.Context, limit int) ([]*entity.Object, error)
}
