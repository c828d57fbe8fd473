package usecase

import (
	"context"

	"github.com/user/classifier-service/internal/entity"
	"github.com/user/classifier-service/internal/repository"
)

const maxOrphanLimit = 1000

// Inspector serves read-only views of persisted classification data.
type Inspector struct {
	images  repository.ImageRepository
	objects repository.ObjectRepository
}

func NewInspector(images repository.ImageRepository, objects repository.ObjectRepository) *Inspector {
	return &Inspector{images: images, objects: objects}
}

// Image loads one Image record.
func (i *Inspector) Image(ctx context.Context, id int64) (*entity.Image, error) {
	return i.images.FindByID(ctx, id)
}

// Orphans lists Objects left without an Image by an aborted run. limit is
// clamped to [1, 1000].
func (i *Inspector) Orphans(ctx context.Context, limit int) ([]*entity.Object, error) {
	if limit <= 0 {
		limit = 100
	}
	if limit > maxOrphanLimit {
		limit = maxOrphanLimit
	}
	return i.objects.FindOrphans(ctx, limit)
}
