package usecase

import (
	"context"
	"fmt"
	"image"

	"github.com/user/classifier-service/internal/entity"
	"github.com/user/classifier-service/internal/imageproc"
	"github.com/user/classifier-service/internal/repository"
	"github.com/user/classifier-service/pkg/utils"
)

// MobileRenderer publishes the reduced main-image renditions used by the mobile client.
type MobileRenderer struct {
	storage  repository.ObjectStorage
	products repository.ProductRepository
	bucket   string
}

func NewMobileRenderer(storage repository.ObjectStorage, products repository.ProductRepository, bucket string) *MobileRenderer {
	return &MobileRenderer{storage: storage, products: products, bucket: bucket}
}

// Render stores the full and thumb renditions of img and patches the product with their URLs.
func (m *MobileRenderer) Render(ctx context.Context, productID string, img image.Image) error {
	fullURL, err := m.store(ctx, img, imageproc.MobileFullWidth, utils.MobileKey("full", productID))
	if err != nil {
		return err
	}
	thumbURL, err := m.store(ctx, img, imageproc.MobileThumbWidth, utils.MobileKey("thumb", productID))
	if err != nil {
		return err
	}

	patch := entity.ProductPatch{MainImageMobileFull: &fullURL, MainImageMobileThumb: &thumbURL}
	if err := m.products.Update(ctx, productID, patch); err != nil {
		return fmt.Errorf("patch mobile images of %s: %w", productID, err)
	}
	return nil
}

func (m *MobileRenderer) store(ctx context.Context, img image.Image, width int, key string) (string, error) {
	data, err := imageproc.ResizeToWidth(img, width)
	if err != nil {
		return "", err
	}
	url, err := m.storage.Store(ctx, data, m.bucket, key, true)
	if err != nil {
		return "", fmt.Errorf("store %s: %w", key, err)
	}
	return url, nil
}
