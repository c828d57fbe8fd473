package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/user/classifier-service/internal/entity"
	"github.com/user/classifier-service/internal/imageproc"
	"github.com/user/classifier-service/internal/repository"
	"github.com/user/classifier-service/pkg/metrics"
	"github.com/user/classifier-service/pkg/utils"
)

// EntityLinker persists the Image, Object and Feature records of one
// classified product. The store offers no cross-entity transaction, so the
// writes follow a fixed order in which no record ever references one that
// does not exist yet.
type EntityLinker struct {
	images   repository.ImageRepository
	objects  repository.ObjectRepository
	features repository.FeatureRepository
	products repository.ProductRepository
	storage  repository.ObjectStorage

	bucket      string
	releaseMode string
}

// NewEntityLinker creates a linker uploading crops to bucket under releaseMode.
func NewEntityLinker(
	images repository.ImageRepository,
	objects repository.ObjectRepository,
	features repository.FeatureRepository,
	products repository.ProductRepository,
	storage repository.ObjectStorage,
	bucket, releaseMode string,
) *EntityLinker {
	return &EntityLinker{
		images:      images,
		objects:     objects,
		features:    features,
		products:    products,
		storage:     storage,
		bucket:      bucket,
		releaseMode: releaseMode,
	}
}

// Link writes the entities for job and returns the new Image id.
//
//  1. per detection: upload the crop, create the Object without an image
//     reference, then its Feature
//  2. create the Image with every Object id from step 1
//  3. back-fill the image reference of each Object
//  4. create the main-image Object pointing at the Image directly
//
// If step 2 fails the Objects and Features from step 1 stay orphaned and
// ErrImageNotCreated is returned.
func (l *EntityLinker) Link(ctx context.Context, versionID string, job *entity.Job, classCode string, detections []entity.Detection) (int64, error) {
	objectIDs := make([]int64, 0, len(detections))
	for i := range detections {
		id, err := l.createObject(ctx, versionID, job.ProductID, &detections[i])
		if err != nil {
			slog.Warn("Skipping detection", "product_id", job.ProductID, "class_code", detections[i].ClassCode, "error", err)
			continue
		}
		objectIDs = append(objectIDs, id)
	}

	imageID, err := l.images.Create(ctx, &entity.Image{
		ProductID:   job.ProductID,
		ProductName: job.Name,
		ProductURL:  job.ProductURL,
		HostCode:    job.HostCode,
		HostGroup:   job.HostGroup,
		MainImage:   job.MainImageURL,
		SubImages:   job.SubImageURLs,
		Tags:        job.Tags,
		Price:       job.Price,
		Currency:    job.Currency,
		ClassCode:   classCode,
		ObjectIDs:   objectIDs,
		VersionID:   versionID,
	})
	if err == nil && imageID == 0 {
		err = repository.ErrNoID
	}
	if err != nil {
		slog.Error("Image creation failed, objects left without image", "product_id", job.ProductID, "orphans", len(objectIDs), "error", err)
		return 0, fmt.Errorf("%w: product %s: %v", ErrImageNotCreated, job.ProductID, err)
	}
	metrics.EntitiesCreatedTotal.WithLabelValues("image").Inc()

	for _, objectID := range objectIDs {
		if err := l.objects.SetImageID(ctx, objectID, imageID); err != nil {
			slog.Error("Failed to back-fill object image reference", "object_id", objectID, "image_id", imageID, "error", err)
		}
	}

	mainID, err := l.objects.Create(ctx, &entity.Object{
		ProductID:  job.ProductID,
		ClassCode:  classCode,
		StorageKey: job.MainImageURL,
		URL:        job.MainImageURL,
		IsMain:     true,
		ImageID:    &imageID,
		VersionID:  versionID,
	})
	if err == nil && mainID == 0 {
		err = repository.ErrNoID
	}
	if err != nil {
		slog.Error("Failed to create main object", "product_id", job.ProductID, "image_id", imageID, "error", err)
	} else {
		metrics.EntitiesCreatedTotal.WithLabelValues("main_object").Inc()
	}

	return imageID, nil
}

func (l *EntityLinker) createObject(ctx context.Context, versionID, productID string, d *entity.Detection) (int64, error) {
	if d.Source == nil {
		return 0, fmt.Errorf("detection has no source image")
	}
	crop, err := imageproc.Crop(d.Source, d.Box)
	if err != nil {
		return 0, err
	}

	key := utils.ObjectKey(l.releaseMode, d.ClassCode)
	url, err := l.storage.Store(ctx, crop, l.bucket, key, true)
	if err != nil {
		return 0, fmt.Errorf("store crop %s: %w", key, err)
	}

	objectID, err := l.objects.Create(ctx, &entity.Object{
		ProductID:  productID,
		ClassCode:  d.ClassCode,
		StorageKey: key,
		Bucket:     l.bucket,
		URL:        url,
		VersionID:  versionID,
	})
	if err == nil && objectID == 0 {
		err = repository.ErrNoID
	}
	if err != nil {
		return 0, fmt.Errorf("create object: %w", err)
	}
	metrics.EntitiesCreatedTotal.WithLabelValues("object").Inc()

	if len(d.Feature) == 0 {
		return objectID, nil
	}
	// An Object without its Feature is tolerated.
	if _, err := l.features.Create(ctx, &entity.Feature{
		ObjectID:  objectID,
		Vector:    d.Feature,
		VersionID: versionID,
	}); err != nil {
		slog.Warn("Failed to create feature", "object_id", objectID, "error", err)
	} else {
		metrics.EntitiesCreatedTotal.WithLabelValues("feature").Inc()
	}
	return objectID, nil
}

// MarkProduct sets is_classified and then, as a separate patch, is_available.
func (l *EntityLinker) MarkProduct(ctx context.Context, productID string, available bool) error {
	classified := true
	if err := l.products.Update(ctx, productID, entity.ProductPatch{IsClassified: &classified}); err != nil {
		return fmt.Errorf("mark product %s classified: %w", productID, err)
	}
	if err := l.products.Update(ctx, productID, entity.ProductPatch{IsAvailable: &available}); err != nil {
		return fmt.Errorf("mark product %s available=%t: %w", productID, available, err)
	}
	return nil
}
