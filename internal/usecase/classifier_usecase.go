package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/user/classifier-service/internal/entity"
	"github.com/user/classifier-service/internal/imageproc"
	"github.com/user/classifier-service/internal/repository"
	"github.com/user/classifier-service/pkg/metrics"
)

// Classifier defines the per-job classification step.
type Classifier interface {
	Classify(ctx context.Context, job *entity.Job) error
}

// ClassifierOptions toggles the optional parts of a classification run.
type ClassifierOptions struct {
	// EnableSubImages turns on multi-image voting over the product's sub-images.
	EnableSubImages bool
	// Mobile renders the mobile main-image renditions when set.
	Mobile *MobileRenderer
}

type classifierUseCase struct {
	state    *RunState
	fetcher  repository.ImageFetcher
	detector *DetectorClient
	linker   *EntityLinker
	notifier *DownstreamNotifier
	opts     ClassifierOptions
}

// NewClassifier creates the classification use case.
func NewClassifier(
	state *RunState,
	fetcher repository.ImageFetcher,
	detector *DetectorClient,
	linker *EntityLinker,
	notifier *DownstreamNotifier,
	opts ClassifierOptions,
) Classifier {
	return &classifierUseCase{
		state:    state,
		fetcher:  fetcher,
		detector: detector,
		linker:   linker,
		notifier: notifier,
		opts:     opts,
	}
}

// Classify runs detection over the product's images, decides its class,
// persists the derived entities and notifies the next stage.
// Images are processed one after another, main image first.
func (uc *classifierUseCase) Classify(ctx context.Context, job *entity.Job) error {
	start := time.Now()
	status := "failed"
	defer func() {
		metrics.JobsTotal.WithLabelValues(status).Inc()
		metrics.JobDuration.Observe(time.Since(start).Seconds())
	}()

	log := slog.With("product_id", job.ProductID)
	log.Info("Classifying product", "main_image", job.MainImageURL, "sub_images", len(job.SubImageURLs))

	mainBytes, err := uc.fetcher.Fetch(ctx, job.MainImageURL)
	if err != nil {
		return fmt.Errorf("%w: fetch %s: %v", ErrMainImageFailed, job.MainImageURL, err)
	}
	uc.renderMobile(ctx, job.ProductID, mainBytes)

	main, outcome, err := uc.analyze(ctx, job.MainImageURL, mainBytes, true)
	if outcome == OutcomeServiceUnavailable {
		status = "unavailable"
		return uc.markUnavailable(ctx, job.ProductID, err)
	}
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMainImageFailed, err)
	}
	results := []entity.ImageResult{main}

	if uc.opts.EnableSubImages {
		for _, url := range job.SubImageURLs {
			data, err := uc.fetcher.Fetch(ctx, url)
			if err != nil {
				log.Warn("Skipping sub-image, fetch failed", "image_url", url, "error", err)
				continue
			}
			sub, outcome, err := uc.analyze(ctx, url, data, false)
			if outcome == OutcomeServiceUnavailable {
				status = "unavailable"
				return uc.markUnavailable(ctx, job.ProductID, err)
			}
			if err != nil {
				log.Warn("Skipping sub-image, detection failed", "image_url", url, "error", err)
				continue
			}
			results = append(results, sub)
		}
	}

	classCode, detections := Aggregate(results)
	if classCode == "" {
		log.Info("No objects found")
		status = "empty"
		return uc.linker.MarkProduct(ctx, job.ProductID, true)
	}

	imageID, err := uc.linker.Link(ctx, uc.state.VersionID, job, classCode, detections)
	if err != nil {
		return err
	}
	if err := uc.linker.MarkProduct(ctx, job.ProductID, true); err != nil {
		log.Error("Failed to mark product", "error", err)
	}

	summary := entity.Summary{
		ProductID:   job.ProductID,
		ImageID:     imageID,
		ProductName: job.Name,
		Category:    classCode,
		Tags:        job.Tags,
	}
	if err := uc.notifier.Notify(ctx, summary); err != nil {
		log.Error("Failed to notify downstream", "image_id", imageID, "error", err)
	}

	status = "classified"
	log.Info("Product classified", "class_code", classCode, "image_id", imageID, "objects", len(detections), "duration_ms", time.Since(start).Milliseconds())
	return nil
}

// analyze prepares one image and runs detection on it. A decode failure is
// reported as a transport error.
func (uc *classifierUseCase) analyze(ctx context.Context, url string, data []byte, isMain bool) (entity.ImageResult, DetectOutcome, error) {
	prepared, encoded, err := imageproc.Prepare(data)
	if err != nil {
		return entity.ImageResult{}, OutcomeTransportError, fmt.Errorf("prepare %s: %w", url, err)
	}

	res := uc.detector.Detect(ctx, encoded)
	switch res.Outcome {
	case OutcomeServiceUnavailable, OutcomeTransportError:
		return entity.ImageResult{}, res.Outcome, fmt.Errorf("detect %s: %w", url, res.Err)
	}

	for i := range res.Detections {
		res.Detections[i].Source = prepared
	}
	return entity.ImageResult{
		ImageURL:   url,
		IsMain:     isMain,
		ClassCode:  TopClass(res.Detections),
		Detections: res.Detections,
	}, res.Outcome, nil
}

func (uc *classifierUseCase) markUnavailable(ctx context.Context, productID string, cause error) error {
	slog.Warn("Detector unavailable, marking product unavailable", "product_id", productID, "error", cause)
	if err := uc.linker.MarkProduct(ctx, productID, false); err != nil {
		return errors.Join(cause, err)
	}
	return nil
}

func (uc *classifierUseCase) renderMobile(ctx context.Context, productID string, data []byte) {
	if uc.opts.Mobile == nil {
		return
	}
	img, err := imageproc.Decode(data)
	if err == nil {
		err = uc.opts.Mobile.Render(ctx, productID, img)
	}
	if err != nil {
		metrics.MobileImagesTotal.WithLabelValues("error").Inc()
		slog.Warn("Failed to render mobile images", "product_id", productID, "error", err)
		return
	}
	metrics.MobileImagesTotal.WithLabelValues("ok").Inc()
}
