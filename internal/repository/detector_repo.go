package repository

import (
	"context"

	"github.com/user/classifier-service/internal/entity"
)

// DetectorRepository is the external object-detection call.
type DetectorRepository interface {
	// Detect returns the detections found in a JPEG image. No objects found is
	// an empty slice and a nil error. Failures wrap ErrServiceUnavailable or
	// ErrDetectorTransport.
	Detect(ctx context.Context, imageBytes []byte) ([]entity.Detection, error)
}
