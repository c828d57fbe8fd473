package usecase

import (
	"context"
	"errors"

	"github.com/user/classifier-service/internal/entity"
	"github.com/user/classifier-service/internal/repository"
	"github.com/user/classifier-service/pkg/metrics"
)

// DetectOutcome classifies one detector call.
type DetectOutcome int

const (
	OutcomeSuccess DetectOutcome = iota
	OutcomeEmpty
	OutcomeTransportError
	OutcomeServiceUnavailable
)

func (o DetectOutcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeEmpty:
		return "empty"
	case OutcomeTransportError:
		return "transport_error"
	case OutcomeServiceUnavailable:
		return "unavailable"
	default:
		return "unknown"
	}
}

// DetectResult is the typed result of DetectorClient.Detect.
type DetectResult struct {
	Outcome    DetectOutcome
	Detections []entity.Detection
	Err        error
}

// DetectorClient wraps the detector call and normalizes its output. It never retries.
type DetectorClient struct {
	detector   repository.DetectorRepository
	scoreMin   float64
	maxObjects int
}

// NewDetectorClient keeps at most maxObjects detections, then drops those
// scoring at or below scoreMin. maxObjects <= 0 disables the cap.
func NewDetectorClient(detector repository.DetectorRepository, scoreMin float64, maxObjects int) *DetectorClient {
	return &DetectorClient{detector: detector, scoreMin: scoreMin, maxObjects: maxObjects}
}

// Detect runs detection on one prepared JPEG.
func (c *DetectorClient) Detect(ctx context.Context, imageBytes []byte) DetectResult {
	raw, err := c.detector.Detect(ctx, imageBytes)
	result := c.classify(raw, err)
	metrics.DetectionsTotal.WithLabelValues(result.Outcome.String()).Inc()
	return result
}

func (c *DetectorClient) classify(raw []entity.Detection, err error) DetectResult {
	if err != nil {
		if errors.Is(err, repository.ErrServiceUnavailable) {
			return DetectResult{Outcome: OutcomeServiceUnavailable, Err: err}
		}
		return DetectResult{Outcome: OutcomeTransportError, Err: err}
	}

	if c.maxObjects > 0 && len(raw) > c.maxObjects {
		raw = raw[:c.maxObjects]
	}
	kept := make([]entity.Detection, 0, len(raw))
	for _, d := range raw {
		if d.Score > c.scoreMin {
			kept = append(kept, d)
		}
	}
	if len(kept) == 0 {
		return DetectResult{Outcome: OutcomeEmpty, Detections: kept}
	}
	return DetectResult{Outcome: OutcomeSuccess, Detections: kept}
}
