package usecase

import (
	"context"
	"fmt"
	"testing"

	"github.com/user/classifier-service/internal/entity"
	"github.com/user/classifier-service/internal/repository"
)

func TestDetectorClientOutcomes(t *testing.T) {
	tests := []struct {
		name        string
		call        detectCall
		wantOutcome DetectOutcome
		wantKept    int
	}{
		{
			name:        "success filters low scores",
			call:        detectCall{detections: []entity.Detection{det("2", 0.8), det("3", 0.3)}},
			wantOutcome: OutcomeSuccess,
			wantKept:    1,
		},
		{
			name:        "score equal to minimum is dropped",
			call:        detectCall{detections: []entity.Detection{det("2", 0.7)}},
			wantOutcome: OutcomeEmpty,
		},
		{
			name:        "cap applies before filtering",
			call:        detectCall{detections: []entity.Detection{det("1", 0.9), det("2", 0.2), det("3", 0.9), det("4", 0.99)}},
			wantOutcome: OutcomeSuccess,
			wantKept:    2,
		},
		{
			name:        "no objects",
			call:        detectCall{detections: []entity.Detection{}},
			wantOutcome: OutcomeEmpty,
		},
		{
			name:        "unavailable",
			call:        detectCall{err: fmt.Errorf("status 503: %w", repository.ErrServiceUnavailable)},
			wantOutcome: OutcomeServiceUnavailable,
		},
		{
			name:        "transport",
			call:        detectCall{err: fmt.Errorf("decode: %w", repository.ErrDetectorTransport)},
			wantOutcome: OutcomeTransportError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := NewDetectorClient(&fakeDetector{script: []detectCall{tt.call}}, 0.7, 3)
			res := client.Detect(context.Background(), []byte("jpeg"))
			if res.Outcome != tt.wantOutcome {
				t.Errorf("Outcome = %v, want %v", res.Outcome, tt.wantOutcome)
			}
			if len(res.Detections) != tt.wantKept {
				t.Errorf("kept %d detections, want %d", len(res.Detections), tt.wantKept)
			}
			if (res.Err != nil) != (tt.call.err != nil) {
				t.Errorf("Err = %v", res.Err)
			}
		})
	}
}
