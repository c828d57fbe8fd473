package detector

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net"
	"net/http"
	"time"

	"github.com/user/classifier-service/internal/entity"
	"github.com/user/classifier-service/internal/repository"
)

const (
	statusOK    = "ok"
	statusEmpty = "empty"
)

type detectResponse struct {
	Status     string             `json:"status"`
	Detections []entity.Detection `json:"detections"`
}

// HTTPDetector calls the object-detection service with a multipart upload.
type HTTPDetector struct {
	url        string
	httpClient *http.Client
}

// NewHTTPDetector creates a detector client. A zero timeout leaves calls unbounded.
func NewHTTPDetector(url string, timeout time.Duration) *HTTPDetector {
	return &HTTPDetector{
		url:        url,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Detect sends one JPEG and returns the raw detections.
func (d *HTTPDetector) Detect(ctx context.Context, imageBytes []byte) ([]entity.Detection, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", "image.jpg")
	if err != nil {
		return nil, fmt.Errorf("%w: create form file: %v", repository.ErrDetectorTransport, err)
	}
	if _, err := part.Write(imageBytes); err != nil {
		return nil, fmt.Errorf("%w: write image data: %v", repository.ErrDetectorTransport, err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("%w: close multipart: %v", repository.ErrDetectorTransport, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.url, body)
	if err != nil {
		return nil, fmt.Errorf("%w: create request: %v", repository.ErrDetectorTransport, err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := d.httpClient.Do(req)
	if err != nil {
		if isUnreachable(err) {
			return nil, fmt.Errorf("%w: %v", repository.ErrServiceUnavailable, err)
		}
		return nil, fmt.Errorf("%w: send request: %v", repository.ErrDetectorTransport, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusServiceUnavailable:
		return nil, fmt.Errorf("%w: status %d", repository.ErrServiceUnavailable, resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("%w: status %d: %s", repository.ErrDetectorTransport, resp.StatusCode, bytes.TrimSpace(msg))
	}

	var result detectResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", repository.ErrDetectorTransport, err)
	}

	switch result.Status {
	case statusOK, statusEmpty:
	default:
		return nil, fmt.Errorf("%w: unknown status %q", repository.ErrServiceUnavailable, result.Status)
	}

	detections := result.Detections
	if detections == nil {
		detections = []entity.Detection{}
	}
	for i := range detections {
		if detections[i].ClassCode == "" {
			detections[i].ClassCode = "na"
		}
	}
	return detections, nil
}

// isUnreachable reports a dial failure: nothing is listening on the detector address.
func isUnreachable(err error) bool {
	var opErr *net.OpError
	return errors.As(err, &opErr) && opErr.Op == "dial"
}
