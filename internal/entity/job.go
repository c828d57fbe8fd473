package entity

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
)

var ErrInvalidJob = errors.New("invalid classification job")

// Job is one product's classification work unit, as serialized on the intake queue.
type Job struct {
	ProductID    string   `json:"id"`
	MainImageURL string   `json:"main_image"`
	SubImageURLs []string `json:"sub_images"`
	HostCode     string   `json:"host_code"`
	HostGroup    string   `json:"host_group"`

	Name       string   `json:"name"`
	ProductURL string   `json:"product_url"`
	Price      float64  `json:"price"`
	Currency   string   `json:"currency_unit"`
	Tags       []string `json:"tags"`
}

// DecodeJob parses an intake payload and checks the fields classification needs.
func DecodeJob(payload []byte) (*Job, error) {
	var job Job
	if err := json.Unmarshal(payload, &job); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidJob, err)
	}
	if err := job.Validate(); err != nil {
		return nil, err
	}
	return &job, nil
}

// Validate reports a missing product id or an unusable main image URL.
func (j *Job) Validate() error {
	if j.ProductID == "" {
		return fmt.Errorf("%w: missing product id", ErrInvalidJob)
	}
	if j.MainImageURL == "" {
		return fmt.Errorf("%w: product %s has no main image", ErrInvalidJob, j.ProductID)
	}
	u, err := url.ParseRequestURI(j.MainImageURL)
	if err != nil || u.Host == "" {
		return fmt.Errorf("%w: product %s main image %q is not a URL", ErrInvalidJob, j.ProductID, j.MainImageURL)
	}
	return nil
}
