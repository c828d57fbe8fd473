package repository

import "context"

// ImageFetcher downloads the raw bytes of a product image.
type ImageFetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}
