package repository

import "context"

// ObjectStorage uploads image bytes to a bucket.
type ObjectStorage interface {
	// Store writes data under key and returns the object's URL.
	Store(ctx context.Context, data []byte, bucket, key string, public bool) (string, error)
}
