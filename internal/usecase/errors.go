package usecase

import "errors"

var (
	// ErrMainImageFailed aborts a job whose main image could not be fetched,
	// decoded or sent through the detector.
	ErrMainImageFailed = errors.New("main image analysis failed")

	// ErrImageNotCreated aborts the entity protocol before back-filling objects.
	ErrImageNotCreated = errors.New("image record not created")

	ErrProductRecentlySubmitted = errors.New("product has been submitted recently and force is false")
)
