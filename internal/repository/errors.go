package repository

import "errors"

var (
	// ErrServiceUnavailable is returned by a detector that is down or answers
	// with an unknown status. It is distinct from a valid call with zero detections.
	ErrServiceUnavailable = errors.New("detector service unavailable")

	// ErrDetectorTransport covers every other failed detector round trip.
	ErrDetectorTransport = errors.New("detector transport error")

	// ErrNoID is returned when a create call succeeds but yields no identifier.
	ErrNoID = errors.New("persistence returned no identifier")

	ErrNotFound = errors.New("record not found")

	// ErrQueueClosed is returned by a blocking pop whose connection was closed.
	ErrQueueClosed = errors.New("queue closed")
)
