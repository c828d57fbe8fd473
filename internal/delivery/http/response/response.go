package response

import "time"

type SubmitClassifyResponse struct {
	Status    string `json:"status"`
	Message   string `json:"message"`
	ProductID string `json:"product_id"`
}

// SubmissionStatusResponse reports whether a product was queued within the dedupe window.
type SubmissionStatusResponse struct {
	ProductID     string `json:"product_id"`
	CurrentStatus string `json:"current_status"` // "submitted" or "not_found"
}

// WorkerStatusResponse is a snapshot of the worker's run state.
type WorkerStatusResponse struct {
	WorkerID    string `json:"worker_id"`
	Namespace   string `json:"namespace"`
	VersionID   string `json:"version_id"`
	Heartbeat   bool   `json:"heartbeat"`
	Terminating bool   `json:"terminating"`
	QueueLength *int64 `json:"queue_length,omitempty"`
}

type ImageResponse struct {
	ID          int64     `json:"id"`
	ProductID   string    `json:"product_id"`
	ProductName string    `json:"product_name"`
	MainImage   string    `json:"main_image"`
	ClassCode   string    `json:"class_code"`
	ObjectIDs   []int64   `json:"object_ids"`
	VersionID   string    `json:"version_id"`
	CreatedAt   time.Time `json:"created_at"`
}

type OrphanResponse struct {
	ID         int64     `json:"id"`
	ProductID  string    `json:"product_id"`
	ClassCode  string    `json:"class_code"`
	StorageKey string    `json:"storage_key"`
	VersionID  string    `json:"version_id"`
	CreatedAt  time.Time `json:"created_at"`
}
