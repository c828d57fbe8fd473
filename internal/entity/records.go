package entity

import "time"

// Image is the persisted product-level classification record.
type Image struct {
	ID          int64
	ProductID   string
	ProductName string
	ProductURL  string
	HostCode    string
	HostGroup   string
	MainImage   string
	SubImages   []string
	Tags        []string
	Price       float64
	Currency    string
	ClassCode   string
	ObjectIDs   []int64
	VersionID   string
	CreatedAt   time.Time
}

// Object is one retained detection, or the synthetic main-image object.
// ImageID is nil until the owning Image exists.
type Object struct {
	ID         int64
	ProductID  string
	ClassCode  string
	StorageKey string
	Bucket     string
	URL        string
	IsMain     bool
	ImageID    *int64
	VersionID  string
	CreatedAt  time.Time
}

// Feature holds the vector of one Object; it is created only after the Object.
type Feature struct {
	ID        int64
	ObjectID  int64
	Vector    []float32
	VersionID string
	CreatedAt time.Time
}

// ProductPatch is a partial update of a product; nil fields are left untouched.
type ProductPatch struct {
	IsClassified         *bool
	IsAvailable          *bool
	MainImageMobileFull  *string
	MainImageMobileThumb *string
}

// Summary is the record handed to the next pipeline stage.
type Summary struct {
	ProductID   string   `json:"product_id"`
	ImageID     int64    `json:"image_id"`
	ProductName string   `json:"name"`
	Category    string   `json:"class_code"`
	Tags        []string `json:"tags"`
}

// TerminationRequest asks the pool manager to remove this worker.
type TerminationRequest struct {
	Namespace   string    `json:"namespace"`
	WorkerID    string    `json:"worker_id"`
	RequestedAt time.Time `json:"requested_at"`
}
