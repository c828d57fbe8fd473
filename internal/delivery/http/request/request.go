package request

import "github.com/user/classifier-service/internal/entity"

// SubmitClassifyRequest enqueues one product for classification.
type SubmitClassifyRequest struct {
	Product entity.Job `json:"product"`
	Force   bool       `json:"force"`
}
