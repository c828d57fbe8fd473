package entity

import "image"

// Box is a bounding box in pixel coordinates of the prepared image.
type Box struct {
	Left   float64 `json:"left"`
	Right  float64 `json:"right"`
	Top    float64 `json:"top"`
	Bottom float64 `json:"bottom"`
}

// Rect converts the box to the crop rectangle
// (left, top, left+|left-right|, top+|bottom-top|).
func (b Box) Rect() image.Rectangle {
	width := b.Right - b.Left
	if width < 0 {
		width = -width
	}
	height := b.Bottom - b.Top
	if height < 0 {
		height = -height
	}
	x0, y0 := int(b.Left), int(b.Top)
	return image.Rect(x0, y0, x0+int(width), y0+int(height))
}

// Detection is one bounding-box result from the detector for one image.
type Detection struct {
	ClassCode string    `json:"class_code"`
	ClassName string    `json:"class_name"`
	Score     float64   `json:"score"`
	Box       Box       `json:"box"`
	Feature   []float32 `json:"feature"`

	// Source is the prepared image the box refers to; crops are cut from it.
	Source image.Image `json:"-"`
}

// ImageResult is the detector output for one of a product's images, in
// processing order (main image first).
type ImageResult struct {
	ImageURL   string
	IsMain     bool
	ClassCode  string // class of the highest-scoring detection, empty if none
	Detections []Detection
}
