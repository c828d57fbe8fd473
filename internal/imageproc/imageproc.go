// Package imageproc prepares product photographs for detection and renders
// the crops and mobile renditions that get uploaded.
package imageproc

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	_ "image/gif" // Register GIF decoder
	_ "image/png" // Register PNG decoder

	"github.com/disintegration/imaging"
	"github.com/user/classifier-service/internal/entity"
)

const (
	// DetectSize bounds the image sent to the detector.
	DetectSize = 600
	// CropSize bounds an uploaded object crop.
	CropSize = 300

	MobileFullWidth  = 343
	MobileThumbWidth = 163

	jpegQuality = 90
)

// Decode reads any registered format and flattens it onto white as RGB.
func Decode(data []byte) (image.Image, error) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	bounds := img.Bounds()
	rgb := imaging.New(bounds.Dx(), bounds.Dy(), color.White)
	return imaging.Overlay(rgb, img, image.Pt(0, 0), 1.0), nil
}

// Prepare decodes raw bytes and shrinks the result to fit DetectSize×DetectSize.
// It returns the prepared image and its JPEG encoding.
func Prepare(data []byte) (image.Image, []byte, error) {
	img, err := Decode(data)
	if err != nil {
		return nil, nil, err
	}
	prepared := imaging.Fit(img, DetectSize, DetectSize, imaging.Lanczos)
	encoded, err := EncodeJPEG(prepared)
	if err != nil {
		return nil, nil, err
	}
	return prepared, encoded, nil
}

// Crop cuts the detection box out of img, shrinks it to fit CropSize×CropSize
// and encodes it as JPEG.
func Crop(img image.Image, box entity.Box) ([]byte, error) {
	rect := box.Rect().Intersect(img.Bounds())
	if rect.Empty() {
		return nil, fmt.Errorf("box %+v lies outside image bounds %v", box, img.Bounds())
	}
	cropped := imaging.Crop(img, rect)
	return EncodeJPEG(imaging.Fit(cropped, CropSize, CropSize, imaging.Lanczos))
}

// ResizeToWidth scales the image to width, preserving aspect ratio, and encodes it as JPEG.
func ResizeToWidth(img image.Image, width int) ([]byte, error) {
	return EncodeJPEG(imaging.Resize(img, width, 0, imaging.Lanczos))
}

// EncodeJPEG encodes img at the package quality.
func EncodeJPEG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(jpegQuality)); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}
