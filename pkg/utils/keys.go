package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"path"

	"github.com/google/uuid"
)

// HashKey creates a SHA256 hash of a string.
// This is useful for creating consistent, safe keys for Redis.
func HashKey(raw string) string {
	h := sha256.New()
	h.Write([]byte(raw))
	return hex.EncodeToString(h.Sum(nil))
}

// ObjectKey builds the storage key for a cropped object image:
// <releaseMode>/<classCode>/<generated name>.jpg
func ObjectKey(releaseMode, classCode string) string {
	return path.Join(releaseMode, classCode, uuid.NewString()+".jpg")
}

// MobileKey builds the storage key for a mobile rendition of a product's main image.
func MobileKey(kind, productID string) string {
	return path.Join("mobile", kind, productID+".jpg")
}
