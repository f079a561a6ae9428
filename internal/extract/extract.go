// Package extract talks to the external face-extraction service. The service
// detects faces in an image and returns one fixed-length embedding per face;
// nothing in this repository computes embeddings itself.
package extract

import (
	"context"

	"github.com/kozaktomas/face-service/internal/facedb"
)

// BBox is a face bounding box in pixel coordinates, in (top, right, bottom,
// left) order as reported by the extraction service.
type BBox [4]int

// DetectedFace is one face found in an image.
type DetectedFace struct {
	BBox      BBox             `json:"bbox"`
	Embedding facedb.Embedding `json:"embedding"`
}

// Extractor detects faces in raw image bytes and returns their embeddings in
// detection order. Zero results means no face was found; that is not an error.
type Extractor interface {
	Extract(ctx context.Context, imageData []byte) ([]DetectedFace, error)
}
