package facedb

import "math"

// EmbeddingDim is the dimensionality of face embeddings produced by the
// extraction service (dlib-style 128-float descriptors).
const EmbeddingDim = 128

// Embedding is a fixed-length face descriptor. Treated as immutable once
// produced by the extraction service.
type Embedding []float32

// EuclideanDistance computes the Euclidean distance between two embeddings.
// Returns +Inf for mismatched or empty inputs so that invalid embeddings can
// never win a nearest-neighbor scan.
func EuclideanDistance(a, b Embedding) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return math.Inf(1)
	}

	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return math.Sqrt(sum)
}

// Clone returns an independent copy of the embedding.
func (e Embedding) Clone() Embedding {
	if e == nil {
		return nil
	}
	out := make(Embedding, len(e))
	copy(out, e)
	return out
}
