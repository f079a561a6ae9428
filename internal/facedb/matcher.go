package facedb

// Match is the result of a nearest-neighbor search. WorkerID is -1 and
// Matched is false when no enrolled face clears the threshold; Confidence is
// still reported so callers can surface it for diagnostics.
type Match struct {
	Matched    bool
	WorkerID   int64
	Position   int
	Confidence float64
}

// FindBestMatch scans every enrolled face linearly and returns the worker
// whose embedding is closest to the query, provided the derived confidence
// (1 - Euclidean distance) clears the threshold. Ties go to the first record
// in index order; that is an implementation detail, not a guarantee. An empty
// index yields (no match, 0.0) without scanning.
//
// The scan runs against a consistent copy of the records and never mutates
// state, so it is safe to call concurrently with other reads.
func (idx *FaceIndex) FindBestMatch(query Embedding, threshold float64) Match {
	records := idx.Records()
	if len(records) == 0 {
		return Match{WorkerID: -1}
	}

	best := 0
	bestDist := EuclideanDistance(query, records[0].Embedding)
	for i := 1; i < len(records); i++ {
		if d := EuclideanDistance(query, records[i].Embedding); d < bestDist {
			best = i
			bestDist = d
		}
	}

	confidence := 1.0 - bestDist
	if confidence < threshold {
		return Match{WorkerID: -1, Confidence: confidence}
	}

	return Match{
		Matched:    true,
		WorkerID:   records[best].WorkerID,
		Position:   best,
		Confidence: confidence,
	}
}
