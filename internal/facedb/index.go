package facedb

import (
	"sync"
	"time"
)

// DefaultMaxFacesPerWorker limits how many faces a single worker can enroll.
const DefaultMaxFacesPerWorker = 10

// FaceIndex is the in-memory collection of enrolled faces plus per-worker
// metadata. It is shared between all request handlers; all access goes through
// methods that hold the internal lock. Writers (Insert, RemoveWorker) and the
// persistence snapshot are mutually exclusive, readers run concurrently.
//
// The caller-visible face position is the index into the records slice.
type FaceIndex struct {
	mu       sync.RWMutex
	records  []FaceRecord
	metadata map[int64]*WorkerMetadata
	maxFaces int
}

// NewFaceIndex creates an empty index. maxFacesPerWorker <= 0 selects the
// default limit.
func NewFaceIndex(maxFacesPerWorker int) *FaceIndex {
	if maxFacesPerWorker <= 0 {
		maxFacesPerWorker = DefaultMaxFacesPerWorker
	}
	return &FaceIndex{
		metadata: make(map[int64]*WorkerMetadata),
		maxFaces: maxFacesPerWorker,
	}
}

// InsertResult reports a successful Insert: the position of the new record
// and the face counts as they stood when the insert lock was released.
// Callers must use these counts instead of re-reading the index; a concurrent
// RemoveWorker can delete the worker between the insert and any later read.
type InsertResult struct {
	Position    int
	WorkerFaces int
	TotalFaces  int
}

// Insert appends a face record for the worker and updates its metadata entry.
// Both happen under one lock so no reader can observe one without the other.
func (idx *FaceIndex) Insert(workerID int64, embedding Embedding) (InsertResult, error) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	meta := idx.metadata[workerID]
	if meta != nil && meta.TotalFaces >= idx.maxFaces {
		return InsertResult{}, &CapacityError{WorkerID: workerID, Faces: meta.TotalFaces, Max: idx.maxFaces}
	}

	now := time.Now()
	idx.records = append(idx.records, FaceRecord{
		WorkerID:   workerID,
		Embedding:  embedding.Clone(),
		EnrolledAt: now,
	})

	if meta == nil {
		meta = &WorkerMetadata{
			WorkerID:        workerID,
			FirstEnrolled:   now,
			LastEnrolled:    now,
			TotalFaces:      1,
			EnrollmentDates: []time.Time{now},
		}
		idx.metadata[workerID] = meta
	} else {
		meta.LastEnrolled = now
		meta.TotalFaces++
		meta.EnrollmentDates = append(meta.EnrollmentDates, now)
	}

	return InsertResult{
		Position:    len(idx.records) - 1,
		WorkerFaces: meta.TotalFaces,
		TotalFaces:  len(idx.records),
	}, nil
}

// RemoveWorker deletes all face records and the metadata entry for a worker.
// Returns the number of removed records, or ErrWorkerNotFound if the worker
// has none.
func (idx *FaceIndex) RemoveWorker(workerID int64) (int, error) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	removed := 0
	// Remove by descending position so earlier indices stay valid during the
	// pass and the records/metadata correspondence never goes out of step.
	for i := len(idx.records) - 1; i >= 0; i-- {
		if idx.records[i].WorkerID == workerID {
			idx.records = append(idx.records[:i], idx.records[i+1:]...)
			removed++
		}
	}

	if removed == 0 {
		return 0, ErrWorkerNotFound
	}

	delete(idx.metadata, workerID)
	return removed, nil
}

// PositionsForWorker returns the positions of all records belonging to the
// worker, in index order. Empty when the worker has no faces.
func (idx *FaceIndex) PositionsForWorker(workerID int64) []int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	var positions []int
	for i := range idx.records {
		if idx.records[i].WorkerID == workerID {
			positions = append(positions, i)
		}
	}
	return positions
}

// Metadata returns a copy of the worker's metadata entry, or nil if the worker
// has no enrolled faces.
func (idx *FaceIndex) Metadata(workerID int64) *WorkerMetadata {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return idx.metadata[workerID].clone()
}

// Records returns a consistent copy of all face records. Embeddings are shared
// with the index (they are immutable); the slice itself is safe to iterate
// repeatedly while writers make progress.
func (idx *FaceIndex) Records() []FaceRecord {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return append([]FaceRecord(nil), idx.records...)
}

// Len returns the total number of enrolled faces.
func (idx *FaceIndex) Len() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.records)
}

// Stats computes aggregate statistics over the whole index. The worker with
// the most faces ties break on whichever map entry is seen first.
func (idx *FaceIndex) Stats() Stats {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	s := Stats{
		TotalFaces:    len(idx.records),
		UniqueWorkers: len(idx.metadata),
	}
	if s.UniqueWorkers > 0 {
		s.AverageFacesPerWorker = float64(s.TotalFaces) / float64(s.UniqueWorkers)
	}
	for id, meta := range idx.metadata {
		if meta.TotalFaces > s.TopWorkerFaces {
			s.TopWorkerID = id
			s.TopWorkerFaces = meta.TotalFaces
		}
	}
	return s
}

// Snapshot captures the current index state for persistence. It holds the
// read lock for the duration of the copy, so a snapshot is never interleaved
// with a mutation.
func (idx *FaceIndex) Snapshot() *Snapshot {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	snap := &Snapshot{
		Embeddings: make([]Embedding, len(idx.records)),
		WorkerIDs:  make([]int64, len(idx.records)),
		EnrolledAt: make([]time.Time, len(idx.records)),
		Metadata:   make(map[int64]*WorkerMetadata, len(idx.metadata)),
	}
	for i := range idx.records {
		snap.Embeddings[i] = idx.records[i].Embedding
		snap.WorkerIDs[i] = idx.records[i].WorkerID
		snap.EnrolledAt[i] = idx.records[i].EnrolledAt
	}
	for id, meta := range idx.metadata {
		snap.Metadata[id] = meta.clone()
	}
	return snap
}

// Restore replaces the index contents with a snapshot loaded from disk.
// Intended for startup, before the index is shared with request handlers.
func (idx *FaceIndex) Restore(snap *Snapshot) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	idx.records = make([]FaceRecord, len(snap.Embeddings))
	for i := range snap.Embeddings {
		rec := FaceRecord{
			WorkerID:  snap.WorkerIDs[i],
			Embedding: snap.Embeddings[i],
		}
		if i < len(snap.EnrolledAt) {
			rec.EnrolledAt = snap.EnrolledAt[i]
		}
		idx.records[i] = rec
	}

	idx.metadata = make(map[int64]*WorkerMetadata, len(snap.Metadata))
	for id, meta := range snap.Metadata {
		idx.metadata[id] = meta.clone()
	}
}
