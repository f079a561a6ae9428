package facedb

import (
	"errors"
	"sync"
	"testing"
)

// checkInvariant verifies that metadata counters and the record sequence agree.
func checkInvariant(t *testing.T, idx *FaceIndex) {
	t.Helper()

	total := 0
	stats := idx.Stats()
	records := idx.Records()

	perWorker := make(map[int64]int)
	for _, rec := range records {
		perWorker[rec.WorkerID]++
	}
	for id, count := range perWorker {
		meta := idx.Metadata(id)
		if meta == nil {
			t.Fatalf("worker %d has %d records but no metadata", id, count)
		}
		if meta.TotalFaces != count {
			t.Fatalf("worker %d: metadata says %d faces, index holds %d", id, meta.TotalFaces, count)
		}
		total += meta.TotalFaces
	}

	if total != len(records) {
		t.Fatalf("sum of metadata counts = %d, records = %d", total, len(records))
	}
	if stats.UniqueWorkers != len(perWorker) {
		t.Fatalf("stats report %d workers, index holds %d", stats.UniqueWorkers, len(perWorker))
	}
}

func TestInsertPositionsAndMetadata(t *testing.T) {
	idx := NewFaceIndex(0)

	first, err := idx.Insert(42, testEmbedding(0.1))
	if err != nil {
		t.Fatalf("first insert: %v", err)
	}
	if first.Position != 0 || first.WorkerFaces != 1 || first.TotalFaces != 1 {
		t.Errorf("first insert result: %+v", first)
	}
	if meta := idx.Metadata(42); meta == nil || meta.TotalFaces != 1 {
		t.Errorf("metadata after first insert: %+v", idx.Metadata(42))
	}

	second, err := idx.Insert(42, testEmbedding(0.2))
	if err != nil {
		t.Fatalf("second insert: %v", err)
	}
	if second.Position != 1 || second.WorkerFaces != 2 || second.TotalFaces != 2 {
		t.Errorf("second insert result: %+v", second)
	}

	meta := idx.Metadata(42)
	if meta.TotalFaces != 2 {
		t.Errorf("TotalFaces = %d, want 2", meta.TotalFaces)
	}
	if len(meta.EnrollmentDates) != 2 {
		t.Errorf("EnrollmentDates length = %d, want 2", len(meta.EnrollmentDates))
	}
	if meta.LastEnrolled.Before(meta.FirstEnrolled) {
		t.Error("LastEnrolled precedes FirstEnrolled")
	}

	checkInvariant(t, idx)
}

func TestInsertCapacityExceeded(t *testing.T) {
	idx := NewFaceIndex(0)

	for i := 0; i < DefaultMaxFacesPerWorker; i++ {
		if _, err := idx.Insert(7, testEmbedding(float32(i)/100)); err != nil {
			t.Fatalf("insert %d: %v", i, err)
		}
	}

	_, err := idx.Insert(7, testEmbedding(0.99))
	var capErr *CapacityError
	if !errors.As(err, &capErr) {
		t.Fatalf("11th insert: expected CapacityError, got %v", err)
	}
	if capErr.Faces != DefaultMaxFacesPerWorker || capErr.Max != DefaultMaxFacesPerWorker {
		t.Errorf("unexpected error details: %+v", capErr)
	}

	// The rejected insert must not leave a partial record behind.
	if idx.Len() != DefaultMaxFacesPerWorker {
		t.Errorf("index length = %d, want %d", idx.Len(), DefaultMaxFacesPerWorker)
	}
	checkInvariant(t, idx)

	// Other workers stay unaffected by the full one.
	if _, err := idx.Insert(8, testEmbedding(0.5)); err != nil {
		t.Errorf("insert for another worker: %v", err)
	}
}

func TestRemoveWorker(t *testing.T) {
	idx := NewFaceIndex(0)
	idx.Insert(1, testEmbedding(0.1))
	idx.Insert(2, testEmbedding(0.2))
	idx.Insert(1, testEmbedding(0.3))
	idx.Insert(3, testEmbedding(0.4))

	removed, err := idx.RemoveWorker(1)
	if err != nil {
		t.Fatalf("RemoveWorker: %v", err)
	}
	if removed != 2 {
		t.Errorf("removed = %d, want 2", removed)
	}
	if idx.Metadata(1) != nil {
		t.Error("metadata for removed worker should be gone")
	}

	// Remaining records keep their relative order.
	records := idx.Records()
	if len(records) != 2 || records[0].WorkerID != 2 || records[1].WorkerID != 3 {
		t.Errorf("unexpected remaining records: %+v", records)
	}
	checkInvariant(t, idx)

	// Removing again reports not found: the delete is idempotent in effect.
	if _, err := idx.RemoveWorker(1); !errors.Is(err, ErrWorkerNotFound) {
		t.Errorf("second remove: expected ErrWorkerNotFound, got %v", err)
	}
	if _, err := idx.RemoveWorker(99); !errors.Is(err, ErrWorkerNotFound) {
		t.Errorf("unknown worker: expected ErrWorkerNotFound, got %v", err)
	}
}

func TestPositionsForWorker(t *testing.T) {
	idx := NewFaceIndex(0)
	idx.Insert(5, testEmbedding(0.1))
	idx.Insert(6, testEmbedding(0.2))
	idx.Insert(5, testEmbedding(0.3))

	positions := idx.PositionsForWorker(5)
	if len(positions) != 2 || positions[0] != 0 || positions[1] != 2 {
		t.Errorf("positions = %v, want [0 2]", positions)
	}

	if got := idx.PositionsForWorker(123); len(got) != 0 {
		t.Errorf("unknown worker positions = %v, want empty", got)
	}
}

func TestStats(t *testing.T) {
	idx := NewFaceIndex(0)

	empty := idx.Stats()
	if empty.TotalFaces != 0 || empty.UniqueWorkers != 0 || empty.AverageFacesPerWorker != 0 {
		t.Errorf("empty stats: %+v", empty)
	}

	idx.Insert(1, testEmbedding(0.1))
	idx.Insert(1, testEmbedding(0.2))
	idx.Insert(1, testEmbedding(0.3))
	idx.Insert(2, testEmbedding(0.4))

	s := idx.Stats()
	if s.TotalFaces != 4 {
		t.Errorf("TotalFaces = %d, want 4", s.TotalFaces)
	}
	if s.UniqueWorkers != 2 {
		t.Errorf("UniqueWorkers = %d, want 2", s.UniqueWorkers)
	}
	if s.AverageFacesPerWorker != 2.0 {
		t.Errorf("AverageFacesPerWorker = %f, want 2.0", s.AverageFacesPerWorker)
	}
	if s.TopWorkerID != 1 || s.TopWorkerFaces != 3 {
		t.Errorf("top worker = %d (%d faces), want 1 (3 faces)", s.TopWorkerID, s.TopWorkerFaces)
	}
}

func TestSnapshotRestoreRoundTrip(t *testing.T) {
	idx := NewFaceIndex(0)
	idx.Insert(10, testEmbedding(0.1))
	idx.Insert(20, testEmbedding(0.2))
	idx.Insert(10, testEmbedding(0.3))

	snap := idx.Snapshot()

	restored := NewFaceIndex(0)
	restored.Restore(snap)

	orig := idx.Records()
	got := restored.Records()
	if len(got) != len(orig) {
		t.Fatalf("restored %d records, want %d", len(got), len(orig))
	}
	for i := range orig {
		if got[i].WorkerID != orig[i].WorkerID {
			t.Errorf("record %d: worker %d, want %d", i, got[i].WorkerID, orig[i].WorkerID)
		}
		if EuclideanDistance(got[i].Embedding, orig[i].Embedding) != 0 {
			t.Errorf("record %d: embedding changed", i)
		}
	}

	for _, id := range []int64{10, 20} {
		a, b := idx.Metadata(id), restored.Metadata(id)
		if a.TotalFaces != b.TotalFaces || !a.FirstEnrolled.Equal(b.FirstEnrolled) {
			t.Errorf("worker %d metadata differs: %+v vs %+v", id, a, b)
		}
	}
	checkInvariant(t, restored)
}

func TestConcurrentAccess(t *testing.T) {
	idx := NewFaceIndex(1000)

	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(worker int64) {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				idx.Insert(worker, testEmbedding(float32(i)/1000))
				idx.FindBestMatch(testEmbedding(0.5), 0.6)
				idx.PositionsForWorker(worker)
				idx.Stats()
				idx.Snapshot()
			}
		}(int64(w))
	}
	wg.Wait()

	if idx.Len() != 8*50 {
		t.Errorf("index length = %d, want %d", idx.Len(), 8*50)
	}
	checkInvariant(t, idx)
}
