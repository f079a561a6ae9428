// Package service implements the face-service operations shared by the web
// handlers and the CLI: recognition, enrollment, deletion, statistics and
// runtime threshold updates. It owns the wiring between the extraction
// client, the in-memory face index and the persistence store.
package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/kozaktomas/face-service/internal/archive"
	"github.com/kozaktomas/face-service/internal/config"
	"github.com/kozaktomas/face-service/internal/extract"
	"github.com/kozaktomas/face-service/internal/facedb"
)

// Service coordinates the face index, the persistence store and the external
// extraction pipeline. One instance is shared by all request handlers.
type Service struct {
	cfg       *config.Config
	index     *facedb.FaceIndex
	store     *facedb.Store
	extractor extract.Extractor
	archive   *archive.Archive // optional, nil disables archival

	mu        sync.RWMutex // guards threshold
	threshold float64
}

// New wires a service from its parts. The index should already be restored
// from the store by the caller (see Open).
func New(cfg *config.Config, index *facedb.FaceIndex, store *facedb.Store, extractor extract.Extractor, arch *archive.Archive) *Service {
	return &Service{
		cfg:       cfg,
		index:     index,
		store:     store,
		extractor: extractor,
		archive:   arch,
		threshold: cfg.Face.MatchThreshold,
	}
}

// Open builds a ready-to-use service: it loads the persisted index (starting
// empty when the store file is missing or unreadable) and prepares the
// enrollment archive. A corrupt store is logged and left on disk untouched;
// it will only be replaced once a new mutation triggers a successful save.
func Open(cfg *config.Config, extractor extract.Extractor) (*Service, error) {
	store := facedb.NewStore(cfg.Paths.StoreFile)
	index := facedb.NewFaceIndex(cfg.Face.MaxFacesPerWorker)

	snap, err := store.Load()
	switch {
	case errors.Is(err, facedb.ErrCorruptStore), errors.Is(err, facedb.ErrUnsupportedVersion):
		log.Printf("WARNING: cannot read face store, starting with an empty index: %v", err)
	case err != nil:
		return nil, fmt.Errorf("loading face store: %w", err)
	case snap == nil:
		log.Printf("no face store found at %s, starting fresh", cfg.Paths.StoreFile)
	default:
		index.Restore(snap)
		log.Printf("loaded %d faces for %d workers from %s", index.Len(), index.Stats().UniqueWorkers, cfg.Paths.StoreFile)
	}

	arch, err := archive.New(cfg.Paths.ArchiveDir)
	if err != nil {
		return nil, err
	}

	return New(cfg, index, store, extractor, arch), nil
}

// Threshold returns the current match threshold.
func (s *Service) Threshold() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.threshold
}

// UpdateThreshold changes the match threshold at runtime. Returns the
// previous value. Values outside [0.1, 1.0] are rejected.
func (s *Service) UpdateThreshold(threshold float64) (float64, error) {
	if threshold < 0.1 || threshold > 1.0 {
		return 0, newError(CodeThresholdOutOfRange, "threshold must be between 0.1 and 1.0, got %g", threshold)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	old := s.threshold
	s.threshold = threshold
	return old, nil
}

// extractSingleFace runs the extraction pipeline and enforces the
// exactly-one-face precondition shared by Recognize and Enroll.
func (s *Service) extractSingleFace(ctx context.Context, imageData []byte) (*extract.DetectedFace, error) {
	if len(imageData) == 0 {
		return nil, newError(CodeNoImage, "no image provided")
	}

	prepared, err := extract.PrepareImage(imageData)
	if err != nil {
		// An undecodable upload cannot contain a detectable face.
		return nil, newError(CodeNoFaceDetected, "no face detected: %v", err)
	}

	faces, err := s.extractor.Extract(ctx, prepared)
	if err != nil {
		return nil, fmt.Errorf("face extraction failed: %w", err)
	}

	switch len(faces) {
	case 0:
		return nil, newError(CodeNoFaceDetected, "no face detected in the image")
	case 1:
		return &faces[0], nil
	default:
		e := newError(CodeMultipleFaces, "%d faces detected, expected exactly one", len(faces))
		e.FacesDetected = len(faces)
		return nil, e
	}
}

// RecognizeResult is the outcome of a recognition attempt. Confidence is
// populated even when no worker matched, for caller-side diagnostics.
type RecognizeResult struct {
	Recognized bool
	WorkerID   int64
	Confidence float64
	Threshold  float64
	BBox       extract.BBox
	Metadata   *facedb.WorkerMetadata
}

// Recognize identifies the worker on the image, if any. Exactly one face must
// be present. A below-threshold best match is not an error: the result simply
// reports Recognized=false with the achieved confidence.
func (s *Service) Recognize(ctx context.Context, imageData []byte) (*RecognizeResult, error) {
	face, err := s.extractSingleFace(ctx, imageData)
	if err != nil {
		return nil, err
	}

	threshold := s.Threshold()
	match := s.index.FindBestMatch(face.Embedding, threshold)

	result := &RecognizeResult{
		Recognized: match.Matched,
		WorkerID:   match.WorkerID,
		Confidence: match.Confidence,
		Threshold:  threshold,
		BBox:       face.BBox,
	}
	if match.Matched {
		result.Metadata = s.index.Metadata(match.WorkerID)
	}
	return result, nil
}

// EnrollResult reports a successful enrollment.
type EnrollResult struct {
	WorkerID            int64
	FaceIndex           int
	TotalFacesForWorker int
	TotalFacesInSystem  int
	ArchivedAs          string
	// PersistWarning is set when the in-memory enrollment succeeded but the
	// store could not be written. The enrollment is kept; memory stays
	// authoritative and the next successful save catches up.
	PersistWarning string
}

// Enroll registers one face for a worker. The image must contain exactly one
// face and the worker must be below its face limit.
func (s *Service) Enroll(ctx context.Context, workerID int64, imageData []byte) (*EnrollResult, error) {
	if workerID <= 0 {
		return nil, newError(CodeInvalidWorkerID, "invalid worker id %d", workerID)
	}

	face, err := s.extractSingleFace(ctx, imageData)
	if err != nil {
		return nil, err
	}

	// The counts come from the insert itself: a concurrent delete may drop
	// the worker before any follow-up index read.
	inserted, err := s.index.Insert(workerID, face.Embedding)
	if err != nil {
		var capErr *facedb.CapacityError
		if errors.As(err, &capErr) {
			return nil, newError(CodeMaxFacesReached, "worker %d already has %d faces enrolled (max %d)", workerID, capErr.Faces, capErr.Max)
		}
		return nil, fmt.Errorf("inserting face: %w", err)
	}

	result := &EnrollResult{
		WorkerID:            workerID,
		FaceIndex:           inserted.Position,
		TotalFacesForWorker: inserted.WorkerFaces,
		TotalFacesInSystem:  inserted.TotalFaces,
		PersistWarning:      s.persist(),
	}

	if s.archive != nil {
		name, err := s.archive.SaveEnrollment(workerID, imageData)
		if err != nil {
			log.Printf("WARNING: could not archive enrollment image for worker %d: %v", workerID, err)
		} else {
			result.ArchivedAs = name
		}
	}

	return result, nil
}

// BatchImageResult classifies a single image within a batch enrollment.
type BatchImageResult struct {
	ImageIndex int
	Status     string // "success" or "failed"
	Message    string
}

// EnrollBatchResult reports a batch enrollment. The batch never fails
// wholesale; each image is classified independently.
type EnrollBatchResult struct {
	WorkerID            int64
	Successful          int
	Failed              int
	Results             []BatchImageResult
	TotalFacesForWorker int
	PersistWarning      string
}

// EnrollBatch enrolls several images for one worker in a single call. Images
// with zero or multiple faces (or hitting the per-worker limit) are reported
// as failed without affecting the rest. The store is saved once, after the
// last image.
func (s *Service) EnrollBatch(ctx context.Context, workerID int64, images [][]byte) (*EnrollBatchResult, error) {
	if workerID <= 0 {
		return nil, newError(CodeInvalidWorkerID, "invalid worker id %d", workerID)
	}
	if len(images) == 0 {
		return nil, newError(CodeNoImage, "no images provided")
	}

	result := &EnrollBatchResult{WorkerID: workerID}
	for i, imageData := range images {
		face, err := s.extractSingleFace(ctx, imageData)
		if err != nil {
			result.Failed++
			result.Results = append(result.Results, BatchImageResult{
				ImageIndex: i,
				Status:     "failed",
				Message:    err.Error(),
			})
			continue
		}

		inserted, err := s.index.Insert(workerID, face.Embedding)
		if err != nil {
			result.Failed++
			result.Results = append(result.Results, BatchImageResult{
				ImageIndex: i,
				Status:     "failed",
				Message:    err.Error(),
			})
			continue
		}

		result.Successful++
		result.TotalFacesForWorker = inserted.WorkerFaces
		result.Results = append(result.Results, BatchImageResult{
			ImageIndex: i,
			Status:     "success",
			Message:    "face enrolled",
		})
	}

	if result.Successful == 0 {
		if meta := s.index.Metadata(workerID); meta != nil {
			result.TotalFacesForWorker = meta.TotalFaces
		}
	}
	if result.Successful > 0 {
		result.PersistWarning = s.persist()
	}
	return result, nil
}

// WorkerFacesResult describes the enrolled faces of one worker.
type WorkerFacesResult struct {
	WorkerID  int64
	FaceCount int
	Positions []int
	Metadata  *facedb.WorkerMetadata
}

// WorkerFaces lists the enrolled faces for a worker.
func (s *Service) WorkerFaces(workerID int64) (*WorkerFacesResult, error) {
	positions := s.index.PositionsForWorker(workerID)
	if len(positions) == 0 {
		return nil, newError(CodeWorkerNotFound, "no faces found for worker %d", workerID)
	}

	return &WorkerFacesResult{
		WorkerID:  workerID,
		FaceCount: len(positions),
		Positions: positions,
		Metadata:  s.index.Metadata(workerID),
	}, nil
}

// DeleteResult reports a worker deletion.
type DeleteResult struct {
	WorkerID       int64
	FacesDeleted   int
	PersistWarning string
}

// DeleteWorkerFaces removes every enrolled face of a worker.
func (s *Service) DeleteWorkerFaces(workerID int64) (*DeleteResult, error) {
	removed, err := s.index.RemoveWorker(workerID)
	if errors.Is(err, facedb.ErrWorkerNotFound) {
		return nil, newError(CodeWorkerNotFound, "no faces found for worker %d", workerID)
	}
	if err != nil {
		return nil, fmt.Errorf("removing worker %d: %w", workerID, err)
	}

	return &DeleteResult{
		WorkerID:       workerID,
		FacesDeleted:   removed,
		PersistWarning: s.persist(),
	}, nil
}

// StatusResult is the aggregate service state.
type StatusResult struct {
	Stats             facedb.Stats
	Threshold         float64
	MaxFacesPerWorker int
	StoreFile         string
}

// Status returns index statistics together with the active configuration.
func (s *Service) Status() *StatusResult {
	return &StatusResult{
		Stats:             s.index.Stats(),
		Threshold:         s.Threshold(),
		MaxFacesPerWorker: s.cfg.Face.MaxFacesPerWorker,
		StoreFile:         s.store.Path(),
	}
}

// Flush persists the current index state. Used at shutdown.
func (s *Service) Flush() error {
	return s.store.Save(s.index.Snapshot())
}

// persist saves an index snapshot after a mutation. A failed save does not
// undo the mutation: losing a valid enrollment to a transient disk error
// would be worse than re-saving on the next mutation. The failure is logged
// and returned as a warning for the caller's response.
func (s *Service) persist() string {
	if err := s.store.Save(s.index.Snapshot()); err != nil {
		log.Printf("WARNING: failed to persist face store: %v", err)
		return fmt.Sprintf("faces updated in memory but not persisted: %v", err)
	}
	return ""
}
