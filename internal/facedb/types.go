package facedb

import (
	"errors"
	"fmt"
	"time"
)

// FaceRecord is one enrolled face: the embedding, the worker it belongs to and
// the enrollment time. Records are never mutated after creation; they are only
// appended by Insert and dropped by RemoveWorker.
type FaceRecord struct {
	WorkerID   int64
	Embedding  Embedding
	EnrolledAt time.Time
}

// WorkerMetadata aggregates per-worker enrollment statistics. One entry exists
// for every worker that currently has at least one enrolled face.
type WorkerMetadata struct {
	WorkerID        int64       `json:"worker_id"`
	FirstEnrolled   time.Time   `json:"first_enrolled"`
	LastEnrolled    time.Time   `json:"last_enrolled"`
	TotalFaces      int         `json:"total_faces"`
	EnrollmentDates []time.Time `json:"enrollment_dates"`
}

func (m *WorkerMetadata) clone() *WorkerMetadata {
	if m == nil {
		return nil
	}
	out := *m
	out.EnrollmentDates = append([]time.Time(nil), m.EnrollmentDates...)
	return &out
}

// Stats describes the aggregate state of the index.
type Stats struct {
	TotalFaces            int     `json:"total_faces"`
	UniqueWorkers         int     `json:"unique_workers"`
	AverageFacesPerWorker float64 `json:"average_faces_per_worker"`
	TopWorkerID           int64   `json:"top_worker_id"`
	TopWorkerFaces        int     `json:"top_worker_faces"`
}

// ErrWorkerNotFound is returned when an operation targets a worker with no
// enrolled faces.
var ErrWorkerNotFound = errors.New("worker not found")

// CapacityError is returned by Insert when a worker already holds the maximum
// number of enrolled faces.
type CapacityError struct {
	WorkerID int64
	Faces    int
	Max      int
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("worker %d already has %d faces enrolled (max %d)", e.WorkerID, e.Faces, e.Max)
}
