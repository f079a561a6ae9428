// Package archive keeps a copy of every successfully enrolled image on disk
// so enrollments can be audited or re-processed after an embedding model
// change. Archival is best-effort: a failed write never fails the enrollment.
package archive

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// Archive writes enrolled images into a flat directory.
type Archive struct {
	dir string
}

// New creates the archive directory if needed.
func New(dir string) (*Archive, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating archive directory %s: %w", dir, err)
	}
	return &Archive{dir: dir}, nil
}

// SaveEnrollment stores the original image for a worker and returns the
// generated file name.
func (a *Archive) SaveEnrollment(workerID int64, imageData []byte) (string, error) {
	name := fmt.Sprintf("worker_%d_%s.jpg", workerID, uuid.NewString())
	path := filepath.Join(a.dir, name)
	if err := os.WriteFile(path, imageData, 0o644); err != nil {
		return "", fmt.Errorf("archiving enrollment image: %w", err)
	}
	return name, nil
}
