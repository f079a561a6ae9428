package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/kozaktomas/face-service/internal/facedb"
	"github.com/kozaktomas/face-service/internal/service"
)

// WorkersHandler manages enrolled faces per worker.
type WorkersHandler struct {
	svc *service.Service
}

// NewWorkersHandler creates a new workers handler.
func NewWorkersHandler(svc *service.Service) *WorkersHandler {
	return &WorkersHandler{svc: svc}
}

// urlWorkerID parses the {workerID} route parameter.
func urlWorkerID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "workerID"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

type workerFacesResponse struct {
	Success   bool                   `json:"success"`
	WorkerID  int64                  `json:"worker_id"`
	FaceCount int                    `json:"face_count"`
	Positions []int                  `json:"face_indices"`
	Metadata  *facedb.WorkerMetadata `json:"metadata"`
}

// GetFaces lists the enrolled faces for a worker.
func (h *WorkersHandler) GetFaces(w http.ResponseWriter, r *http.Request) {
	workerID, ok := urlWorkerID(r)
	if !ok {
		respondJSON(w, http.StatusBadRequest, errorResponse{
			Success: false,
			Code:    service.CodeInvalidWorkerID,
			Message: "invalid worker id",
		})
		return
	}

	result, err := h.svc.WorkerFaces(workerID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, workerFacesResponse{
		Success:   true,
		WorkerID:  result.WorkerID,
		FaceCount: result.FaceCount,
		Positions: result.Positions,
		Metadata:  result.Metadata,
	})
}

type deleteFacesResponse struct {
	Success      bool   `json:"success"`
	WorkerID     int64  `json:"worker_id"`
	FacesDeleted int    `json:"faces_deleted"`
	Warning      string `json:"warning,omitempty"`
}

// DeleteFaces removes all enrolled faces for a worker.
func (h *WorkersHandler) DeleteFaces(w http.ResponseWriter, r *http.Request) {
	workerID, ok := urlWorkerID(r)
	if !ok {
		respondJSON(w, http.StatusBadRequest, errorResponse{
			Success: false,
			Code:    service.CodeInvalidWorkerID,
			Message: "invalid worker id",
		})
		return
	}

	result, err := h.svc.DeleteWorkerFaces(workerID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, deleteFacesResponse{
		Success:      true,
		WorkerID:     result.WorkerID,
		FacesDeleted: result.FacesDeleted,
		Warning:      result.PersistWarning,
	})
}
