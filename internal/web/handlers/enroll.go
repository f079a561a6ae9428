package handlers

import (
	"net/http"
	"strconv"

	"github.com/kozaktomas/face-service/internal/service"
)

// EnrollHandler handles single and batch face enrollment.
type EnrollHandler struct {
	svc *service.Service
}

// NewEnrollHandler creates a new enroll handler.
func NewEnrollHandler(svc *service.Service) *EnrollHandler {
	return &EnrollHandler{svc: svc}
}

// parseWorkerID reads and validates the worker_id form value.
func parseWorkerID(r *http.Request) (int64, bool) {
	raw := r.FormValue("worker_id")
	if raw == "" {
		return 0, false
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// respondEnrollError maps enrollment failures to HTTP statuses. A missing
// face is a bad request here: the caller chose the image. Only recognize
// treats it as a lookup miss.
func respondEnrollError(w http.ResponseWriter, err error) {
	if code := service.CodeOf(err); code == service.CodeNoFaceDetected {
		respondJSON(w, http.StatusBadRequest, errorResponse{
			Success: false,
			Code:    code,
			Message: err.Error(),
		})
		return
	}
	respondServiceError(w, err)
}

type enrollResponse struct {
	Success             bool   `json:"success"`
	Message             string `json:"message"`
	WorkerID            int64  `json:"worker_id"`
	FaceIndex           int    `json:"face_index"`
	TotalFacesForWorker int    `json:"total_faces_for_worker"`
	TotalFacesInSystem  int    `json:"total_faces_in_system"`
	ImageSavedAs        string `json:"image_saved_as,omitempty"`
	Warning             string `json:"warning,omitempty"`
}

// Enroll registers one face for a worker from a multipart upload.
func (h *EnrollHandler) Enroll(w http.ResponseWriter, r *http.Request) {
	imageData, err := readImagePart(r, "image")
	if err != nil {
		respondJSON(w, http.StatusBadRequest, errorResponse{
			Success: false,
			Code:    service.CodeNoImage,
			Message: err.Error(),
		})
		return
	}

	workerID, ok := parseWorkerID(r)
	if !ok {
		respondJSON(w, http.StatusBadRequest, errorResponse{
			Success: false,
			Code:    service.CodeInvalidWorkerID,
			Message: "missing or invalid worker_id",
		})
		return
	}

	result, err := h.svc.Enroll(r.Context(), workerID, imageData)
	if err != nil {
		respondEnrollError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, enrollResponse{
		Success:             true,
		Message:             "face enrolled successfully",
		WorkerID:            result.WorkerID,
		FaceIndex:           result.FaceIndex,
		TotalFacesForWorker: result.TotalFacesForWorker,
		TotalFacesInSystem:  result.TotalFacesInSystem,
		ImageSavedAs:        result.ArchivedAs,
		Warning:             result.PersistWarning,
	})
}

type batchImageResponse struct {
	ImageIndex int    `json:"image_index"`
	Status     string `json:"status"`
	Message    string `json:"message"`
}

type enrollBatchResponse struct {
	Success             bool                 `json:"success"`
	Message             string               `json:"message"`
	WorkerID            int64                `json:"worker_id"`
	Successful          int                  `json:"successful"`
	Failed              int                  `json:"failed"`
	Results             []batchImageResponse `json:"results"`
	TotalFacesForWorker int                  `json:"total_faces_for_worker"`
	Warning             string               `json:"warning,omitempty"`
}

// EnrollBatch registers several faces for one worker in a single request.
// Each image is classified independently; the batch itself always succeeds.
func (h *EnrollHandler) EnrollBatch(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(MaxUploadSize); err != nil {
		respondJSON(w, http.StatusBadRequest, errorResponse{
			Success: false,
			Code:    service.CodeNoImage,
			Message: "failed to parse multipart form",
		})
		return
	}

	workerID, ok := parseWorkerID(r)
	if !ok {
		respondJSON(w, http.StatusBadRequest, errorResponse{
			Success: false,
			Code:    service.CodeInvalidWorkerID,
			Message: "missing or invalid worker_id",
		})
		return
	}

	headers := r.MultipartForm.File["images[]"]
	images := make([][]byte, 0, len(headers))
	for _, header := range headers {
		data, err := readFilePart(header)
		if err != nil {
			respondJSON(w, http.StatusBadRequest, errorResponse{
				Success: false,
				Code:    service.CodeNoImage,
				Message: "failed to read uploaded image " + header.Filename,
			})
			return
		}
		images = append(images, data)
	}

	result, err := h.svc.EnrollBatch(r.Context(), workerID, images)
	if err != nil {
		respondEnrollError(w, err)
		return
	}

	results := make([]batchImageResponse, len(result.Results))
	for i, res := range result.Results {
		results[i] = batchImageResponse{
			ImageIndex: res.ImageIndex,
			Status:     res.Status,
			Message:    res.Message,
		}
	}

	respondJSON(w, http.StatusOK, enrollBatchResponse{
		Success:             true,
		Message:             "batch enrollment completed",
		WorkerID:            result.WorkerID,
		Successful:          result.Successful,
		Failed:              result.Failed,
		Results:             results,
		TotalFacesForWorker: result.TotalFacesForWorker,
		Warning:             result.PersistWarning,
	})
}
