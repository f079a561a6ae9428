package handlers

import (
	"net/http"

	"github.com/kozaktomas/face-service/internal/extract"
	"github.com/kozaktomas/face-service/internal/facedb"
	"github.com/kozaktomas/face-service/internal/service"
)

// RecognizeHandler handles face recognition requests.
type RecognizeHandler struct {
	svc *service.Service
}

// NewRecognizeHandler creates a new recognize handler.
func NewRecognizeHandler(svc *service.Service) *RecognizeHandler {
	return &RecognizeHandler{svc: svc}
}

// recognizeResponse is the payload for a successful recognition.
type recognizeResponse struct {
	Success      bool                   `json:"success"`
	WorkerID     int64                  `json:"worker_id"`
	Confidence   float64                `json:"confidence"`
	Message      string                 `json:"message"`
	Metadata     *facedb.WorkerMetadata `json:"metadata,omitempty"`
	FaceLocation extract.BBox           `json:"face_location"`
}

// notRecognizedResponse reports a below-threshold attempt, including the
// achieved confidence for diagnostics.
type notRecognizedResponse struct {
	Success    bool         `json:"success"`
	Code       service.Code `json:"code"`
	Message    string       `json:"message"`
	Confidence float64      `json:"confidence"`
	Threshold  float64      `json:"threshold"`
}

// Recognize identifies the worker on the uploaded image.
func (h *RecognizeHandler) Recognize(w http.ResponseWriter, r *http.Request) {
	imageData, err := readImagePart(r, "image")
	if err != nil {
		respondJSON(w, http.StatusBadRequest, errorResponse{
			Success: false,
			Code:    service.CodeNoImage,
			Message: err.Error(),
		})
		return
	}

	result, err := h.svc.Recognize(r.Context(), imageData)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	if !result.Recognized {
		respondJSON(w, http.StatusNotFound, notRecognizedResponse{
			Success:    false,
			Code:       service.CodeFaceNotRecognized,
			Message:    "face not recognized",
			Confidence: result.Confidence,
			Threshold:  result.Threshold,
		})
		return
	}

	respondJSON(w, http.StatusOK, recognizeResponse{
		Success:      true,
		WorkerID:     result.WorkerID,
		Confidence:   result.Confidence,
		Message:      "face recognized successfully",
		Metadata:     result.Metadata,
		FaceLocation: result.BBox,
	})
}
