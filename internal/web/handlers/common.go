package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/kozaktomas/face-service/internal/service"
)

// MaxUploadSize bounds multipart request bodies (per request, all parts).
const MaxUploadSize = 32 << 20 // 32 MB

// respondJSON sends a JSON response.
func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// errorResponse is the uniform error payload.
type errorResponse struct {
	Success bool         `json:"success"`
	Code    service.Code `json:"code"`
	Message string       `json:"message"`
}

// respondServiceError classifies a facade error into an HTTP status and the
// uniform error payload.
func respondServiceError(w http.ResponseWriter, err error) {
	code := service.CodeOf(err)
	respondJSON(w, statusForCode(code), errorResponse{
		Success: false,
		Code:    code,
		Message: err.Error(),
	})
}

// statusForCode maps error classifications to HTTP statuses.
func statusForCode(code service.Code) int {
	switch code {
	case service.CodeNoImage, service.CodeMultipleFaces, service.CodeInvalidWorkerID,
		service.CodeMaxFacesReached, service.CodeThresholdOutOfRange:
		return http.StatusBadRequest
	case service.CodeNoFaceDetected, service.CodeFaceNotRecognized, service.CodeWorkerNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// readImagePart extracts one uploaded image from a multipart form field.
func readImagePart(r *http.Request, field string) ([]byte, error) {
	if err := r.ParseMultipartForm(MaxUploadSize); err != nil {
		return nil, errors.New("failed to parse multipart form")
	}

	file, _, err := r.FormFile(field)
	if err != nil {
		return nil, errors.New("no image provided")
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, errors.New("failed to read image")
	}
	return data, nil
}

// readFilePart reads a single multipart file header.
func readFilePart(header *multipart.FileHeader) ([]byte, error) {
	file, err := header.Open()
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return io.ReadAll(file)
}

// HealthCheck handles the health check endpoint.
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "face-service",
	})
}
