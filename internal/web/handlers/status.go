package handlers

import (
	"net/http"
	"time"

	"github.com/kozaktomas/face-service/internal/facedb"
	"github.com/kozaktomas/face-service/internal/service"
)

// StatusHandler reports service statistics.
type StatusHandler struct {
	svc *service.Service
}

// NewStatusHandler creates a new status handler.
func NewStatusHandler(svc *service.Service) *StatusHandler {
	return &StatusHandler{svc: svc}
}

type statusResponse struct {
	Status        string       `json:"status"`
	Timestamp     time.Time    `json:"timestamp"`
	Statistics    facedb.Stats `json:"statistics"`
	Configuration statusConfig `json:"configuration"`
}

type statusConfig struct {
	MatchThreshold    float64 `json:"face_match_threshold"`
	MaxFacesPerWorker int     `json:"max_faces_per_worker"`
	StoreFile         string  `json:"known_faces_file"`
}

// Get returns aggregate index statistics and the active configuration.
func (h *StatusHandler) Get(w http.ResponseWriter, r *http.Request) {
	status := h.svc.Status()

	respondJSON(w, http.StatusOK, statusResponse{
		Status:     "online",
		Timestamp:  time.Now(),
		Statistics: status.Stats,
		Configuration: statusConfig{
			MatchThreshold:    status.Threshold,
			MaxFacesPerWorker: status.MaxFacesPerWorker,
			StoreFile:         status.StoreFile,
		},
	})
}
