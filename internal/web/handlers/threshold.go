package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/kozaktomas/face-service/internal/service"
)

// ConfigHandler manages runtime-adjustable configuration.
type ConfigHandler struct {
	svc *service.Service
}

// NewConfigHandler creates a new config handler.
func NewConfigHandler(svc *service.Service) *ConfigHandler {
	return &ConfigHandler{svc: svc}
}

type thresholdRequest struct {
	Threshold *float64 `json:"threshold"`
}

type thresholdResponse struct {
	Success      bool    `json:"success"`
	Message      string  `json:"message"`
	OldThreshold float64 `json:"old_threshold"`
	NewThreshold float64 `json:"new_threshold"`
}

// UpdateThreshold changes the match threshold at runtime.
func (h *ConfigHandler) UpdateThreshold(w http.ResponseWriter, r *http.Request) {
	var req thresholdRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Threshold == nil {
		respondJSON(w, http.StatusBadRequest, errorResponse{
			Success: false,
			Code:    service.CodeThresholdOutOfRange,
			Message: "no threshold provided",
		})
		return
	}

	old, err := h.svc.UpdateThreshold(*req.Threshold)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, thresholdResponse{
		Success:      true,
		Message:      "threshold updated successfully",
		OldThreshold: old,
		NewThreshold: *req.Threshold,
	})
}
