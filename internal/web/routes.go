package web

import (
	"github.com/kozaktomas/face-service/internal/web/handlers"
)

func (s *Server) setupRoutes() {
	recognizeHandler := handlers.NewRecognizeHandler(s.svc)
	enrollHandler := handlers.NewEnrollHandler(s.svc)
	workersHandler := handlers.NewWorkersHandler(s.svc)
	statusHandler := handlers.NewStatusHandler(s.svc)
	configHandler := handlers.NewConfigHandler(s.svc)

	// Health check
	s.router.Get("/health", handlers.HealthCheck)

	// Recognition and enrollment
	s.router.Post("/recognize", recognizeHandler.Recognize)
	s.router.Post("/enroll", enrollHandler.Enroll)
	s.router.Post("/enroll_batch", enrollHandler.EnrollBatch)

	// Worker face management
	s.router.Get("/worker/{workerID}/faces", workersHandler.GetFaces)
	s.router.Delete("/worker/{workerID}/faces", workersHandler.DeleteFaces)

	// Status & configuration
	s.router.Get("/status", statusHandler.Get)
	s.router.Post("/config/threshold", configHandler.UpdateThreshold)
}
