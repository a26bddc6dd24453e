package api

import (
	"fmt"
	"net/http"
	"time"
)

// HealthResponse represents the liveness check response
type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

// ReadyResponse represents the readiness check response
type ReadyResponse struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Checks    map[string]string `json:"checks"`
	Message   string            `json:"message,omitempty"`
}

// handleHealth implements the /healthz endpoint.
// This is a simple liveness check - returns 200 if the process is alive
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now(),
	})
}

// handleReady implements the /readyz endpoint.
// This checks if the service is ready to accept traffic
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	checks := make(map[string]string)
	ready := true
	var message string

	// Storage: attempt a simple read to verify the store is reachable
	if _, err := s.store.ListWorkspaces(); err != nil {
		checks["storage"] = fmt.Sprintf("error: %v", err)
		ready = false
		message = "Storage not accessible"
	} else {
		checks["storage"] = "ok"
	}

	// Event broker: subscribers only count once sessions are active, the
	// check just confirms the broker is wired in
	if s.broker != nil {
		checks["events"] = fmt.Sprintf("ok (%d subscribers)", s.broker.SubscriberCount())
	} else {
		checks["events"] = "not initialized"
		ready = false
		if message == "" {
			message = "Event broker not initialized"
		}
	}

	status := "ready"
	statusCode := http.StatusOK
	if !ready {
		status = "not ready"
		statusCode = http.StatusServiceUnavailable
	}

	writeJSON(w, statusCode, ReadyResponse{
		Status:    status,
		Timestamp: time.Now(),
		Checks:    checks,
		Message:   message,
	})
}
