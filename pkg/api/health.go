package api

import (
	"fmt"
	"net/http"
	"time"
)

// HealthResponse represents the health check response
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

// healthHandler implements the /health endpoint
// This is a simple liveness check - returns 200 if the process is alive
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now(),
	})
}

// readyHandler implements the /ready endpoint
// This checks if the controller is ready to serve: a leader is elected and
// the store answers reads
func (s *Server) readyHandler(w http.ResponseWriter, r *http.Request) {
	checks := make(map[string]string)
	ready := true
	var message string

	if s.manager.IsLeader() {
		checks["raft"] = "leader"
	} else if leaderAddr := s.manager.LeaderAddr(); leaderAddr != "" {
		checks["raft"] = fmt.Sprintf("follower (leader: %s)", leaderAddr)
	} else {
		checks["raft"] = "no leader elected"
		ready = false
		message = "Waiting for leader election"
	}

	if _, err := s.manager.ListResources(); err != nil {
		checks["storage"] = fmt.Sprintf("error: %v", err)
		ready = false
		if message == "" {
			message = "Storage not accessible"
		}
	} else {
		checks["storage"] = "ok"
	}

	status := "ready"
	statusCode := http.StatusOK
	if !ready {
		status = "not ready"
		statusCode = http.StatusServiceUnavailable
	}

	s.writeJSON(w, statusCode, ReadyResponse{
		Status:    status,
		Timestamp: time.Now(),
		Checks:    checks,
		Message:   message,
	})
}
