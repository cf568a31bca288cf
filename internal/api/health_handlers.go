package api

import (
	"net/http"
	"time"

	"github.com/bookstacksapp/bookstacks-server/internal/http/response"
)

// HealthResponse is the health check body.
type HealthResponse struct {
	Status string `json:"status"`
	Time   string `json:"time"`
}

// handleHealthCheck reports liveness. The process owns its embedded
// store, so being able to answer at all means the server is up.
func (s *Server) handleHealthCheck(w http.ResponseWriter, r *http.Request) {
	response.Success(w, HealthResponse{
		Status: "ok",
		Time:   time.Now().UTC().Format(time.RFC3339),
	}, s.logger)
}
