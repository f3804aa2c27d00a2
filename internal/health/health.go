// Package health serves liveness and readiness probes.
package health

import (
	"context"
	"net/http"
	"time"

	"github.com/cosrelay/service/internal/response"
)

// Pinger is anything whose reachability decides readiness.
type Pinger interface {
	Ready(ctx context.Context) error
}

type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusUnhealthy Status = "unhealthy"
)

type ComponentHealth struct {
	Name    string `json:"name"`
	Status  Status `json:"status"`
	Latency int64  `json:"latency_ms"`
	Error   string `json:"error,omitempty"`
}

type Report struct {
	Status     Status            `json:"status"`
	Components []ComponentHealth `json:"components,omitempty"`
	Timestamp  time.Time         `json:"timestamp"`
}

// LivenessHandler always answers 200 while the process is serving.
func LivenessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		response.OK(w, map[string]string{"status": "ok"})
	}
}

// ReadinessHandler answers 503 when the storage backend cannot be reached.
func ReadinessHandler(storage Pinger, timeout time.Duration) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), timeout)
		defer cancel()

		start := time.Now()
		err := storage.Ready(ctx)
		comp := ComponentHealth{
			Name:    "storage",
			Status:  StatusHealthy,
			Latency: time.Since(start).Milliseconds(),
		}
		if err != nil {
			comp.Status = StatusUnhealthy
			comp.Error = err.Error()
		}

		report := Report{Status: comp.Status, Components: []ComponentHealth{comp}, Timestamp: time.Now()}
		if report.Status == StatusUnhealthy {
			response.JSON(w, http.StatusServiceUnavailable, report)
			return
		}
		response.OK(w, report)
	}
}
