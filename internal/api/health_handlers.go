package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
)

// Component states, from best to worst.
const (
	statusHealthy   = "healthy"
	statusDegraded  = "degraded"
	statusUnhealthy = "unhealthy"
)

func (s *Server) registerHealthRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "healthCheck",
		Method:      http.MethodGet,
		Path:        "/health",
		Summary:     "Health check",
		Description: "Reports the database, badge catalog and event stream state",
		Tags:        []string{"Health"},
	}, s.handleHealthCheck)
}

// ComponentHealth describes the health of a single component.
type ComponentHealth struct {
	Status  string `json:"status" enum:"healthy,degraded,unhealthy" doc:"Component status"`
	Latency string `json:"latency,omitempty" doc:"Time taken by the check"`
	Message string `json:"message,omitempty" doc:"Additional status information"`
}

// HealthResponse contains health check data in API responses.
type HealthResponse struct {
	Status     string                     `json:"status" enum:"healthy,degraded,unhealthy" doc:"Worst component status"`
	Components map[string]ComponentHealth `json:"components" doc:"Individual component statuses"`
}

// HealthOutput wraps the health response for Huma.
type HealthOutput struct {
	Body HealthResponse
}

func (s *Server) handleHealthCheck(ctx context.Context, _ *struct{}) (*HealthOutput, error) {
	checks := map[string]func(context.Context) ComponentHealth{
		"database": s.checkDatabase,
		"catalog":  s.checkCatalog,
		"events":   s.checkEvents,
	}

	resp := HealthResponse{Status: statusHealthy, Components: make(map[string]ComponentHealth, len(checks))}
	for name, check := range checks {
		c := check(ctx)
		resp.Components[name] = c
		if severity(c.Status) > severity(resp.Status) {
			resp.Status = c.Status
		}
	}

	return &HealthOutput{Body: resp}, nil
}

func severity(status string) int {
	switch status {
	case statusHealthy:
		return 0
	case statusDegraded:
		return 1
	default:
		return 2
	}
}

func (s *Server) checkDatabase(ctx context.Context) ComponentHealth {
	start := time.Now()
	if err := s.store.Ping(ctx); err != nil {
		return ComponentHealth{Status: statusUnhealthy, Latency: time.Since(start).String(), Message: "database ping failed"}
	}
	return ComponentHealth{Status: statusHealthy, Latency: time.Since(start).String()}
}

// checkCatalog is degraded when no badge definitions are loaded, since
// finishing books would then never award anything.
func (s *Server) checkCatalog(ctx context.Context) ComponentHealth {
	start := time.Now()
	badges, err := s.store.ListBadges(ctx)
	latency := time.Since(start).String()
	switch {
	case err != nil:
		return ComponentHealth{Status: statusUnhealthy, Latency: latency, Message: "badge catalog unreadable"}
	case len(badges) == 0:
		return ComponentHealth{Status: statusDegraded, Latency: latency, Message: "badge catalog is empty"}
	}
	return ComponentHealth{Status: statusHealthy, Latency: latency, Message: fmt.Sprintf("%d badges", len(badges))}
}

func (s *Server) checkEvents(_ context.Context) ComponentHealth {
	if s.sseManager == nil {
		return ComponentHealth{Status: statusDegraded, Message: "event stream not configured"}
	}
	return ComponentHealth{
		Status:  statusHealthy,
		Message: streamSummary(s.sseManager.ClientCount(), s.sseManager.ReaderCount()),
	}
}

func streamSummary(streams, readers int) string {
	switch {
	case streams == 0:
		return "no open streams"
	case streams == 1:
		return "1 open stream"
	default:
		return fmt.Sprintf("%d open streams from %d readers", streams, readers)
	}
}
