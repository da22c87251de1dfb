// Package grpc exposes the admin endpoint used by the orchestrator.
package grpc

import (
	"context"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"shopbooking-backend/internal/logger"
)

// ServiceName is the service reported alongside the overall ("") status.
const ServiceName = "shopbooking.Backend"

type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthChecker keeps the standard health service in line with the database.
type HealthChecker struct {
	server  *health.Server
	db      Pinger
	timeout time.Duration
	serving bool
}

func NewHealthChecker(db Pinger) *HealthChecker {
	return &HealthChecker{
		server:  health.NewServer(),
		db:      db,
		timeout: 2 * time.Second,
	}
}

func (h *HealthChecker) Register(s *grpc.Server) {
	healthpb.RegisterHealthServer(s, h.server)
}

// Probe pings the database once and publishes the result.
func (h *HealthChecker) Probe(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	status := healthpb.HealthCheckResponse_SERVING
	err := h.db.Ping(ctx)
	if err != nil {
		status = healthpb.HealthCheckResponse_NOT_SERVING
	}
	ok := err == nil
	if ok != h.serving {
		if ok {
			logger.Info("Database reachable, reporting SERVING")
		} else {
			logger.Warn("Database unreachable, reporting NOT_SERVING", "error", err)
		}
	}
	h.serving = ok

	h.server.SetServingStatus("", status)
	h.server.SetServingStatus(ServiceName, status)
	return ok
}

// Run probes every interval until ctx is done, then marks everything as
// shutting down.
func (h *HealthChecker) Run(ctx context.Context, interval time.Duration) {
	h.Probe(ctx)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			h.server.Shutdown()
			return
		case <-ticker.C:
			h.Probe(ctx)
		}
	}
}
