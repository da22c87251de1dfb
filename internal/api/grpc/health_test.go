package grpc

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

type fakePinger struct{ err error }

func (p *fakePinger) Ping(context.Context) error { return p.err }

func TestHealthChecker_Probe(t *testing.T) {
	ctx := context.Background()
	db := &fakePinger{}
	h := NewHealthChecker(db)

	check := func(service string) healthpb.HealthCheckResponse_ServingStatus {
		resp, err := h.server.Check(ctx, &healthpb.HealthCheckRequest{Service: service})
		require.NoError(t, err)
		return resp.Status
	}

	assert.True(t, h.Probe(ctx))
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, check(""))
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, check(ServiceName))

	db.err = errors.New("connection refused")
	assert.False(t, h.Probe(ctx))
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, check(""))
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, check(ServiceName))

	db.err = nil
	assert.True(t, h.Probe(ctx))
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, check(""))
}
