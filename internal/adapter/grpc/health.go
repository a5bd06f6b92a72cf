package grpc

import (
	"context"
	"sort"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"

	"crm-service/pkg/logger"
)

// ServiceName is the name reported for the whole CRM API.
const ServiceName = "crm.v1.CRMService"

// Check reports whether a dependency is reachable.
type Check func(ctx context.Context) error

// HealthServer implements grpc.health.v1.Health by running dependency checks
// on every call.
type HealthServer struct {
	healthpb.UnimplementedHealthServer
	checks  map[string]Check
	timeout time.Duration
	log     *zap.Logger
}

// NewHealthServer creates a HealthServer running checks with a per-call
// timeout.
func NewHealthServer(checks map[string]Check, timeout time.Duration, log *zap.Logger) *HealthServer {
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &HealthServer{checks: checks, timeout: timeout, log: log}
}

// Check answers for the empty service name and ServiceName. A failing
// dependency reports NOT_SERVING.
func (s *HealthServer) Check(ctx context.Context, req *healthpb.HealthCheckRequest) (*healthpb.HealthCheckResponse, error) {
	if svc := req.GetService(); svc != "" && svc != ServiceName {
		return nil, status.Errorf(codes.NotFound, "unknown service %q", svc)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	names := make([]string, 0, len(s.checks))
	for name := range s.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if err := s.checks[name](ctx); err != nil {
			logger.WithContext(ctx, s.log).Warn("health check failed", zap.String("dependency", name), zap.Error(err))
			return &healthpb.HealthCheckResponse{Status: healthpb.HealthCheckResponse_NOT_SERVING}, nil
		}
	}
	return &healthpb.HealthCheckResponse{Status: healthpb.HealthCheckResponse_SERVING}, nil
}
