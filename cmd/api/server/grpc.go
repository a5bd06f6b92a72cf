package server

import (
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	ginrouter "crm-service/internal/adapter/gin/router"
	grpcadapter "crm-service/internal/adapter/grpc"
	"crm-service/pkg/logger"
)

// SetupGRPC creates the gRPC server exposing the standard health service
// backed by the same dependency checks as /health.
func SetupGRPC(checks map[string]ginrouter.Checker, timeout time.Duration, l *zap.Logger) *grpc.Server {
	grpcChecks := make(map[string]grpcadapter.Check, len(checks))
	for name, check := range checks {
		grpcChecks[name] = grpcadapter.Check(check)
	}

	grpcServer := grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			logger.RequestIDInterceptor(),
			logger.LoggingInterceptor(l),
		),
	)
	healthpb.RegisterHealthServer(grpcServer, grpcadapter.NewHealthServer(grpcChecks, timeout, l))

	return grpcServer
}
