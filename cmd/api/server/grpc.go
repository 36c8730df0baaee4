package server

import (
	"go.uber.org/zap"
	"google.golang.org/grpc"

	grpcadapter "auth-service/internal/adapter/grpc"
	"auth-service/internal/adapter/grpc/middleware"
	"auth-service/internal/usecase/auth"
	"auth-service/pkg/logger"
)

// SetupGRPC creates and configures the gRPC server
func SetupGRPC(authUC auth.Service, l *zap.Logger) *grpc.Server {
	grpcServer := grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			logger.RequestIDInterceptor(),
			middleware.LoggingInterceptor(l),
			middleware.RecoveryInterceptor(l),
			middleware.ErrorInterceptor(),
		),
	)
	grpcadapter.RegisterAuthServiceServer(grpcServer, grpcadapter.NewAuthServer(authUC, l))

	return grpcServer
}
