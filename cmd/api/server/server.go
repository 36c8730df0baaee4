package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"go.uber.org/zap"
	"google.golang.org/grpc"

	ginhandler "auth-service/internal/adapter/gin/handler"
	"auth-service/internal/config"
	"auth-service/internal/usecase/auth"
)

// Server struct holds all server dependencies
type Server struct {
	Config *config.Config
	Logger *zap.Logger
	AuthUC auth.Service
	GRPC   *grpc.Server
	HTTP   *http.Server
}

// New creates a new server instance
func New(cfg *config.Config, l *zap.Logger, authUC auth.Service, authHandler *ginhandler.AuthHandler) *Server {
	s := &Server{
		Config: cfg,
		Logger: l,
		AuthUC: authUC,
		HTTP:   SetupGinServer(authHandler, cfg, ":"+cfg.App.HTTPPort, l),
	}
	if cfg.App.GRPCEnabled {
		s.GRPC = SetupGRPC(authUC, l)
	}
	return s
}

// Start runs the HTTP server and, when enabled, the gRPC server.
// It blocks until one of them stops and returns that server's error.
func (s *Server) Start() error {
	errCh := make(chan error, 2)

	if s.GRPC != nil {
		lc := net.ListenConfig{}
		lis, err := lc.Listen(context.Background(), "tcp", s.grpcAddress())
		if err != nil {
			return fmt.Errorf("failed to listen on %s: %w", s.grpcAddress(), err)
		}

		go func() {
			s.Logger.Info("gRPC server running", zap.String("address", s.grpcAddress()))
			if err := s.GRPC.Serve(lis); err != nil {
				errCh <- fmt.Errorf("gRPC server: %w", err)
			}
		}()
	}

	go func() {
		s.Logger.Info("HTTP server running", zap.String("address", s.HTTP.Addr))
		if err := s.HTTP.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("HTTP server: %w", err)
		}
	}()

	return <-errCh
}

// grpcAddress returns the gRPC server address
func (s *Server) grpcAddress() string {
	return ":" + s.Config.App.GRPCPort
}
