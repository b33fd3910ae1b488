package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/logging"
	"github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/recovery"
	"github.com/sirupsen/logrus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"

	"github.com/eslsoft/studyplan/internal/infrastructure/config"
)

// HealthServiceName is the service name reported by the gRPC health endpoint.
const HealthServiceName = "studyplan.v1.StudyPlan"

// Server represents the application server
type Server struct {
	config     *config.Config
	grpcServer *grpc.Server
	health     *health.Server
	httpServer *http.Server
	logger     *logrus.Logger
}

// NewServer creates a new server instance serving handler over HTTP and the
// health service over gRPC.
func NewServer(cfg *config.Config, logger *logrus.Logger, handler http.Handler) *Server {
	loggingOpts := []logging.Option{
		logging.WithLogOnEvents(logging.FinishCall),
		logging.WithLevels(levelForCode),
	}
	recoveryOpts := []recovery.Option{
		recovery.WithRecoveryHandler(func(p any) error {
			logger.WithField("panic", p).Error("recovered from panic in gRPC handler")
			return status.Error(codes.Internal, "internal error")
		}),
	}
	grpcServer := grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			logging.UnaryServerInterceptor(InterceptorLogger(logger), loggingOpts...),
			recovery.UnaryServerInterceptor(recoveryOpts...),
		),
		grpc.ChainStreamInterceptor(
			logging.StreamServerInterceptor(InterceptorLogger(logger), loggingOpts...),
			recovery.StreamServerInterceptor(recoveryOpts...),
		),
	)

	healthServer := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	healthServer.SetServingStatus(HealthServiceName, healthpb.HealthCheckResponse_SERVING)

	httpServer := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.HTTPPort),
		Handler: handler,
	}

	return &Server{
		config:     cfg,
		grpcServer: grpcServer,
		health:     healthServer,
		httpServer: httpServer,
		logger:     logger,
	}
}

// StartGRPC starts the gRPC server
func (s *Server) StartGRPC() error {
	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.GRPCPort)
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	return s.ServeGRPC(lis)
}

// ServeGRPC serves gRPC on an existing listener.
func (s *Server) ServeGRPC(lis net.Listener) error {
	s.logger.Infof("gRPC server starting on %s", lis.Addr())
	if err := s.grpcServer.Serve(lis); err != nil {
		return fmt.Errorf("failed to serve gRPC: %w", err)
	}
	return nil
}

// StartHTTP starts the HTTP API server
func (s *Server) StartHTTP() error {
	s.logger.Infof("HTTP server starting on %s", s.httpServer.Addr)

	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to serve HTTP: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down server...")
	s.health.Shutdown()

	var errs []error
	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.logger.Errorf("Failed to shutdown HTTP server: %v", err)
		errs = append(errs, err)
	}

	stopped := make(chan struct{})
	go func() {
		s.grpcServer.GracefulStop()
		close(stopped)
	}()
	select {
	case <-stopped:
	case <-ctx.Done():
		s.grpcServer.Stop()
		errs = append(errs, ctx.Err())
	}

	s.logger.Info("Server shutdown complete")
	return errors.Join(errs...)
}
