package server

import (
	"bytes"
	"context"
	"net"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/logging"
	"github.com/sirupsen/logrus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/eslsoft/studyplan/internal/infrastructure/config"
)

func TestGRPCHealthService(t *testing.T) {
	logger := logrus.New()
	logger.SetOutput(&bytes.Buffer{})
	cfg := &config.Config{Server: config.ServerConfig{Host: "127.0.0.1"}}
	srv := NewServer(cfg, logger, http.NotFoundHandler())

	lis, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	go func() { _ = srv.ServeGRPC(lis) }()
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}()

	conn, err := grpc.NewClient(lis.Addr().String(), grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	resp, err := healthpb.NewHealthClient(conn).Check(ctx, &healthpb.HealthCheckRequest{Service: HealthServiceName})
	if err != nil {
		t.Fatalf("health check: %v", err)
	}
	if resp.GetStatus() != healthpb.HealthCheckResponse_SERVING {
		t.Fatalf("expected SERVING, got %v", resp.GetStatus())
	}
}

func TestInterceptorLoggerWritesFields(t *testing.T) {
	var buf bytes.Buffer
	logger := logrus.New()
	logger.SetOutput(&buf)
	logger.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})

	InterceptorLogger(logger).Log(context.Background(), logging.LevelWarn, "finished call", "grpc.code", "NotFound", "grpc.method", "Check")
	out := buf.String()
	for _, want := range []string{"level=warning", "grpc.code=NotFound", "grpc.method=Check", `msg="finished call"`} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in %q", want, out)
		}
	}
}

func TestLevelForCode(t *testing.T) {
	cases := map[codes.Code]logging.Level{
		codes.OK:              logging.LevelInfo,
		codes.NotFound:        logging.LevelWarn,
		codes.InvalidArgument: logging.LevelWarn,
		codes.Internal:        logging.LevelError,
		codes.Unavailable:     logging.LevelError,
	}
	for code, want := range cases {
		if got := levelForCode(code); got != want {
			t.Fatalf("%v: expected %v, got %v", code, want, got)
		}
	}
}

func TestNewLogger(t *testing.T) {
	logger, err := NewLogger(&config.Config{Log: config.LogConfig{Level: "debug", Format: "json"}})
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}
	if logger.GetLevel() != logrus.DebugLevel {
		t.Fatalf("unexpected level %v", logger.GetLevel())
	}
	if _, ok := logger.Formatter.(*logrus.JSONFormatter); !ok {
		t.Fatalf("expected json formatter")
	}
	if _, err := NewLogger(&config.Config{Log: config.LogConfig{Level: "loud"}}); err == nil {
		t.Fatalf("expected error for unknown level")
	}
}
