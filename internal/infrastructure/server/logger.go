package server

import (
	"context"
	"fmt"

	"github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/logging"
	"github.com/sirupsen/logrus"
	"google.golang.org/grpc/codes"

	"github.com/eslsoft/studyplan/internal/infrastructure/config"
)

// InterceptorLogger adapts a logrus logger to the gRPC logging interceptor.
func InterceptorLogger(logger *logrus.Logger) logging.Logger {
	return logging.LoggerFunc(func(ctx context.Context, lvl logging.Level, msg string, fields ...any) {
		entry := logger.WithContext(ctx).WithFields(toFields(fields))
		switch lvl {
		case logging.LevelDebug:
			entry.Debug(msg)
		case logging.LevelInfo:
			entry.Info(msg)
		case logging.LevelWarn:
			entry.Warn(msg)
		case logging.LevelError:
			entry.Error(msg)
		default:
			entry.WithField("level", int(lvl)).Info(msg)
		}
	})
}

// toFields turns the interceptor's alternating key/value list into logrus fields.
func toFields(kv []any) logrus.Fields {
	fields := make(logrus.Fields, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			key = fmt.Sprint(kv[i])
		}
		fields[key] = kv[i+1]
	}
	return fields
}

// levelForCode logs client mistakes as warnings and everything else that
// failed as errors.
func levelForCode(code codes.Code) logging.Level {
	switch code {
	case codes.OK:
		return logging.LevelInfo
	case codes.InvalidArgument, codes.FailedPrecondition, codes.NotFound, codes.OutOfRange,
		codes.AlreadyExists, codes.PermissionDenied, codes.Unauthenticated, codes.Canceled:
		return logging.LevelWarn
	default:
		return logging.LevelError
	}
}

// NewLogger builds a configured logrus logger from application config.
func NewLogger(cfg *config.Config) (*logrus.Logger, error) {
	logger := logrus.New()
	level, err := logrus.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, fmt.Errorf("parse log level: %w", err)
	}
	logger.SetLevel(level)
	switch cfg.Log.Format {
	case "json":
		logger.SetFormatter(&logrus.JSONFormatter{})
	default:
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return logger, nil
}
