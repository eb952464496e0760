package server

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"connectrpc.com/connect"
	"github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/logging"
	"github.com/sirupsen/logrus"

	"github.com/VastSea0/italiano-sub000/internal/infrastructure/config"
)

// InterceptorLogger adapts a logrus logger to the interceptor logger.
func InterceptorLogger(l logrus.FieldLogger) logging.Logger {
	return logging.LoggerFunc(func(ctx context.Context, lvl logging.Level, msg string, fields ...any) {
		entry := l.WithFields(toLogrusFields(fields))
		switch {
		case lvl >= logging.LevelError:
			entry.Error(msg)
		case lvl >= logging.LevelWarn:
			entry.Warn(msg)
		case lvl >= logging.LevelInfo:
			entry.Info(msg)
		default:
			entry.Debug(msg)
		}
	})
}

func toLogrusFields(kv []any) logrus.Fields {
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

// learnerScoped is implemented by request messages addressed to one learner.
type learnerScoped interface {
	GetLearnerID() string
}

// Logger logs one line per unary call.
func Logger(logger logging.Logger) connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			start := time.Now()
			resp, err := next(ctx, req)

			code := connect.CodeOf(err)
			fields := requestFields(req, code, time.Since(start))
			if err != nil {
				fields = append(fields, "error", err.Error())
			}
			logger.Log(ctx, determineLogLevel(code, err), "request completed", fields...)

			return resp, err
		}
	}
}

func determineLogLevel(code connect.Code, err error) logging.Level {
	if err == nil {
		return logging.LevelInfo
	}
	switch code {
	case connect.CodeInvalidArgument, connect.CodeFailedPrecondition, connect.CodeNotFound,
		connect.CodeAlreadyExists, connect.CodePermissionDenied, connect.CodeUnauthenticated:
		return logging.LevelWarn
	default:
		return logging.LevelError
	}
}

func requestFields(req connect.AnyRequest, code connect.Code, duration time.Duration) []any {
	status := "ok"
	if code != 0 {
		status = code.String()
	}
	fields := []any{
		"procedure", req.Spec().Procedure,
		"status", status,
		"duration", duration.String(),
	}
	appendField := func(key, value string) {
		if value != "" {
			fields = append(fields, key, value)
		}
	}
	appendField("http_method", req.HTTPMethod())
	appendField("protocol", req.Peer().Protocol)
	appendField("peer_addr", req.Peer().Addr)
	appendField("user_agent", req.Header().Get("User-Agent"))
	appendField("request_id", req.Header().Get("X-Request-Id"))
	appendField("client_ip", firstForwardedFor(req.Header()))
	if msg, ok := req.Any().(learnerScoped); ok {
		appendField("learner_id", msg.GetLearnerID())
	}
	return fields
}

func firstForwardedFor(header http.Header) string {
	forwarded := header.Get("X-Forwarded-For")
	if forwarded == "" {
		return ""
	}
	for _, part := range strings.Split(forwarded, ",") {
		if candidate := strings.TrimSpace(part); candidate != "" {
			return candidate
		}
	}
	return ""
}

// NewLogger builds a configured logrus logger from application config.
func NewLogger(cfg *config.Config) (*logrus.Logger, error) {
	logger := logrus.New()
	level, err := logrus.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, fmt.Errorf("parse log level: %w", err)
	}
	logger.SetLevel(level)
	if cfg.Log.Format == "text" {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}
	return logger, nil
}
