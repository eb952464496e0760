package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"connectrpc.com/connect"
	connectcors "connectrpc.com/cors"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/VastSea0/italiano-sub000/internal/adapter/connectrpc"
	"github.com/VastSea0/italiano-sub000/internal/adapter/mapping"
	"github.com/VastSea0/italiano-sub000/internal/infrastructure/config"
)

const readHeaderTimeout = 10 * time.Second

// Server represents the application server
type Server struct {
	config     *config.Config
	httpServer *http.Server
	logger     *logrus.Logger
}

// NewServer mounts the Connect services with health and metrics endpoints.
func NewServer(
	cfg *config.Config,
	logger *logrus.Logger,
	metrics *Metrics,
	deckSvc *connectrpc.DeckServiceServer,
	reviewSvc *connectrpc.ReviewServiceServer,
) *Server {
	interceptors := connect.WithInterceptors(
		metrics.Interceptor(),
		Logger(InterceptorLogger(logger)),
		mapping.ErrorInterceptor(),
	)

	mux := http.NewServeMux()
	mux.Handle(connectrpc.NewDeckServiceHandler(deckSvc, interceptors))
	mux.Handle(connectrpc.NewReviewServiceHandler(reviewSvc, interceptors))
	mux.Handle("/metrics", metrics.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	})

	httpServer := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           h2c.NewHandler(withCORS(cfg.Server.AllowedOrigins, mux), &http2.Server{}),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	return &Server{
		config:     cfg,
		httpServer: httpServer,
		logger:     logger,
	}
}

func withCORS(origins []string, h http.Handler) http.Handler {
	if len(origins) == 0 {
		return h
	}
	return cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: connectcors.AllowedMethods(),
		AllowedHeaders: connectcors.AllowedHeaders(),
		ExposedHeaders: connectcors.ExposedHeaders(),
		MaxAge:         7200,
	}).Handler(h)
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start serves HTTP until Shutdown is called.
func (s *Server) Start() error {
	s.logger.Infof("HTTP server listening on %s", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to serve HTTP: %w", err)
	}
	return nil
}

// Shutdown gracefully stops the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down server...")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown HTTP server: %w", err)
	}
	return nil
}
