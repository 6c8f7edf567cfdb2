// Package http serves the shipment form, the JSON prediction API and metrics.
package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"kurirai/ml"
	"kurirai/monitoring"
)

// Server HTTP server
type Server struct {
	server *http.Server
	config ServerConfig
	logger *zap.Logger
}

// ServerConfig server settings
type ServerConfig struct {
	Port           int
	Timeout        time.Duration
	MaxBodyBytes   int64
	AllowedOrigins []string
	ModelPath      string
}

// DefaultServerConfig default server settings
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Port:           8501,
		Timeout:        30 * time.Second,
		MaxBodyBytes:   1 << 20,
		AllowedOrigins: []string{"*"},
		ModelPath:      "model_rf_bandung.json",
	}
}

// NewServer wires routes and middleware. When the predictor cannot load its model
// every route answers with the blocking "model missing" page instead.
func NewServer(config ServerConfig, predictor *ml.Predictor, metrics *monitoring.Metrics, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}

	mux := http.NewServeMux()
	handlers := NewHandlers(predictor, config.ModelPath, logger)
	if err := predictor.Ready(); err != nil {
		metrics.SetModelLoaded(false)
		logger.Error("model unavailable, serving blocking page only",
			zap.String("model_path", config.ModelPath), zap.Error(err))
		mux.Handle("GET /metrics", metrics.Handler())
		mux.HandleFunc("/", handlers.handleUnavailable)
	} else {
		metrics.SetModelLoaded(true)
		logger.Info("model ready", zap.String("model_path", config.ModelPath),
			zap.Strings("classes", predictor.Classes()))
		handlers.Register(mux)
		mux.Handle("GET /metrics", metrics.Handler())
	}

	chain := Chain(
		RecoveryMiddleware(logger),
		LoggerMiddleware(logger, metrics, func(r *http.Request) string {
			_, pattern := mux.Handler(r)
			return pattern
		}),
		SecurityHeadersMiddleware,
		CORSMiddleware(config.AllowedOrigins),
		TimeoutMiddleware(config.Timeout),
		RequestSizeMiddleware(config.MaxBodyBytes),
	)

	return &Server{
		server: &http.Server{
			Addr:         fmt.Sprintf(":%d", config.Port),
			Handler:      chain(mux),
			ReadTimeout:  config.Timeout,
			WriteTimeout: config.Timeout,
			IdleTimeout:  120 * time.Second,
		},
		config: config,
		logger: logger,
	}
}

// Start blocks until the server stops.
func (s *Server) Start() error {
	s.logger.Info("starting HTTP server", zap.String("addr", s.server.Addr))
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}

// Stop shuts down gracefully within five seconds.
func (s *Server) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	s.logger.Info("shutting down HTTP server")
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	return nil
}

func (s *Server) Addr() string {
	return s.server.Addr
}

// Handler exposes the wrapped handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}
