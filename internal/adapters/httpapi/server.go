package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mikey/email-tone-analyzer/internal/config"
	"go.uber.org/zap"
)

// maxRequestBytes caps the JSON bodies accepted by the API
const maxRequestBytes = 1 << 20

// Server runs the HTTP API
type Server struct {
	cfg        config.ServerConfig
	engine     *gin.Engine
	httpServer *http.Server
	listener   net.Listener
	logger     *zap.Logger
}

// NewServer creates the gin engine with the middleware stack and routes installed
func NewServer(cfg config.ServerConfig, handler *Handler, logger *zap.Logger) *Server {
	switch cfg.Mode {
	case gin.DebugMode, gin.ReleaseMode, gin.TestMode:
		gin.SetMode(cfg.Mode)
	default:
		logger.Warn("Unknown server mode, using release", zap.String("mode", cfg.Mode))
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(
		gin.Recovery(),
		RequestID(),
		Logger(logger),
		RateLimit(cfg.RateLimit, cfg.RateBurst),
		MaxBodySize(maxRequestBytes),
	)
	handler.RegisterRoutes(engine)

	return &Server{
		cfg:    cfg,
		engine: engine,
		httpServer: &http.Server{
			Addr:              cfg.ListenAddress,
			Handler:           engine,
			ReadHeaderTimeout: 10 * time.Second,
		},
		logger: logger,
	}
}

// Handler returns the HTTP handler serving the API
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Start starts serving in the background
func (s *Server) Start() error {
	listener, err := net.Listen("tcp", s.cfg.ListenAddress)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.cfg.ListenAddress, err)
	}
	s.listener = listener

	s.logger.Info("HTTP API starting", zap.String("address", listener.Addr().String()))

	go func() {
		if err := s.httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("HTTP server error", zap.Error(err))
		}
	}()

	return nil
}

// Addr returns the address the server listens on, once started
func (s *Server) Addr() net.Addr {
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Stop drains in-flight requests for at most the configured shutdown timeout
func (s *Server) Stop(ctx context.Context) error {
	if s.cfg.ShutdownTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.ShutdownTimeout)
		defer cancel()
	}
	return s.httpServer.Shutdown(ctx)
}
