package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
)

// Server is the standalone HTTP/WebSocket scoreboard server.
type Server struct {
	config Config
	board  *Board
	hub    *Hub
	logger *slog.Logger
	server *http.Server
}

// NewServer creates a scoreboard server around an initialized board.
func NewServer(cfg Config, board *Board, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		config: cfg,
		board:  board,
		hub:    NewHub(),
		logger: logger,
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Debug("Request", "method", r.Method, "path", r.URL.Path, "duration", time.Since(start))
	})
}

// HandleHealth reports liveness.
func (s *Server) HandleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// HandleState returns the committed board as JSON, for clients that poll
// instead of holding a WebSocket open.
func (s *Server) HandleState(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(s.board.State())
}

func (s *Server) setupRoutes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/health", s.HandleHealth)
	mux.HandleFunc("GET /api/state", s.HandleState)
	mux.HandleFunc("/api/ws", s.HandleWebSocket)

	return corsMiddleware(s.loggingMiddleware(mux))
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         s.config.Server.Addr,
		Handler:      s.setupRoutes(),
		ReadTimeout:  s.config.Server.ReadTimeout,
		WriteTimeout: s.config.Server.WriteTimeout,
		IdleTimeout:  s.config.Server.IdleTimeout,
	}

	s.logger.Info("Starting scoreboard server", "addr", s.config.Server.Addr)
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server and flushes the match document.
func (s *Server) Shutdown(ctx context.Context) error {
	s.board.Flush(ctx)
	return s.server.Shutdown(ctx)
}

// ListenAndServeWithGracefulShutdown starts the server and handles shutdown
// signals.
func (s *Server) ListenAndServeWithGracefulShutdown() error {
	errChan := make(chan error, 1)

	go func() {
		if err := s.Start(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		return err
	case sig := <-quit:
		s.logger.Info("Shutting down", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	s.logger.Info("Server stopped gracefully")
	return nil
}
