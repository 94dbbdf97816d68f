// internal/api/server.go
package api

import (
	"context"
	"net/http"
	"time"

	chi "github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"forecast-assistant/internal/common/config"
	"forecast-assistant/internal/common/logger"
	"forecast-assistant/internal/report"
	"forecast-assistant/internal/session"
)

// APIKeySink receives a replacement LLM credential submitted through the UI.
type APIKeySink interface {
	SetAPIKey(key string)
}

// Server exposes the assistant over HTTP: session lifecycle, chat turns,
// state actions, and report generation.
type Server struct {
	router   chi.Router
	sessions *session.Manager
	reports  *report.Service
	keySink  APIKeySink
	config   *config.Config
	logger   logger.Logger
	httpSrv  *http.Server
}

// NewServer wires the routes. keySink may be nil when credentials are fixed.
func NewServer(sessions *session.Manager, reports *report.Service, keySink APIKeySink, cfg *config.Config, log logger.Logger) *Server {
	s := &Server{
		router:   chi.NewRouter(),
		sessions: sessions,
		reports:  reports,
		keySink:  keySink,
		config:   cfg,
		logger:   log.WithFields(map[string]interface{}{"component": "api-server"}),
	}
	s.routes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Recoverer)
	s.router.Use(s.requestLogger)

	s.router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	s.router.Method(http.MethodGet, "/metrics", promhttp.Handler())

	s.router.Route("/api", func(r chi.Router) {
		r.Post("/generate-report", s.handleGenerateReport)
		r.Post("/save-api-key", s.handleSaveAPIKey)

		r.Post("/sessions", s.handleCreateSession)
		r.Route("/sessions/{sessionID}", func(r chi.Router) {
			r.Get("/state", s.handleSessionState)
			r.Post("/chat", s.handleSessionChat)
			r.Post("/actions", s.handleSessionAction)
			r.Delete("/", s.handleDeleteSession)
		})
	})
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Info("request", map[string]interface{}{
			"method":     r.Method,
			"path":       r.URL.Path,
			"status":     ww.Status(),
			"durationMs": time.Since(started).Milliseconds(),
			"requestId":  middleware.GetReqID(r.Context()),
		})
	})
}

// Start runs the HTTP server until the context is cancelled, then drains it.
func (s *Server) Start(ctx context.Context) error {
	s.httpSrv = &http.Server{
		Addr:         s.config.Server.Address,
		Handler:      s.router,
		ReadTimeout:  time.Duration(s.config.Server.ReadTimeout) * time.Millisecond,
		WriteTimeout: time.Duration(s.config.Server.WriteTimeout) * time.Millisecond,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", map[string]interface{}{"address": s.httpSrv.Addr})
		if err := s.httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		time.Duration(s.config.Server.ShutdownTimeout)*time.Millisecond,
	)
	defer cancel()
	return s.httpSrv.Shutdown(shutdownCtx)
}
