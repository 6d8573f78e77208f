package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/go-pkgz/lgr"
	"github.com/go-pkgz/rest"
	"github.com/go-pkgz/rest/logger"
	"github.com/go-pkgz/routegroup"

	"github.com/umputun/feedpulse/pkg/domain"
	"github.com/umputun/feedpulse/pkg/report"
	"github.com/umputun/feedpulse/pkg/service"
)

//go:generate moq -out mocks/config.go -pkg mocks -skip-ensure -fmt goimports . ConfigProvider
//go:generate moq -out mocks/reports.go -pkg mocks -skip-ensure -fmt goimports . ReportService
//go:generate moq -out mocks/feedback.go -pkg mocks -skip-ensure -fmt goimports . FeedbackService

// Server represents HTTP server instance
type Server struct {
	config   ConfigProvider
	reports  ReportService
	feedback FeedbackService
	version  string
	debug    bool

	lock       sync.Mutex
	httpServer *http.Server
	router     *routegroup.Bundle
}

// ReportService provides the rendered report, the structured summary and cache status
type ReportService interface {
	Report(ctx context.Context) (domain.Report, error)
	Summary(ctx context.Context) (domain.SummaryView, error)
	Status() report.Status
}

// FeedbackService ingests and lists feedback
type FeedbackService interface {
	Submit(ctx context.Context, in service.FeedbackInput) (domain.FeedbackRecord, error)
	Recent(ctx context.Context, limit int) ([]domain.FeedbackRecord, error)
	Count(ctx context.Context) (int64, error)
}

// ConfigProvider provides server configuration
type ConfigProvider interface {
	GetServerConfig() (listen string, timeout time.Duration)
}

// New initializes a new server instance
func New(cfg ConfigProvider, reports ReportService, feedback FeedbackService, version string, debug bool) *Server {
	s := &Server{
		config:   cfg,
		reports:  reports,
		feedback: feedback,
		version:  version,
		debug:    debug,
		router:   routegroup.New(http.NewServeMux()),
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// Run starts the HTTP server and handles graceful shutdown
func (s *Server) Run(ctx context.Context) error {
	listen, timeout := s.config.GetServerConfig()
	log.Printf("[INFO] starting server on %s", listen)

	s.lock.Lock()
	s.httpServer = &http.Server{
		Addr:              listen,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       timeout,
		WriteTimeout:      timeout,
	}
	s.lock.Unlock()

	go func() {
		<-ctx.Done()
		log.Printf("[INFO] shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		s.lock.Lock()
		defer s.lock.Unlock()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			log.Printf("[WARN] server shutdown error: %v", err)
		}
	}()

	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server error: %w", err)
	}

	return nil
}

// setupMiddleware configures standard middleware for the server
func (s *Server) setupMiddleware() {
	s.router.Use(rest.AppInfo("feedpulse", "umputun", s.version))
	s.router.Use(rest.Ping)

	if s.debug {
		s.router.Use(logger.New(logger.Log(lgr.Default()), logger.Prefix("[DEBUG]")).Handler)
	}

	s.router.Use(rest.Recoverer(lgr.Default()))
	s.router.Use(rest.Throttle(100))
	s.router.Use(rest.SizeLimit(64 * 1024)) // 64KB, a single feedback record
}

// setupRoutes configures application routes
func (s *Server) setupRoutes() {
	s.router.Mount("/api/v1").Route(func(r *routegroup.Bundle) {
		r.HandleFunc("GET /status", s.statusHandler)
		r.HandleFunc("GET /report", s.reportHandler)
		r.HandleFunc("GET /summary", s.summaryHandler)
		r.HandleFunc("GET /feedback", s.listFeedbackHandler)
		r.HandleFunc("POST /feedback", s.createFeedbackHandler)
	})
}
