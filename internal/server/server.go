// Package server exposes scoring, report building, schema checks and share
// links over HTTP.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/phuslu/log"
	"github.com/rs/cors"

	"github.com/sagearbor/ai-skill-eval-kit/internal/config"
	"github.com/sagearbor/ai-skill-eval-kit/internal/logging"
	"github.com/sagearbor/ai-skill-eval-kit/internal/report"
	"github.com/sagearbor/ai-skill-eval-kit/internal/schema"
	"github.com/sagearbor/ai-skill-eval-kit/internal/scoring"
)

// maxBody bounds request bodies.
const maxBody = 1 << 20

// Options configure a Server. Source and Schema may be nil.
type Options struct {
	Source         *config.Source
	Schema         *schema.Validator
	Logger         *log.Logger
	AllowedOrigins []string
	Now            func() time.Time
	NewID          func(time.Time) string
}

// Server holds the dependencies shared by all handlers.
type Server struct {
	source  *config.Source
	schema  *schema.Validator
	logger  *log.Logger
	origins []string
	now     func() time.Time
	newID   func(time.Time) string
}

func New(opts Options) *Server {
	s := &Server{
		source:  opts.Source,
		schema:  opts.Schema,
		logger:  logging.OrNop(opts.Logger),
		origins: opts.AllowedOrigins,
		now:     opts.Now,
		newID:   opts.NewID,
	}
	if s.schema == nil {
		s.schema = schema.New(s.logger)
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.newID == nil {
		s.newID = report.NewID
	}
	if len(s.origins) == 0 {
		s.origins = []string{"*"}
	}
	return s
}

// Routes returns the API router without CORS handling.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.requestLog)

	r.Get("/healthz", s.handleHealth)
	r.Route("/v1", func(r chi.Router) {
		r.Get("/rubric", s.handleRubric)
		r.Post("/score", s.handleScore)
		r.Post("/reports", s.handleBuildReport)
		r.Post("/reports/validate", s.handleValidateReport)
		r.Post("/state/encode", s.handleEncode)
		r.Post("/state/decode", s.handleDecode)
		r.Post("/peer/requests", s.handlePeerRequest)
		r.Post("/peer/validations", s.handlePeerValidation)
	})
	return r
}

// Handler wraps Routes with CORS for the configured origins.
func (s *Server) Handler() http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins: s.origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
		MaxAge:         600,
	})
	return c.Handler(s.Routes())
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	s.logger.Info().Str("addr", addr).Msg("listening")

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		s.logger.Info().Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// calculator scores against the current configuration, or the built-in
// tables when none is available.
func (s *Server) calculator(ctx context.Context) *scoring.Calculator {
	var doc *config.Document
	if s.source != nil {
		doc = s.source.Document(ctx)
	}
	return scoring.NewCalculator(doc, s.logger)
}

func (s *Server) builder(ctx context.Context) *report.Builder {
	b := report.NewBuilder(s.calculator(ctx))
	b.Now = s.now
	b.NewID = s.newID
	return b
}

func (s *Server) requestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Info().
			Str("request_id", middleware.GetReqID(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("elapsed", time.Since(start)).
			Msg("request")
	})
}
