package api

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/star/neocc/internal/auth"
	"github.com/star/neocc/internal/health"
	"github.com/star/neocc/internal/httputil"
	"github.com/star/neocc/internal/metrics"
	"github.com/star/neocc/internal/table"
	"github.com/star/neocc/internal/tabs"
)

// Querier fetches and decodes one object tab.
type Querier interface {
	Query(ctx context.Context, object, tab string, p tabs.Params) ([]table.Section, error)
}

// Config holds the HTTP server settings.
type Config struct {
	Addr         string
	Auth         auth.Config
	TrustProxy   bool
	QueryTimeout time.Duration // upper bound for one object query (default 3m)
	MaxPerIP     int           // concurrent object queries per client IP (default 4)
	MaxInFlight  int           // concurrent object queries overall (default 64)
}

// Server holds the HTTP server and its dependencies.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
}

// NewServer creates a configured HTTP server.
func NewServer(cfg Config, querier Querier, ready *health.Checker, logger *slog.Logger) *Server {
	if cfg.QueryTimeout <= 0 {
		cfg.QueryTimeout = 3 * time.Minute
	}
	if cfg.MaxPerIP <= 0 {
		cfg.MaxPerIP = 4
	}
	if cfg.MaxInFlight <= 0 {
		cfg.MaxInFlight = 64
	}
	limiter := newQueryLimiter(cfg.MaxPerIP, cfg.MaxInFlight)
	mux := http.NewServeMux()

	// Register routes.
	mux.HandleFunc("GET /healthz", health.Healthz)
	mux.HandleFunc("GET /readyz", ready.Readyz)
	mux.Handle("GET /metrics", metrics.Handler())
	mux.HandleFunc("GET /api/v1/tabs", tabsHandler)
	mux.HandleFunc("GET /api/v1/objects/{object}/{tab}", objectTabHandler(logger, querier, limiter, cfg))

	// Build middleware chain: metrics -> logging -> auth -> mux.
	var handler http.Handler = mux
	handler = auth.Middleware(cfg.Auth)(handler)
	handler = loggingMiddleware(logger, cfg.TrustProxy)(handler)
	handler = metrics.Middleware(handler)

	return &Server{
		httpServer: &http.Server{
			Addr:              cfg.Addr,
			Handler:           handler,
			ReadTimeout:       10 * time.Second,
			ReadHeaderTimeout: 5 * time.Second,
			WriteTimeout:      cfg.QueryTimeout + 10*time.Second,
			IdleTimeout:       120 * time.Second,
		},
		logger: logger,
	}
}

// HTTPServer returns the underlying *http.Server for external control (e.g. shutdown).
func (s *Server) HTTPServer() *http.Server {
	return s.httpServer
}

// ListenAndServe starts the HTTP server.
func (s *Server) ListenAndServe() error {
	return s.httpServer.ListenAndServe()
}

// probePath returns true for health/readiness probe paths that should not log at INFO.
func probePath(path string) bool {
	return path == "/healthz" || path == "/readyz"
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (sr *statusRecorder) WriteHeader(code int) {
	sr.statusCode = code
	sr.ResponseWriter.WriteHeader(code)
}

func loggingMiddleware(logger *slog.Logger, trustProxy bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sr := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}

			next.ServeHTTP(sr, r)

			level := slog.LevelInfo
			if probePath(r.URL.Path) {
				level = slog.LevelDebug
			}

			logger.Log(r.Context(), level, "request",
				"component", "api",
				"method", r.Method,
				"path", r.URL.Path,
				"status", strconv.Itoa(sr.statusCode),
				"duration_ms", time.Since(start).Milliseconds(),
				"remote_ip", httputil.ClientIP(r, trustProxy),
			)
		})
	}
}
