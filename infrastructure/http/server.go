package http

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"net"
	"net/http"
	"time"

	"viewer/infrastructure/audit"
	"viewer/infrastructure/cache"
	"viewer/infrastructure/metrics"
	"viewer/infrastructure/sqlite"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

//go:embed assets/*
var assets embed.FS

var ShutdownTimeout = 2 * time.Second

// Server bundles dependencies and route wiring.
type Server struct {
	Addr   string
	ln     net.Listener
	server *http.Server
	router *chi.Mux

	DB          *sqlite.DB
	StatusCache *cache.StatusCache
	Audit       *audit.Service
	Metrics     *metrics.PriceMetrics
}

// NewServer creates a new http server. A nil priceMetrics leaves /metrics
// unrouted.
func NewServer(addr string, db *sqlite.DB, statusCache *cache.StatusCache, auditSvc *audit.Service, priceMetrics *metrics.PriceMetrics) *Server {
	s := &Server{
		Addr:        addr,
		router:      chi.NewRouter(),
		DB:          db,
		StatusCache: statusCache,
		Audit:       auditSvc,
		Metrics:     priceMetrics,
		server: &http.Server{
			MaxHeaderBytes:    1 << 20,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}

	// Secure headers first.
	s.router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
			w.Header().Set("X-Content-Type-Options", "nosniff")
			w.Header().Set("X-Frame-Options", "DENY")
			w.Header().Set("X-XSS-Protection", "1; mode=block")
			next.ServeHTTP(w, r)
		})
	})

	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.Compress(5))
	s.router.Use(s.CSRFMiddleware)

	s.router.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	if s.Metrics != nil {
		s.router.Handle("/metrics", s.Metrics.Handler())
	}

	// Serve assets from embedded FS.
	var assetsFS fs.FS = assets
	if sub, err := fs.Sub(assets, "assets"); err == nil {
		assetsFS = sub
	} else {
		slog.Error("assets subfs init failed; serving fallback fs", slog.Any("err", err))
	}
	s.router.Handle("/assets/*", http.StripPrefix("/assets/", http.FileServer(http.FS(assetsFS))))

	s.RegisterScreenshotRoutes(s.router)
	s.RegisterActionRoutes(s.router)

	s.server.Handler = s.router
	return s
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	var err error
	if s.ln, err = net.Listen("tcp", s.Addr); err != nil {
		return err
	}
	go func() {
		if err := s.server.Serve(s.ln); err != nil && err != http.ErrServerClosed {
			slog.Error("http server stopped", slog.Any("err", err))
		}
	}()
	return nil
}

// Stop gracefully shuts down the server.
func (s *Server) Stop() error {
	if s.ln == nil {
		return fmt.Errorf("HTTP server has not been started or is already stopped")
	}
	ctx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown HTTP server: %v", err)
	}
	s.ln = nil
	return nil
}
