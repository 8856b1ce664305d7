// Package web provides the HTTP server and JSON API for the freight audit
// service.
package web

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/tmsaudit/freteaudit/internal/audit"
	"github.com/tmsaudit/freteaudit/internal/config"
	"github.com/tmsaudit/freteaudit/internal/web/middleware"
)

// Server is the HTTP server for the audit application.
type Server struct {
	service *audit.Service
	cfg     *config.Config
	router  *chi.Mux
	server  *http.Server
}

// NewServer creates a new Server instance.
func NewServer(service *audit.Service, cfg *config.Config) *Server {
	s := &Server{
		service: service,
		cfg:     cfg,
		router:  chi.NewRouter(),
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// setupMiddleware configures middleware for all routes.
func (s *Server) setupMiddleware() {
	s.router.Use(chimw.RequestID)
	s.router.Use(middleware.TrustedRealIP(s.cfg.Security.TrustedProxies))
	s.router.Use(middleware.Logger)
	s.router.Use(chimw.Recoverer)
	s.router.Use(chimw.Compress(5))
	s.router.Use(chimw.Timeout(s.cfg.Server.RequestTimeout))

	// Security hardening
	s.router.Use(securityHeaders(s.cfg.Security.EnableCSP))
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	s.router.Get("/healthz", s.handleHealth)

	var apiLimit, uploadLimit func(http.Handler) http.Handler
	if s.cfg.Rate.Enabled {
		apiLimit = newRateLimiter(s.cfg.Rate.RequestsPerMinute, time.Minute).middleware
		uploadLimit = newRateLimiter(s.cfg.Rate.UploadLimit, time.Minute).middleware
	} else {
		passthrough := func(next http.Handler) http.Handler { return next }
		apiLimit, uploadLimit = passthrough, passthrough
	}

	s.router.Route("/api", func(r chi.Router) {
		r.Use(apiLimit)

		// Document ingestion
		r.Group(func(r chi.Router) {
			r.Use(uploadLimit)
			r.Post("/documents", s.handleUploadDocuments)
			r.Post("/documents/archive", s.handleUploadArchive)
			r.Post("/memory", s.handleImportMemory)
			r.Post("/freight-tables", s.handleImportTable)
		})

		// Reference data
		r.Get("/memory", s.handleMemoryStatus)
		r.Get("/freight-tables", s.handleListTables)
		r.Get("/freight-tables/template", s.handleDownloadTemplate)

		// Reconciliation
		r.Post("/reconcile/table", s.handleReconcileTable)

		// Records
		r.Get("/records", s.handleListRecords)
		r.Delete("/records", s.handleClearRecords)
		r.Post("/records/selection", s.handleSelection)
		r.Post("/records/{recordID}/parties", s.handleSetParties)
		r.Post("/records/{recordID}/approve", s.handleApprove)
		r.Post("/records/{recordID}/reject", s.handleReject)

		// Report export
		r.Get("/export", s.handleExport)

		// Party registries
		r.Get("/shippers", s.handleListParties(s.service.Shippers()))
		r.Post("/shippers", s.handleCreateParty(s.service.Shippers()))
		r.Delete("/shippers/{partyID}", s.handleDeleteParty(s.service.Shippers()))
		r.Get("/carriers", s.handleListParties(s.service.Carriers()))
		r.Post("/carriers", s.handleCreateParty(s.service.Carriers()))
		r.Delete("/carriers/{partyID}", s.handleDeleteParty(s.service.Carriers()))
	})
}

// Start begins listening for HTTP requests.
func (s *Server) Start(addr string) error {
	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
		IdleTimeout:  s.cfg.Server.IdleTimeout,
	}
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Router returns the underlying chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// securityHeaders adds security headers to all responses.
func securityHeaders(enableCSP bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Prevent MIME type sniffing
			w.Header().Set("X-Content-Type-Options", "nosniff")

			// Prevent clickjacking
			w.Header().Set("X-Frame-Options", "DENY")

			// Control referrer information
			w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

			if enableCSP {
				w.Header().Set("Content-Security-Policy", "default-src 'self'")
			}

			next.ServeHTTP(w, r)
		})
	}
}
