package internal

import (
	"log/slog"
	"net/http"

	"vendor-registry-api/internal/auth"
	"vendor-registry-api/internal/config"
	"vendor-registry-api/internal/handlers"
	"vendor-registry-api/internal/store"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

type Server struct {
	Store      store.VendorStore
	Router     *chi.Mux
	Metrics    *Metrics
	Logger     *slog.Logger
	JWTManager *auth.JWTManager
	Imports    *handlers.ImportsHandler

	enableReset bool
}

// NewServer wires the HTTP surface around an already opened store. The
// caller keeps ownership of st and closes it after the server stops.
func NewServer(st store.VendorStore, cfg *config.Config, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		Store:   st,
		Router:  chi.NewRouter(),
		Metrics: NewMetrics(),
		Logger:  logger,
	}

	s.Router.Use(s.requestID)
	s.Router.Use(s.logRequests)
	s.Router.Use(middleware.Recoverer)
	if cfg.EnableMetrics {
		s.Router.Use(s.Metrics.Middleware())
		s.Router.Get("/metrics", s.Metrics.Handler().ServeHTTP)
	}

	s.Router.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		if _, err := w.Write([]byte("ok")); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	})
	s.Router.Get("/dbping", s.dbPing)

	if cfg.AdminEnabled() {
		s.JWTManager = auth.NewJWTManager(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTAudience, cfg.JWTExpiry)
		s.enableReset = cfg.EnableReset
		if cfg.EnableImport {
			s.Imports = handlers.NewImportsHandler(st, logger)
			s.Imports.DefaultMap = cfg.ImportMapping
		}
	}

	if cfg.BasePath == "" {
		s.mountRoutes(s.Router)
	} else {
		s.Router.Route(cfg.BasePath, s.mountRoutes)
	}
	return s
}

func (s *Server) mountRoutes(r chi.Router) {
	r.Get("/vendors", s.listVendors)
	r.Get("/vendors/{id}", s.getVendor)
	r.Post("/vendors", s.createVendor)
	r.Put("/vendors/{id}", s.updateVendor)
	r.Delete("/vendors/{id}", s.deleteVendor)

	// Operator-only endpoints, each mounted only when explicitly enabled.
	if s.JWTManager != nil {
		r.Group(func(r chi.Router) {
			r.Use(auth.AuthMiddleware(s.JWTManager))
			r.Use(auth.MustRole(auth.RoleOperator))
			if s.enableReset {
				r.Post("/admin/reset", s.resetVendors)
			}
			if s.Imports != nil {
				r.Post("/admin/import", s.Imports.UploadExcel)
			}
		})
	}
}

func (s *Server) dbPing(w http.ResponseWriter, r *http.Request) {
	if err := s.Store.Ping(r.Context()); err != nil {
		s.Logger.Error("store ping failed", "request_id", requestIDFromContext(r.Context()), "error", err)
		http.Error(w, "db: unavailable", http.StatusServiceUnavailable)
		return
	}
	if _, err := w.Write([]byte("db: ok")); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
