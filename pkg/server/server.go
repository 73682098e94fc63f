// Package server exposes the content-management core over HTTP: a JSON API
// for the editor operations, a WebSocket hub for live toast and
// content-changed events, Prometheus metrics, and static serving of the
// site itself.
//
// The presentation layer is a plain browser page; it reads the derived
// state from GET /api/content and forwards operator gestures to the
// mutating endpoints below. Authorization is enforced by the registries
// themselves, which refuse mutations while the gate is in the guest
// state. This is an operator convenience gate, not a security boundary.
package server

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/taksi8637-pixel/taksi2/pkg/gallery"
	"github.com/taksi8637-pixel/taksi2/pkg/gate"
	"github.com/taksi8637-pixel/taksi2/pkg/middleware"
	"github.com/taksi8637-pixel/taksi2/pkg/phones"
	"github.com/taksi8637-pixel/taksi2/pkg/testimonial"
)

// Config carries the assembled core into the server.
type Config struct {
	Logger       *slog.Logger
	Gate         *gate.Gate
	Phones       *phones.Registry
	Gallery      *gallery.Registry
	Testimonials *testimonial.Registry
	Hub          *Hub

	// StaticDir is the directory of the served site. Empty disables
	// static serving.
	StaticDir string

	// StaticPrefix is the URL prefix static files are served under.
	// Empty or "/" serves from the root.
	StaticPrefix string

	// DisableMetrics leaves out the Prometheus middleware and /metrics
	// endpoint. Used by tests that build many servers.
	DisableMetrics bool
}

// Server is the HTTP surface over the content-management core.
type Server struct {
	logger       *slog.Logger
	gate         *gate.Gate
	phones       *phones.Registry
	gallery      *gallery.Registry
	testimonials *testimonial.Registry
	hub          *Hub
	static       *staticHandler

	disableMetrics bool
}

// New creates a Server from an assembled core.
func New(cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	hub := cfg.Hub
	if hub == nil {
		hub = NewHub(logger)
	}
	return &Server{
		logger:         logger,
		gate:           cfg.Gate,
		phones:         cfg.Phones,
		gallery:        cfg.Gallery,
		testimonials:   cfg.Testimonials,
		hub:            hub,
		static:         &staticHandler{dir: cfg.StaticDir, prefix: cfg.StaticPrefix},
		disableMetrics: cfg.DisableMetrics,
	}
}

// Hub returns the live-update hub, for wiring it as a toast notifier.
func (s *Server) Hub() *Hub {
	return s.hub
}

// Handler assembles the full route tree.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestLogger(s.logger))
	if !s.disableMetrics {
		r.Use(middleware.Prometheus())
		r.Use(middleware.OpenTelemetry())
		r.Handle("/metrics", promhttp.Handler())
	}

	r.Get("/healthz", s.handleHealthz)
	r.Get("/ws", s.hub.ServeHTTP)

	r.Route("/api", func(r chi.Router) {
		r.Post("/login", s.handleLogin)
		r.Post("/logout", s.handleLogout)
		r.Get("/session", s.handleSession)

		r.Get("/content", s.handleContent)

		r.Route("/phones", func(r chi.Router) {
			r.Get("/", s.handlePhoneList)
			r.Post("/", s.handlePhoneAdd)
			r.Put("/{id}", s.handlePhoneUpdate)
			r.Delete("/{id}", s.handlePhoneRemove)
		})

		r.Route("/gallery", func(r chi.Router) {
			r.Get("/", s.handleGalleryList)
			r.Post("/upload", s.handleGalleryUpload)
			r.Get("/pending", s.handleGalleryPending)
			r.Post("/commit", s.handleGalleryCommit)
			r.Post("/cancel", s.handleGalleryCancel)
			r.Delete("/{index}", s.handleGalleryRemove)
		})

		r.Get("/testimonials", s.handleTestimonialList)
		r.Post("/testimonials", s.handleTestimonialAdd)

		r.Post("/complaints", s.handleComplaint)
	})

	r.NotFound(s.static.ServeHTTP)

	return r
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
