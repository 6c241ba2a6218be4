package rest

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	core_port "listing-service/internal/core/port"
)

type ServerConfig struct {
	Port           string
	AllowedOrigins []string
	// MetricsHandler отдает /metrics; nil - глобальный реестр Prometheus
	MetricsHandler http.Handler
}

// Server - REST API сервиса каталога.
type Server struct {
	httpServer *http.Server
	logger     core_port.LoggerPort
}

// NewServer собирает роутер. Если admin == nil, маршруты админки не монтируются.
func NewServer(cfg ServerConfig, listings *ListingHandler, admin *AdminHandler, adminAuth func(http.Handler) http.Handler, baseLogger core_port.LoggerPort) *Server {
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           NewRouter(cfg, listings, admin, adminAuth, baseLogger),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return &Server{httpServer: srv, logger: baseLogger}
}

func NewRouter(cfg ServerConfig, listings *ListingHandler, admin *AdminHandler, adminAuth func(http.Handler) http.Handler, baseLogger core_port.LoggerPort) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RealIP, LoggerMiddleware(baseLogger), middleware.Recoverer)

	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Trace-ID"},
		ExposedHeaders:   []string{"X-Trace-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	metricsHandler := cfg.MetricsHandler
	if metricsHandler == nil {
		metricsHandler = promhttp.Handler()
	}
	r.Method(http.MethodGet, "/metrics", metricsHandler)
	r.Get("/health", listings.Health)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", listings.Health)
		r.Get("/listings", listings.GetListings)
		r.Get("/branches/{branchID}", listings.GetBranch)
		r.Get("/apartments/{apartmentID}", listings.GetApartment)
		r.Get("/rooms/{roomID}", listings.GetRoom)
		r.Get("/booking-link", listings.GetBookingLink)

		if admin == nil {
			return
		}
		r.Route("/admin", func(r chi.Router) {
			if adminAuth != nil {
				r.Use(adminAuth)
			}

			r.Get("/branches", admin.ListBranches)
			r.Post("/branches", admin.CreateBranch)
			r.Put("/branches/{branchID}", admin.UpdateBranch)
			r.Delete("/branches/{branchID}", admin.DeleteBranch)

			r.Get("/apartments", admin.ListApartments)
			r.Post("/apartments", admin.CreateApartment)
			r.Put("/apartments/{apartmentID}", admin.UpdateApartment)
			r.Delete("/apartments/{apartmentID}", admin.DeleteApartment)

			r.Get("/rooms", admin.ListRooms)
			r.Post("/rooms", admin.CreateRoom)
			r.Put("/rooms/{roomID}", admin.UpdateRoom)
			r.Delete("/rooms/{roomID}", admin.DeleteRoom)

			r.Post("/images", admin.UploadImage)
			r.Post("/listings/refresh", admin.RefreshListings)
		})
	})

	return r
}

// Start запускает HTTP-сервер.
func (s *Server) Start() error {
	s.logger.Info("Starting REST API server", core_port.Fields{"address": s.httpServer.Addr})
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		s.logger.Error("Could not start server", err, nil)
		return fmt.Errorf("could not start server: %w", err)
	}
	return nil
}

// Stop корректно останавливает сервер.
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Stopping REST API server...", nil)
	return s.httpServer.Shutdown(ctx)
}
