package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/user/classifier-service/internal/delivery/http/handler"
	"github.com/user/classifier-service/internal/delivery/http/middleware"
)

func New(h *handler.Handler) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Logging)
	r.Use(middleware.Metrics)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(30 * time.Second))

	// Prometheus metrics endpoint
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", h.HandleHealthCheck)
		r.Get("/status", h.HandleWorkerStatus)
		r.Post("/classify", h.HandleSubmitClassify)
		r.Get("/classify/{productID}", h.HandleGetSubmissionStatus)
		r.Get("/images/{imageID}", h.HandleGetImage)
		r.Get("/objects/orphans", h.HandleListOrphans)
	})

	return r
}
