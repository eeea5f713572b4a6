package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/framefolio/framefolio/pkg/auth"
	"github.com/framefolio/framefolio/pkg/config"
)

func CreateMux(c config.FramefolioConfig, apiFunctions *FramefolioAPI, gate *auth.Gate) *chi.Mux {
	r := chi.NewRouter()
	r.Use(RequestIDMiddleware)
	if c.Prometheus.Enabled {
		r.Use(PrometheusMiddleware)
	}

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "PUT", "POST", "DELETE", "HEAD", "OPTION"},
		AllowedHeaders:   []string{"User-Agent", "Content-Type", "Accept", "Accept-Encoding", "Accept-Language", "Cache-Control", "Connection", "DNT", "Host", "Origin", "Pragma", "Referer"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300, // Maximum value not ignored by any of major browsers
	}))

	r.Use(gate.Middleware)

	r.Get("/healthcheck", apiFunctions.Healthcheck)
	if c.Prometheus.Enabled {
		r.Handle("/metrics", promhttp.Handler())
	}

	r.Get("/api/auth/login", apiFunctions.sessions.Login)
	r.Get("/api/auth/callback", apiFunctions.sessions.Callback)
	r.Get("/api/auth/logout", apiFunctions.sessions.Logout)
	r.Get("/api/auth/me", apiFunctions.sessions.Me)

	r.Route("/api/galleries", func(r chi.Router) {
		r.Get("/", apiFunctions.ListGalleries)
		r.Post("/share", apiFunctions.CreateShareLink)
		r.Get("/validate-token", apiFunctions.ValidateShareToken)
		r.Get("/{slug}", apiFunctions.GetGallery)
	})

	// The path a shared URL lands on.
	r.Get("/galleries/{slug}", apiFunctions.GetGallery)
	r.Get("/galleries", apiFunctions.ListGalleries)

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/galleries", http.StatusMovedPermanently)
	})

	return r
}
