package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/xavierca1/proposal-control/internal/infra/http/middleware"
)

type RouterDeps struct {
	Auth          *AuthHandler
	Proposals     *ProposalHandler
	Dashboard     *DashboardHandler
	Notifications *NotificationHandler
	Reports       *ReportHandler
	Health        *HealthHandler
	Gate          middleware.SessionState
	CORSOrigins   []string
	// TrustProxy liga o RealIP; só faz sentido atrás de um proxy que reescreve X-Forwarded-For.
	TrustProxy bool
}

func NewRouter(d RouterDeps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	if d.TrustProxy {
		r.Use(chimw.RealIP)
	}
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(middleware.Metrics)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   d.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/healthz", d.Health.Handle)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/auth/session", d.Auth.Session)
		r.Post("/auth/login", d.Auth.Login)
		r.Post("/auth/logout", d.Auth.Logout)
		r.Get("/notifications", d.Notifications.Handle)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireSession(d.Gate))

			r.Get("/proposals", d.Proposals.List)
			r.Post("/proposals/refresh", d.Proposals.Refresh)
			r.Post("/proposals", d.Proposals.Create)
			r.Put("/proposals/{id}", d.Proposals.Update)
			r.Delete("/proposals/{id}", d.Proposals.Delete)
			r.Get("/dashboard", d.Dashboard.Handle)
			r.Post("/reports/follow-ups", d.Reports.FollowUps)
		})
	})

	return r
}
