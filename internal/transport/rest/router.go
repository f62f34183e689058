package rest

import (
	"log/slog"
	"net/http"

	"github.com/frahmantamala/kudos-points/internal/account"
	"github.com/frahmantamala/kudos-points/internal/auth"
	"github.com/frahmantamala/kudos-points/internal/circulation"
	"github.com/frahmantamala/kudos-points/internal/department"
	"github.com/frahmantamala/kudos-points/internal/reset"
	"github.com/frahmantamala/kudos-points/internal/transfer"
	"github.com/frahmantamala/kudos-points/internal/transport/middleware"
	"github.com/frahmantamala/kudos-points/internal/transport/swagger"
	"github.com/go-chi/chi"
)

// Handlers groups every domain handler mounted under /api/v1.
type Handlers struct {
	Health      *HealthHandler
	Auth        *auth.Handler
	Account     *account.Handler
	Transfer    *transfer.Handler
	Circulation *circulation.Handler
	Department  *department.Handler
	Reset       *reset.Handler
}

type Options struct {
	AllowedOrigins string
	LoginRateLimit middleware.RateLimitConfig
	OpenAPIPath    string
}

func RegisterAllRoutes(router *chi.Mux, h Handlers, opts Options, logger *slog.Logger) {
	rbac := auth.NewRBACAuthorization(logger)

	router.Use(middleware.CORS(opts.AllowedOrigins))
	router.Use(middleware.RequestID)
	router.Use(middleware.LoggingMiddleware(logger))
	router.Use(middleware.RecoveryMiddleware(logger))

	openAPIPath := opts.OpenAPIPath
	if openAPIPath == "" {
		openAPIPath = "./api/openapi.yml"
	}
	router.Get("/openapi.yml", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, openAPIPath)
	})
	router.Handle("/swagger/*", swagger.Handler())

	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", h.Health.Health)
		r.Get("/ping", h.Health.Ping)

		r.Route("/auth", func(ar chi.Router) {
			ar.With(middleware.RateLimiter(opts.LoginRateLimit)).Post("/login", h.Auth.Login)
			ar.Post("/refresh", h.Auth.RefreshToken)
		})

		r.Group(func(pr chi.Router) {
			pr.Use(h.Auth.AuthMiddleware)

			pr.Get("/me", h.Account.GetCurrentAccount)
			pr.Get("/accounts", h.Account.ListAccounts)
			pr.Get("/accounts/{id}", h.Account.GetAccount)
			pr.Get("/accounts/{id}/transfers", h.Transfer.AccountTransfers)

			pr.Post("/transfers", h.Transfer.SendPoints)
			pr.Get("/transfers", h.Transfer.ListTransfers)
			pr.Get("/transfers/recent", h.Transfer.RecentTransfers)

			pr.Get("/departments", h.Department.ListDepartments)
			pr.Get("/departments/rankings", h.Department.GetRankings)
			pr.Get("/circulation", h.Circulation.GetCirculation)

			pr.Route("/admin", func(adm chi.Router) {
				adm.Group(func(ar chi.Router) {
					ar.Use(rbac.RequireAdmin())
					ar.Get("/stats", h.Circulation.GetSystemStats)
					ar.Post("/accounts", h.Account.CreateAccount)
					ar.Patch("/accounts/{id}", h.Account.UpdateAccount)
					ar.Put("/accounts/{id}/balance", h.Account.SetBalance)
					ar.Post("/departments/{department}/distribute", h.Department.DistributeQuarterly)
					ar.Post("/teams/{department}/distribute", h.Department.DistributeTeam)
					ar.Post("/reset", h.Reset.ResetBalances)
				})

				adm.Group(func(sr chi.Router) {
					sr.Use(rbac.RequireSuperAdmin())
					sr.Put("/circulation", h.Circulation.SetCirculation)
					sr.Post("/set-balance", h.Account.SetBalanceDirect)
					sr.Put("/accounts/{id}/name", h.Account.RenameAccount)
					sr.Put("/accounts/{id}/role", h.Account.SetRole)
					sr.Post("/departments/{department}/adjustments", h.Department.AdjustDepartment)
					sr.Get("/adjustments", h.Department.ListAdjustments)
				})
			})
		})
	})
}
