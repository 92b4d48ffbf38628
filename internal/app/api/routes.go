package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	// Регистрация Swagger-спецификации.
	_ "github.com/magabrotheeeer/app-despesas/docs"
	"github.com/magabrotheeeer/app-despesas/internal/config"
	"github.com/magabrotheeeer/app-despesas/internal/http/handlers/admin/stats"
	adminsubscription "github.com/magabrotheeeer/app-despesas/internal/http/handlers/admin/subscription"
	"github.com/magabrotheeeer/app-despesas/internal/http/handlers/admin/users"
	"github.com/magabrotheeeer/app-despesas/internal/http/handlers/auth/login"
	"github.com/magabrotheeeer/app-despesas/internal/http/handlers/auth/logout"
	"github.com/magabrotheeeer/app-despesas/internal/http/handlers/auth/profile"
	"github.com/magabrotheeeer/app-despesas/internal/http/handlers/auth/refresh"
	"github.com/magabrotheeeer/app-despesas/internal/http/handlers/auth/register"
	"github.com/magabrotheeeer/app-despesas/internal/http/handlers/health"
	"github.com/magabrotheeeer/app-despesas/internal/http/handlers/payment/pixcancel"
	"github.com/magabrotheeeer/app-despesas/internal/http/handlers/payment/pixcreate"
	"github.com/magabrotheeeer/app-despesas/internal/http/handlers/payment/pixread"
	"github.com/magabrotheeeer/app-despesas/internal/http/handlers/report/summary"
	"github.com/magabrotheeeer/app-despesas/internal/http/handlers/transaction/create"
	"github.com/magabrotheeeer/app-despesas/internal/http/handlers/transaction/list"
	"github.com/magabrotheeeer/app-despesas/internal/http/handlers/transaction/read"
	"github.com/magabrotheeeer/app-despesas/internal/http/handlers/transaction/remove"
	"github.com/magabrotheeeer/app-despesas/internal/http/handlers/transaction/update"
	trialstart "github.com/magabrotheeeer/app-despesas/internal/http/handlers/trial/start"
	trialstatus "github.com/magabrotheeeer/app-despesas/internal/http/handlers/trial/status"
	"github.com/magabrotheeeer/app-despesas/internal/http/middlewarectx"
	"github.com/magabrotheeeer/app-despesas/internal/http/response"
	"github.com/magabrotheeeer/app-despesas/internal/lib/apperr"
)

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, cfg *config.Config, svc Services) {
	generalLimit := middlewarectx.NewIPLimiter(cfg.RateLimit.GeneralRequests, cfg.RateLimit.Window)
	authLimit := middlewarectx.NewIPLimiter(cfg.RateLimit.AuthRequests, cfg.RateLimit.Window)

	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
		middlewarectx.MetricsMiddleware,
	)

	r.Get("/", health.New(logger).ServeHTTP)
	r.Get("/health/db", health.NewDB(logger, svc.DB).ServeHTTP)
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/docs/*", httpSwagger.WrapHandler)

	r.Group(func(r chi.Router) {
		r.Use(middlewarectx.RateLimitMiddleware(generalLimit, logger))

		// Открытые конечные точки со строгим лимитом
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.RateLimitMiddleware(authLimit, logger))
			r.Post("/auth/register", register.New(logger, svc.Auth).ServeHTTP)
			r.Post("/auth/login", login.New(logger, svc.Auth).ServeHTTP)
			r.Post("/auth/refresh", refresh.New(logger, svc.Auth).ServeHTTP)
		})

		// Группа с JWT аутентификацией и проверкой прав по префиксам
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(svc.Auth, logger))
			r.Use(middlewarectx.EntitlementMiddleware(middlewarectx.Rules{
				PremiumPrefixes: cfg.Entitlement.PremiumPrefixes,
				AdminPrefixes:   cfg.Entitlement.AdminPrefixes,
				UpgradeURL:      cfg.Entitlement.UpgradeURL,
			}, logger))

			r.Post("/auth/logout", logout.New(logger, svc.Auth).ServeHTTP)
			r.Get("/auth/profile", profile.New(logger, svc.Auth).ServeHTTP)

			r.Post("/trial/start", trialstart.New(logger, svc.Trial).ServeHTTP)
			r.Get("/trial/status", trialstatus.New(logger, svc.Trial).ServeHTTP)

			r.Get("/transactions", list.New(logger, svc.Transactions).ServeHTTP)
			r.Post("/transactions", create.New(logger, svc.Transactions).ServeHTTP)
			r.Get("/transactions/{id}", read.New(logger, svc.Transactions).ServeHTTP)
			r.Put("/transactions/{id}", update.New(logger, svc.Transactions).ServeHTTP)
			r.Delete("/transactions/{id}", remove.New(logger, svc.Transactions).ServeHTTP)
			r.Get("/reports/summary", summary.New(logger, svc.Transactions).ServeHTTP)

			r.Post("/payments/pix", pixcreate.New(logger, svc.Payments).ServeHTTP)
			r.Get("/payments/pix/{id}", pixread.New(logger, svc.Payments).ServeHTTP)
			r.Post("/payments/pix/{id}/cancel", pixcancel.New(logger, svc.Payments).ServeHTTP)

			r.Get("/admin/users", users.New(logger, svc.Entitlements).ServeHTTP)
			r.Get("/admin/stats", stats.New(logger, svc.Entitlements).ServeHTTP)
			r.Put("/admin/users/{id}/subscription", adminsubscription.New(logger, svc.Entitlements).ServeHTTP)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		response.Fail(w, r, logger, apperr.ErrEndpointNotFound)
	})
}
