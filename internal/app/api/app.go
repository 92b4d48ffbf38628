// Package api собирает HTTP API: хранилище, кеш, сервисы и маршруты.
package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"

	"github.com/magabrotheeeer/app-despesas/internal/cache"
	"github.com/magabrotheeeer/app-despesas/internal/config"
	"github.com/magabrotheeeer/app-despesas/internal/lib/jwt"
	"github.com/magabrotheeeer/app-despesas/internal/lib/password"
	"github.com/magabrotheeeer/app-despesas/internal/lib/sl"
	"github.com/magabrotheeeer/app-despesas/internal/migrations"
	"github.com/magabrotheeeer/app-despesas/internal/paymentprovider"
	authservice "github.com/magabrotheeeer/app-despesas/internal/services/auth"
	"github.com/magabrotheeeer/app-despesas/internal/services/entitlement"
	paymentservice "github.com/magabrotheeeer/app-despesas/internal/services/payment"
	"github.com/magabrotheeeer/app-despesas/internal/services/transaction"
	"github.com/magabrotheeeer/app-despesas/internal/services/trial"
	"github.com/magabrotheeeer/app-despesas/internal/storage"
)

const shutdownTimeout = 15 * time.Second

// App представляет HTTP API приложения.
type App struct {
	server *http.Server
	logger *slog.Logger
	db     *storage.Storage
	cache  *cache.Cache
}

// Services сервисы, которые обслуживают маршруты.
type Services struct {
	Auth         *authservice.Service
	Entitlements *entitlement.Service
	Trial        *trial.Service
	Transactions *transaction.Service
	Payments     *paymentservice.PaymentService
	DB           *storage.Storage
}

// New создает приложение: хранилище, кеш, сервисы и маршруты.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := storage.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	if err = migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
		_ = db.Close()
		return nil, err
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	hasher, err := password.NewHasher(cfg.Security.BcryptRounds)
	if err != nil {
		_ = db.Close()
		_ = cacheRedis.Close()
		return nil, fmt.Errorf("api.New: %w", err)
	}

	entitlements := entitlement.NewService(db, cacheRedis, cfg.Entitlement.StatsCacheTTL, logger)
	svc := Services{
		Auth: authservice.NewService(authservice.Deps{
			Users:        db,
			Tokens:       db,
			Revoker:      cacheRedis,
			Entitlements: entitlements,
			Hasher:       hasher,
			JWTMaker:     jwt.NewJWTMaker(cfg.JWTSecretKey, cfg.Issuer, cfg.Audience, cfg.TokenTTL.Std()),
			RefreshTTL:   cfg.RefreshTTL.Std(),
			Log:          logger,
		}),
		Entitlements: entitlements,
		Trial:        trial.NewService(db, cfg.Trial.Duration.Std(), cfg.Trial.ReminderDays, logger),
		Transactions: transaction.NewService(db, logger),
		Payments: paymentservice.New(db,
			paymentprovider.NewClient(cfg.PIX.APIURL, cfg.PIX.APIKey, cfg.PIX.Timeout),
			paymentservice.Options{
				PriceCents:  cfg.PIX.PriceCents,
				ChargeTTL:   cfg.PIX.ChargeTTL,
				Description: cfg.PIX.Description,
			}, logger),
		DB: db,
	}

	router := chi.NewRouter()
	RegisterRoutes(router, logger, cfg, svc)

	srv := &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &App{
		server: srv,
		logger: logger,
		db:     db,
		cache:  cacheRedis,
	}, nil
}

// Run запускает HTTP-сервер и останавливает его при отмене ctx.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	var err error
	select {
	case err = <-errCh:
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err = a.server.Shutdown(timeoutCtx)
	}

	if cerr := a.cache.Close(); cerr != nil {
		a.logger.Error("failed to close redis", sl.Err(cerr))
	}
	if cerr := a.db.Close(); cerr != nil {
		a.logger.Error("failed to close database", sl.Err(cerr))
	}
	return err
}
