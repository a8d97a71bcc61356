package api

import (
	"github.com/ayo6706/banking-core/internal/api/handler"
	"github.com/ayo6706/banking-core/internal/api/middleware"
	"github.com/ayo6706/banking-core/internal/api/spec"
	"github.com/ayo6706/banking-core/internal/config"
	"github.com/ayo6706/banking-core/internal/idempotency"
	"github.com/ayo6706/banking-core/internal/repository"
	"github.com/ayo6706/banking-core/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type Router struct {
	cfg       *config.Config
	logger    *zap.Logger
	db        *pgxpool.Pool
	redis     redis.Cmdable
	store     *repository.Store
	idemStore *idempotency.Store
}

func NewRouter(cfg *config.Config, logger *zap.Logger, db *pgxpool.Pool, redisClient redis.Cmdable, store *repository.Store, idemStore *idempotency.Store) *Router {
	return &Router{
		cfg:       cfg,
		logger:    logger,
		db:        db,
		redis:     redisClient,
		store:     store,
		idemStore: idemStore,
	}
}

func (api *Router) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.TraceMiddleware)
	r.Use(middleware.LoggingMiddleware(api.logger))
	r.Use(middleware.MetricsMiddleware)
	r.Use(middleware.RecoverMiddleware(api.logger))

	authSvc := service.NewAuthService(api.store)
	accountSvc := service.NewAccountService(api.store)
	ledgerSvc := service.NewLedgerService(api.store, api.cfg.LedgerMaxAmount)

	authHandler := handler.NewAuthHandler(authSvc, api.cfg.JWTExpiry)
	userHandler := handler.NewUserHandler(api.store.Repo())
	accountHandler := handler.NewAccountHandler(accountSvc, ledgerSvc)
	transferHandler := handler.NewTransferHandler(accountSvc, ledgerSvc)
	transactionHandler := handler.NewTransactionHandler(ledgerSvc)
	healthHandler := handler.NewHealthHandler(api.db, api.redis)

	r.Get("/healthz/live", healthHandler.Live)
	r.Get("/healthz/ready", healthHandler.Ready)
	r.Method("GET", "/metrics", promhttp.Handler())
	r.Get("/openapi.yaml", spec.OpenAPIHandler())

	// Public routes
	r.Group(func(r chi.Router) {
		r.Use(middleware.PublicRateLimiter(api.cfg.PublicRateLimitRPS))
		r.Post("/v1/auth/register", authHandler.Register)
		r.Post("/v1/auth/login", authHandler.Login)
	})

	// Protected routes
	r.Group(func(r chi.Router) {
		r.Use(middleware.AuthMiddleware)
		r.Use(middleware.AuthRateLimiter(api.cfg.AuthRateLimitRPS))

		r.Post("/v1/auth/change-password", authHandler.ChangePassword)
		r.Get("/v1/users/me", userHandler.Me)

		r.Post("/v1/accounts", accountHandler.Create)
		r.Get("/v1/accounts", accountHandler.List)
		r.Get("/v1/accounts/{id}", accountHandler.Get)
		r.Put("/v1/accounts/{id}", accountHandler.Update)
		r.Delete("/v1/accounts/{id}", accountHandler.Deactivate)
		r.Get("/v1/accounts/{id}/balance", accountHandler.GetBalance)
		r.Get("/v1/accounts/{id}/transactions", accountHandler.ListTransactions)
		r.Post("/v1/accounts/{id}/deposit", accountHandler.Deposit)
		r.Post("/v1/accounts/{id}/withdraw", accountHandler.Withdraw)

		r.With(middleware.IdempotencyMiddleware(api.idemStore, api.logger)).
			Post("/v1/transfers", transferHandler.Create)

		r.Get("/v1/transactions", transactionHandler.List)
		r.Get("/v1/transactions/stats", transactionHandler.Stats)
		r.Get("/v1/transactions/{id}", transactionHandler.Get)
	})

	return r
}
