package router

import (
	"time"

	"salonemart/config"
	"salonemart/internal/cache"
	"salonemart/internal/domain"
	"salonemart/internal/handler"
	"salonemart/internal/middleware"
	"salonemart/internal/repository"
	"salonemart/internal/service"
	"salonemart/pkg/payment"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"
)

func Setup(cfg *config.Config, db *gorm.DB, redisClient *redis.Client, provider payment.Provider) *gin.Engine {
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())

	ipLimiter := middleware.NewRateLimiter(redisClient, 100, 60*time.Second)
	moneyLimiter := middleware.NewRateLimiter(redisClient, 10, 60*time.Second)
	r.Use(middleware.RateLimitByIP(ipLimiter))

	// Repositories
	userRepo := repository.NewUserRepository(db)
	ledgerRepo := repository.NewLedgerRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	webhookRepo := repository.NewWebhookEventRepository(db)
	outboxRepo := repository.NewOutboxRepository(db)

	balances := cache.NewBalanceCache(redisClient, cfg.Redis.BalanceTTL)

	// Event publishing is outbox-backed; without brokers the sender never
	// runs, so suppress enqueueing entirely.
	walletTopic, escrowTopic := cfg.Kafka.WalletTopic, cfg.Kafka.EscrowTopic
	if len(cfg.Kafka.Brokers) == 0 {
		walletTopic, escrowTopic = "", ""
	}

	// Services
	authSvc := service.NewAuthService(cfg, userRepo)
	walletSvc := service.NewWalletService(ledgerRepo, balances, cfg.Monime.Currency)
	payoutSvc := service.NewPayoutService(ledgerRepo, userRepo, webhookRepo, outboxRepo, provider, balances,
		cfg.Monime.Currency, cfg.Fees.WithdrawalRate, walletTopic)
	escrowSvc := service.NewEscrowService(orderRepo, ledgerRepo, userRepo, balances, cfg.Fees.ReleaseRate, escrowTopic)
	consistencySvc := service.NewConsistencyService(ledgerRepo, orderRepo, cfg.Consistency)

	// Handlers
	authHandler := handler.NewAuthHandler(authSvc)
	walletHandler := handler.NewWalletHandler(walletSvc, payoutSvc)
	withdrawalHandler := handler.NewWithdrawalHandler(payoutSvc)
	orderHandler := handler.NewOrderHandler(escrowSvc)
	adminHandler := handler.NewAdminHandler(escrowSvc, consistencySvc, userRepo)
	webhookHandler := handler.NewWebhookHandler(payoutSvc)

	authMw := middleware.AuthRequired(&cfg.JWT)
	moneyMw := middleware.RateLimitByUser(moneyLimiter)

	api := r.Group("/api/v1")
	{
		authGroup := api.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
			authGroup.POST("/refresh", authHandler.Refresh)
		}

		me := api.Group("/me")
		me.Use(authMw)
		{
			me.GET("/wallet", walletHandler.GetBalance)
			me.GET("/wallet/transactions", walletHandler.GetTransactions)
			me.POST("/wallet/deposit", moneyMw, walletHandler.Deposit)
			me.POST("/withdraw", moneyMw, withdrawalHandler.Create)
			me.GET("/orders", orderHandler.List)
		}

		orders := api.Group("/orders")
		orders.Use(authMw)
		{
			orders.POST("", moneyMw, middleware.RequireRole(domain.RoleBuyer), orderHandler.Create)
			orders.GET("/:orderNo", orderHandler.Get)
			orders.POST("/:orderNo/ship", middleware.RequireRole(domain.RoleSeller), orderHandler.Ship)
			orders.POST("/:orderNo/confirm-delivery", middleware.RequireRole(domain.RoleBuyer), orderHandler.ConfirmDelivery)
			orders.POST("/:orderNo/cancel", orderHandler.Cancel)
			orders.POST("/:orderNo/dispute", middleware.RequireRole(domain.RoleBuyer), orderHandler.Dispute)
		}

		admin := api.Group("/admin")
		admin.Use(authMw, middleware.AdminRequired())
		{
			admin.POST("/orders/:orderNo/resolve-dispute", adminHandler.ResolveDispute)
			admin.GET("/consistency-report", adminHandler.ConsistencyReport)
			admin.POST("/users/:id/freeze", adminHandler.FreezeUser)
			admin.POST("/users/:id/unfreeze", adminHandler.UnfreezeUser)
		}

		api.POST("/webhooks/monime", webhookHandler.HandleMonime)
	}

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	return r
}
