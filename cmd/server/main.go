package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"salonemart/config"
	"salonemart/internal/cache"
	"salonemart/internal/database"
	"salonemart/internal/job"
	"salonemart/internal/repository"
	"salonemart/internal/router"
	"salonemart/pkg/events"
	"salonemart/pkg/payment"

	"github.com/go-redis/redis/v8"
)

func main() {
	cfg := config.Load(".")

	db, err := database.NewDB(&cfg.Database)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		log.Fatalf("migrate: %v", err)
	}
	database.SeedAdmin(db)

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient, err = cache.InitRedis(&cfg.Redis)
		if err != nil {
			log.Fatalf("redis: %v", err)
		}
		log.Printf("[Cache] balance cache enabled (ttl %s)", cfg.Redis.BalanceTTL)
	} else {
		log.Printf("[Cache] balance cache disabled: no redis addr configured")
	}

	var provider payment.Provider
	if cfg.Monime.APIToken != "" {
		provider = payment.NewMonimeProvider(cfg.Monime.BaseURL, cfg.Monime.SpaceID, cfg.Monime.APIToken)
		log.Printf("[Monime] live provider, space %s", cfg.Monime.SpaceID)
		if cfg.Monime.WebhookBaseURL != "" {
			log.Printf("[Monime] expecting webhooks at %s/api/v1/webhooks/monime", cfg.Monime.WebhookBaseURL)
		}
	} else {
		provider = payment.NewStubProvider()
		log.Printf("[Monime] no API token configured, using stub provider")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if len(cfg.Kafka.Brokers) > 0 {
		producer, err := events.NewProducer(cfg.Kafka.Brokers)
		if err != nil {
			log.Fatalf("kafka: %v", err)
		}
		defer producer.Close()
		sender := job.NewOutboxSender(repository.NewOutboxRepository(db), producer, cfg.Kafka.MaxRetryCount)
		go sender.Start(ctx)
	} else {
		log.Printf("[Events] outbox sender disabled: no kafka brokers configured")
	}

	engine := router.Setup(cfg, db, redisClient, provider)
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	go func() {
		log.Printf("server listening on :%s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("server shutdown: %v", err)
	}
	log.Println("server stopped")
}
