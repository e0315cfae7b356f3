package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/maltedev/terraplen/internal/api"
	"github.com/maltedev/terraplen/internal/app"
	"github.com/maltedev/terraplen/internal/cache"
	"github.com/maltedev/terraplen/internal/config"
	"github.com/maltedev/terraplen/internal/database"
	"github.com/maltedev/terraplen/internal/parser"
	"github.com/maltedev/terraplen/internal/scraper"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := cfg.Logging.NewLogger()
	slog.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid config", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var (
		store       api.EntityStore
		outboxStats api.OutboxStats
		pages       cache.RedisClient
		redisClient *redis.Client
	)

	if cfg.RedisEnabled() {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()

		if err := redisClient.Ping(ctx).Err(); err != nil {
			logger.Error("failed to connect to redis", "error", err)
			os.Exit(1)
		}
		pages = redisClient
	}

	if cfg.PersistenceEnabled() {
		db, err := database.New(ctx, database.Config{
			URL:      cfg.Database.URL,
			MaxConns: cfg.Database.MaxConns,
		})
		if err != nil {
			logger.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer db.Close()

		if err := db.EnsureSchema(ctx); err != nil {
			logger.Error("failed to prepare schema", "error", err)
			os.Exit(1)
		}
		store = database.NewEntityStore(db, cfg.Redis.EntityStream)

		if redisClient != nil {
			relay := database.NewRelay(db, redisClient, logger, database.RelayConfig{
				PollInterval: cfg.Redis.PollInterval,
				BatchSize:    cfg.Redis.BatchSize,
			})
			outboxStats = relay

			go func() {
				if err := relay.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
					logger.Error("relay stopped with error", "error", err)
				}
			}()
		} else {
			logger.Warn("REDIS_ADDR not set, scraped entity events stay in the outbox")
		}
	}

	sessions := app.NewSessions(cfg, pages, logger)
	defer sessions.Close()

	registry := scraper.NewRegistry(sessions.Open, parser.NewAmazonParser(), logger)
	handlers := api.NewHandlers(api.FromRegistry(registry), store, outboxStats, cfg.Scraper.Country, logger)

	server := &http.Server{
		Addr:         net.JoinHostPort(cfg.Server.Host, cfg.Server.Port),
		Handler:      api.NewRouter(handlers, cfg.Server.AllowedOrigins, cfg.Server.WriteTimeout),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		logger.Info("shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("server shutdown failed", "error", err)
		}
	}()

	logger.Info("server starting",
		"addr", server.Addr,
		"country", cfg.Scraper.Country,
		"backend", cfg.Scraper.Backend,
		"persistence", cfg.PersistenceEnabled(),
		"redis", cfg.RedisEnabled())

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}
