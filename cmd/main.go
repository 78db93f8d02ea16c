package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/fjod/quickbites/internal/cache"
	"github.com/fjod/quickbites/internal/catalog"
	"github.com/fjod/quickbites/internal/config"
	"github.com/fjod/quickbites/internal/dialogue"
	"github.com/fjod/quickbites/internal/gateway"
	httpapi "github.com/fjod/quickbites/internal/http"
	"github.com/fjod/quickbites/internal/publisher"
	"github.com/fjod/quickbites/internal/repository"
	"github.com/fjod/quickbites/internal/service"
	"github.com/fjod/quickbites/internal/store"
	"github.com/fjod/quickbites/pkg/logger"
	"github.com/fjod/quickbites/pkg/metrics"
	"github.com/fjod/quickbites/pkg/tracing"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
)

type eventPublisher interface {
	service.EventPublisher
	Close() error
}

func main() {
	if err := run(); err != nil {
		slog.Error("quickbites stopped with error", slog.Any("error", err))
		os.Exit(1)
	}
}

func run() error {
	// Configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log := logger.New(os.Stdout, cfg.LogLevel)
	slog.SetDefault(log)

	shutdownTracing, err := tracing.Init("quickbites", cfg.TracingEnabled, os.Stdout)
	if err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Set up MongoDB connection
	mongoDB, err := repository.ConnectMongoDB(ctx, cfg.MongoURI, cfg.MongoDBName)
	if err != nil {
		return err
	}
	defer mongoDB.Client().Disconnect(context.Background())

	repo := repository.NewMongoRepository(mongoDB, cfg.SessionRetention)
	if err := repo.CreateIndexes(ctx); err != nil {
		return err
	}
	log.Info("connected to MongoDB", slog.String("db", cfg.MongoDBName))

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	defer redisClient.Close()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis connection failed: %w", err)
	}
	log.Info("redis ping succeeded", slog.String("addr", cfg.RedisAddr))

	sessions := store.New(repo, cache.NewRedisCache(redisClient, 0), log)

	items, err := catalog.NewRepository(cfg.CatalogDBPath)
	if err != nil {
		return err
	}
	defer items.Close()
	if err := items.RunMigrations(cfg.CatalogMigrationsPath); err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	serverMetrics := metrics.NewServerMetrics("api", reg)

	if cfg.PaystackSecretKey == "" {
		log.Warn("PAYSTACK_SECRET_KEY is empty, payment requests will be rejected by the gateway")
	}
	paystack := gateway.NewPaystackClient(gateway.PaystackConfig{
		BaseURL:   cfg.PaystackBaseURL,
		SecretKey: cfg.PaystackSecretKey,
		Timeout:   cfg.GatewayTimeout,
	}, serverMetrics, log)

	var events eventPublisher = publisher.NopPublisher{}
	if len(cfg.KafkaBrokers) > 0 {
		events = publisher.NewOrderEventPublisher(publisher.NewKafkaWriter(cfg.OrderEventsTopic, cfg.KafkaBrokers...))
		log.Info("publishing order events", slog.String("topic", cfg.OrderEventsTopic), slog.Any("brokers", cfg.KafkaBrokers))
	}
	defer events.Close()

	engine := service.NewEngine(sessions, items, paystack, events, service.Config{
		CallbackURL:   cfg.PaystackCallbackURL,
		CustomerEmail: cfg.PaystackCustomerEmail,
	}, service.WithLogger(log))

	handler := httpapi.NewRouter(httpapi.RouterConfig{
		Chat:         httpapi.NewChatHandler(dialogue.NewRouter(engine, serverMetrics, log), cfg.RequestTimeout),
		Payment:      httpapi.NewPaymentHandler(engine, cfg.FrontendURL, cfg.RequestTimeout),
		Metrics:      serverMetrics,
		PublicDir:    cfg.PublicDir,
		SecureCookie: cfg.SecureCookie,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           handler,
		ReadHeaderTimeout: cfg.RequestTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("quickbites listening", slog.String("port", cfg.HTTPPort))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		// Wait for interrupt signal
		<-gctx.Done()
		log.Info("shutting down quickbites")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return shutdownTracing(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	log.Info("quickbites stopped")
	return nil
}
