package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/fjod/gamestore/internal/backend"
	"github.com/fjod/gamestore/internal/cache"
	"github.com/fjod/gamestore/internal/chat"
	"github.com/fjod/gamestore/internal/config"
	"github.com/fjod/gamestore/internal/events"
	h "github.com/fjod/gamestore/internal/http"
	"github.com/fjod/gamestore/internal/ledger"
	"github.com/fjod/gamestore/internal/logger"
	"github.com/fjod/gamestore/internal/payment"
	"github.com/fjod/gamestore/internal/repository"
	"github.com/fjod/gamestore/internal/service"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type indexer interface {
	CreateIndexes(ctx context.Context) error
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		// logger is not configured yet
		zap.NewExample().Fatal("invalid configuration", zap.Error(err))
	}

	log, err := logger.New(cfg.Env)
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	ctx := context.Background()

	// MongoDB
	mongoDB, err := repository.ConnectMongoDB(ctx, cfg.MongoURI, cfg.MongoDBName)
	if err != nil {
		log.Fatal("failed to connect to MongoDB", zap.Error(err))
	}
	log.Info("connected to MongoDB", zap.String("db", cfg.MongoDBName))

	carts := repository.NewCartRepository(mongoDB)
	orders := repository.NewOrderRepository(mongoDB)
	library := repository.NewLibraryRepository(mongoDB)
	games := repository.NewGameRepository(mongoDB)
	users := repository.NewUserRepository(mongoDB)
	posts := repository.NewPostRepository(mongoDB)
	comments := repository.NewCommentRepository(mongoDB)
	reviews := repository.NewReviewRepository(mongoDB)

	for _, repo := range []any{carts, orders, library} {
		if ix, ok := repo.(indexer); ok {
			if err := ix.CreateIndexes(ctx); err != nil {
				log.Fatal("failed to create indexes", zap.Error(err))
			}
		}
	}

	// Redis
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       0,
	})
	defer redisClient.Close()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Fatal("redis connection failed", zap.Error(err))
	}
	log.Info("redis ping succeeded", zap.String("addr", cfg.RedisAddr))

	// Backend-as-a-service: identity and blob storage
	backendClient, err := backend.New(backend.Config{
		URL:    cfg.BackendURL,
		APIKey: cfg.BackendAPIKey,
		Bucket: cfg.StorageBucket,
	})
	if err != nil {
		log.Fatal("failed to create backend client", zap.Error(err))
	}

	chatClient := chat.NewClient(chat.Config{
		URL:    cfg.ChatURL,
		APIKey: cfg.ChatKey,
		Model:  cfg.ChatModel,
	}, log)

	// Kafka publisher for order-completed events
	publisher := events.NewKafkaPublisher(cfg.OrdersTopic, cfg.KafkaBrokers...)
	defer func() {
		if err := publisher.Close(); err != nil {
			log.Warn("error closing kafka publisher", zap.Error(err))
		}
	}()

	// Sales ledger
	cred := &ledger.Credentials{
		Host:              cfg.Postgres.Host,
		Port:              cfg.Postgres.Port,
		User:              cfg.Postgres.User,
		Password:          cfg.Postgres.Password,
		DBName:            cfg.Postgres.DBName,
		MigrationsDirPath: cfg.MigrationsPath,
	}
	ledgerRepo, err := ledger.NewRepository(cred)
	if err != nil {
		log.Fatal("failed to connect to ledger database", zap.Error(err))
	}
	defer ledgerRepo.Close()
	if err := ledgerRepo.RunMigrations(cred); err != nil {
		log.Fatal("failed to run ledger migrations", zap.Error(err))
	}

	consumerCtx, stopConsumer := context.WithCancel(ctx)
	consumer := ledger.NewConsumer(ledgerRepo, log.Named("ledger"), cfg.OrdersTopic, cfg.KafkaBrokers...)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		consumer.Run(consumerCtx)
	}()

	// Use cases
	effects := service.NewSideEffects(service.SideEffectDeps{
		Posts:     posts,
		Library:   library,
		Reviews:   reviews,
		Games:     games,
		Blobs:     backendClient,
		Publisher: publisher,
	}, log)

	cartService := service.NewCartService(carts, cache.NewRedisCache(redisClient), log)
	catalog := service.NewCatalogService(games)

	router := h.NewRouter(h.RouterConfig{
		Logger:         log,
		JWTSecret:      cfg.JWTSecret,
		RequestTimeout: cfg.RequestTimeout,
		ChatRate:       cfg.ChatRatePerSecond,
		ChatBurst:      cfg.ChatBurst,

		Auth:      service.NewAuthService(backendClient, users),
		Catalog:   catalog,
		Reviews:   service.NewReviewService(reviews, library, users, effects),
		Carts:     cartService,
		AddToCart: service.NewAddToCart(games, library, cartService),
		Checkout:  service.NewCheckoutService(payment.NewSimulatedGateway(cfg.PaymentDelay), orders, cartService, effects, log),
		Orders:    service.NewOrderService(orders),
		Library:   service.NewLibraryService(library, games),
		Community: service.NewCommunityService(posts, comments, users, effects),
		Profiles:  service.NewProfileService(users, backendClient, effects, cfg.CDNCloudName),
		Assistant: service.NewRecommendationService(chatClient, catalog),
	})

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 40 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("gamestore API starting", zap.String("port", cfg.HTTPPort))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server error", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
	}

	effects.Wait()
	stopConsumer()
	consumer.Close()
	wg.Wait()

	if err := mongoDB.Client().Disconnect(shutdownCtx); err != nil {
		log.Warn("error disconnecting from MongoDB", zap.Error(err))
	}
	log.Info("server exited")
}
