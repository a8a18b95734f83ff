package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"shopco-api/internal/auth"
	"shopco-api/internal/cache"
	"shopco-api/internal/client"
	"shopco-api/internal/config"
	"shopco-api/internal/logger"
	"shopco-api/internal/messaging"
	"shopco-api/internal/messaging/kafka"
	"shopco-api/internal/notify"
	"shopco-api/internal/repository"
	"shopco-api/internal/server"
	"shopco-api/internal/service"
	"shopco-api/internal/storage"
	"syscall"
	"time"

	gcs "cloud.google.com/go/storage"
	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
)

func main() {
	// load .env into os.Environ
	if err := godotenv.Load(); err != nil {
		fmt.Println("No .env file found (ok in prod)")
	}

	cfg := &config.Config{}
	if err := env.Parse(cfg); err != nil {
		fmt.Printf("Failed to parse config: %v\n", err)
		os.Exit(1)
	}

	log := logger.Init(cfg.Log)
	if err := run(cfg, log); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *slog.Logger) error {
	ctx := context.Background()

	db, err := client.InitDBClient(cfg.Database)
	if err != nil {
		return err
	}

	var productCache cache.ProductCache
	var rdb *redis.Client
	if cfg.Redis.Addr != "" {
		rdb, err = client.InitRedisClient(ctx, cfg.Redis)
		if err != nil {
			log.Warn("redis unavailable, product cache disabled", "error", err)
		} else {
			defer rdb.Close()
			productCache = cache.NewRedisProductCache(rdb, cfg.Redis.ProductTTL)
		}
	}

	publisher := messaging.NewLogPublisher()
	if len(cfg.Kafka.Brokers) > 0 {
		publisher = kafka.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.TopicPrefix)
		log.Info("publishing order events to kafka", "brokers", cfg.Kafka.Brokers)
	}
	defer publisher.Close()

	imageStore, err := newImageStore(ctx, cfg.Storage)
	if err != nil {
		return err
	}

	var mailer notify.Mailer
	if cfg.Mail.SendgridAPIKey != "" {
		mailer = notify.NewSendGridMailer(cfg.Mail.SendgridAPIKey, cfg.Mail.From)
	}

	var braintreeClient client.BraintreeClient
	if cfg.BrainTree.Enabled() {
		braintreeClient = client.NewBraintreeClient(&cfg.BrainTree)
	}

	var paypalClient client.PaypalClient
	if cfg.Paypal.Enabled() {
		paypalClient = client.NewPaypalClient(&cfg.Paypal)
	}

	tokens := auth.NewTokenManager(cfg.Auth)

	userRepo := repository.NewUserRepository(db)
	brandRepo := repository.NewBrandRepository(db)
	typeRepo := repository.NewTypeRepository(db)
	brandTypeRepo := repository.NewBrandTypeRepository(db)
	productRepo := repository.NewProductRepository(db)
	infoRepo := repository.NewProductInfoRepository(db)
	cartRepo := repository.NewCartRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	idempotencyRepo := repository.NewIdempotencyKeyRepository(db)

	services := server.Services{
		User:      service.NewUserService(userRepo, tokens),
		Brand:     service.NewBrandService(brandRepo, productRepo, productCache),
		Type:      service.NewTypeService(typeRepo, productRepo, productCache),
		BrandType: service.NewBrandTypeService(brandTypeRepo, brandRepo, typeRepo),
		Product: service.NewProductService(
			productRepo, infoRepo,
			brandRepo, typeRepo,
			productCache, imageStore,
			cfg.Storage.MaxBytes,
		),
		Cart: service.NewCartService(db, cartRepo, productRepo),
		Order: service.NewOrderService(
			db,
			userRepo, cartRepo,
			orderRepo, idempotencyRepo,
			publisher, mailer,
		),
		Payment: service.NewPaymentService(
			braintreeClient, paypalClient,
			cfg.BaseURL,
			orderRepo, publisher,
		),
	}

	serverAddr := cfg.HTTP.Host + ":" + cfg.HTTP.Port

	// Init HTTP server
	srv := server.NewServer(cfg, services, tokens)

	serverErr := make(chan error, 1)
	log.Info("starting HTTP server", "addr", serverAddr, "environment", cfg.Environment.Name)
	go func() {
		if err := srv.Start(serverAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	select {
	case err := <-serverErr:
		return fmt.Errorf("http server: %w", err)
	case sig := <-sigChan:
		log.Info("signal received, starting graceful shutdown", "signal", sig.String())
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http server shutdown: %w", err)
	}
	return nil
}

// newImageStore prefers GCS when a bucket is configured and falls back to local disk.
func newImageStore(ctx context.Context, cfg config.Storage) (storage.ImageStore, error) {
	if cfg.GCSBucket == "" {
		return storage.NewLocalImageStore(cfg.Dir, cfg.URLPrefix)
	}

	gcsClient, err := gcs.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("create gcs client: %w", err)
	}
	return storage.NewGCSImageStore(gcsClient, cfg.GCSBucket), nil
}
