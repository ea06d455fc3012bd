package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ready2shop/storefront/internal/catalog"
	"github.com/ready2shop/storefront/internal/events"
	"github.com/ready2shop/storefront/internal/gateway"
	"github.com/ready2shop/storefront/internal/httpapi"
	"github.com/ready2shop/storefront/internal/refdata"
	"github.com/ready2shop/storefront/pkg/logging"
)

type Config struct {
	HTTPPort        string
	DBPath          string
	MigrationsPath  string
	RefDataURL      string
	PurchaseURL     string
	RedisAddr       string
	KafkaBrokers    string
	LogFile         string
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
}

func loadConfig() *Config {
	return &Config{
		HTTPPort:        getEnv("HTTP_PORT", "8080"),
		DBPath:          getEnv("DB_PATH", "./storefront.db"),
		MigrationsPath:  getEnv("MIGRATIONS_PATH", "./migrations"),
		RefDataURL:      getEnv("REFDATA_URL", "http://localhost:8081/api"),
		PurchaseURL:     getEnv("PURCHASE_URL", "http://localhost:8082/api/checkout/purchase"),
		RedisAddr:       getEnv("REDIS_ADDR", ""),
		KafkaBrokers:    getEnv("KAFKA_BROKERS", ""),
		LogFile:         getEnv("LOG_FILE", "./logs/storefront.log"),
		RequestTimeout:  30 * time.Second,
		ShutdownTimeout: 10 * time.Second,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func main() {
	cfg := loadConfig()
	log := logging.Init("storefront", cfg.LogFile)

	repo, err := catalog.NewRepository(cfg.DBPath)
	if err != nil {
		log.Error("failed to open catalog database", "error", err)
		os.Exit(1)
	}
	defer repo.Close()

	if err := repo.RunMigrations(cfg.MigrationsPath); err != nil {
		log.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	var provider refdata.Provider = refdata.NewHTTPProvider(cfg.RefDataURL, cfg.RequestTimeout)
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer client.Close()
		provider = refdata.NewCached(provider, client, logging.New("refdata-cache"))
		log.Info("reference data cache enabled", "redis_addr", cfg.RedisAddr)
	}

	var publisher events.Publisher
	if cfg.KafkaBrokers != "" {
		kafkaPublisher := events.NewKafkaPublisher(strings.Split(cfg.KafkaBrokers, ",")...)
		defer kafkaPublisher.Close()
		publisher = kafkaPublisher
		log.Info("order event publishing enabled", "brokers", cfg.KafkaBrokers)
	}

	orderGateway := gateway.NewClient(cfg.PurchaseURL, cfg.RequestTimeout)
	registry := httpapi.NewRegistry(provider, orderGateway, publisher, logging.New("checkout"))
	router := httpapi.NewRouter(registry, repo, provider, cfg.RequestTimeout)

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("storefront starting", "port", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	log.Info("server exited")
}
