package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/UkralStul/academic-feed/internal/api"
	"github.com/UkralStul/academic-feed/internal/app"
	"github.com/UkralStul/academic-feed/internal/config"
	"github.com/UkralStul/academic-feed/internal/events"
	"github.com/UkralStul/academic-feed/internal/identity"
	"github.com/UkralStul/academic-feed/internal/logger"
	"github.com/UkralStul/academic-feed/internal/state"
	"github.com/UkralStul/academic-feed/internal/storage"
	"github.com/UkralStul/academic-feed/internal/storage/inmemory"
	"github.com/UkralStul/academic-feed/internal/storage/mongo"
	"github.com/UkralStul/academic-feed/internal/storage/postgres"
	"github.com/UkralStul/academic-feed/internal/storage/redis"
	"github.com/UkralStul/academic-feed/internal/verify"
)

func main() {
	var (
		configPath  string
		storageType string
		httpAddr    string
		logLevel    string
	)

	flag.StringVar(&configPath, "config", "", "Path to TOML config file")
	flag.StringVar(&storageType, "storage", "", "Storage type (in-memory, postgres, redis or mongo)")
	flag.StringVar(&httpAddr, "http", "", "HTTP server address in the form 'host:port'.")
	flag.StringVar(&logLevel, "log", "", "Log level: debug, info, warn, error.")
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("[server] failed to load config: %v", err)
	}

	// Флаги имеют приоритет над файлом и окружением
	if storageType != "" {
		cfg.Storage.Type = storageType
	}
	if httpAddr != "" {
		cfg.Server.Addr = httpAddr
	}
	if logLevel != "" {
		cfg.Server.LogLevel = logLevel
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("[server] invalid config: %v", err)
	}
	if !strings.Contains(cfg.Server.Addr, ":") {
		log.Warn("[server] use ':' before port number, e.g. ':8080'")
	}

	logger.Setup(cfg.Server.LogLevel)

	ctx := context.Background()

	log.Infof("[server] starting with %s storage", cfg.Storage.Type)
	store, err := openStore(ctx, cfg.Storage)
	if err != nil {
		log.Fatalf("[server] failed to open %s storage: %v", cfg.Storage.Type, err)
	}
	defer store.Close()

	hub := events.NewHub(32)
	publishers := events.Multi{hub}

	var kafkaSink *events.KafkaSink
	if cfg.KafkaEnabled() {
		if err := events.CreateTopic(cfg.Kafka.Addr, cfg.Kafka.Topic); err != nil {
			log.Warnf("[server] failed to create Kafka topic: %v", err)
		}
		kafkaSink = events.NewKafkaSink(cfg.Kafka.Addr, cfg.Kafka.Topic, cfg.Kafka.Batch)
		publishers = append(publishers, kafkaSink)
	} else {
		log.Warnf("[server] kafka was not configured, events will not be sent to Kafka")
	}

	if cfg.Gemini.APIKey == "" {
		log.Warnf("[server] GEMINI_API_KEY is not set, verification will always be unavailable")
	}
	verifier := verify.NewGemini(verify.Config{
		BaseURL: cfg.Gemini.BaseURL,
		Model:   cfg.Gemini.Model,
		APIKey:  cfg.Gemini.APIKey,
		Timeout: cfg.Gemini.Timeout,
	})

	ids := identity.New(identity.AdminSeed{
		ID:          cfg.Auth.AdminID,
		Username:    cfg.Auth.AdminUsername,
		Password:    cfg.Auth.AdminPassword,
		DisplayName: cfg.Auth.AdminDisplayName,
	})
	repo := state.NewRepo(store, cfg.Auth.AdminID)
	svc := app.New(repo, ids, verifier, app.WithEvents(publishers))
	if err := svc.Startup(ctx); err != nil {
		log.Fatalf("[server] startup failed: %v", err)
	}

	a := api.New(svc, hub, api.NewTokens(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL))
	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           a.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Infof("[server] starting on %v, GraphQL playground at /playground", cfg.Server.Addr)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("[server] failed to start: %v", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	shutdownCtx, shutdownRelease := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownRelease()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorf("[server] HTTP server shutdown error: %v", err)
	} else {
		log.Info("[server] HTTP server shut down gracefully")
	}

	if kafkaSink != nil {
		if err := kafkaSink.Close(); err != nil {
			log.Errorf("[server] failed to close Kafka writer: %v", err)
		}
	}
}

func openStore(ctx context.Context, cfg config.StorageConfig) (storage.Store, error) {
	switch cfg.Type {
	case config.StoragePostgres:
		return postgres.New(cfg.DatabaseURL)
	case config.StorageRedis:
		return redis.New(ctx, redis.Options{
			Host:     cfg.RedisHost,
			Port:     cfg.RedisPort,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			Prefix:   cfg.RedisPrefix,
		})
	case config.StorageMongo:
		return mongo.New(ctx, cfg.MongoURI, cfg.MongoDB)
	default:
		return inmemory.New(), nil
	}
}
