package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/custodia-labs/stride-sync/internal/adapters/driven/auth"
	"github.com/custodia-labs/stride-sync/internal/adapters/driven/connectors/strava"
	"github.com/custodia-labs/stride-sync/internal/adapters/driven/crypto"
	"github.com/custodia-labs/stride-sync/internal/adapters/driven/postgres"
	redisadapter "github.com/custodia-labs/stride-sync/internal/adapters/driven/redis"
	"github.com/custodia-labs/stride-sync/internal/adapters/driving/http"
	"github.com/custodia-labs/stride-sync/internal/config"
	"github.com/custodia-labs/stride-sync/internal/core/ports/driven"
	"github.com/custodia-labs/stride-sync/internal/core/services"
	"github.com/custodia-labs/stride-sync/internal/normaliser"
)

var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	log.Printf("stride-sync %s starting", version)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// ===== PostgreSQL =====
	log.Println("Connecting to PostgreSQL...")
	db, err := postgres.Connect(ctx, postgres.Config{
		URL:             cfg.DatabaseURL,
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxLifetime: cfg.DBConnMaxLifetime,
		ConnMaxIdleTime: cfg.DBConnMaxIdleTime,
	})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := db.InitSchema(ctx); err != nil {
		log.Fatalf("Failed to initialize schema: %v", err)
	}
	log.Println("PostgreSQL connected and schema initialized")

	// ===== Import lock: Redis when configured, advisory locks otherwise =====
	var importLock driven.DistributedLock
	if cfg.RedisURL != "" {
		log.Println("Connecting to Redis...")
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			log.Fatalf("Failed to parse Redis URL: %v", err)
		}
		redisClient := redis.NewClient(opts)
		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer redisClient.Close()
		importLock = redisadapter.NewLock(redisClient)
		log.Println("Redis connected, using Redis import locks")
	} else {
		importLock = postgres.NewAdvisoryLock(db, logger)
		log.Println("REDIS_URL not set, using PostgreSQL advisory import locks")
	}

	// ===== Driven adapters =====
	key, err := crypto.ParseKey(cfg.EncryptionKey)
	if err != nil {
		log.Fatalf("Invalid ENCRYPTION_KEY: %v", err)
	}
	codec, err := crypto.NewCodec(key)
	if err != nil {
		log.Fatalf("Failed to create secret codec: %v", err)
	}

	providerCfg := &strava.Config{
		APIBaseURL:        cfg.Provider.APIURL,
		AuthURL:           cfg.Provider.AuthURL,
		TokenURL:          cfg.Provider.TokenURL,
		Scopes:            cfg.Provider.Scopes,
		HTTPTimeout:       cfg.Provider.HTTPTimeout,
		RequestsPerMinute: cfg.Provider.RequestsPerMinute,
	}
	oauthHandler := strava.NewOAuthHandler(providerCfg)
	fetcher := strava.NewClient(providerCfg, strava.WithLogger(logger))

	credentialStore := postgres.NewCredentialStore(db)
	tokenStore := postgres.NewTokenStore(db)

	// ===== Services =====
	tokens := services.NewTokenManager(services.TokenManagerConfig{
		TokenStore:  tokenStore,
		Credentials: services.NewCredentialResolver(credentialStore, codec),
		Codec:       codec,
		OAuth:       oauthHandler,
		Logger:      logger,
	})

	importer := services.NewImportOrchestrator(services.ImportOrchestratorConfig{
		Tokens:        tokens,
		Fetcher:       fetcher,
		ActivityStore: postgres.NewActivityStore(db),
		ProfileStore:  postgres.NewProfileStore(db),
		Normaliser:    normaliser.New(),
		Logger:        logger,
	})

	connections := services.NewConnectionService(services.ConnectionServiceConfig{
		CredentialStore: credentialStore,
		TokenStore:      tokenStore,
		Codec:           codec,
		OAuth:           oauthHandler,
		StateSigner:     auth.NewStateSigner(cfg.JWTSecret, auth.DefaultStateTTL),
		Logger:          logger,
	})

	// ===== HTTP =====
	serverCfg := http.DefaultConfig()
	serverCfg.Port = cfg.Port
	serverCfg.Version = version
	serverCfg.ImportLockTTL = cfg.ImportLockTTL
	serverCfg.Logger = logger

	server := http.NewServer(serverCfg, connections, importer, auth.NewAdapter(cfg.JWTSecret), importLock, db)
	if err := server.Start(); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
