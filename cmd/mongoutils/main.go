package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"

	"mongoutils/api"
	"mongoutils/config"
	"mongoutils/internal/cache"
	"mongoutils/internal/database"
	"mongoutils/internal/logger"
	"mongoutils/internal/merge"
)

func main() {
	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	closer := logger.Setup(cfg.Logging)
	defer closer.Close()

	slog.Info("Mongo Utils starting...")

	// 2. Initialize Database/Store
	ctx := context.Background()
	var store database.DocumentStore

	if cfg.Storage.Type == "file" {
		slog.Info("Using File Store (Local Mode)", "path", cfg.Storage.File.Path)
		fileStore, err := database.NewFileStore(cfg.Storage.File.Path)
		if err != nil {
			log.Fatalf("Failed to initialize file store: %v", err)
		}
		store = fileStore
	} else {
		slog.Info("Using MongoDB Store", "database", cfg.Database.DatabaseName)
		mongoStore, err := database.NewMongoStore(ctx, cfg.Database.ConnectionString, cfg.Database.DatabaseName)
		if err != nil {
			log.Fatalf("Failed to connect to MongoDB: %v", err)
		}
		store = mongoStore
	}

	// 3. Wrap with caching
	switch cfg.Cache.Type {
	case "redis":
		redisCache, err := cache.NewRedisCacheWithURL(cfg.Cache.Redis.URL, cfg.Cache.Redis.Prefix, cfg.Cache.TTL)
		if err != nil {
			log.Fatalf("Failed to configure Redis cache: %v", err)
		}
		defer redisCache.Close()
		store = database.NewCachingStore(store, redisCache)
	case "memory":
		store = database.NewCachingStore(store, cache.NewMemoryCache(cfg.Cache.TTL))
	default:
		// Concurrent reads of the same document still share one load.
		store = database.NewCachingStore(store, cache.NewNoOpCache())
	}
	defer store.Close(ctx)

	// 4. Merge defaults
	policy, err := merge.ParsePolicy(cfg.Merge.DefaultPolicy)
	if err != nil {
		log.Fatalf("Invalid merge configuration: %v", err)
	}
	settings := api.MergeSettings{
		DefaultPolicy: policy,
		Options:       []merge.Option{merge.WithPrivatePrefix(cfg.Merge.PrivatePrefix)},
	}
	if cfg.Merge.StrictIdentifiers {
		settings.Options = append(settings.Options, merge.WithStrictIdentifiers())
	}

	// 5. Initialize API
	apiInstance := api.NewAPI()
	api.NewDocumentHandlers(apiInstance.Huma, store, settings)

	// 6. Start Server
	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	slog.Info("Server listening", "addr", addr)
	if err := apiInstance.Start(addr); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
