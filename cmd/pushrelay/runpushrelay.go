package main

import (
	"context"
	_ "embed"
	"log/slog"
	"os"
	"time"

	"cloud.google.com/go/firestore"
	"gopkg.in/yaml.v3"

	"github.com/noticetake/push-relay/internal/audit"
	"github.com/noticetake/push-relay/internal/credentials"
	"github.com/noticetake/push-relay/internal/dispatch"
	"github.com/noticetake/push-relay/internal/platform/fcm"
	"github.com/noticetake/push-relay/internal/platform/hms"
	"github.com/noticetake/push-relay/internal/storage/cache"
	fileStore "github.com/noticetake/push-relay/internal/storage/file"
	fsStore "github.com/noticetake/push-relay/internal/storage/firestore"
	"github.com/noticetake/push-relay/pkg/push"
	"github.com/noticetake/push-relay/pushrelay"
	"github.com/noticetake/push-relay/pushrelay/config"
)

//go:embed local.yaml
var configFile []byte

func main() {
	var logLevel slog.Level
	switch os.Getenv("LOG_LEVEL") {
	case "debug", "DEBUG":
		logLevel = slog.LevelDebug
	case "info", "INFO":
		logLevel = slog.LevelInfo
	case "warn", "WARN":
		logLevel = slog.LevelWarn
	case "error", "ERROR":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})).With("service", "push-relay")
	slog.SetDefault(logger)

	ctx := context.Background()

	// --- Config Loading ---
	var yamlCfg config.YamlConfig
	if err := yaml.Unmarshal(configFile, &yamlCfg); err != nil {
		logger.Error("Failed to unmarshal embedded yaml config", "err", err)
		os.Exit(1)
	}
	baseCfg, _ := config.NewConfigFromYaml(&yamlCfg, logger)
	cfg, err := config.UpdateConfigWithEnvOverrides(baseCfg, logger)
	if err != nil {
		logger.Error("Config failed", "err", err)
		os.Exit(1)
	}

	// --- Fallback Token Store (Decorated) ---
	var tokenStore push.FallbackTokenStore
	switch cfg.FallbackStore {
	case config.StoreFirestore:
		fsClient, err := firestore.NewClient(ctx, cfg.ProjectID)
		if err != nil {
			logger.Error("Firestore client failed", "err", err)
			os.Exit(1)
		}
		defer fsClient.Close()
		tokenStore = fsStore.NewFirestoreStore(fsClient)
	default:
		tokenStore = fileStore.NewTokenStore(cfg.FallbackTokenPath)
	}
	logger.Info("Fallback token store initialized", "type", cfg.FallbackStore)

	if cfg.Redis.Enabled {
		logger.Info("Initializing Redis Cache layer...", "addr", cfg.Redis.Addr)
		redisClient, err := cache.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			logger.Error("Failed to connect to Redis", "err", err)
			os.Exit(1)
		}
		defer redisClient.Close()
		tokenStore = cache.NewCachedTokenStore(tokenStore, redisClient, 24*time.Hour)
		logger.Info("Fallback token store upgraded", "type", "redis_cached_"+cfg.FallbackStore)
	}

	// --- Dispatch Subsystem ---
	resolver := credentials.NewResolver(cfg)
	auditLogger := audit.NewFileLogger(cfg.AuditLogPath, logger)

	dispatcher := dispatch.NewDispatcher(
		resolver,
		fcm.NewDispatcher(logger),
		hms.NewTokenClient(cfg.HMS.TokenURL, logger),
		hms.NewDispatcher(cfg.HMS.PushBaseURL, logger),
		tokenStore,
		auditLogger,
		logger,
	)

	// --- Service ---
	service, err := pushrelay.New(cfg, dispatcher, tokenStore, logger)
	if err != nil {
		logger.Error("Service creation failed", "err", err)
		os.Exit(1)
	}

	logger.Info("Starting service...", "addr", cfg.ListenAddr)
	if err := service.Start(ctx); err != nil {
		logger.Error("Service shutdown with error", "err", err)
		os.Exit(1)
	}
}
