package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/tinywideclouds/go-microservice-base/pkg/middleware"
)

type RedisConfig struct {
	Enabled  bool
	Addr     string
	Password string
	DB       int
}

type FirebaseConfig struct {
	ServiceAccountFile string
}

type HMSConfig struct {
	AppID        string
	ClientID     string
	ClientSecret string

	// TokenURL and PushBaseURL override the Huawei production endpoints,
	// mainly for tests and staging.
	TokenURL    string
	PushBaseURL string
}

// Fallback-token store backends.
const (
	StoreFile      = "file"
	StoreFirestore = "firestore"
)

// Config defines the *single*, authoritative configuration.
type Config struct {
	ProjectID  string
	ListenAddr string

	CorsConfig middleware.CorsConfig
	Firebase   FirebaseConfig
	HMS        HMSConfig
	Redis      RedisConfig

	// AuditLogPath is the append-only audit sink.
	AuditLogPath string

	// FallbackStore selects where the fallback HMS destination token
	// lives: StoreFile or StoreFirestore.
	FallbackStore     string
	FallbackTokenPath string
}

// UpdateConfigWithEnvOverrides applies environment variables and final
// validation. Provider credentials are deliberately not overridden here:
// the credential resolver owns the config-first, environment-second
// precedence for secrets.
func UpdateConfigWithEnvOverrides(cfg *Config, logger *slog.Logger) (*Config, error) {
	logger.Debug("Applying environment variable overrides...")

	if val := os.Getenv("PROJECT_ID"); val != "" {
		logger.Debug("Overriding config value", "key", "PROJECT_ID", "source", "env")
		cfg.ProjectID = val
	}
	if val := os.Getenv("PORT"); val != "" {
		logger.Debug("Overriding config value", "key", "PORT", "source", "env")
		cfg.ListenAddr = ":" + val
	}
	if val := os.Getenv("AUDIT_LOG_PATH"); val != "" {
		logger.Debug("Overriding config value", "key", "AUDIT_LOG_PATH", "source", "env")
		cfg.AuditLogPath = val
	}
	if val := os.Getenv("HMS_TOKEN_PATH"); val != "" {
		logger.Debug("Overriding config value", "key", "HMS_TOKEN_PATH", "source", "env")
		cfg.FallbackTokenPath = val
	}
	if val := os.Getenv("HMS_TOKEN_URL"); val != "" {
		logger.Debug("Overriding config value", "key", "HMS_TOKEN_URL", "source", "env")
		cfg.HMS.TokenURL = val
	}
	if val := os.Getenv("HMS_PUSH_URL"); val != "" {
		logger.Debug("Overriding config value", "key", "HMS_PUSH_URL", "source", "env")
		cfg.HMS.PushBaseURL = val
	}
	if val := os.Getenv("FALLBACK_STORE"); val != "" {
		logger.Debug("Overriding config value", "key", "FALLBACK_STORE", "source", "env")
		cfg.FallbackStore = val
	}

	// Redis Overrides
	if val := os.Getenv("REDIS_ADDR"); val != "" {
		cfg.Redis.Addr = val
		cfg.Redis.Enabled = true
	}
	if val := os.Getenv("REDIS_PASSWORD"); val != "" {
		cfg.Redis.Password = val
	}
	if val := os.Getenv("REDIS_DB"); val != "" {
		if db, err := strconv.Atoi(val); err == nil {
			cfg.Redis.DB = db
		}
	}
	if val := os.Getenv("REDIS_ENABLED"); val != "" {
		enabled, _ := strconv.ParseBool(val)
		cfg.Redis.Enabled = enabled
	}

	// CORS Overrides
	if corsOrigins := os.Getenv("CORS_ALLOWED_ORIGINS"); corsOrigins != "" {
		logger.Debug("Overriding config value", "key", "CORS_ALLOWED_ORIGINS", "source", "env")
		rawOrigins := strings.Split(corsOrigins, ",")
		var cleanOrigins []string
		for _, o := range rawOrigins {
			if trimmed := strings.TrimSpace(o); trimmed != "" {
				cleanOrigins = append(cleanOrigins, trimmed)
			}
		}
		cfg.CorsConfig.AllowedOrigins = cleanOrigins
	}

	// Final Validation
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = ":8080"
	}
	if cfg.AuditLogPath == "" {
		cfg.AuditLogPath = "logs/requests.log"
	}
	if cfg.FallbackStore == "" {
		cfg.FallbackStore = StoreFile
	}
	switch cfg.FallbackStore {
	case StoreFile:
		if cfg.FallbackTokenPath == "" {
			cfg.FallbackTokenPath = "config/hms_token.txt"
		}
	case StoreFirestore:
		if cfg.ProjectID == "" {
			return nil, fmt.Errorf("project_id is required for the firestore fallback store (set via YAML or PROJECT_ID env var)")
		}
	default:
		return nil, fmt.Errorf("unknown fallback_store %q (expected %q or %q)", cfg.FallbackStore, StoreFile, StoreFirestore)
	}

	logger.Debug("Configuration finalized and validated successfully")
	return cfg, nil
}
