package config_test

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/noticetake/push-relay/pushrelay/config"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestUpdateConfigWithEnvOverrides(t *testing.T) {
	logger := newTestLogger()

	baseConfig := func() *config.Config {
		return &config.Config{
			ListenAddr:        ":8080",
			AuditLogPath:      "logs/base.log",
			FallbackStore:     config.StoreFile,
			FallbackTokenPath: "config/base_token.txt",
		}
	}

	t.Run("Success - All overrides applied", func(t *testing.T) {
		cfg := baseConfig()

		t.Setenv("PORT", "9090")
		t.Setenv("AUDIT_LOG_PATH", "logs/env.log")
		t.Setenv("HMS_TOKEN_PATH", "config/env_token.txt")
		t.Setenv("HMS_TOKEN_URL", "https://token.test")
		t.Setenv("HMS_PUSH_URL", "https://push.test")
		t.Setenv("REDIS_ADDR", "redis:6379")

		finalCfg, err := config.UpdateConfigWithEnvOverrides(cfg, logger)
		require.NoError(t, err)

		assert.Equal(t, ":9090", finalCfg.ListenAddr)
		assert.Equal(t, "logs/env.log", finalCfg.AuditLogPath)
		assert.Equal(t, "config/env_token.txt", finalCfg.FallbackTokenPath)
		assert.Equal(t, "https://token.test", finalCfg.HMS.TokenURL)
		assert.Equal(t, "https://push.test", finalCfg.HMS.PushBaseURL)
		assert.Equal(t, "redis:6379", finalCfg.Redis.Addr)
		assert.True(t, finalCfg.Redis.Enabled)
	})

	t.Run("Success - Defaults applied to empty config", func(t *testing.T) {
		finalCfg, err := config.UpdateConfigWithEnvOverrides(&config.Config{}, logger)
		require.NoError(t, err)

		assert.Equal(t, ":8080", finalCfg.ListenAddr)
		assert.Equal(t, "logs/requests.log", finalCfg.AuditLogPath)
		assert.Equal(t, config.StoreFile, finalCfg.FallbackStore)
		assert.Equal(t, "config/hms_token.txt", finalCfg.FallbackTokenPath)
	})

	t.Run("Credentials are not env-overridden here", func(t *testing.T) {
		// The credential resolver owns config-first/env-second precedence;
		// the base config must pass through untouched.
		cfg := baseConfig()
		cfg.HMS.ClientID = "cfg-client"

		t.Setenv("HMS_CLIENT_ID", "env-client")

		finalCfg, err := config.UpdateConfigWithEnvOverrides(cfg, logger)
		require.NoError(t, err)
		assert.Equal(t, "cfg-client", finalCfg.HMS.ClientID)
	})

	t.Run("Validation Failure - firestore store without project id", func(t *testing.T) {
		cfg := baseConfig()
		cfg.FallbackStore = config.StoreFirestore

		_, err := config.UpdateConfigWithEnvOverrides(cfg, logger)
		assert.Error(t, err)
	})

	t.Run("Validation Failure - unknown store", func(t *testing.T) {
		cfg := baseConfig()
		cfg.FallbackStore = "dynamo"

		_, err := config.UpdateConfigWithEnvOverrides(cfg, logger)
		assert.Error(t, err)
	})
}

func TestNewConfigFromYaml(t *testing.T) {
	logger := newTestLogger()

	raw := `
listen_addr: ":9000"
audit_log_path: "logs/requests.log"
fallback_store: "file"
fallback_token_path: "config/hms_token.txt"
cors:
  allowed_origins:
    - "http://localhost:4200"
  role: "external"
firebase:
  service_account: "/etc/secrets/sa.json"
hms:
  app_id: "app-1"
  client_id: "client-1"
  client_secret: "secret-1"
redis:
  enabled: true
  addr: "localhost:6379"
  db: 2
`
	var yamlCfg config.YamlConfig
	require.NoError(t, yaml.Unmarshal([]byte(raw), &yamlCfg))

	cfg, err := config.NewConfigFromYaml(&yamlCfg, logger)
	require.NoError(t, err)

	assert.Equal(t, ":9000", cfg.ListenAddr)
	assert.Equal(t, "/etc/secrets/sa.json", cfg.Firebase.ServiceAccountFile)
	assert.Equal(t, "app-1", cfg.HMS.AppID)
	assert.Equal(t, "client-1", cfg.HMS.ClientID)
	assert.Equal(t, "secret-1", cfg.HMS.ClientSecret)
	assert.True(t, cfg.Redis.Enabled)
	assert.Equal(t, 2, cfg.Redis.DB)
	assert.Equal(t, []string{"http://localhost:4200"}, cfg.CorsConfig.AllowedOrigins)
}
