package config

import (
	"log/slog"

	"github.com/tinywideclouds/go-microservice-base/pkg/middleware"
)

type YamlCorsConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
	Role           string   `yaml:"role"`
}

type YamlRedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	Enabled  bool   `yaml:"enabled"`
}

type YamlFirebaseConfig struct {
	ServiceAccountFile string `yaml:"service_account"`
}

type YamlHMSConfig struct {
	AppID        string `yaml:"app_id"`
	ClientID     string `yaml:"client_id"`
	ClientSecret string `yaml:"client_secret"`
	TokenURL     string `yaml:"token_url"`
	PushBaseURL  string `yaml:"push_base_url"`
}

// YamlConfig is the structure that mirrors the raw config.yaml file.
type YamlConfig struct {
	ProjectID         string             `yaml:"project_id"`
	ListenAddr        string             `yaml:"listen_addr"`
	AuditLogPath      string             `yaml:"audit_log_path"`
	FallbackStore     string             `yaml:"fallback_store"`
	FallbackTokenPath string             `yaml:"fallback_token_path"`
	CorsConfig        YamlCorsConfig     `yaml:"cors"`
	RedisConfig       YamlRedisConfig    `yaml:"redis"`
	FirebaseConfig    YamlFirebaseConfig `yaml:"firebase"`
	HMSConfig         YamlHMSConfig      `yaml:"hms"`
}

// NewConfigFromYaml converts the YamlConfig into a clean, base Config struct.
func NewConfigFromYaml(baseCfg *YamlConfig, logger *slog.Logger) (*Config, error) {
	logger.Debug("Mapping YAML config to base config struct")

	cfg := &Config{
		ProjectID:  baseCfg.ProjectID,
		ListenAddr: baseCfg.ListenAddr,
		CorsConfig: middleware.CorsConfig{
			AllowedOrigins: baseCfg.CorsConfig.AllowedOrigins,
			Role:           middleware.CorsRole(baseCfg.CorsConfig.Role),
		},
		Firebase: FirebaseConfig{
			ServiceAccountFile: baseCfg.FirebaseConfig.ServiceAccountFile,
		},
		HMS: HMSConfig{
			AppID:        baseCfg.HMSConfig.AppID,
			ClientID:     baseCfg.HMSConfig.ClientID,
			ClientSecret: baseCfg.HMSConfig.ClientSecret,
			TokenURL:     baseCfg.HMSConfig.TokenURL,
			PushBaseURL:  baseCfg.HMSConfig.PushBaseURL,
		},
		Redis: RedisConfig{
			Addr:     baseCfg.RedisConfig.Addr,
			Password: baseCfg.RedisConfig.Password,
			DB:       baseCfg.RedisConfig.DB,
			Enabled:  baseCfg.RedisConfig.Enabled,
		},
		AuditLogPath:      baseCfg.AuditLogPath,
		FallbackStore:     baseCfg.FallbackStore,
		FallbackTokenPath: baseCfg.FallbackTokenPath,
	}

	logger.Debug("YAML config mapping complete",
		"project_id", cfg.ProjectID,
		"listen_addr", cfg.ListenAddr,
		"fallback_store", cfg.FallbackStore,
	)

	return cfg, nil
}
