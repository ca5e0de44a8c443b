package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable read by Load,
// e.g. RECALL_SERVER_PORT or RECALL_AUTH_JWT_SECRET.
const EnvPrefix = "RECALL"

var defaults = map[string]any{
	"server.port":                        8080,
	"server.log_level":                   "info",
	"server.cors_origins":                []string{"http://localhost:3000"},
	"server.shutdown_timeout_seconds":    10,
	"database.max_open_conns":            10,
	"database.max_idle_conns":            5,
	"database.conn_max_lifetime_minutes": 5,
	"auth.token_lifetime_minutes":        1440,
	"auth.bcrypt_cost":                   10,
	"auth.cookie_name":                   "access_token_cookie",
	"auth.cookie_secure":                 false,
	"llm.model_name":                     "gemini-2.0-flash",
}

// keys without defaults still need an explicit binding so that Unmarshal
// sees values that only exist in the environment.
var envOnlyKeys = []string{
	"database.url",
	"auth.jwt_secret",
	"auth.cookie_domain",
	"llm.gemini_api_key",
}

// Load reads configuration with this precedence: environment variables,
// then config.yaml in the working directory, then defaults. A .env file in
// the working directory is loaded into the environment first without
// overriding variables that are already set.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, key := range envOnlyKeys {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("failed to bind env for %s: %w", key, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode configuration: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks cfg against its struct tags.
func Validate(cfg *Config) error {
	if err := validator.New().Struct(cfg); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}
	return nil
}
