package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Load reads configuration from environment variables and an optional
// config file. Environment variables take precedence over values from
// config files. Returns a populated Config struct or an error if
// loading or validation fails.
func Load() (*Config, error) {
	v := viper.New()

	// Defaults for everything that has a sane one; secrets have none.
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("server.rate_limit", 100)
	v.SetDefault("auth.token_lifetime_minutes", 60*24)
	v.SetDefault("auth.cookie_secure", true)
	v.SetDefault("mail.port", 587)

	// Optional config file in the working directory.
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Environment variables: TREK_SERVER_PORT, TREK_DATABASE_URL, ...
	v.SetEnvPrefix("TREK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindEnvKeys(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// bindEnvKeys registers every config key with viper so AutomaticEnv
// can resolve them even when no config file supplies the key.
func bindEnvKeys(v *viper.Viper) {
	keys := []string{
		"server.port", "server.log_level", "server.rate_limit",
		"database.url",
		"auth.jwt_secret", "auth.token_lifetime_minutes", "auth.cookie_secure",
		"mail.host", "mail.port", "mail.username", "mail.password", "mail.from",
	}
	for _, key := range keys {
		// BindEnv only errors when called without a key.
		_ = v.BindEnv(key)
	}
}
