package config_test

import (
	"testing"

	"foodgram/internal/config"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func TestFromViper_Defaults(t *testing.T) {
	v := viper.New()
	config.SetDefaults(v)

	cfg := config.FromViper(v)

	assert.Equal(t, ":8080", cfg.AppPort)
	assert.Equal(t, "postgres", cfg.DatabaseDriver)
	assert.Equal(t, "local", cfg.MediaBackend)
	assert.Equal(t, 50, cfg.RateLimitMax)
	assert.Empty(t, cfg.RabbitMQURL)
}

func TestFromViper_Overrides(t *testing.T) {
	v := viper.New()
	config.SetDefaults(v)
	v.Set("DATABASE_DRIVER", "sqlite")
	v.Set("RATE_LIMIT_MAX", "5")

	cfg := config.FromViper(v)

	assert.Equal(t, "sqlite", cfg.DatabaseDriver)
	assert.Equal(t, 5, cfg.RateLimitMax)
}

func TestLoad_ReadsEnvironment(t *testing.T) {
	t.Setenv("APP_PORT", ":9999")
	t.Setenv("JWT_SECRET", "from-env")

	cfg := config.Load()

	assert.Equal(t, ":9999", cfg.AppPort)
	assert.Equal(t, "from-env", cfg.JWTSecret)
}
