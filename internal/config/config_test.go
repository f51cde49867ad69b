package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, ":8080", cfg.ServerAddr)
	require.Equal(t, "info", cfg.LogLevel)
	require.Equal(t, "products", cfg.ESIndex)
	require.Equal(t, 60, cfg.RateLimit)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("SERVER_ADDR", ":9090")
	t.Setenv("RATE_LIMIT", "5")
	t.Setenv("DATABASE_URL", "postgres://localhost/app")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, ":9090", cfg.ServerAddr)
	require.Equal(t, 5, cfg.RateLimit)
	require.Equal(t, "postgres://localhost/app", cfg.DatabaseURL)
}

func TestBrokers(t *testing.T) {
	cfg := &Config{}
	require.Nil(t, cfg.Brokers())

	cfg.KafkaBrokers = "kafka-1:9092, kafka-2:9092 ,,kafka-3:9092"
	require.Equal(t, []string{"kafka-1:9092", "kafka-2:9092", "kafka-3:9092"}, cfg.Brokers())
}
