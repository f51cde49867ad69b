package config

import (
	"log"
	"strings"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	ServerAddr string `envconfig:"SERVER_ADDR" default:":8080"`
	LogLevel   string `envconfig:"LOG_LEVEL" default:"info"`

	DatabaseURL string `envconfig:"DATABASE_URL"`

	JWTSecret     string `envconfig:"JWT_SECRET"`
	RefreshSecret string `envconfig:"REFRESH_SECRET"`

	KafkaBrokers string `envconfig:"KAFKA_BROKERS"`

	ESURL      string `envconfig:"ES_URL"`
	ESUser     string `envconfig:"ES_USER"`
	ESPassword string `envconfig:"ES_PASSWORD"`
	ESIndex    string `envconfig:"ES_INDEX" default:"products"`

	RateLimit       int `envconfig:"RATE_LIMIT" default:"60"`
	RateLimitWindow int `envconfig:"RATE_LIMIT_WINDOW_SECONDS" default:"60"`
}

func Load() (*Config, error) {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Notice: .env file not found: %v. Using system environment variables", err)
	}

	cfg := &Config{}
	if err := envconfig.Process("", cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Brokers() []string {
	if c.KafkaBrokers == "" {
		return nil
	}
	parts := strings.Split(c.KafkaBrokers, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func MustNonEmpty(value, envName string) {
	if value == "" {
		log.Fatalf("missing required env %s", envName)
	}
}
