package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverMongo    = "mongo"
)

type Config struct {
	ServiceName string

	ServerPort int

	LogLevel string

	StoreDriver string
	DatabaseURL string

	MongoURL      string
	MongoDatabase string

	KafkaBrokers []string

	RedisAddr      string
	IdempotencyTTL time.Duration

	OtelEndpoint string
}

func Load() Config {
	return Config{
		ServiceName: EnvDefault("SERVICE_NAME", "storefront"),

		ServerPort: EnvIntDefault("SERVER_PORT", 8080),

		LogLevel: os.Getenv("LOG_LEVEL"),

		StoreDriver: strings.ToLower(EnvDefault("STORE_DRIVER", DriverPostgres)),
		DatabaseURL: os.Getenv("DATABASE_URL"),

		MongoURL:      os.Getenv("MONGODB_URL"),
		MongoDatabase: EnvDefault("MONGODB_DATABASE", "storefront"),

		KafkaBrokers: CSV(os.Getenv("KAFKA_BROKERS")),

		RedisAddr:      os.Getenv("REDIS_ADDR"),
		IdempotencyTTL: time.Duration(EnvIntDefault("IDEMPOTENCY_TTL_HOURS", 24)) * time.Hour,

		OtelEndpoint: os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
	}
}

func CSV(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func EnvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func EnvIntDefault(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
