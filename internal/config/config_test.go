package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{"SERVICE_NAME", "SERVER_PORT", "STORE_DRIVER", "DATABASE_URL", "KAFKA_BROKERS", "IDEMPOTENCY_TTL_HOURS", "MONGODB_DATABASE"} {
		t.Setenv(k, "")
	}

	cfg := Load()

	assert.Equal(t, "storefront", cfg.ServiceName)
	assert.Equal(t, 8080, cfg.ServerPort)
	assert.Equal(t, DriverPostgres, cfg.StoreDriver)
	assert.Equal(t, "storefront", cfg.MongoDatabase)
	assert.Nil(t, cfg.KafkaBrokers)
	assert.Equal(t, 24*time.Hour, cfg.IdempotencyTTL)
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("SERVICE_NAME", "orders")
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("STORE_DRIVER", "SQLite")
	t.Setenv("DATABASE_URL", "file:shop.db")
	t.Setenv("KAFKA_BROKERS", " kafka-1:9092, ,kafka-2:9092 ")
	t.Setenv("IDEMPOTENCY_TTL_HOURS", "2")

	cfg := Load()

	assert.Equal(t, "orders", cfg.ServiceName)
	assert.Equal(t, 9090, cfg.ServerPort)
	assert.Equal(t, DriverSQLite, cfg.StoreDriver)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, 2*time.Hour, cfg.IdempotencyTTL)
	require.NoError(t, cfg.Validate())
}

func TestEnvIntDefault_InvalidFallsBack(t *testing.T) {
	t.Setenv("SERVER_PORT", "eighty")
	assert.Equal(t, 8080, EnvIntDefault("SERVER_PORT", 8080))
}

func TestConfig_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{name: "postgres ok", cfg: Config{StoreDriver: DriverPostgres, DatabaseURL: "postgres://x", ServerPort: 8080}},
		{name: "postgres without dsn", cfg: Config{StoreDriver: DriverPostgres, ServerPort: 8080}, wantErr: true},
		{name: "mongo ok", cfg: Config{StoreDriver: DriverMongo, MongoURL: "mongodb://localhost", ServerPort: 8080}},
		{name: "mongo without url", cfg: Config{StoreDriver: DriverMongo, ServerPort: 8080}, wantErr: true},
		{name: "unknown driver", cfg: Config{StoreDriver: "cassandra", ServerPort: 8080}, wantErr: true},
		{name: "bad port", cfg: Config{StoreDriver: DriverSQLite, DatabaseURL: "file:x", ServerPort: 0}, wantErr: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := tt.cfg.Validate()
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
		})
	}
}
