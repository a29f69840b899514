package config

import (
	"fmt"
	"log"
)

func MustNonEmpty(value, envName string) {
	if value == "" {
		log.Fatalf("missing required env %s", envName)
	}
}

// Validate reports the first setting the selected store driver cannot run without.
func (c Config) Validate() error {
	switch c.StoreDriver {
	case DriverPostgres, DriverSQLite:
		if c.DatabaseURL == "" {
			return fmt.Errorf("missing required env DATABASE_URL for driver %q", c.StoreDriver)
		}
	case DriverMongo:
		if c.MongoURL == "" {
			return fmt.Errorf("missing required env MONGODB_URL for driver %q", c.StoreDriver)
		}
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver)
	}
	if c.ServerPort <= 0 || c.ServerPort > 65535 {
		return fmt.Errorf("invalid SERVER_PORT %d", c.ServerPort)
	}
	return nil
}

// MustLoad loads the configuration and exits when it is unusable.
func MustLoad() Config {
	cfg := Load()
	MustNonEmpty(cfg.ServiceName, "SERVICE_NAME")
	if err := cfg.Validate(); err != nil {
		log.Fatal(err)
	}
	return cfg
}
