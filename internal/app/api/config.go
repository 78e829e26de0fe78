package api

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"go.temporal.io/sdk/client"

	orderskafka "github.com/md-rasel-mahmud/next-eccomerce-sub000/internal/domains/orders/adapters/events/kafka"
)

// Config carries environment-driven settings for the API and worker processes.
type Config struct {
	Port                string
	PostgresDSN         string
	TemporalAddress     string
	TemporalNamespace   string
	TemporalDisabled    bool
	KafkaBrokers        string
	KafkaOrdersTopic    string
	StrictTransitions   bool
	EnforceCatalogPrice bool
	DefaultPageSize     int
	CatalogSeedFile     string
}

// LoadConfig reads environment variables, applies defaults, and validates basic constraints.
func LoadConfig() (Config, error) {
	cfg := Config{
		Port:              envDefault("PORT", "8080"),
		PostgresDSN:       strings.TrimSpace(os.Getenv("POSTGRES_DSN")),
		TemporalAddress:   envDefault("TEMPORAL_ADDRESS", client.DefaultHostPort),
		TemporalNamespace: envDefault("TEMPORAL_NAMESPACE", client.DefaultNamespace),
		TemporalDisabled:  isTruthy(os.Getenv("TEMPORAL_DISABLED")),
		KafkaBrokers:      strings.TrimSpace(os.Getenv("KAFKA_BROKERS")),
		KafkaOrdersTopic:  envDefault("KAFKA_ORDERS_TOPIC", orderskafka.DefaultTopic),
		CatalogSeedFile:   strings.TrimSpace(os.Getenv("CATALOG_SEED_FILE")),
		DefaultPageSize:   10,
	}
	var err error
	if cfg.StrictTransitions, err = boolEnv("ORDERS_STRICT_TRANSITIONS", false); err != nil {
		return Config{}, err
	}
	if cfg.EnforceCatalogPrice, err = boolEnv("ORDERS_ENFORCE_CATALOG_PRICE", true); err != nil {
		return Config{}, err
	}
	if raw := strings.TrimSpace(os.Getenv("ORDERS_DEFAULT_PAGE_SIZE")); raw != "" {
		size, err := strconv.Atoi(raw)
		if err != nil || size <= 0 || size > 100 {
			return Config{}, fmt.Errorf("ORDERS_DEFAULT_PAGE_SIZE must be an integer between 1 and 100")
		}
		cfg.DefaultPageSize = size
	}
	if _, err := strconv.Atoi(cfg.Port); err != nil {
		return Config{}, fmt.Errorf("PORT must be numeric")
	}
	return cfg, nil
}

func envDefault(key, fallback string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return fallback
}

func boolEnv(key string, fallback bool) (bool, error) {
	raw := strings.TrimSpace(strings.ToLower(os.Getenv(key)))
	switch {
	case raw == "":
		return fallback, nil
	case isTruthy(raw):
		return true, nil
	case raw == "0" || raw == "false" || raw == "no":
		return false, nil
	default:
		return false, fmt.Errorf("%s must be a boolean", key)
	}
}

func isTruthy(value string) bool {
	value = strings.TrimSpace(strings.ToLower(value))
	return value == "1" || value == "true" || value == "yes"
}
