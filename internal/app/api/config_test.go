package api

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.temporal.io/sdk/client"
)

func TestLoadConfigDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "POSTGRES_DSN", "TEMPORAL_ADDRESS", "TEMPORAL_NAMESPACE", "TEMPORAL_DISABLED", "KAFKA_BROKERS", "KAFKA_ORDERS_TOPIC", "ORDERS_STRICT_TRANSITIONS", "ORDERS_ENFORCE_CATALOG_PRICE", "ORDERS_DEFAULT_PAGE_SIZE", "CATALOG_SEED_FILE"} {
		t.Setenv(key, "")
	}
	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Empty(t, cfg.PostgresDSN)
	assert.Equal(t, client.DefaultHostPort, cfg.TemporalAddress)
	assert.Equal(t, client.DefaultNamespace, cfg.TemporalNamespace)
	assert.False(t, cfg.TemporalDisabled)
	assert.Equal(t, "orders.events", cfg.KafkaOrdersTopic)
	assert.False(t, cfg.StrictTransitions)
	assert.True(t, cfg.EnforceCatalogPrice)
	assert.Equal(t, 10, cfg.DefaultPageSize)
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("TEMPORAL_DISABLED", "yes")
	t.Setenv("KAFKA_BROKERS", "kafka:9092")
	t.Setenv("ORDERS_STRICT_TRANSITIONS", "true")
	t.Setenv("ORDERS_ENFORCE_CATALOG_PRICE", "0")
	t.Setenv("ORDERS_DEFAULT_PAGE_SIZE", "25")
	t.Setenv("CATALOG_SEED_FILE", "seed.json")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Port)
	assert.True(t, cfg.TemporalDisabled)
	assert.Equal(t, "kafka:9092", cfg.KafkaBrokers)
	assert.True(t, cfg.StrictTransitions)
	assert.False(t, cfg.EnforceCatalogPrice)
	assert.Equal(t, 25, cfg.DefaultPageSize)
	assert.Equal(t, "seed.json", cfg.CatalogSeedFile)
}

func TestLoadConfigRejectsInvalidValues(t *testing.T) {
	cases := map[string]string{
		"ORDERS_DEFAULT_PAGE_SIZE":     "0",
		"ORDERS_STRICT_TRANSITIONS":    "sometimes",
		"ORDERS_ENFORCE_CATALOG_PRICE": "maybe",
		"PORT":                         "http",
	}
	for key, value := range cases {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, value)
			_, err := LoadConfig()
			assert.Error(t, err)
		})
	}
}
