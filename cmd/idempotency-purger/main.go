package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	orderspostgres "github.com/md-rasel-mahmud/next-eccomerce-sub000/internal/domains/orders/adapters/persistence/postgres"
	"github.com/md-rasel-mahmud/next-eccomerce-sub000/internal/domains/orders/ports"
	platformpostgres "github.com/md-rasel-mahmud/next-eccomerce-sub000/internal/platform/postgres"
)

const defaultKeyTTL = 72 * time.Hour

func main() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	db, cleanup := platformpostgres.ConnectOrFallback(ctx, os.Getenv("POSTGRES_DSN"), logger)
	defer cleanup()
	if db == nil {
		log.Fatal("POSTGRES_DSN not set or connection failed; cannot purge idempotency keys")
	}

	ttl := keyTTLFromEnv()
	var purger ports.IdempotencyPurger = orderspostgres.NewIdempotencyStore(db)
	purged, err := purger.PurgeBefore(ctx, time.Now().UTC().Add(-ttl))
	if err != nil {
		log.Fatalf("failed to purge idempotency keys: %v", err)
	}
	logger.Info("idempotency key purge completed", slog.Int64("purged", purged), slog.Duration("ttl", ttl))
}

func keyTTLFromEnv() time.Duration {
	raw := strings.TrimSpace(os.Getenv("ORDERS_IDEMPOTENCY_TTL_HOURS"))
	if raw == "" {
		return defaultKeyTTL
	}
	hours, err := strconv.Atoi(raw)
	if err != nil || hours <= 0 {
		return defaultKeyTTL
	}
	return time.Duration(hours) * time.Hour
}
