package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.temporal.io/sdk/client"
	temporalotel "go.temporal.io/sdk/contrib/opentelemetry"
	workerlog "go.temporal.io/sdk/log"

	orderskafka "github.com/md-rasel-mahmud/next-eccomerce-sub000/internal/domains/orders/adapters/events/kafka"
	ordersidentifier "github.com/md-rasel-mahmud/next-eccomerce-sub000/internal/domains/orders/adapters/identifier"
	ordersmemory "github.com/md-rasel-mahmud/next-eccomerce-sub000/internal/domains/orders/adapters/memory"
	ordersobs "github.com/md-rasel-mahmud/next-eccomerce-sub000/internal/domains/orders/adapters/observability"
	orderspostgres "github.com/md-rasel-mahmud/next-eccomerce-sub000/internal/domains/orders/adapters/persistence/postgres"
	ordersapp "github.com/md-rasel-mahmud/next-eccomerce-sub000/internal/domains/orders/application"
	"github.com/md-rasel-mahmud/next-eccomerce-sub000/internal/domains/orders/domain"
	ordersports "github.com/md-rasel-mahmud/next-eccomerce-sub000/internal/domains/orders/ports"
	platformkafka "github.com/md-rasel-mahmud/next-eccomerce-sub000/internal/platform/kafka"
	"github.com/md-rasel-mahmud/next-eccomerce-sub000/internal/platform/migrations"
	platformobservability "github.com/md-rasel-mahmud/next-eccomerce-sub000/internal/platform/observability"
	platformpostgres "github.com/md-rasel-mahmud/next-eccomerce-sub000/internal/platform/postgres"
)

// OrderStack holds the order service together with the adapters it was built from.
type OrderStack struct {
	Service ordersports.Service
	Close   func()
}

type orderAdapters struct {
	repo        ordersports.Repository
	catalog     ordersports.Catalog
	idempotency ordersports.IdempotencyStore
}

// BuildOrderStack selects Postgres or in-memory adapters, seeds the catalog, attaches the event
// publisher and wraps the service with logging, tracing and metrics.
func BuildOrderStack(ctx context.Context, cfg Config, instruments *platformobservability.Instruments) (*OrderStack, error) {
	logger := effectiveLogger(instruments)
	var cleanups []func()
	closeAll := func() {
		for i := len(cleanups) - 1; i >= 0; i-- {
			cleanups[i]()
		}
	}

	adapters, cleanupDB, err := buildOrderAdapters(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	cleanups = append(cleanups, cleanupDB)

	publisher, cleanupPublisher, err := buildEventPublisher(cfg, logger)
	if err != nil {
		closeAll()
		return nil, err
	}
	cleanups = append(cleanups, cleanupPublisher)

	policy := domain.PolicyPermissive
	if cfg.StrictTransitions {
		policy = domain.PolicyStrict
	}
	core := ordersapp.NewService(
		adapters.repo,
		adapters.catalog,
		ordersidentifier.NewULIDGenerator(),
		ordersapp.WithTransitionPolicy(policy),
		ordersapp.WithCatalogPriceEnforcement(cfg.EnforceCatalogPrice),
		ordersapp.WithEventPublisher(publisher),
		ordersapp.WithIdempotencyStore(adapters.idempotency),
		ordersapp.WithDefaultPageSize(cfg.DefaultPageSize),
		ordersapp.WithLogger(logger),
	)
	service := ordersobs.New(
		core,
		ordersobs.WithLogger(logger),
		ordersobs.WithTracer(instruments.Tracer("internal.orders.application")),
		ordersobs.WithMeter(instruments.Meter("internal.orders.application")),
	)
	logger.Info("order service configured",
		slog.String("transitionPolicy", policy.String()),
		slog.Bool("enforceCatalogPrice", cfg.EnforceCatalogPrice),
		slog.Int("defaultPageSize", cfg.DefaultPageSize),
	)
	return &OrderStack{Service: service, Close: closeAll}, nil
}

func buildOrderAdapters(ctx context.Context, cfg Config, logger *slog.Logger) (orderAdapters, func(), error) {
	methods, products, err := readSeed(cfg.CatalogSeedFile)
	if err != nil {
		return orderAdapters{}, nil, err
	}
	db, cleanup := platformpostgres.ConnectOrFallback(ctx, cfg.PostgresDSN, logger)
	if db == nil {
		catalog := ordersmemory.NewCatalog()
		for _, method := range methods {
			catalog.PutShippingMethod(method)
		}
		for _, product := range products {
			catalog.PutProduct(product)
		}
		logger.Info("order adapters configured in memory", slog.Int("shippingMethods", len(methods)), slog.Int("products", len(products)))
		return orderAdapters{
			repo:        ordersmemory.NewRepository(),
			catalog:     catalog,
			idempotency: ordersmemory.NewIdempotencyStore(),
		}, cleanup, nil
	}
	if err := migrations.Run(db); err != nil {
		cleanup()
		return orderAdapters{}, nil, fmt.Errorf("run migrations: %w", err)
	}
	catalog := orderspostgres.NewCatalog(db)
	if len(methods) > 0 || len(products) > 0 {
		if err := catalog.Upsert(ctx, methods, products); err != nil {
			cleanup()
			return orderAdapters{}, nil, fmt.Errorf("seed catalog: %w", err)
		}
	}
	logger.Info("order adapters configured with postgres")
	return orderAdapters{
		repo:        orderspostgres.NewRepository(db),
		catalog:     catalog,
		idempotency: orderspostgres.NewIdempotencyStore(db),
	}, cleanup, nil
}

func readSeed(path string) ([]ordersports.ShippingMethod, []ordersports.ProductSnapshot, error) {
	if path == "" {
		return nil, nil, nil
	}
	methods, products, err := ordersmemory.ReadSeedFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("read catalog seed: %w", err)
	}
	return methods, products, nil
}

func buildEventPublisher(cfg Config, logger *slog.Logger) (ordersports.EventPublisher, func(), error) {
	kafkaClient := platformkafka.NewClient(cfg.KafkaBrokers)
	writer, err := kafkaClient.NewWriter(cfg.KafkaOrdersTopic)
	if errors.Is(err, platformkafka.ErrDisabled) {
		logger.Warn("KAFKA_BROKERS not set, order events are not published")
		return ordersports.NoopPublisher{}, func() {}, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("configure kafka writer: %w", err)
	}
	logger.Info("order events published to kafka", slog.String("topic", cfg.KafkaOrdersTopic))
	return orderskafka.NewPublisher(writer), func() {
		if err := writer.Close(); err != nil {
			logger.Warn("failed to close kafka writer", slog.String("error", err.Error()))
		}
	}, nil
}

// ConnectTemporalClient dials Temporal with OpenTelemetry tracing and slog-backed logging.
func ConnectTemporalClient(cfg Config, instruments *platformobservability.Instruments, tracerName string) (client.Client, error) {
	if cfg.TemporalDisabled {
		return nil, errors.New("temporal disabled via TEMPORAL_DISABLED env")
	}
	tracingInterceptor, err := temporalotel.NewTracingInterceptor(temporalotel.TracerOptions{
		Tracer: instruments.Tracer(tracerName),
	})
	if err != nil {
		return nil, err
	}
	options := client.Options{
		HostPort:  cfg.TemporalAddress,
		Namespace: cfg.TemporalNamespace,
		Logger:    workerlog.NewStructuredLogger(effectiveLogger(instruments)),
	}
	options.Interceptors = append(options.Interceptors, tracingInterceptor)
	return client.Dial(options)
}
