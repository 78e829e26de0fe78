package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	ordershttp "github.com/md-rasel-mahmud/next-eccomerce-sub000/internal/domains/orders/adapters/http"
	ordersworkflows "github.com/md-rasel-mahmud/next-eccomerce-sub000/internal/domains/orders/adapters/workflows"
	ordersports "github.com/md-rasel-mahmud/next-eccomerce-sub000/internal/domains/orders/ports"
	"github.com/md-rasel-mahmud/next-eccomerce-sub000/internal/platform/auth"
	"github.com/md-rasel-mahmud/next-eccomerce-sub000/internal/platform/metrics"
	platformobservability "github.com/md-rasel-mahmud/next-eccomerce-sub000/internal/platform/observability"
)

const serviceName = "orders-api"

// Run boots the orders HTTP API with observability, repositories, and workflows wired.
func Run(ctx context.Context) error {
	cfg, err := LoadConfig()
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	instruments, shutdown, err := platformobservability.Init(ctx, serviceName)
	if err != nil {
		return fmt.Errorf("failed to initialize observability: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			instruments.Logger.Error("failed to shutdown observability", slog.String("error", err.Error()))
		}
	}()
	logger := instruments.Logger

	stack, err := BuildOrderStack(ctx, cfg, instruments)
	if err != nil {
		return err
	}
	defer stack.Close()

	var orderWorkflows ordersports.WorkflowOrchestrator = ordersworkflows.NewInlineOrderWorkflows(stack.Service)
	if temporalClient, err := ConnectTemporalClient(cfg, instruments, "temporal-client"); err != nil {
		logger.Warn("Temporal workflows unavailable, placing orders inline", slog.String("error", err.Error()))
	} else {
		defer temporalClient.Close()
		orderWorkflows = ordersworkflows.NewTemporalOrderWorkflows(temporalClient)
		logger.Info("Temporal workflows enabled", slog.String("namespace", cfg.TemporalNamespace))
	}

	router := NewRouter(stack.Service, orderWorkflows, metrics.NewHTTPMetrics(serviceName))
	addr := ":" + cfg.Port
	logger.Info("orders API listening", slog.String("addr", addr))
	if err := router.Run(addr); err != nil {
		logger.Error("orders API server exited", slog.String("addr", addr), slog.String("error", err.Error()))
		return err
	}
	return nil
}

// NewRouter assembles the gin engine: tracing, role extraction, HTTP metrics, health and
// metrics endpoints, and the order routes.
func NewRouter(service ordersports.Service, workflows ordersports.WorkflowOrchestrator, httpMetrics *metrics.HTTPMetrics) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware(serviceName))
	router.Use(httpMetrics.Middleware())
	router.Use(auth.Middleware())
	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(httpMetrics.Handler()))
	ordershttp.NewOrderAPI(service, workflows).RegisterRoutes(router)
	return router
}

func effectiveLogger(instruments *platformobservability.Instruments) *slog.Logger {
	if instruments != nil && instruments.Logger != nil {
		return instruments.Logger
	}
	return slog.New(slog.NewTextHandler(os.Stdout, nil))
}
