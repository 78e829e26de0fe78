package observability

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	ordertypes "github.com/md-rasel-mahmud/next-eccomerce-sub000/internal/domains/orders/application/types"
	"github.com/md-rasel-mahmud/next-eccomerce-sub000/internal/domains/orders/domain"
	"github.com/md-rasel-mahmud/next-eccomerce-sub000/internal/domains/orders/ports"
)

type stubService struct {
	ports.Service
	submitErr error
}

func (s stubService) SubmitOrder(context.Context, ordertypes.CheckoutInput) (*ordertypes.OrderProjection, error) {
	if s.submitErr != nil {
		return nil, s.submitErr
	}
	return &ordertypes.OrderProjection{Entity: &domain.Order{ID: "id-1", OrderID: "ORD-1", PaymentMethod: domain.PaymentCashOnDelivery}}, nil
}

func counterTotal(t *testing.T, reader *sdkmetric.ManualReader, name string) int64 {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	for _, scope := range rm.ScopeMetrics {
		for _, m := range scope.Metrics {
			if m.Name != name {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			require.True(t, ok)
			var total int64
			for _, dp := range sum.DataPoints {
				total += dp.Value
			}
			return total
		}
	}
	return 0
}

func TestService_SubmitOrderRecordsSpanAndCounter(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	svc := New(stubService{}, WithTracer(tp.Tracer("test")), WithMeter(mp.Meter("test")))
	_, err := svc.SubmitOrder(context.Background(), ordertypes.CheckoutInput{})
	require.NoError(t, err)

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	require.Equal(t, "OrderService.SubmitOrder", spans[0].Name())
	require.EqualValues(t, 1, counterTotal(t, reader, "orders.service.submitted"))
}

func TestService_SubmitOrderCountsRejections(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	svc := New(stubService{submitErr: &domain.ReconciliationError{Expected: 210, Claimed: 200}}, WithMeter(mp.Meter("test")))
	_, err := svc.SubmitOrder(context.Background(), ordertypes.CheckoutInput{})

	require.ErrorIs(t, err, domain.ErrTotalMismatch)
	require.EqualValues(t, 1, counterTotal(t, reader, "orders.service.rejected"))
	require.Equal(t, "reconciliation", rejectionReason(err))
}
