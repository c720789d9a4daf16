package telemetry

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/metric"
)

// Reject reasons reported by OrderMetrics.
const (
	RejectValidation = "validation_mismatch"
	RejectNotFound   = "not_found"
	RejectCapacity   = "capacity_exceeded"
	RejectInvalid    = "invalid_input"
	RejectInternal   = "internal"
)

// OrderMetrics counts settlement pipeline outcomes.
type OrderMetrics struct {
	created  *Counter
	rejected *Counter
	amount   *Histogram
	duration *Histogram
}

// NewOrderMetrics registers the pipeline instruments on meter.
func NewOrderMetrics(meter metric.Meter) (*OrderMetrics, error) {
	if meter == nil {
		return nil, errors.New("NewOrderMetrics: meter cannot be nil")
	}
	created, err := NewCounter(meter, "orders_created_total", "Orders persisted by the settlement pipeline", "{order}")
	if err != nil {
		return nil, err
	}
	rejected, err := NewCounter(meter, "orders_rejected_total", "Order requests rejected before persistence", "{order}")
	if err != nil {
		return nil, err
	}
	amount, err := NewHistogram(meter, "order_total_amount", "Grand total of persisted orders", "EUR",
		10, 25, 50, 100, 250, 500, 1000, 2500)
	if err != nil {
		return nil, err
	}
	duration, err := NewHistogram(meter, "order_pipeline_duration_seconds", "Time spent settling an order request", "s",
		0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5)
	if err != nil {
		return nil, err
	}
	return &OrderMetrics{created: created, rejected: rejected, amount: amount, duration: duration}, nil
}

// RecordCreated counts a persisted order and its total.
func (m *OrderMetrics) RecordCreated(ctx context.Context, total decimal.Decimal, guest bool) {
	if m == nil {
		return
	}
	m.created.Inc(ctx, AttrGuest.Bool(guest))
	f, _ := total.Float64()
	m.amount.Record(ctx, f, AttrGuest.Bool(guest))
}

// RecordRejected counts a request that ended before persistence.
func (m *OrderMetrics) RecordRejected(ctx context.Context, reason string) {
	if m == nil {
		return
	}
	m.rejected.Inc(ctx, AttrRejectReason.String(reason))
}

// RecordDuration records how long one request took end to end.
func (m *OrderMetrics) RecordDuration(ctx context.Context, d time.Duration, outcome string) {
	if m == nil {
		return
	}
	m.duration.RecordDuration(ctx, d, AttrOutcome.String(outcome))
}
