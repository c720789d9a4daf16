// Package order assembles checkout submissions into persisted orders.
package order

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/storefront/backend/internal/domain/order"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/shipping"
	"github.com/storefront/backend/internal/infrastructure/logger"
	"github.com/storefront/backend/internal/infrastructure/telemetry"
)

const (
	outcomeCreated  = "created"
	outcomeRejected = "rejected"
	outcomeFailed   = "failed"
)

// ShippingEstimator returns a shipping breakdown without placing an order.
type ShippingEstimator interface {
	GetShippingDetails(ctx context.Context, postalCode string, subtotal, weightKg decimal.Decimal) (*shipping.Breakdown, error)
}

// Viewer is the identity reading an order.
type Viewer struct {
	UserID *uuid.UUID
	Admin  bool
}

// OrderService turns checkout requests into orders.
type OrderService struct {
	orders    order.Repository
	pricing   *order.PricingValidator
	numbers   order.NumberGenerator
	estimator ShippingEstimator
	events    shared.EventPublisher
	metrics   *telemetry.OrderMetrics
	logger    *zap.Logger
}

// Option configures an OrderService.
type Option func(*OrderService)

// WithEventPublisher sets the publisher for order events.
func WithEventPublisher(p shared.EventPublisher) Option {
	return func(s *OrderService) { s.events = p }
}

// WithMetrics sets the pipeline metrics.
func WithMetrics(m *telemetry.OrderMetrics) Option {
	return func(s *OrderService) { s.metrics = m }
}

// WithLogger sets the fallback logger used when the context carries none.
func WithLogger(l *zap.Logger) Option {
	return func(s *OrderService) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewOrderService creates a new OrderService.
func NewOrderService(
	orders order.Repository,
	pricing *order.PricingValidator,
	numbers order.NumberGenerator,
	estimator ShippingEstimator,
	opts ...Option,
) *OrderService {
	s := &OrderService{
		orders:    orders,
		pricing:   pricing,
		numbers:   numbers,
		estimator: estimator,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateOrder validates a checkout submission against the catalog and
// shipping configuration, assigns an order number and persists the order.
// Validation happens before numbering, so a rejected submission consumes no
// number and writes nothing.
func (s *OrderService) CreateOrder(ctx context.Context, req CreateOrderRequest, userID *uuid.UUID) (*OrderResponse, error) {
	start := time.Now()
	ctx, span := telemetry.StartServiceSpan(ctx, "order", "create",
		telemetry.SpanAttrItemCount, len(req.Items),
		telemetry.SpanAttrPostalCode, req.ShippingAddress.PostalCode,
	)
	defer span.End()

	log := logger.LOr(ctx, s.logger).With(zap.Int("item_count", len(req.Items)))
	if userID != nil {
		telemetry.SetAttributes(span, telemetry.SpanAttrUserID, userID.String())
	}
	p := newPipeline(span, log)

	domainReq := req.ToDomain()
	if msgs := domainReq.ShippingAddress.Validate(); len(msgs) > 0 {
		return nil, s.rejected(ctx, p, start, &order.ValidationError{Messages: msgs})
	}

	breakdown, err := s.pricing.Validate(ctx, domainReq)
	if err != nil {
		return nil, s.rejected(ctx, p, start, err)
	}
	p.advance(StateValidated, zap.String("total", breakdown.Total.StringFixed(2)))
	if len(breakdown.Warnings) > 0 {
		log.Warn("order accepted with warnings", zap.Strings("warnings", breakdown.Warnings))
	}

	number, err := s.numbers.Next(ctx)
	if err != nil {
		return nil, s.rejected(ctx, p, start, err)
	}
	telemetry.SetAttributes(span, telemetry.SpanAttrOrderNumber, number)
	p.advance(StateNumbered, zap.String("order_number", number))

	o, err := order.NewOrder(number, userID, domainReq.ShippingAddress, breakdown, domainReq.Notes)
	if err != nil {
		return nil, s.failed(ctx, p, start, number, err)
	}
	if err := s.orders.Create(ctx, o); err != nil {
		return nil, s.failed(ctx, p, start, number, err)
	}
	telemetry.SetAttributes(span,
		telemetry.SpanAttrOrderID, o.ID.String(),
		telemetry.SpanAttrAmount, breakdown.Total.InexactFloat64(),
	)
	p.advance(StatePersisted, zap.String("order_number", number), zap.String("order_id", o.ID.String()))

	s.metrics.RecordCreated(ctx, o.Total, userID == nil)
	s.metrics.RecordDuration(ctx, time.Since(start), outcomeCreated)
	s.publish(ctx, log, o)

	resp := ToOrderResponse(o)
	resp.Warnings = breakdown.Warnings
	return &resp, nil
}

func (s *OrderService) rejected(ctx context.Context, p *pipeline, start time.Time, err error) error {
	p.reject(err)
	s.metrics.RecordRejected(ctx, rejectReason(err))
	s.metrics.RecordDuration(ctx, time.Since(start), outcomeRejected)
	return err
}

// failed reports an error after a number was issued. The number is not
// reused.
func (s *OrderService) failed(ctx context.Context, p *pipeline, start time.Time, number string, err error) error {
	p.logger.Error("failed to persist order",
		zap.String("order_number", number),
		zap.String("state", string(p.state)),
		zap.Error(err),
	)
	telemetry.RecordError(p.span, err)
	s.metrics.RecordRejected(ctx, rejectReason(err))
	s.metrics.RecordDuration(ctx, time.Since(start), outcomeFailed)
	return err
}

func (s *OrderService) publish(ctx context.Context, log *zap.Logger, o *order.Order) {
	events := o.GetDomainEvents()
	defer o.ClearDomainEvents()
	if s.events == nil || len(events) == 0 {
		return
	}
	if err := s.events.Publish(ctx, events...); err != nil {
		log.Warn("failed to publish order events",
			zap.String("order_number", o.OrderNumber),
			zap.Error(err),
		)
	}
}

// QuoteOrder prices a cart with the authoritative rules without comparing
// declared amounts. Nothing is numbered or stored.
func (s *OrderService) QuoteOrder(ctx context.Context, req CreateOrderRequest) (*QuoteResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "order", "quote",
		telemetry.SpanAttrItemCount, len(req.Items),
		telemetry.SpanAttrPostalCode, req.ShippingAddress.PostalCode,
	)
	defer span.End()

	b, err := s.pricing.Price(ctx, req.ToDomain())
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	resp := ToQuoteResponse(b)
	return &resp, nil
}

// GetShippingDetails estimates shipping for a destination and cart.
func (s *OrderService) GetShippingDetails(ctx context.Context, postalCode string, subtotal, weightKg decimal.Decimal) (*ShippingDetailsResponse, error) {
	if shipping.NormalizePostalCode(postalCode) == "" {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "postal code is required")
	}

	ctx, span := telemetry.StartServiceSpan(ctx, "shipping", "estimate",
		telemetry.SpanAttrPostalCode, postalCode,
	)
	defer span.End()

	b, err := s.estimator.GetShippingDetails(ctx, postalCode, subtotal, weightKg)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	resp := ToShippingDetailsResponse(b)
	return &resp, nil
}

// GetByID returns an order visible to viewer. Orders the viewer may not see
// are reported as not found.
func (s *OrderService) GetByID(ctx context.Context, id uuid.UUID, viewer Viewer) (*OrderResponse, error) {
	o, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canView(o, viewer, true) {
		return nil, shared.ErrNotFound
	}
	resp := ToOrderResponse(o)
	return &resp, nil
}

// GetByOrderNumber returns an order by its number. Guest orders are only
// reachable by ID.
func (s *OrderService) GetByOrderNumber(ctx context.Context, number string, viewer Viewer) (*OrderResponse, error) {
	if _, _, err := order.ParseNumber(number); err != nil {
		return nil, err
	}
	o, err := s.orders.FindByOrderNumber(ctx, number)
	if err != nil {
		return nil, err
	}
	if !canView(o, viewer, false) {
		return nil, shared.ErrNotFound
	}
	resp := ToOrderResponse(o)
	return &resp, nil
}

// ListForUser returns a page of the user's orders.
func (s *OrderService) ListForUser(ctx context.Context, userID uuid.UUID, filter ListFilter) ([]OrderListItemResponse, int64, error) {
	f := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  filter.OrderBy,
		OrderDir: filter.OrderDir,
	}.Normalize()

	orders, total, err := s.orders.FindByUser(ctx, userID, f)
	if err != nil {
		return nil, 0, err
	}
	return ToOrderListItemResponses(orders), total, nil
}

// UpdateStatus moves an order to a new lifecycle status.
func (s *OrderService) UpdateStatus(ctx context.Context, id uuid.UUID, req UpdateStatusRequest) (*OrderResponse, error) {
	target := order.Status(req.Status)

	ctx, span := telemetry.StartServiceSpan(ctx, "order", "update_status",
		telemetry.SpanAttrOrderID, id.String(),
		telemetry.SpanAttrOrderStatus, req.Status,
	)
	defer span.End()

	o, err := s.orders.FindByID(ctx, id)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	expected := o.GetVersion()
	if err := o.TransitionTo(target); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if err := s.orders.UpdateStatus(ctx, o, expected); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	log := logger.LOr(ctx, s.logger)
	log.Info("order status updated",
		zap.String("order_number", o.OrderNumber),
		zap.String("status", o.Status.String()),
	)
	s.publish(ctx, log, o)

	resp := ToOrderResponse(o)
	return &resp, nil
}

func canView(o *order.Order, v Viewer, byID bool) bool {
	if v.Admin {
		return true
	}
	if o.UserID == nil {
		return byID
	}
	return v.UserID != nil && o.BelongsTo(*v.UserID)
}

// IsValidationError reports whether err carries per-field discrepancy
// messages, returning them.
func IsValidationError(err error) ([]string, bool) {
	var verr *order.ValidationError
	if errors.As(err, &verr) {
		return verr.Messages, true
	}
	return nil, false
}
