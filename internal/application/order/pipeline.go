package order

import (
	"errors"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/storefront/backend/internal/domain/order"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/infrastructure/telemetry"
)

// PipelineState is a stage of one checkout submission.
type PipelineState string

const (
	StateReceived  PipelineState = "received"
	StateValidated PipelineState = "validated"
	StateNumbered  PipelineState = "numbered"
	StatePersisted PipelineState = "persisted"
	StateRejected  PipelineState = "rejected"
)

// pipeline tracks one submission through its states. It is not safe for
// concurrent use; each CreateOrder call owns its own.
type pipeline struct {
	state  PipelineState
	span   trace.Span
	logger *zap.Logger
}

func newPipeline(span trace.Span, log *zap.Logger) *pipeline {
	p := &pipeline{state: StateReceived, span: span, logger: log}
	telemetry.AddEvent(span, string(StateReceived))
	return p
}

func (p *pipeline) advance(to PipelineState, fields ...zap.Field) {
	from := p.state
	p.state = to
	p.logger.Debug("order pipeline transition",
		append([]zap.Field{zap.String("from", string(from)), zap.String("to", string(to))}, fields...)...)
	telemetry.AddEvent(p.span, string(to), "from", string(from))
	telemetry.SetAttributes(p.span, telemetry.SpanAttrState, string(to))
}

// reject moves into the terminal rejected state.
func (p *pipeline) reject(err error) {
	from := p.state
	p.state = StateRejected
	fields := []zap.Field{
		zap.String("from", string(from)),
		zap.String("to", string(StateRejected)),
		zap.String("reason", rejectReason(err)),
	}
	var verr *order.ValidationError
	if errors.As(err, &verr) {
		fields = append(fields, zap.Strings("messages", verr.Messages))
	} else {
		fields = append(fields, zap.Error(err))
	}
	p.logger.Warn("order pipeline transition", fields...)
	telemetry.SetAttributes(p.span, telemetry.SpanAttrState, string(StateRejected))
	telemetry.RecordError(p.span, err)
}

// rejectReason maps an error to its metrics label.
func rejectReason(err error) string {
	switch shared.CodeOf(err) {
	case shared.CodeValidationMismatch:
		return telemetry.RejectValidation
	case shared.CodeNotFound:
		return telemetry.RejectNotFound
	case shared.CodeCapacityExceeded:
		return telemetry.RejectCapacity
	case shared.CodeInvalidInput:
		return telemetry.RejectInvalid
	default:
		return telemetry.RejectInternal
	}
}
