package telemetry

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"todoapi/internal/core/port"
	"todoapi/pkg/tracing"
)

// OTELProbe implements port.Telemetry on top of the global tracer provider.
// Business events also increment the matching prometheus counters.
type OTELProbe struct {
	logger  *zap.Logger
	metrics *AppMetrics
}

func NewOTELProbe(logger *zap.Logger, metrics *AppMetrics) port.Telemetry {
	return &OTELProbe{
		logger:  logger,
		metrics: metrics,
	}
}

type OTelSpan struct {
	span trace.Span
}

func (s *OTelSpan) End() {
	s.span.End()
}

func (s *OTelSpan) SetAttributes(attrs map[string]interface{}) {
	s.span.SetAttributes(tracing.Attributes(attrs)...)
}

func (s *OTelSpan) SetStatus(code string, message string) {
	var statusCode codes.Code

	switch code {
	case "ok":
		statusCode = codes.Ok
	case "error":
		statusCode = codes.Error
	default:
		statusCode = codes.Unset
	}

	s.span.SetStatus(statusCode, message)
}

func (s *OTelSpan) RecordError(err error) {
	s.span.RecordError(err)
}

func (p *OTELProbe) StartRepositorySpan(ctx context.Context, operation string, entity string, attrs map[string]interface{}) (context.Context, port.Span) {
	spanName := fmt.Sprintf("repository.%s.%s", entity, operation)

	standardAttrs := append([]attribute.KeyValue{
		attribute.String("repository.entity", entity),
		attribute.String("repository.operation", operation),
		attribute.String("component", "repository"),
	}, tracing.Attributes(attrs)...)

	ctx, span := tracing.Tracer().Start(ctx, spanName, trace.WithAttributes(standardAttrs...))
	return ctx, &OTelSpan{span: span}
}

func (p *OTELProbe) StartServiceSpan(ctx context.Context, service string, operation string, userID int, attrs map[string]interface{}) (context.Context, port.Span) {
	spanName := fmt.Sprintf("service.%s.%s", service, operation)

	standardAttrs := append([]attribute.KeyValue{
		attribute.String("service.name", service),
		attribute.String("service.operation", operation),
		attribute.Int("user.id", userID),
		attribute.String("component", "service"),
	}, tracing.Attributes(attrs)...)

	ctx, span := tracing.Tracer().Start(ctx, spanName, trace.WithAttributes(standardAttrs...))
	return ctx, &OTelSpan{span: span}
}

func (p *OTELProbe) RecordRepositoryOperation(ctx context.Context, operation string, entity string, duration time.Duration, err error) {
	span := trace.SpanFromContext(ctx)

	span.SetAttributes(
		attribute.Int64("duration_ns", duration.Nanoseconds()),
		attribute.Bool("has_error", err != nil),
	)

	if err != nil {
		tracing.AddSpanError(span, err)
		p.logger.Error("Repository operation failed",
			zap.String("operation", operation),
			zap.String("entity", entity),
			zap.Duration("duration", duration),
			zap.String("trace_id", tracing.GetTraceID(ctx)),
			zap.String("span_id", tracing.GetSpanID(ctx)),
			zap.Error(err))
		return
	}

	span.SetStatus(codes.Ok, "")
}

// RecordServiceOperation logs failures at warn level. Most service errors are
// expected outcomes (not found, conflict) rather than faults.
func (p *OTELProbe) RecordServiceOperation(ctx context.Context, service string, operation string, userID int, duration time.Duration, err error) {
	span := trace.SpanFromContext(ctx)

	span.SetAttributes(
		attribute.Int64("duration_ns", duration.Nanoseconds()),
		attribute.Bool("has_error", err != nil),
	)

	if err != nil {
		tracing.AddSpanError(span, err)
		p.logger.Warn("Service operation failed",
			zap.String("service", service),
			zap.String("operation", operation),
			zap.Int("user_id", userID),
			zap.Duration("duration", duration),
			zap.String("trace_id", tracing.GetTraceID(ctx)),
			zap.String("span_id", tracing.GetSpanID(ctx)),
			zap.Error(err))
		return
	}

	span.SetStatus(codes.Ok, "")
}

// RecordBusinessEvent expects events named "<entity>.<action>", for example
// "task.created" or "auth.login_failed".
func (p *OTELProbe) RecordBusinessEvent(ctx context.Context, event string, entity string, entityID string, userID int, metadata map[string]interface{}) {
	span := trace.SpanFromContext(ctx)

	span.AddEvent(event, trace.WithAttributes(append([]attribute.KeyValue{
		attribute.String("entity", entity),
		attribute.String("entity_id", entityID),
		attribute.Int("user_id", userID),
	}, tracing.Attributes(metadata)...)...))

	if p.metrics != nil {
		action := event

		if _, after, found := strings.Cut(event, "."); found {
			action = after
		}

		switch entity {
		case "auth":
			p.metrics.RecordAuthEvent(ctx, action)
		case "task":
			p.metrics.RecordTaskOperation(ctx, action)
		case "user":
			p.metrics.RecordUserOperation(ctx, action)
		}
	}

	p.logger.Info("Business event recorded",
		zap.String("event", event),
		zap.String("entity", entity),
		zap.String("entity_id", entityID),
		zap.Int("user_id", userID),
		zap.Any("metadata", metadata))
}

func (p *OTELProbe) RecordError(ctx context.Context, operation string, err error, metadata map[string]interface{}) {
	p.logger.Error("Operation error recorded",
		zap.String("operation", operation),
		zap.String("trace_id", tracing.GetTraceID(ctx)),
		zap.String("span_id", tracing.GetSpanID(ctx)),
		zap.Any("metadata", metadata),
		zap.Error(err))
}
