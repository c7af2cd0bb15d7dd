package observability

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const dispatchTracerName = "github-webhooks/notifier"

type contextKey string

const (
	requestIDKey  contextKey = "observability.request_id"
	deliveryIDKey contextKey = "observability.delivery_id"
)

// Span is the application-level tracing span contract.
type Span interface {
	End()
	RecordError(error)
}

type otelSpan struct {
	inner trace.Span
}

// StartDispatchSpan starts a client span around one outbound notification.
func StartDispatchSpan(ctx context.Context, eventKind string) (context.Context, Span) {
	eventKind = strings.TrimSpace(eventKind)
	if eventKind == "" {
		eventKind = "unknown"
	}
	attrs := []attribute.KeyValue{
		attribute.String("github.event", eventKind),
	}
	if deliveryID, ok := DeliveryIDFromContext(ctx); ok {
		attrs = append(attrs, attribute.String("github.delivery_id", deliveryID))
	}

	ctx, span := otel.Tracer(dispatchTracerName).Start(ctx, "notify."+eventKind,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attrs...),
	)
	return ctx, otelSpan{inner: span}
}

// WithRequestMetadata enriches context and current span with request metadata.
func WithRequestMetadata(ctx context.Context, requestID, deliveryID string) context.Context {
	requestID = strings.TrimSpace(requestID)
	deliveryID = strings.TrimSpace(deliveryID)
	if requestID != "" {
		ctx = context.WithValue(ctx, requestIDKey, requestID)
	}
	if deliveryID != "" {
		ctx = context.WithValue(ctx, deliveryIDKey, deliveryID)
	}

	attrs := make([]attribute.KeyValue, 0, 2)
	if requestID != "" {
		attrs = append(attrs, attribute.String("request.id", requestID))
	}
	if deliveryID != "" {
		attrs = append(attrs, attribute.String("github.delivery_id", deliveryID))
	}
	if len(attrs) > 0 {
		trace.SpanFromContext(ctx).SetAttributes(attrs...)
	}
	return ctx
}

// RequestIDFromContext extracts request id.
func RequestIDFromContext(ctx context.Context) (string, bool) {
	value, ok := ctx.Value(requestIDKey).(string)
	return value, ok && value != ""
}

// DeliveryIDFromContext extracts the GitHub delivery id.
func DeliveryIDFromContext(ctx context.Context) (string, bool) {
	value, ok := ctx.Value(deliveryIDKey).(string)
	return value, ok && value != ""
}

func (s otelSpan) End() {
	if s.inner == nil {
		return
	}
	s.inner.End()
}

func (s otelSpan) RecordError(err error) {
	if s.inner == nil || err == nil {
		return
	}
	s.inner.RecordError(err)
	s.inner.SetStatus(codes.Error, err.Error())
}
