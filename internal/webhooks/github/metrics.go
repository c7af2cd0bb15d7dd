package github

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

type webhookMetrics struct {
	requests metric.Int64Counter
	accepted metric.Int64Counter
	rejected metric.Int64Counter
}

func newWebhookMetrics() webhookMetrics {
	meter := otel.Meter("github.com/candiath/github-webhooks/internal/webhooks/github")
	requests, _ := meter.Int64Counter("webhooks.github.requests")
	accepted, _ := meter.Int64Counter("webhooks.github.accepted")
	rejected, _ := meter.Int64Counter("webhooks.github.rejected")
	return webhookMetrics{
		requests: requests,
		accepted: accepted,
		rejected: rejected,
	}
}

func (m webhookMetrics) recordRequest(ctx context.Context) {
	m.requests.Add(ctx, 1)
}

func (m webhookMetrics) recordAccepted(ctx context.Context, event string) {
	m.accepted.Add(ctx, 1, metric.WithAttributes(attribute.String("event", event)))
}

func (m webhookMetrics) recordRejected(ctx context.Context, event, reason string) {
	m.rejected.Add(ctx, 1, metric.WithAttributes(
		attribute.String("event", event),
		attribute.String("reason", reason),
	))
}
