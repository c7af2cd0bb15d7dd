package github

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	gh "github.com/google/go-github/v81/github"
	"github.com/labstack/echo/v4"

	"github.com/candiath/github-webhooks/internal/githubevents"
	"github.com/candiath/github-webhooks/internal/observability"
	"github.com/candiath/github-webhooks/internal/signature"
)

const (
	// SignatureHeader carries the HMAC-SHA256 signature of the raw body.
	SignatureHeader = "X-Hub-Signature-256"
	// EventHeader carries the event kind.
	EventHeader = "X-GitHub-Event"
	// GitHub caps webhook payloads at 25 MB.
	maxPayloadBytes = 25 << 20
)

// Notifier delivers one rendered message to the chat sink.
type Notifier interface {
	Notify(ctx context.Context, message string) error
}

// Handler verifies GitHub webhooks and relays them as chat messages.
type Handler struct {
	policy   signature.Policy
	notifier Notifier
	log      *slog.Logger
	metrics  webhookMetrics
}

// Response is the JSON body returned for every webhook request.
type Response struct {
	Event   string `json:"event,omitempty"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// NewHandler constructs a GitHub webhook handler.
func NewHandler(policy signature.Policy, notifier Notifier, log *slog.Logger) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{
		policy:   policy,
		notifier: notifier,
		log:      log,
		metrics:  newWebhookMetrics(),
	}
}

// Handle runs one delivery through verification, translation and dispatch.
func (h *Handler) Handle(c echo.Context) error {
	r := c.Request()
	ctx := r.Context()
	h.metrics.recordRequest(ctx)

	body, err := io.ReadAll(io.LimitReader(r.Body, maxPayloadBytes))
	if err != nil {
		return h.reject(c, http.StatusBadRequest, "read_body", "invalid payload", err)
	}

	if err := signature.Check(h.policy, r.Header.Get(SignatureHeader), body); err != nil {
		if errors.Is(err, signature.ErrMissingSecret) {
			h.log.ErrorContext(ctx, "signature enforcement enabled without GITHUB_WEBHOOK_SECRET")
		}
		return h.reject(c, http.StatusUnauthorized, "signature", "invalid signature", err)
	}

	kind := strings.TrimSpace(gh.WebHookType(r))
	if kind == "" {
		return h.reject(c, http.StatusBadRequest, "missing_event", "missing "+EventHeader+" header", nil)
	}

	if !json.Valid(body) {
		return h.reject(c, http.StatusBadRequest, "invalid_json", "invalid json payload", nil)
	}

	event, err := githubevents.Parse(kind, body)
	if err != nil {
		return h.reject(c, http.StatusBadRequest, "malformed_payload", "malformed "+kind+" payload", err)
	}

	if err := h.dispatch(ctx, event); err != nil {
		h.log.ErrorContext(ctx, "failed to dispatch notification", "event", kind, "error", err)
		h.metrics.recordRejected(ctx, kind, "dispatch")
		return c.JSON(http.StatusInternalServerError, Response{Event: kind, Error: "notification dispatch failed"})
	}

	h.log.InfoContext(ctx, "notification dispatched", "event", kind)
	h.metrics.recordAccepted(ctx, kind)
	return c.JSON(http.StatusAccepted, Response{Event: kind, Message: "notification dispatched"})
}

func (h *Handler) dispatch(ctx context.Context, event githubevents.Event) error {
	ctx, span := observability.StartDispatchSpan(ctx, event.Kind())
	defer span.End()

	if h.notifier == nil {
		err := errors.New("no notifier configured")
		span.RecordError(err)
		return err
	}
	if err := h.notifier.Notify(ctx, event.Message()); err != nil {
		span.RecordError(err)
		return err
	}
	return nil
}

func (h *Handler) reject(c echo.Context, status int, reason, message string, cause error) error {
	ctx := c.Request().Context()
	kind := strings.TrimSpace(gh.WebHookType(c.Request()))
	attrs := []any{"status", status, "reason", reason, "event", kind}
	if cause != nil {
		attrs = append(attrs, "error", cause)
	}
	h.log.WarnContext(ctx, "webhook rejected", attrs...)
	h.metrics.recordRejected(ctx, kind, reason)
	return c.JSON(status, Response{Event: kind, Error: message})
}
