// Package notifier delivers chat messages to a Discord-compatible webhook.
package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const (
	// MaxContentLength is Discord's limit for the content field.
	MaxContentLength = 2000
	defaultTimeout   = 10 * time.Second
	maxErrorBody     = 512
)

// ErrNotConfigured is returned when no webhook URL is available.
var ErrNotConfigured = errors.New("notification webhook url is not configured")

// Client posts messages to a single webhook URL.
type Client struct {
	Endpoint   string
	Username   string
	Timeout    time.Duration
	HTTPClient *http.Client
}

// DispatchError describes a delivery the sink did not accept.
type DispatchError struct {
	StatusCode int
	Status     string
	Body       string
}

func (e *DispatchError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("webhook rejected: status=%s", e.Status)
	}
	return fmt.Sprintf("webhook rejected: status=%s body=%s", e.Status, e.Body)
}

type payload struct {
	Content  string `json:"content"`
	Username string `json:"username,omitempty"`
}

// Notify sends message and succeeds only on a 2xx response.
func (c Client) Notify(ctx context.Context, message string) error {
	endpoint := strings.TrimSpace(c.Endpoint)
	if endpoint == "" {
		return ErrNotConfigured
	}

	body, err := json.Marshal(payload{
		Content:  clip(message, MaxContentLength),
		Username: strings.TrimSpace(c.Username),
	})
	if err != nil {
		return fmt.Errorf("encode payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &DispatchError{
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       strings.TrimSpace(string(raw)),
		}
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

func (c Client) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	timeout := c.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &http.Client{
		Timeout:   timeout,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}
}

func clip(message string, limit int) string {
	if utf8.RuneCountInString(message) <= limit {
		return message
	}
	runes := []rune(message)
	return string(runes[:limit-1]) + "…"
}
