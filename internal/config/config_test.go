package config

import (
	"log/slog"
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("GITHUB_VERIFY_SIGNATURE", "")
	t.Setenv("GITHUB_WEBHOOK_SECRET", "")
	t.Setenv("DISCORD_WEBHOOK_URL", "")
	t.Setenv("DISCORD_TIMEOUT_MS", "")
	t.Setenv("WEBHOOK_STRICT_CONFIG", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Fatalf("expected default port 8080, got %d", cfg.Server.Port)
	}
	if cfg.Signature.Enforce {
		t.Fatal("expected signature enforcement off by default")
	}
	if cfg.NotificationTimeout() != 10*time.Second {
		t.Fatalf("expected 10s timeout, got %s", cfg.NotificationTimeout())
	}
	if policy := cfg.SignaturePolicy(); policy.Enforce || policy.Secret != nil {
		t.Fatalf("unexpected default policy: %+v", policy)
	}
	if len(cfg.Problems()) != 1 {
		t.Fatalf("expected missing webhook url problem, got %v", cfg.Problems())
	}
}

func TestLoadReadsEnvironment(t *testing.T) {
	t.Setenv("PORT", "3000")
	t.Setenv("GITHUB_VERIFY_SIGNATURE", "true")
	t.Setenv("GITHUB_WEBHOOK_SECRET", " s3cret ")
	t.Setenv("DISCORD_WEBHOOK_URL", "https://discord.test/api/webhooks/1/abc")
	t.Setenv("DISCORD_USERNAME", "GitHub")
	t.Setenv("DISCORD_TIMEOUT_MS", "2500")
	t.Setenv("WEBHOOK_STRICT_CONFIG", "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Server.Port != 3000 {
		t.Fatalf("unexpected port: %d", cfg.Server.Port)
	}
	policy := cfg.SignaturePolicy()
	if !policy.Enforce || string(policy.Secret) != "s3cret" {
		t.Fatalf("unexpected policy: enforce=%v secret=%q", policy.Enforce, policy.Secret)
	}
	if cfg.Notification.Username != "GitHub" {
		t.Fatalf("unexpected username: %q", cfg.Notification.Username)
	}
	if cfg.NotificationTimeout() != 2500*time.Millisecond {
		t.Fatalf("unexpected timeout: %s", cfg.NotificationTimeout())
	}
	if len(cfg.Problems()) != 0 {
		t.Fatalf("expected no problems, got %v", cfg.Problems())
	}
}

func TestLoadStrictRejectsEnforcementWithoutSecret(t *testing.T) {
	t.Setenv("GITHUB_VERIFY_SIGNATURE", "true")
	t.Setenv("GITHUB_WEBHOOK_SECRET", "")
	t.Setenv("DISCORD_WEBHOOK_URL", "https://discord.test/hook")
	t.Setenv("WEBHOOK_STRICT_CONFIG", "true")

	_, err := Load()
	if err == nil {
		t.Fatal("expected strict mode to reject missing secret")
	}
	if !strings.Contains(err.Error(), "GITHUB_WEBHOOK_SECRET") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestLoadLenientKeepsMisconfigurationForRuntime(t *testing.T) {
	t.Setenv("GITHUB_VERIFY_SIGNATURE", "true")
	t.Setenv("GITHUB_WEBHOOK_SECRET", "")
	t.Setenv("DISCORD_WEBHOOK_URL", "")
	t.Setenv("WEBHOOK_STRICT_CONFIG", "false")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if len(cfg.Problems()) != 2 {
		t.Fatalf("expected two problems, got %v", cfg.Problems())
	}
}

func TestLoadRejectsInvalidPort(t *testing.T) {
	t.Setenv("PORT", "70000")

	if _, err := Load(); err == nil {
		t.Fatal("expected invalid port error")
	}
}

func TestLoadParsesOTLPHeaders(t *testing.T) {
	t.Setenv("OTEL_EXPORTER_OTLP_HEADERS", "authorization=Bearer common,x-org=abc")
	t.Setenv("OTEL_EXPORTER_OTLP_TRACES_HEADERS", "x-trace=trace-only")
	t.Setenv("WEBHOOK_OTEL_METRICS_CONSOLE", "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if !cfg.Observability.Enabled {
		t.Fatal("expected observability enabled when console metrics is true")
	}
	if cfg.Observability.OTLPTraceHeaders["authorization"] != "Bearer common" {
		t.Fatalf("expected common header in trace headers, got %#v", cfg.Observability.OTLPTraceHeaders)
	}
	if cfg.Observability.OTLPTraceHeaders["x-trace"] != "trace-only" {
		t.Fatalf("expected trace-specific header, got %#v", cfg.Observability.OTLPTraceHeaders)
	}
	if _, ok := cfg.Observability.OTLPMetricHeaders["x-trace"]; ok {
		t.Fatal("trace header leaked into metric headers")
	}
}

func TestLogValueRedactsSecrets(t *testing.T) {
	cfg := Config{
		Signature:    SignatureConfig{Enforce: true, Secret: "super-secret"},
		Notification: NotificationConfig{WebhookURL: "https://discord.test/api/webhooks/1/token"},
	}
	rendered := cfg.LogValue().String()
	if strings.Contains(rendered, "super-secret") || strings.Contains(rendered, "token") {
		t.Fatalf("secret material leaked: %s", rendered)
	}
	var _ slog.LogValuer = cfg
}
