package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/candiath/github-webhooks/internal/signature"
)

type Config struct {
	Environment   string
	Server        ServerConfig
	Signature     SignatureConfig
	Notification  NotificationConfig
	Observability ObservabilityConfig
	Strict        bool
}

type ServerConfig struct {
	Port int
}

type SignatureConfig struct {
	Enforce bool
	Secret  string
}

type NotificationConfig struct {
	WebhookURL string
	Username   string
	TimeoutMS  int
}

type ObservabilityConfig struct {
	Enabled           bool
	OTLPEndpoint      string
	OTLPTraceHeaders  map[string]string
	OTLPMetricHeaders map[string]string
	ServiceName       string
	ServiceVer        string
	SamplingRatio     float64
	MetricsConsole    bool
}

func Load() (Config, error) {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("webhook_env", "")
	v.SetDefault("app_env", "")
	v.SetDefault("port", 8080)
	v.SetDefault("github_webhook_secret", "")
	v.SetDefault("github_verify_signature", false)
	v.SetDefault("discord_webhook_url", "")
	v.SetDefault("discord_username", "")
	v.SetDefault("discord_timeout_ms", 10000)
	v.SetDefault("webhook_strict_config", false)
	v.SetDefault("webhook_otel_enabled", false)
	v.SetDefault("otel_exporter_otlp_endpoint", "")
	v.SetDefault("otel_exporter_otlp_headers", "")
	v.SetDefault("otel_exporter_otlp_traces_headers", "")
	v.SetDefault("otel_exporter_otlp_metrics_headers", "")
	v.SetDefault("otel_service_name", "github-webhooks")
	v.SetDefault("webhook_version", "dev")
	v.SetDefault("webhook_otel_sampling_ratio", 1.0)
	v.SetDefault("webhook_otel_metrics_console", false)

	port := v.GetInt("port")
	if port <= 0 || port > 65535 {
		return Config{}, fmt.Errorf("invalid PORT: %d", port)
	}

	timeoutMS := v.GetInt("discord_timeout_ms")
	if timeoutMS <= 0 {
		timeoutMS = 10000
	}

	samplingRatio := v.GetFloat64("webhook_otel_sampling_ratio")
	if samplingRatio < 0 {
		samplingRatio = 0
	}
	if samplingRatio > 1 {
		samplingRatio = 1
	}

	serviceName := strings.TrimSpace(v.GetString("otel_service_name"))
	if serviceName == "" {
		serviceName = "github-webhooks"
	}
	serviceVersion := strings.TrimSpace(v.GetString("webhook_version"))
	if serviceVersion == "" {
		serviceVersion = "dev"
	}

	otlpEndpoint := strings.TrimSpace(v.GetString("otel_exporter_otlp_endpoint"))
	otlpCommonHeaders := parseOTLPHeaders(v.GetString("otel_exporter_otlp_headers"))
	metricsConsole := v.GetBool("webhook_otel_metrics_console")

	cfg := Config{
		Environment: resolveEnvironment(v),
		Server:      ServerConfig{Port: port},
		Signature: SignatureConfig{
			Enforce: v.GetBool("github_verify_signature"),
			Secret:  strings.TrimSpace(v.GetString("github_webhook_secret")),
		},
		Notification: NotificationConfig{
			WebhookURL: strings.TrimSpace(v.GetString("discord_webhook_url")),
			Username:   strings.TrimSpace(v.GetString("discord_username")),
			TimeoutMS:  timeoutMS,
		},
		Observability: ObservabilityConfig{
			Enabled:           v.GetBool("webhook_otel_enabled") || otlpEndpoint != "" || metricsConsole,
			OTLPEndpoint:      otlpEndpoint,
			OTLPTraceHeaders:  mergeHeaderMaps(otlpCommonHeaders, parseOTLPHeaders(v.GetString("otel_exporter_otlp_traces_headers"))),
			OTLPMetricHeaders: mergeHeaderMaps(otlpCommonHeaders, parseOTLPHeaders(v.GetString("otel_exporter_otlp_metrics_headers"))),
			ServiceName:       serviceName,
			ServiceVer:        serviceVersion,
			SamplingRatio:     samplingRatio,
			MetricsConsole:    metricsConsole,
		},
		Strict: v.GetBool("webhook_strict_config"),
	}

	if problems := cfg.Problems(); cfg.Strict && len(problems) > 0 {
		return Config{}, errors.New("invalid configuration: " + strings.Join(problems, "; "))
	}

	return cfg, nil
}

// Problems lists misconfigurations that make every request fail at runtime.
func (c Config) Problems() []string {
	var problems []string
	if c.Notification.WebhookURL == "" {
		problems = append(problems, "DISCORD_WEBHOOK_URL is not set; notifications cannot be dispatched")
	}
	if c.Signature.Enforce && c.Signature.Secret == "" {
		problems = append(problems, "GITHUB_VERIFY_SIGNATURE is enabled but GITHUB_WEBHOOK_SECRET is not set; all requests will be rejected")
	}
	return problems
}

// SignaturePolicy returns the verification policy for inbound webhooks.
func (c Config) SignaturePolicy() signature.Policy {
	policy := signature.Policy{Enforce: c.Signature.Enforce}
	if c.Signature.Secret != "" {
		policy.Secret = []byte(c.Signature.Secret)
	}
	return policy
}

func (c Config) NotificationTimeout() time.Duration {
	return time.Duration(c.Notification.TimeoutMS) * time.Millisecond
}

// LogValue keeps the secret and webhook URL out of logs.
func (c Config) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("environment", c.Environment),
		slog.Int("port", c.Server.Port),
		slog.Bool("verify_signature", c.Signature.Enforce),
		slog.Bool("secret_configured", c.Signature.Secret != ""),
		slog.Bool("webhook_url_configured", c.Notification.WebhookURL != ""),
		slog.Bool("otel_enabled", c.Observability.Enabled),
		slog.Bool("strict", c.Strict),
	)
}

func parseOTLPHeaders(raw string) map[string]string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	out := make(map[string]string)
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		pair := strings.SplitN(part, "=", 2)
		if len(pair) != 2 {
			continue
		}
		key := strings.TrimSpace(pair[0])
		value := strings.TrimSpace(pair[1])
		if key == "" || value == "" {
			continue
		}
		out[key] = value
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func mergeHeaderMaps(base, override map[string]string) map[string]string {
	if len(base) == 0 && len(override) == 0 {
		return nil
	}
	out := make(map[string]string, len(base)+len(override))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range override {
		out[k] = v
	}
	return out
}

func (c Config) IsLocalDevelopment() bool {
	switch strings.ToLower(strings.TrimSpace(c.Environment)) {
	case "", "local", "dev", "development", "test":
		return true
	default:
		return false
	}
}

func resolveEnvironment(v *viper.Viper) string {
	for _, key := range []string{"webhook_env", "app_env"} {
		value := strings.TrimSpace(v.GetString(key))
		if value != "" {
			return strings.ToLower(value)
		}
	}
	return ""
}
