package main

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/candiath/github-webhooks/internal/signature"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config")
	once := flag.Bool("once", false, "send a single delivery and exit")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	client := &http.Client{Timeout: 10 * time.Second}
	if *once {
		if err := sendWebhook(client, cfg); err != nil {
			fmt.Fprintln(os.Stderr, "webhook error:", err)
			os.Exit(1)
		}
		return
	}

	interval, _ := time.ParseDuration(cfg.Interval)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if err := sendWebhook(client, cfg); err != nil {
			fmt.Fprintln(os.Stderr, "webhook error:", err)
		}
		<-ticker.C
	}
}

func loadConfig(path string) (config, error) {
	if strings.TrimSpace(path) == "" {
		return config{}, fmt.Errorf("config path is required")
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetDefault("path", "/api/github")
	v.SetDefault("event", "push")
	v.SetDefault("sender", "octocat")
	v.SetDefault("interval", "30s")
	if err := v.ReadInConfig(); err != nil {
		return config{}, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg config
	if err := v.Unmarshal(&cfg); err != nil {
		return config{}, fmt.Errorf("failed to decode config: %w", err)
	}

	cfg.BaseURL = strings.TrimSpace(cfg.BaseURL)
	cfg.Path = strings.TrimSpace(cfg.Path)
	cfg.Secret = strings.TrimSpace(cfg.Secret)
	cfg.Event = strings.TrimSpace(cfg.Event)
	cfg.Repository = strings.TrimSpace(cfg.Repository)
	cfg.Sender = strings.TrimSpace(cfg.Sender)
	cfg.Interval = strings.TrimSpace(cfg.Interval)

	if cfg.BaseURL == "" || cfg.Repository == "" {
		return config{}, fmt.Errorf("config must include base_url and repository")
	}
	if _, ok := samplePayloads[cfg.Event]; !ok {
		return config{}, fmt.Errorf("unsupported event %q", cfg.Event)
	}

	parsed, err := time.ParseDuration(cfg.Interval)
	if err != nil {
		return config{}, fmt.Errorf("invalid interval duration: %w", err)
	}
	if parsed <= 0 {
		return config{}, fmt.Errorf("interval must be positive")
	}

	return cfg, nil
}

var samplePayloads = map[string]func(cfg config, ref string) map[string]any{
	"ping": func(cfg config, _ string) map[string]any {
		return map[string]any{
			"zen":  "Keep it logically awesome.",
			"hook": map[string]any{"config": map[string]any{"url": strings.TrimRight(cfg.BaseURL, "/") + cfg.Path}},
		}
	},
	"star": func(cfg config, _ string) map[string]any {
		return map[string]any{"action": "created"}
	},
	"push": func(cfg config, ref string) map[string]any {
		return map[string]any{
			"ref":     "refs/heads/main",
			"after":   ref,
			"commits": []map[string]any{{"id": ref, "message": "generated commit"}},
		}
	},
	"issues": func(cfg config, ref string) map[string]any {
		return map[string]any{
			"action": "opened",
			"issue":  map[string]any{"number": 1, "title": "Generated issue " + ref},
		}
	},
	"release": func(cfg config, ref string) map[string]any {
		return map[string]any{
			"action":  "published",
			"release": map[string]any{"tag_name": "v0.0.0-" + ref, "name": "Generated release"},
		}
	},
}

func buildPayload(cfg config, ref string) ([]byte, error) {
	body := samplePayloads[cfg.Event](cfg, ref)
	body["repository"] = map[string]any{
		"full_name": cfg.Repository,
		"html_url":  "https://github.com/" + cfg.Repository,
	}
	body["sender"] = map[string]any{"login": cfg.Sender}
	return json.Marshal(body)
}

func sendWebhook(client *http.Client, cfg config) error {
	ref, err := randomSHA(7)
	if err != nil {
		return fmt.Errorf("failed to generate reference: %w", err)
	}

	body, err := buildPayload(cfg, ref)
	if err != nil {
		return fmt.Errorf("failed to encode payload: %w", err)
	}

	request, err := http.NewRequestWithContext(context.Background(), http.MethodPost, strings.TrimRight(cfg.BaseURL, "/")+cfg.Path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}

	request.Header.Set("Content-Type", "application/json")
	request.Header.Set("X-GitHub-Event", cfg.Event)
	request.Header.Set("X-GitHub-Delivery", ref)
	if cfg.Secret != "" {
		request.Header.Set("X-Hub-Signature-256", signature.Sign([]byte(cfg.Secret), body))
	}

	resp, err := client.Do(request)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusMultipleChoices {
		payload, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("webhook failed: %s", strings.TrimSpace(string(payload)))
	}

	fmt.Printf("Webhook status: %s (event %s, delivery %s)\n", resp.Status, cfg.Event, ref)
	return nil
}

func randomSHA(length int) (string, error) {
	if length <= 0 {
		return "", fmt.Errorf("invalid length")
	}
	raw := make([]byte, (length+1)/2)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}
	return hex.EncodeToString(raw)[:length], nil
}
