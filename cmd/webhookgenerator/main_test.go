package main

import (
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/candiath/github-webhooks/internal/githubevents"
	"github.com/candiath/github-webhooks/internal/signature"
)

func TestLoadConfigAppliesDefaults(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "generator.yaml")
	if err := os.WriteFile(path, []byte("base_url: http://localhost:8080\nrepository: a/b\nsecret: s3cret\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := loadConfig(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Event != "push" || cfg.Path != "/api/github" || cfg.Interval != "30s" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
}

func TestLoadConfigRejectsUnsupportedEvent(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "generator.yaml")
	if err := os.WriteFile(path, []byte("base_url: http://localhost\nrepository: a/b\nevent: gollum\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := loadConfig(path); err == nil {
		t.Fatal("expected unsupported event error")
	}
}

func TestSamplePayloadsTranslate(t *testing.T) {
	t.Parallel()

	for event := range samplePayloads {
		body, err := buildPayload(config{Event: event, Repository: "a/b", Sender: "octocat", BaseURL: "http://x", Path: "/api/github"}, "abc1234")
		if err != nil {
			t.Fatalf("%s: build payload: %v", event, err)
		}
		if _, err := githubevents.Translate(event, body); err != nil {
			t.Fatalf("%s: translate: %v", event, err)
		}
	}
}

func TestSendWebhookSignsPayload(t *testing.T) {
	t.Parallel()

	secret := "s3cret"
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		if !signature.Verify(signature.Policy{Enforce: true, Secret: []byte(secret)}, r.Header.Get("X-Hub-Signature-256"), body) {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		if r.Header.Get("X-GitHub-Event") != "star" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.WriteHeader(http.StatusAccepted)
	}))
	t.Cleanup(server.Close)

	cfg := config{BaseURL: server.URL, Path: "/api/github", Secret: secret, Event: "star", Repository: "a/b", Sender: "octocat"}
	if err := sendWebhook(server.Client(), cfg); err != nil {
		t.Fatalf("send webhook: %v", err)
	}
}
