package routes

import (
	"net/http"

	"github.com/labstack/echo/v4"

	githubwebhook "github.com/candiath/github-webhooks/internal/webhooks/github"
)

// WebhookRoutes registers webhook endpoints.
type WebhookRoutes struct {
	github *githubwebhook.Handler
}

// NewWebhookRoutes constructs webhook routes.
func NewWebhookRoutes(github *githubwebhook.Handler) *WebhookRoutes {
	return &WebhookRoutes{github: github}
}

// RegisterRoutes registers webhook endpoints.
func (w *WebhookRoutes) RegisterRoutes(s *echo.Echo) {
	s.POST("/api/github", w.handleGitHubWebhook)
	s.POST("/webhooks/github", w.handleGitHubWebhook)
	s.GET("/health", handleHealth)
}

func (w *WebhookRoutes) handleGitHubWebhook(c echo.Context) error {
	return w.github.Handle(c)
}

func handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
