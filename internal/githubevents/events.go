// Package githubevents turns GitHub webhook payloads into chat messages.
package githubevents

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	gh "github.com/google/go-github/v81/github"
)

// ErrMalformedPayload marks payloads that cannot describe their event kind.
var ErrMalformedPayload = errors.New("malformed payload")

// Event is one decoded webhook delivery. Each supported kind has its own type.
type Event interface {
	Kind() string
	Message() string
}

type PingEvent struct {
	Zen        string         `json:"zen"`
	HookID     int64          `json:"hook_id"`
	Hook       *PingHook      `json:"hook"`
	Repository *gh.Repository `json:"repository"`
}

type PingHook struct {
	Type   string          `json:"type"`
	Config *PingHookConfig `json:"config"`
}

type PingHookConfig struct {
	URL         string `json:"url"`
	ContentType string `json:"content_type"`
}

type StarEvent struct{ gh.StarEvent }

type WatchEvent struct{ gh.WatchEvent }

type IssuesEvent struct{ gh.IssuesEvent }

type PushEvent struct{ gh.PushEvent }

type PullRequestEvent struct{ gh.PullRequestEvent }

type ForkEvent struct{ gh.ForkEvent }

type CreateEvent struct{ gh.CreateEvent }

type DeleteEvent struct{ gh.DeleteEvent }

type ReleaseEvent struct{ gh.ReleaseEvent }

// GenericEvent covers every kind without a dedicated message.
type GenericEvent struct {
	EventKind  string         `json:"-"`
	Action     string         `json:"action"`
	Repository *gh.Repository `json:"repository"`
	Sender     *gh.User       `json:"sender"`
}

// Parse decodes payload into the Event type registered for kind.
func Parse(kind string, payload []byte) (Event, error) {
	kind = strings.TrimSpace(kind)
	switch kind {
	case "ping":
		var event PingEvent
		if err := decode(payload, &event); err != nil {
			return nil, err
		}
		return &event, nil
	case "star":
		var event StarEvent
		if err := decode(payload, &event.StarEvent); err != nil {
			return nil, err
		}
		if event.Repo == nil {
			return nil, missingField(kind, "repository")
		}
		return &event, nil
	case "watch":
		var event WatchEvent
		if err := decode(payload, &event.WatchEvent); err != nil {
			return nil, err
		}
		if event.Repo == nil {
			return nil, missingField(kind, "repository")
		}
		return &event, nil
	case "issues":
		var event IssuesEvent
		if err := decode(payload, &event.IssuesEvent); err != nil {
			return nil, err
		}
		if event.Repo == nil {
			return nil, missingField(kind, "repository")
		}
		if event.Issue == nil {
			return nil, missingField(kind, "issue")
		}
		return &event, nil
	case "push":
		var event PushEvent
		if err := decode(payload, &event.PushEvent); err != nil {
			return nil, err
		}
		if event.Repo == nil {
			return nil, missingField(kind, "repository")
		}
		return &event, nil
	case "pull_request":
		var event PullRequestEvent
		if err := decode(payload, &event.PullRequestEvent); err != nil {
			return nil, err
		}
		if event.Repo == nil {
			return nil, missingField(kind, "repository")
		}
		if event.PullRequest == nil {
			return nil, missingField(kind, "pull_request")
		}
		return &event, nil
	case "fork":
		var event ForkEvent
		if err := decode(payload, &event.ForkEvent); err != nil {
			return nil, err
		}
		if event.Repo == nil {
			return nil, missingField(kind, "repository")
		}
		return &event, nil
	case "create":
		var event CreateEvent
		if err := decode(payload, &event.CreateEvent); err != nil {
			return nil, err
		}
		if event.Repo == nil {
			return nil, missingField(kind, "repository")
		}
		return &event, nil
	case "delete":
		var event DeleteEvent
		if err := decode(payload, &event.DeleteEvent); err != nil {
			return nil, err
		}
		if event.Repo == nil {
			return nil, missingField(kind, "repository")
		}
		return &event, nil
	case "release":
		var event ReleaseEvent
		if err := decode(payload, &event.ReleaseEvent); err != nil {
			return nil, err
		}
		if event.Repo == nil {
			return nil, missingField(kind, "repository")
		}
		if event.Release == nil {
			return nil, missingField(kind, "release")
		}
		return &event, nil
	default:
		event := GenericEvent{EventKind: kind}
		if err := decode(payload, &event); err != nil {
			return nil, err
		}
		return &event, nil
	}
}

// Translate renders the chat message for one delivery.
func Translate(kind string, payload []byte) (string, error) {
	event, err := Parse(kind, payload)
	if err != nil {
		return "", err
	}
	return event.Message(), nil
}

func decode(payload []byte, target any) error {
	trimmed := bytes.TrimSpace(payload)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return fmt.Errorf("%w: expected a JSON object", ErrMalformedPayload)
	}
	if err := json.Unmarshal(trimmed, target); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	return nil
}

func missingField(kind, field string) error {
	return fmt.Errorf("%w: %s event without %s", ErrMalformedPayload, kind, field)
}

func (*PingEvent) Kind() string        { return "ping" }
func (*StarEvent) Kind() string        { return "star" }
func (*WatchEvent) Kind() string       { return "watch" }
func (*IssuesEvent) Kind() string      { return "issues" }
func (*PushEvent) Kind() string        { return "push" }
func (*PullRequestEvent) Kind() string { return "pull_request" }
func (*ForkEvent) Kind() string        { return "fork" }
func (*CreateEvent) Kind() string      { return "create" }
func (*DeleteEvent) Kind() string      { return "delete" }
func (*ReleaseEvent) Kind() string     { return "release" }
func (e *GenericEvent) Kind() string   { return e.EventKind }
