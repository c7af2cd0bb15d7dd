package githubevents

import (
	"fmt"
	"strconv"
	"strings"

	gh "github.com/google/go-github/v81/github"
)

const (
	branchRefPrefix   = "refs/heads/"
	unknownRepository = "unknown repository"
	unknownSender     = "someone"
)

func (e *PingEvent) Message() string {
	hookURL := ""
	if e.Hook != nil && e.Hook.Config != nil {
		hookURL = e.Hook.Config.URL
	}
	repo := unknownRepository
	if e.Repository != nil {
		repo = repositoryName(e.Repository)
		if link := strings.TrimSpace(e.Repository.GetHTMLURL()); link != "" {
			repo += " (" + link + ")"
		}
	}
	return fmt.Sprintf("Webhook configured for %s\nWebhook URL: %s\nZen: %q",
		repo,
		valueOr(hookURL, "not provided"),
		valueOr(e.Zen, "no zen today"),
	)
}

func (e *StarEvent) Message() string {
	return starMessage(e.GetSender(), e.GetAction() == "created", e.Repo)
}

// GitHub only emits watch events with action "started".
func (e *WatchEvent) Message() string {
	action := e.GetAction()
	return starMessage(e.GetSender(), action == "created" || action == "started", e.Repo)
}

func starMessage(sender *gh.User, starred bool, repo *gh.Repository) string {
	verb := "unstarred"
	if starred {
		verb = "starred"
	}
	return fmt.Sprintf("%s %s %s", senderName(sender), verb, repositoryName(repo))
}

func (e *IssuesEvent) Message() string {
	return fmt.Sprintf("%s %s issue #%s: %s in %s",
		senderName(e.GetSender()),
		valueOr(e.GetAction(), "updated"),
		number(e.Issue.Number),
		valueOr(e.Issue.GetTitle(), "untitled"),
		repositoryName(e.Repo),
	)
}

func (e *PushEvent) Message() string {
	actor := strings.TrimSpace(e.GetSender().GetLogin())
	if actor == "" {
		actor = strings.TrimSpace(e.GetPusher().GetName())
	}
	return fmt.Sprintf("%s pushed %s to %s:%s",
		valueOr(actor, unknownSender),
		pluralize(len(e.Commits), "commit", "commits"),
		valueOr(e.Repo.GetFullName(), valueOr(e.Repo.GetName(), unknownRepository)),
		branchName(e.GetRef()),
	)
}

func (e *PullRequestEvent) Message() string {
	num := e.Number
	if num == nil {
		num = e.PullRequest.Number
	}
	return fmt.Sprintf("%s %s pull request #%s: %s in %s",
		senderName(e.GetSender()),
		pullRequestAction(e.GetAction(), e.PullRequest.GetMerged()),
		number(num),
		valueOr(e.PullRequest.GetTitle(), "untitled"),
		repositoryName(e.Repo),
	)
}

func pullRequestAction(action string, merged bool) string {
	if action == "closed" {
		if merged {
			return "merged"
		}
		return "closed without merging"
	}
	return valueOr(action, "updated")
}

func (e *ForkEvent) Message() string {
	forkee := "unknown fork"
	if e.Forkee != nil {
		forkee = valueOr(e.Forkee.GetFullName(), forkee)
	}
	return fmt.Sprintf("%s forked %s to %s", senderName(e.GetSender()), repositoryName(e.Repo), forkee)
}

func (e *CreateEvent) Message() string {
	return fmt.Sprintf("%s created %s %s in %s",
		senderName(e.GetSender()),
		valueOr(e.GetRefType(), "unknown"),
		valueOr(e.GetRef(), "unknown"),
		repositoryName(e.Repo),
	)
}

func (e *DeleteEvent) Message() string {
	return fmt.Sprintf("%s deleted %s %s from %s",
		senderName(e.GetSender()),
		valueOr(e.GetRefType(), "unknown"),
		valueOr(e.GetRef(), "unknown"),
		repositoryName(e.Repo),
	)
}

func (e *ReleaseEvent) Message() string {
	return fmt.Sprintf("%s %s release %s: %s in %s",
		senderName(e.GetSender()),
		valueOr(e.GetAction(), "updated"),
		valueOr(e.Release.GetTagName(), "untagged"),
		valueOr(e.Release.GetName(), "untitled"),
		repositoryName(e.Repo),
	)
}

func (e *GenericEvent) Message() string {
	repo := unknownRepository
	if e.Repository != nil {
		repo = valueOr(e.Repository.GetFullName(), unknownRepository)
	}
	return fmt.Sprintf("Received %s event for %s", valueOr(e.EventKind, "unknown"), repo)
}

func branchName(ref string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "unknown"
	}
	return strings.TrimPrefix(ref, branchRefPrefix)
}

func pluralize(count int, singular, plural string) string {
	if count == 1 {
		return "1 " + singular
	}
	return strconv.Itoa(count) + " " + plural
}

func senderName(user *gh.User) string {
	return valueOr(user.GetLogin(), unknownSender)
}

func repositoryName(repo *gh.Repository) string {
	return valueOr(repo.GetFullName(), valueOr(repo.GetName(), unknownRepository))
}

func number(n *int) string {
	if n == nil {
		return "?"
	}
	return strconv.Itoa(*n)
}

func valueOr(value, fallback string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return fallback
	}
	return value
}
