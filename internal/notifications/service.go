package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"quire/internal/config"
)

const userAgent = "quire/0.1.0"

// Event identifies a notification kind.
type Event string

const (
	EventBuildVerified Event = "build_verified"
	EventBuildFailed   Event = "build_failed"
	EventTest          Event = "test"
)

// Payload carries event details. Keys are event specific.
type Payload map[string]any

// Service defines the notification surface exposed to pipeline components.
type Service interface {
	Publish(ctx context.Context, event Event, payload Payload) error
}

// NewService builds a notification service backed by ntfy when configured.
// When no ntfy topic is configured, a noop implementation is returned.
func NewService(cfg *config.Config) Service {
	if cfg == nil {
		return noopService{}
	}
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &ntfyService{
		endpoint: topic,
		client:   &http.Client{Timeout: timeout},
		verified: cfg.Notifications.Verified,
		errors:   cfg.Notifications.Errors,
	}
}

type message struct {
	title    string
	body     string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint string
	client   *http.Client
	verified bool
	errors   bool
}

func (n *ntfyService) Publish(ctx context.Context, event Event, payload Payload) error {
	msg, ok := n.format(event, payload)
	if !ok {
		return nil
	}
	return n.send(ctx, msg)
}

func (n *ntfyService) format(event Event, payload Payload) (message, bool) {
	switch event {
	case EventBuildVerified:
		if !n.verified {
			return message{}, false
		}
		body := fmt.Sprintf("📘 Build verified: %s", stringValue(payload, "document"))
		if chapters := stringValue(payload, "chapters"); chapters != "" {
			body += fmt.Sprintf("\nChapters: %s", chapters)
		}
		if checks := stringValue(payload, "checks"); checks != "" {
			body += fmt.Sprintf("\nChecks passed: %s", checks)
		}
		return message{
			title: "quire - Build Verified",
			body:  body,
			tags:  []string{"quire", "build", "verified"},
		}, true
	case EventBuildFailed:
		if !n.errors {
			return message{}, false
		}
		var b strings.Builder
		b.WriteString("❌ Build failed")
		if task := stringValue(payload, "task"); task != "" {
			b.WriteString(" at ")
			b.WriteString(task)
		}
		b.WriteString(": ")
		if errText := stringValue(payload, "error"); errText != "" {
			b.WriteString(errText)
		} else {
			b.WriteString("unknown")
		}
		return message{
			title:    "quire - Build Failed",
			body:     b.String(),
			tags:     []string{"quire", "error", "alert"},
			priority: "high",
		}, true
	case EventTest:
		return message{
			title:    "quire - Test",
			body:     "🧪 Notification system test",
			tags:     []string{"quire", "test"},
			priority: "low",
		}, true
	default:
		return message{}, false
	}
}

func (n *ntfyService) send(ctx context.Context, data message) error {
	if n == nil || n.client == nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(data.body))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if data.title != "" {
		req.Header.Set("Title", data.title)
	}
	if len(data.tags) > 0 {
		req.Header.Set("Tags", strings.Join(data.tags, ","))
	}
	if data.priority != "" && data.priority != "default" {
		req.Header.Set("Priority", data.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

func stringValue(payload Payload, key string) string {
	if payload == nil {
		return ""
	}
	v, ok := payload[key]
	if !ok || v == nil {
		return ""
	}
	switch typed := v.(type) {
	case string:
		return strings.TrimSpace(typed)
	case error:
		return strings.TrimSpace(typed.Error())
	default:
		return strings.TrimSpace(fmt.Sprint(typed))
	}
}

type noopService struct{}

func (noopService) Publish(context.Context, Event, Payload) error { return nil }
