package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"auditionsync/internal/config"
)

const userAgent = "auditionsync/0.1.0"

// maxErrorLines caps how many pipeline errors are included in a failure alert.
const maxErrorLines = 5

// RunSummary is the subset of a finished run that notifications report.
type RunSummary struct {
	RunID         string
	Duration      time.Duration
	Orders        int
	Profiles      int
	Packets       int
	Registrations int
	Issues        int
	Unsorted      int
}

// Service defines the notification surface used by the runner and CLI.
type Service interface {
	NotifySyncCompleted(ctx context.Context, summary RunSummary) error
	NotifySyncFailed(ctx context.Context, runID string, errs []string) error
	TestNotification(ctx context.Context) error
}

// NewService returns an ntfy publisher for cfg.Notifications.NtfyTopic, or a
// service that drops every message when no topic is set.
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
		endpoint:      topic,
		client:        &http.Client{Timeout: timeout},
		notifySuccess: cfg.Notifications.NotifySuccess,
	}
}

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint      string
	client        *http.Client
	notifySuccess bool
}

func (n *ntfyService) NotifySyncCompleted(ctx context.Context, s RunSummary) error {
	if !n.notifySuccess && s.Issues == 0 && s.Unsorted == 0 {
		return nil
	}
	duration := s.Duration.Round(time.Second)
	if duration < 0 {
		duration = 0
	}

	var message strings.Builder
	fmt.Fprintf(&message, "%d orders, %d profiles (%d packets, %d registrations) in %s",
		s.Orders, s.Profiles, s.Packets, s.Registrations, duration)
	if s.Unsorted > 0 {
		fmt.Fprintf(&message, "\n%d candidates waiting on UNSORTED", s.Unsorted)
	}
	if s.Issues > 0 {
		fmt.Fprintf(&message, "\n%d order issues; see the run log", s.Issues)
	}

	title := "Audition Sync - Complete"
	if s.Issues > 0 {
		title = "Audition Sync - Complete (with issues)"
	}
	return n.send(ctx, payload{
		title:   title,
		message: message.String(),
		tags:    []string{"auditionsync", "sync", "completed"},
	})
}

func (n *ntfyService) NotifySyncFailed(ctx context.Context, runID string, errs []string) error {
	var message strings.Builder
	fmt.Fprintf(&message, "Run %s failed", shortRunID(runID))
	for i, msg := range errs {
		if i == maxErrorLines {
			fmt.Fprintf(&message, "\n... and %d more", len(errs)-maxErrorLines)
			break
		}
		message.WriteString("\n")
		message.WriteString(strings.TrimSpace(msg))
	}
	return n.send(ctx, payload{
		title:    "Audition Sync - Failed",
		message:  message.String(),
		tags:     []string{"auditionsync", "error", "alert"},
		priority: "high",
	})
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	return n.send(ctx, payload{
		title:    "Audition Sync - Test",
		message:  "Notification system test",
		tags:     []string{"auditionsync", "test"},
		priority: "low",
	})
}

// send publishes one message. ntfy takes the body as the message text and
// reads title, tags and priority from headers.
func (n *ntfyService) send(ctx context.Context, p payload) error {
	if n == nil || n.client == nil {
		return nil
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(p.message))
	if err != nil {
		return fmt.Errorf("ntfy request: %w", err)
	}
	headers := map[string]string{
		"User-Agent":   userAgent,
		"Content-Type": "text/plain; charset=utf-8",
		"Title":        p.title,
		"Tags":         strings.Join(p.tags, ","),
		"Priority":     p.priority,
	}
	for key, value := range headers {
		if value != "" {
			req.Header.Set(key, value)
		}
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("ntfy publish: %w", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
	if resp.StatusCode/100 != 2 {
		return fmt.Errorf("ntfy publish: HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return nil
}

func shortRunID(runID string) string {
	if short, _, ok := strings.Cut(runID, "-"); ok {
		return short
	}
	return runID
}

type noopService struct{}

func (noopService) NotifySyncCompleted(context.Context, RunSummary) error    { return nil }
func (noopService) NotifySyncFailed(context.Context, string, []string) error { return nil }
func (noopService) TestNotification(context.Context) error                   { return nil }
