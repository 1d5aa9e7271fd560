package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/farewatch/farewatch/internal/metrics"
	"github.com/farewatch/farewatch/internal/models"
	"github.com/farewatch/farewatch/pkg/currency"
	"github.com/farewatch/farewatch/pkg/logger"
)

const (
	// MaxContentLength keeps the message under the webhook's 2000 character cap.
	MaxContentLength = 1900

	DefaultTimeout = 15 * time.Second
)

// Notifier delivers a run summary. Delivery is best effort: failures are
// logged and never fail the run.
type Notifier interface {
	Notify(ctx context.Context, result *models.RunResult)
}

// New returns a webhook notifier, or a no-op one when url is empty.
func New(url string, log logger.Logger, m *metrics.Registry) Notifier {
	if url == "" {
		return NoOpNotifier{}
	}
	return NewWebhookNotifier(url, log, m)
}

type NoOpNotifier struct{}

func (NoOpNotifier) Notify(context.Context, *models.RunResult) {}

type WebhookNotifier struct {
	url     string
	client  *http.Client
	log     logger.Logger
	metrics *metrics.Registry
}

func NewWebhookNotifier(url string, log logger.Logger, m *metrics.Registry) *WebhookNotifier {
	if log == nil {
		log = logger.NewNop()
	}
	return &WebhookNotifier{
		url:     url,
		client:  &http.Client{Timeout: DefaultTimeout},
		log:     log,
		metrics: m,
	}
}

func (n *WebhookNotifier) Notify(ctx context.Context, result *models.RunResult) {
	if err := n.Send(ctx, FormatMessage(result)); err != nil {
		n.metrics.ObserveNotifyFailure()
		n.log.Warn("webhook notification failed", "error", err)
		return
	}
	n.log.Debug("webhook notification sent")
}

// Send posts content as a {"content": ...} message, truncated to
// MaxContentLength characters.
func (n *WebhookNotifier) Send(ctx context.Context, content string) error {
	body, err := json.Marshal(map[string]string{"content": Truncate(content, MaxContentLength)})
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("webhook returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}
	return nil
}

// Truncate cuts s to at most max characters without splitting a rune.
func Truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	n := 0
	for i := range s {
		if n == max {
			return s[:i]
		}
		n++
	}
	return s
}

// FormatMessage renders the run summary posted to the webhook.
func FormatMessage(result *models.RunResult) string {
	var b strings.Builder
	b.WriteString("**Fare watch results**")

	if result == nil {
		return b.String()
	}

	if len(result.TopDirect) > 0 {
		b.WriteString("\n\n**Top direct round trips**")
		for i, o := range result.TopDirect {
			fmt.Fprintf(&b, "\n%d. %s — %s — %sh, %d stop(s), bag=%t",
				i+1, currency.Format(o.Price, o.Currency), o.Carriers, formatHours(o.Hours), o.Stops, o.BagIncluded)
		}
	}

	if len(result.TopCombos) > 0 {
		b.WriteString("\n\n**Top combos**")
		for i, c := range result.TopCombos {
			fmt.Fprintf(&b, "\n%d. total %s — dates %s / %s",
				i+1, currency.Format(c.Total, c.Currency), c.Dates.FirstLeg, c.Dates.SecondLeg)
		}
	}

	if a := result.Alerts.Direct; a != nil {
		fmt.Fprintf(&b, "\n\n🔔 Direct alert: %s — %s", a.Reason, currency.Format(a.Best.Price, a.Best.Currency))
	}
	if a := result.Alerts.Combo; a != nil {
		fmt.Fprintf(&b, "\n\n🔔 Combo alert: total %s < ref %s",
			currency.Format(a.Best.Total, a.Best.Currency), a.VsRef.StringFixed(2))
	}

	return b.String()
}

func formatHours(h float64) string {
	return strings.TrimSuffix(fmt.Sprintf("%.1f", h), ".0")
}
