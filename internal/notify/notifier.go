// Package notify delivers batch results to an external webhook.
// Delivery is best effort: a failed post is logged and reported to the
// caller but never blocks the analysis pipeline.
package notify

import (
	"context"
	"fmt"
	"net/http"

	"golang.org/x/time/rate"

	"github.com/RylynnLai/trading-tips/internal/contracts"
	"github.com/RylynnLai/trading-tips/internal/report"
	"github.com/RylynnLai/trading-tips/pkg/config"
	"github.com/RylynnLai/trading-tips/pkg/httputil"
	"github.com/RylynnLai/trading-tips/pkg/logger"
)

// Message is the webhook payload. The text field carries the markdown
// digest, which most chat webhooks render natively.
type Message struct {
	Text string `json:"text"`
}

// Notifier posts digests to the configured webhook URL.
type Notifier struct {
	client  *httputil.Client
	limiter *rate.Limiter
	url     string
	logger  *logger.Logger
}

// New builds a notifier from config. An empty WEBHOOK_URL disables
// delivery; Send then becomes a no-op so callers never branch on it.
func New(cfg *config.Config, client *httputil.Client, log *logger.Logger) *Notifier {
	perSec := cfg.Webhook.RatePerSec
	if perSec <= 0 {
		perSec = 1
	}
	burst := cfg.Webhook.Burst
	if burst < 1 {
		burst = 1
	}
	return &Notifier{
		client:  client,
		limiter: rate.NewLimiter(rate.Limit(perSec), burst),
		url:     cfg.Webhook.URL,
		logger:  log,
	}
}

// Enabled reports whether a webhook URL is configured.
func (n *Notifier) Enabled() bool {
	return n.url != ""
}

// SendBatchResult renders the result as markdown and posts it.
func (n *Notifier) SendBatchResult(ctx context.Context, result *contracts.BatchResult) error {
	if !n.Enabled() {
		n.logger.Debug("webhook not configured, skipping notification")
		return nil
	}
	return n.send(ctx, report.Markdown(result))
}

// SendText posts a plain message, used for operational alerts.
func (n *Notifier) SendText(ctx context.Context, text string) error {
	if !n.Enabled() {
		return nil
	}
	return n.send(ctx, text)
}

func (n *Notifier) send(ctx context.Context, text string) error {
	if err := n.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("webhook rate limit wait failed: %w", err)
	}

	resp, err := n.client.PostJSON(ctx, n.url, Message{Text: text})
	if err != nil {
		return fmt.Errorf("webhook post failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		n.logger.WithField("status_code", resp.StatusCode).Error("Webhook rejected the message")
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}

	n.logger.WithField("bytes", len(text)).Info("Webhook notification sent")
	return nil
}
