// Package notify delivers night-audit events to external observers.
// Delivery is fire-and-forget: the audit core never blocks on, nor
// rolls back for, a notification failure.
package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/SOMET1010/africa-suite-pulse-sub010/internal/application/dispatcher"
	"github.com/SOMET1010/africa-suite-pulse-sub010/internal/domain/event"
	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// WebhookNotifier posts domain events as JSON to a configured endpoint
type WebhookNotifier struct {
	client *resty.Client
	logger *zap.Logger
}

// NewWebhookNotifier creates a notifier posting to webhookURL
func NewWebhookNotifier(webhookURL string, timeout time.Duration, logger *zap.Logger) *WebhookNotifier {
	client := resty.New().
		SetBaseURL(webhookURL).
		SetTimeout(timeout).
		SetRetryCount(2).
		SetRetryWaitTime(500 * time.Millisecond).
		SetHeader("Content-Type", "application/json")

	return &WebhookNotifier{client: client, logger: logger}
}

// Register subscribes the notifier to every event type the audit core emits
func (n *WebhookNotifier) Register(d dispatcher.Dispatcher) {
	for _, t := range []event.Type{
		event.TypeSessionStarted,
		event.TypeCheckpointAdvanced,
		event.TypeSummaryChanged,
		event.TypeSessionCompleted,
		event.TypeSessionFailed,
	} {
		d.SubscribeNamed(t, "webhook-notifier", n.Notify)
	}
}

// Notify posts a single event to the webhook endpoint
func (n *WebhookNotifier) Notify(ctx context.Context, evt *event.Event) error {
	resp, err := n.client.R().
		SetContext(ctx).
		SetBody(evt).
		Post("")
	if err != nil {
		n.logger.Warn("Webhook delivery failed",
			zap.String("event_type", evt.Type.String()),
			zap.String("event_id", evt.ID),
			zap.Error(err))
		return err
	}

	if resp.IsError() {
		n.logger.Warn("Webhook endpoint rejected event",
			zap.String("event_type", evt.Type.String()),
			zap.String("event_id", evt.ID),
			zap.Int("status", resp.StatusCode()))
		return fmt.Errorf("webhook returned status %d", resp.StatusCode())
	}

	return nil
}
