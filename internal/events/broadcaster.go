// Package events delivers fire-and-forget dashboard notifications.
package events

import (
	"context"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// Event names emitted by the protocol engine.
const (
	EventProtocolCreated = "protocol_created"
	EventStatusUpdated   = "status_updated"
)

// Broadcaster pushes an event to subscribers. Delivery is best-effort:
// implementations never block the caller and never return an error.
type Broadcaster interface {
	Emit(event string, payload any)
}

// NopBroadcaster drops every event. Used when no webhook URL is configured.
type NopBroadcaster struct{}

// Emit discards the event.
func (NopBroadcaster) Emit(string, any) {}

// WebhookBroadcaster POSTs events to a configured endpoint.
type WebhookBroadcaster struct {
	client *resty.Client
	logger *zap.Logger
}

// NewWebhookBroadcaster builds a broadcaster targeting the given URL.
func NewWebhookBroadcaster(url string, logger *zap.Logger) *WebhookBroadcaster {
	if logger == nil {
		logger = zap.NewNop()
	}

	client := resty.New()
	client.
		SetBaseURL(url).
		SetHeader("Content-Type", "application/json").
		SetTimeout(10 * time.Second)

	return &WebhookBroadcaster{client: client, logger: logger}
}

type envelope struct {
	Event     string    `json:"event"`
	Payload   any       `json:"payload"`
	Timestamp time.Time `json:"timestamp"`
}

// Emit delivers the event asynchronously. Failures are logged and dropped;
// subscribers get no ordering guarantee across concurrent emits.
func (b *WebhookBroadcaster) Emit(event string, payload any) {
	body := envelope{Event: event, Payload: payload, Timestamp: time.Now().UTC()}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		resp, err := b.client.R().
			SetContext(ctx).
			SetBody(body).
			Post("")
		if err != nil {
			b.logger.Warn("event broadcast failed", zap.String("event", event), zap.Error(err))
			return
		}
		if resp.StatusCode() >= http.StatusBadRequest {
			b.logger.Warn("event broadcast rejected", zap.String("event", event), zap.Int("status", resp.StatusCode()))
		}
	}()
}
