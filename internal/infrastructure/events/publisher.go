package events

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"
	"devhub.backend/internal/domain/entities"
	"devhub.backend/pkg/logger"
	"devhub.backend/pkg/metrics"
	"devhub.backend/pkg/redis"
)

const (
	EventSubscribed   = "API_SUBSCRIBED"
	EventUnsubscribed = "API_UNSUBSCRIBED"
)

// Publisher emits platform events on a Redis channel. Delivery is
// best-effort: failures are logged and reported as false, never as errors.
type Publisher struct {
	channel string
}

// NewPublisher creates a publisher for the given channel
func NewPublisher(channel string) *Publisher {
	return &Publisher{channel: channel}
}

type platformEvent struct {
	Type            string    `json:"type"`
	ApplicationID   string    `json:"applicationId"`
	ApplicationName string    `json:"applicationName"`
	ApiContext      string    `json:"apiContext"`
	ApiVersion      string    `json:"apiVersion"`
	Timestamp       time.Time `json:"timestamp"`
}

// SendSubscribed emits an API_SUBSCRIBED event
func (p *Publisher) SendSubscribed(ctx context.Context, app *entities.Application, api entities.ApiIdentifier) bool {
	return p.publish(ctx, EventSubscribed, app, api)
}

// SendUnsubscribed emits an API_UNSUBSCRIBED event
func (p *Publisher) SendUnsubscribed(ctx context.Context, app *entities.Application, api entities.ApiIdentifier) bool {
	return p.publish(ctx, EventUnsubscribed, app, api)
}

func (p *Publisher) publish(ctx context.Context, eventType string, app *entities.Application, api entities.ApiIdentifier) bool {
	payload, err := json.Marshal(platformEvent{
		Type:            eventType,
		ApplicationID:   app.ID.String(),
		ApplicationName: app.Name,
		ApiContext:      api.Context,
		ApiVersion:      api.Version,
		Timestamp:       time.Now().UTC(),
	})
	if err != nil {
		logger.Error(ctx, "Failed to encode platform event", zap.Error(err))
		return false
	}

	if err := redis.Publish(ctx, p.channel, payload); err != nil {
		metrics.EventPublishFailures.Inc()
		logger.Warn(ctx, "Failed to publish platform event",
			zap.String("type", eventType),
			zap.String("application_id", app.ID.String()),
			zap.Error(err),
		)
		return false
	}
	return true
}
