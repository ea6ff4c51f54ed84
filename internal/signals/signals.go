// internal/signals/signals.go
// Package signals carries domain events between producers and consumers
// over redis pub/sub. The generator publishes without knowing who listens;
// subscribers may run in a different process.
package signals

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"survey-workers/internal/common/logger"
	"survey-workers/internal/models"
)

// SummaryCreatedChannel is the pub/sub channel for summary-created signals.
const SummaryCreatedChannel = "surveys.summary.created"

// Publisher is the producer side of the signal channel.
type Publisher interface {
	PublishSummaryCreated(ctx context.Context, event models.SummaryCreated) error
}

// Bus is a redis-backed signal channel.
type Bus struct {
	client *redis.Client
	logger logger.Logger
}

func NewBus(client *redis.Client, log logger.Logger) *Bus {
	return &Bus{
		client: client,
		logger: log.WithFields(map[string]interface{}{"component": "signals"}),
	}
}

// PublishSummaryCreated publishes one summary-created signal.
func (b *Bus) PublishSummaryCreated(ctx context.Context, event models.SummaryCreated) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal summary-created signal: %w", err)
	}
	if err := b.client.Publish(ctx, SummaryCreatedChannel, payload).Err(); err != nil {
		return fmt.Errorf("publish summary-created signal: %w", err)
	}
	return nil
}

// SubscribeSummaryCreated consumes summary-created signals until the context
// is cancelled, invoking handler once per signal. Undecodable messages are
// logged and skipped; handler errors are the handler's problem.
func (b *Bus) SubscribeSummaryCreated(ctx context.Context, handler func(context.Context, models.SummaryCreated)) error {
	sub := b.client.Subscribe(ctx, SummaryCreatedChannel)
	defer sub.Close()

	// Wait for the subscription to be confirmed before consuming.
	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("subscribe to %s: %w", SummaryCreatedChannel, err)
	}

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			var event models.SummaryCreated
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				b.logger.Error("dropping undecodable signal", map[string]interface{}{
					"channel": msg.Channel,
					"error":   err.Error(),
				})
				continue
			}
			handler(ctx, event)
		}
	}
}
