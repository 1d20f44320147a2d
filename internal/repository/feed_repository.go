package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/edutec/disponibilidad-api/internal/models"
)

// FeedRepository bridges roster mutations onto a Redis pub/sub channel so
// every running instance sees writes made by any of them. It is the
// store-side half of the live feed; FeedService owns fan-out to clients.
type FeedRepository struct {
	client  *redis.Client
	channel string
	logger  *zap.Logger
}

// NewFeedRepository constructs a feed repository.
func NewFeedRepository(client *redis.Client, channel string, logger *zap.Logger) *FeedRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	if channel == "" {
		channel = "disponibilidades:eventos"
	}
	return &FeedRepository{client: client, channel: channel, logger: logger}
}

// Publish emits a change event. Failures are logged, not propagated: the
// write that triggered the event already succeeded and must not be
// reported as failed because the notification could not go out.
func (r *FeedRepository) Publish(ctx context.Context, event models.ChangeEvent) {
	if r.client == nil {
		return
	}
	payload, err := json.Marshal(event)
	if err != nil {
		r.logger.Warn("marshal feed event", zap.Error(err))
		return
	}
	if err := r.client.Publish(ctx, r.channel, payload).Err(); err != nil {
		r.logger.Warn("publish feed event", zap.Error(err), zap.String("channel", r.channel))
	}
}

// Subscribe opens the channel and returns a stream of decoded events plus
// an unsubscribe func. The stream closes when ctx is cancelled or the
// subscription errors out; callers must always invoke the unsubscribe.
func (r *FeedRepository) Subscribe(ctx context.Context) (<-chan models.ChangeEvent, func(), error) {
	if r.client == nil {
		return nil, nil, fmt.Errorf("feed requires a redis client")
	}

	sub := r.client.Subscribe(ctx, r.channel)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, nil, fmt.Errorf("subscribe %s: %w", r.channel, err)
	}

	events := make(chan models.ChangeEvent)
	go func() {
		defer close(events)
		for msg := range sub.Channel() {
			var event models.ChangeEvent
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				r.logger.Warn("decode feed event", zap.Error(err))
				continue
			}
			select {
			case events <- event:
			case <-ctx.Done():
				return
			}
		}
	}()

	unsubscribe := func() { _ = sub.Close() }
	return events, unsubscribe, nil
}
