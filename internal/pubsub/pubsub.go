// Package pubsub delivers domain events to subscribers of per-game and
// per-lobby Redis channels.
package pubsub

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"
)

// Envelope is the wire form of a published event.
type Envelope struct {
	Name    string          `json:"name"`
	Payload json.RawMessage `json:"payload"`
}

type Publisher struct {
	logger *slog.Logger
	client *redis.Client
}

func NewPublisher(logger *slog.Logger, client *redis.Client) *Publisher {
	return &Publisher{
		logger: logger.With("component", "pubsub"),
		client: client,
	}
}

// Publish marshals the payload and delivers it to every subscriber of
// the channel. Delivery is fire-and-forget: Redis pub/sub holds nothing
// for absent subscribers.
func (that *Publisher) Publish(ctx context.Context, channel, name string, payload any) error {
	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal event payload: %w", err)
	}

	envelope, err := json.Marshal(Envelope{Name: name, Payload: payloadJSON})
	if err != nil {
		return fmt.Errorf("failed to marshal event envelope: %w", err)
	}

	if err = that.client.Publish(ctx, channel, envelope).Err(); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	that.logger.Debug("event published", "channel", channel, "event", name)

	return nil
}

// Message is one event received from a subscribed channel.
type Message struct {
	Channel string
	Name    string
	Payload json.RawMessage
}

type Subscriber struct {
	logger *slog.Logger
	client *redis.Client
}

func NewSubscriber(logger *slog.Logger, client *redis.Client) *Subscriber {
	return &Subscriber{
		logger: logger.With("component", "pubsub"),
		client: client,
	}
}

// Subscribe streams events of the given channels until ctx is canceled.
// Undecodable messages are logged and dropped.
func (that *Subscriber) Subscribe(ctx context.Context, channels ...string) (<-chan Message, func() error) {
	sub := that.client.Subscribe(ctx, channels...)
	out := make(chan Message)

	go func() {
		defer close(out)

		for raw := range sub.Channel() {
			var envelope Envelope
			if err := json.Unmarshal([]byte(raw.Payload), &envelope); err != nil {
				that.logger.Error("failed to unmarshal event envelope", "channel", raw.Channel, "error", err)
				continue
			}

			select {
			case out <- Message{Channel: raw.Channel, Name: envelope.Name, Payload: envelope.Payload}:
			case <-ctx.Done():
				return
			}
		}
	}()

	return out, sub.Close
}
