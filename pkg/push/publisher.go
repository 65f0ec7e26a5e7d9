package push

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Message is the wire format published to per-user channels. Edge services
// subscribed to the channel fan the payload out over their own sockets.
type Message struct {
	UserID string    `json:"user_id"`
	Body   string    `json:"body"`
	SentAt time.Time `json:"sent_at"`
}

// Publisher delivers real-time messages through Redis pub/sub.
type Publisher struct {
	client        *redis.Client
	channelPrefix string
}

// NewPublisher builds a Publisher using the given channel prefix.
func NewPublisher(client *redis.Client, channelPrefix string) *Publisher {
	if channelPrefix == "" {
		channelPrefix = "notifications:user:"
	}
	return &Publisher{client: client, channelPrefix: channelPrefix}
}

// Publish sends a message to the user's channel. Delivery is best effort:
// there is no acknowledgement from subscribers.
func (p *Publisher) Publish(ctx context.Context, userID, body string) error {
	payload, err := json.Marshal(Message{UserID: userID, Body: body, SentAt: time.Now().UTC()})
	if err != nil {
		return fmt.Errorf("marshal push message: %w", err)
	}
	if err := p.client.Publish(ctx, p.channelPrefix+userID, payload).Err(); err != nil {
		return fmt.Errorf("publish push message: %w", err)
	}
	return nil
}
