// Package events broadcasts update notifications over Redis pub/sub for
// the socket gateway. Delivery is best-effort: publish failures are
// logged, never propagated.
package events

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// Event names published on the broadcast channel.
const (
	KeywordCreated     = "keyword.created"
	KeywordUpdated     = "keyword.updated"
	KeywordDeleted     = "keyword.deleted"
	KeywordsClassified = "keywords.classified"
	ImportProgress     = "import.progress"
	ImportCompleted    = "import.completed"
	ImportFailed       = "import.failed"
)

// Channel is the Redis pub/sub channel all events go out on.
const Channel = "keywordpyramid:events"

// envelope is the wire shape of a broadcast event.
type envelope struct {
	Event   string    `json:"event"`
	Payload any       `json:"payload"`
	At      time.Time `json:"at"`
}

// Publisher publishes events to the broadcast channel.
type Publisher struct {
	client *redis.Client
}

// NewPublisher creates a publisher over an existing Redis client.
func NewPublisher(client *redis.Client) *Publisher {
	return &Publisher{client: client}
}

// Publish broadcasts one event with its payload.
func (p *Publisher) Publish(ctx context.Context, event string, payload any) {
	body, err := json.Marshal(envelope{Event: event, Payload: payload, At: time.Now().UTC()})
	if err != nil {
		slog.Error("event encode failed", "event", event, "error", err)
		return
	}
	if err := p.client.Publish(ctx, Channel, body).Err(); err != nil {
		slog.Error("event publish failed", "event", event, "error", err)
	}
}
