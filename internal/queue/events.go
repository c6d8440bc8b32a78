package queue

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/nats-io/nats.go"
)

const eventSubjectBase = "mm.events"

// Event is a fire-and-forget UI notification fanned out over plain NATS.
// Delivery is best-effort; the database stays the source of truth.
type Event struct {
	Type   string         `json:"type"`
	UserID string         `json:"user_id"`
	Data   map[string]any `json:"data,omitempty"`
}

// PublishEvent broadcasts a UI event for one user.
func (p *Producer) PublishEvent(event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	subject := fmt.Sprintf("%s.%s", eventSubjectBase, event.UserID)
	if err := p.nc.Publish(subject, payload); err != nil {
		return fmt.Errorf("publish event: %w", err)
	}
	return nil
}

// SubscribeEvents delivers every published UI event to the handler. The
// returned subscription must be unsubscribed on shutdown.
func (c *Consumer) SubscribeEvents(handler func(userID string, payload []byte)) (*nats.Subscription, error) {
	sub, err := c.nc.Subscribe(eventSubjectBase+".>", func(msg *nats.Msg) {
		parts := strings.Split(msg.Subject, ".")
		userID := parts[len(parts)-1]
		handler(userID, msg.Data)
	})
	if err != nil {
		return nil, fmt.Errorf("subscribe events: %w", err)
	}
	return sub, nil
}
