package messaging

import (
	"context"
	"log/slog"
	"time"
)

const (
	TopicOrderPlaced    = "orders.placed"
	TopicOrderUpdated   = "orders.updated"
	TopicOrderCancelled = "orders.cancelled"
)

// Publisher defines an interface for publishing events to a message broker.
type Publisher interface {
	PublishEvent(ctx context.Context, topic string, key string, event any) error
	Close() error
}

// OrderEvent is the payload of every orders.* topic.
type OrderEvent struct {
	OrderID       uint      `json:"order_id"`
	OrderNumber   string    `json:"order_number"`
	UserID        uint      `json:"user_id"`
	Status        string    `json:"status"`
	PaymentStatus string    `json:"payment_status"`
	TotalAmount   string    `json:"total_amount"`
	ItemCount     int       `json:"item_count"`
	OccurredAt    time.Time `json:"occurred_at"`
}

type logPublisher struct{}

// NewLogPublisher returns a Publisher that only logs events. Used when no broker is configured.
func NewLogPublisher() Publisher {
	return logPublisher{}
}

func (logPublisher) PublishEvent(ctx context.Context, topic string, key string, event any) error {
	slog.DebugContext(ctx, "event not sent, no broker configured", "topic", topic, "key", key)
	return nil
}

func (logPublisher) Close() error { return nil }
