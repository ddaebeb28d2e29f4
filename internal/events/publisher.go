package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"cloud.google.com/go/pubsub"

	"github.com/manira/api/internal/services"
)

// PubSubOrderPublisher publishes order lifecycle events to a Pub/Sub topic.
type PubSubOrderPublisher struct {
	topic   *pubsub.Topic
	marshal func(any) ([]byte, error)
}

// NewPubSubOrderPublisher constructs a Pub/Sub backed order event publisher.
func NewPubSubOrderPublisher(topic *pubsub.Topic) (*PubSubOrderPublisher, error) {
	if topic == nil {
		return nil, errors.New("pubsub order publisher: topic is required")
	}
	return &PubSubOrderPublisher{
		topic:   topic,
		marshal: json.Marshal,
	}, nil
}

// orderEventMessage is the wire form of a published order event.
type orderEventMessage struct {
	Type          string `json:"type"`
	OrderID       string `json:"order_id"`
	UserID        string `json:"user_id"`
	Status        string `json:"status,omitempty"`
	PaymentStatus string `json:"payment_status,omitempty"`
	TotalAmount   int64  `json:"total_amount"`
	ActorID       string `json:"actor_id,omitempty"`
	OccurredAt    string `json:"occurred_at"`
}

// PublishOrderEvent enqueues the event on the configured topic.
func (p *PubSubOrderPublisher) PublishOrderEvent(ctx context.Context, event services.OrderEvent) error {
	if p == nil || p.topic == nil {
		return errors.New("pubsub order publisher: not initialised")
	}
	if strings.TrimSpace(event.Type) == "" {
		return errors.New("pubsub order publisher: event type is required")
	}
	if strings.TrimSpace(event.OrderID) == "" {
		return errors.New("pubsub order publisher: order id is required")
	}

	data, err := p.marshal(orderEventMessage{
		Type:          event.Type,
		OrderID:       event.OrderID,
		UserID:        event.UserID,
		Status:        event.Status,
		PaymentStatus: event.PaymentStatus,
		TotalAmount:   event.TotalAmount,
		ActorID:       event.ActorID,
		OccurredAt:    event.OccurredAt.UTC().Format("2006-01-02T15:04:05.000Z07:00"),
	})
	if err != nil {
		return fmt.Errorf("marshal order event: %w", err)
	}

	attrs := make(map[string]string)
	setAttr(attrs, "type", event.Type)
	setAttr(attrs, "orderId", event.OrderID)
	setAttr(attrs, "status", event.Status)

	result := p.topic.Publish(ctx, &pubsub.Message{
		Data:       data,
		Attributes: attrs,
	})
	if _, err := result.Get(ctx); err != nil {
		return fmt.Errorf("publish order event: %w", err)
	}
	return nil
}

func setAttr(attrs map[string]string, key string, value string) {
	if v := strings.TrimSpace(value); v != "" {
		attrs[key] = v
	}
}

var _ services.OrderEventPublisher = (*PubSubOrderPublisher)(nil)
