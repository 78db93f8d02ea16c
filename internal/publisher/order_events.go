package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/fjod/quickbites/internal/domain"
	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
)

const (
	EventOrderPlaced = "order.placed"
	EventOrderPaid   = "order.paid"
)

type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// OrderEvent is the JSON payload written for every order state change.
type OrderEvent struct {
	SessionKey  string            `json:"session_key"`
	OrderNumber int               `json:"order_number"`
	Status      string            `json:"status"`
	Total       decimal.Decimal   `json:"total"`
	Items       []domain.CartLine `json:"items"`
	Reference   string            `json:"reference,omitempty"`
	OccurredAt  time.Time         `json:"occurred_at"`
}

type OrderEventPublisher struct {
	writer MessageWriter
	now    func() time.Time
}

func NewKafkaWriter(topic string, brokers ...string) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{}, // all events of a session land on one partition
		AllowAutoTopicCreation: true,
	}
}

func NewOrderEventPublisher(writer MessageWriter) *OrderEventPublisher {
	return &OrderEventPublisher{writer: writer, now: time.Now}
}

func (p *OrderEventPublisher) OrderPlaced(ctx context.Context, sessionKey string, number int, order domain.PlacedOrder) error {
	return p.publish(ctx, EventOrderPlaced, sessionKey, number, order)
}

func (p *OrderEventPublisher) OrderPaid(ctx context.Context, sessionKey string, number int, order domain.PlacedOrder) error {
	return p.publish(ctx, EventOrderPaid, sessionKey, number, order)
}

func (p *OrderEventPublisher) Close() error {
	return p.writer.Close()
}

func (p *OrderEventPublisher) publish(ctx context.Context, eventType, sessionKey string, number int, order domain.PlacedOrder) error {
	payload, err := json.Marshal(OrderEvent{
		SessionKey:  sessionKey,
		OrderNumber: number,
		Status:      order.Status.String(),
		Total:       order.Total,
		Items:       order.Lines,
		Reference:   order.PaymentReference,
		OccurredAt:  p.now(),
	})
	if err != nil {
		return fmt.Errorf("marshal %s event failed: %w", eventType, err)
	}

	msg := kafka.Message{
		Key:   []byte(sessionKey),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(eventType)},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish %s event failed: %w", eventType, err)
	}
	return nil
}

// NopPublisher drops events. Used when no brokers are configured.
type NopPublisher struct{}

func (NopPublisher) OrderPlaced(context.Context, string, int, domain.PlacedOrder) error { return nil }
func (NopPublisher) OrderPaid(context.Context, string, int, domain.PlacedOrder) error   { return nil }
func (NopPublisher) Close() error                                                     { return nil }
