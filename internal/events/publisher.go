// Package events publishes domain events to Kafka.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/fjod/gamestore/internal/domain"
	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
)

const EventTypeOrderCompleted = "order-completed"

type OrderCompletedItem struct {
	GameID    string          `json:"game_id"`
	GameTitle string          `json:"game_title"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

type OrderCompleted struct {
	OrderID       string               `json:"order_id"`
	OrderNumber   string               `json:"order_number"`
	UserID        string               `json:"user_id"`
	Items         []OrderCompletedItem `json:"items"`
	TotalAmount   decimal.Decimal      `json:"total_amount"`
	PaymentMethod string               `json:"payment_method"`
	CompletedAt   time.Time            `json:"completed_at"`
}

func NewOrderCompleted(o *domain.Order) *OrderCompleted {
	items := make([]OrderCompletedItem, len(o.Items))
	for i, it := range o.Items {
		items[i] = OrderCompletedItem{
			GameID:    it.GameID,
			GameTitle: it.GameTitle,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
			Subtotal:  it.Subtotal,
		}
	}
	return &OrderCompleted{
		OrderID:       o.ID,
		OrderNumber:   o.OrderNumber,
		UserID:        o.UserID,
		Items:         items,
		TotalAmount:   o.TotalAmount,
		PaymentMethod: string(o.PaymentMethod),
		CompletedAt:   o.CreatedAt,
	}
}

type Publisher interface {
	PublishOrderCompleted(ctx context.Context, event *OrderCompleted) error
}

// messageWriter is the part of *kafka.Writer the publisher uses.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type KafkaPublisher struct {
	writer messageWriter
}

func NewKafkaPublisher(topic string, brokers ...string) *KafkaPublisher {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.LeastBytes{},
		AllowAutoTopicCreation: true,
	}
	return &KafkaPublisher{writer: w}
}

// PublishOrderCompleted keys the message by order id so every event for one
// order lands on the same partition.
func (p *KafkaPublisher) PublishOrderCompleted(ctx context.Context, event *OrderCompleted) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal order event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(event.OrderID),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(EventTypeOrderCompleted)},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish order event: %w", err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
