package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/fjod/gamestore/internal/events"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

const ConsumerGroup = "sales-ledger"

// errMalformedEvent marks messages that can never be recorded. They are
// committed and skipped instead of blocking the partition.
var errMalformedEvent = errors.New("malformed order event")

type saleWriter interface {
	InsertSale(ctx context.Context, s *Sale) error
}

type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Consumer projects order-completed events into the sales table. An offset
// is committed only once its sale is stored, so a failed insert is retried
// rather than lost. Redelivered events hit the unique order id and are
// skipped.
type Consumer struct {
	repo   saleWriter
	reader messageReader
	log    *zap.Logger

	retryBase time.Duration
	retryMax  time.Duration
}

func NewConsumer(repo saleWriter, log *zap.Logger, topic string, brokers ...string) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    topic,
		GroupID:  ConsumerGroup,
		MaxBytes: 10e6, // 10MB
	})
	return &Consumer{
		repo:      repo,
		reader:    reader,
		log:       log,
		retryBase: 200 * time.Millisecond,
		retryMax:  10 * time.Second,
	}
}

func (c *Consumer) Run(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}
		c.processMessage(ctx)
	}
}

func (c *Consumer) Close() {
	if err := c.reader.Close(); err != nil {
		c.log.Warn("error closing kafka reader", zap.Error(err))
	}
}

func (c *Consumer) processMessage(ctx context.Context) {
	m, err := c.reader.FetchMessage(ctx)
	if err != nil {
		if ctx.Err() != nil || errors.Is(err, context.Canceled) {
			return
		}
		c.log.Error("error reading message", zap.Error(err))
		c.wait(ctx, c.retryBase)
		return
	}

	delay := c.retryBase
	for {
		err := c.handle(ctx, m.Value)
		if err == nil {
			break
		}
		if errors.Is(err, errMalformedEvent) {
			c.log.Error("skipping malformed event",
				zap.Int64("offset", m.Offset),
				zap.String("key", string(m.Key)),
				zap.Error(err))
			break
		}
		c.log.Error("failed to record sale, retrying",
			zap.Int64("offset", m.Offset),
			zap.String("key", string(m.Key)),
			zap.Duration("backoff", delay),
			zap.Error(err))
		if !c.wait(ctx, delay) {
			return
		}
		delay = min(delay*2, c.retryMax)
	}

	if err := c.reader.CommitMessages(ctx, m); err != nil {
		c.log.Warn("commit failed, message will be redelivered",
			zap.Int64("offset", m.Offset),
			zap.Error(err))
	}
}

// wait sleeps for d and reports false if ctx ended first.
func (c *Consumer) wait(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

func (c *Consumer) handle(ctx context.Context, value []byte) error {
	var event events.OrderCompleted
	if err := json.Unmarshal(value, &event); err != nil {
		return fmt.Errorf("%w: %v", errMalformedEvent, err)
	}
	if event.OrderID == "" || event.UserID == "" {
		return fmt.Errorf("%w: missing order_id or user_id", errMalformedEvent)
	}

	items := make([]SaleItem, len(event.Items))
	for i, it := range event.Items {
		items[i] = SaleItem{
			GameID:    it.GameID,
			GameTitle: it.GameTitle,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
			Subtotal:  it.Subtotal,
		}
	}

	sale := &Sale{
		OrderID:       event.OrderID,
		OrderNumber:   event.OrderNumber,
		UserID:        event.UserID,
		TotalAmount:   event.TotalAmount,
		PaymentMethod: event.PaymentMethod,
		Items:         items,
		CompletedAt:   event.CompletedAt,
	}

	if err := c.repo.InsertSale(ctx, sale); err != nil {
		if errors.Is(err, ErrDuplicateSale) {
			c.log.Info("sale already recorded, skipping", zap.String("order_id", event.OrderID))
			return nil
		}
		return err
	}

	c.log.Info("sale recorded",
		zap.String("order_id", sale.OrderID),
		zap.String("user_id", sale.UserID),
		zap.String("total", sale.TotalAmount.String()))
	return nil
}
