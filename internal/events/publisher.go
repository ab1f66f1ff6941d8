package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"
)

const (
	ProductCreated = "product_created"
	ProductUpdated = "product_updated"
	ProductDeleted = "product_deleted"
)

type ProductEvent struct {
	Type      string    `json:"type"`
	ProductID int64     `json:"productID"`
	UserID    int64     `json:"userID,omitempty"`
	Name      string    `json:"name,omitempty"`
	At        time.Time `json:"at"`
}

type Publisher interface {
	PublishProduct(ctx context.Context, ev ProductEvent) error
	Close() error
}

// Nop 未配置 broker 时使用
type Nop struct{}

func (Nop) PublishProduct(context.Context, ProductEvent) error { return nil }
func (Nop) Close() error                                       { return nil }

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type KafkaPublisher struct {
	w       messageWriter
	timeout time.Duration
}

func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	return &KafkaPublisher{
		w: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Topic:                  topic,
			Balancer:               &kafka.Hash{},
			RequiredAcks:           kafka.RequireOne,
			AllowAutoTopicCreation: true,
		},
		timeout: 5 * time.Second,
	}
}

// PublishProduct 以商品 id 作为分区 key，保证同一商品事件有序
func (p *KafkaPublisher) PublishProduct(ctx context.Context, ev ProductEvent) error {
	if ev.At.IsZero() {
		ev.At = time.Now().UTC()
	}
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("kafka: marshal event: %w", err)
	}
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	if err := p.w.WriteMessages(ctx, kafka.Message{
		Key:   []byte(strconv.FormatInt(ev.ProductID, 10)),
		Value: data,
	}); err != nil {
		return fmt.Errorf("kafka: write %s: %w", ev.Type, err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error { return p.w.Close() }
