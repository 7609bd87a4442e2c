package notify

import (
	"context"
	"encoding/json"
	"time"

	"go-remedyflow/internal/model"

	"github.com/segmentio/kafka-go"
)

const defaultKafkaTimeout = 5 * time.Second

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher writes order status events keyed by order ID, so all
// events of one order land on the same partition in order.
type KafkaPublisher struct {
	writer  messageWriter
	timeout time.Duration
}

func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireAll,
		},
		timeout: defaultKafkaTimeout,
	}
}

func (p *KafkaPublisher) OrderStatusChanged(ctx context.Context, ev model.OrderStatusEvent) error {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	value, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(ev.OrderID.String()),
		Value: value,
		Headers: []kafka.Header{
			{Key: "event", Value: []byte("order.status_changed")},
		},
	})
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
