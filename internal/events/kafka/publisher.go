package kafka

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/segmentio/kafka-go"

	"github.com/carson-networks/cashdesk-server/internal/events"
)

// Publisher ships integration events to a Kafka topic, keyed by tenant so a
// tenant's events stay ordered within a partition.
type Publisher struct {
	writer *kafka.Writer
}

func NewPublisher(brokers, topic string) *Publisher {
	return &Publisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(strings.Split(brokers, ",")...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireOne,
		},
	}
}

func (p *Publisher) Publish(ctx context.Context, evts ...events.Event) error {
	messages := make([]kafka.Message, len(evts))
	for i, evt := range evts {
		payload, err := json.Marshal(evt)
		if err != nil {
			return err
		}
		messages[i] = kafka.Message{
			Key:   []byte(evt.TenantID.String()),
			Value: payload,
		}
	}
	return p.writer.WriteMessages(ctx, messages...)
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}
