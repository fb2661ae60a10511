// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/danielhkuo/schelling-point/metrics"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher writes JSON events keyed by conference event id, so the
// hash balancer keeps each event's stream on one partition in order.
type KafkaPublisher struct {
	writer messageWriter
}

func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		BatchTimeout:           10 * time.Millisecond,
		MaxAttempts:            5,
		Compression:            kafka.Snappy,
		AllowAutoTopicCreation: true,
	}
	return &KafkaPublisher{writer: w}
}

func (kp *KafkaPublisher) Publish(ctx context.Context, e Event) error {
	value, err := json.Marshal(e)
	if err != nil {
		metrics.RecordPublish(string(e.Type), metrics.ResultError)
		return fmt.Errorf("failed to marshal %s event: %w", e.Type, err)
	}

	msg := kafka.Message{
		Key:   []byte(e.EventID),
		Value: value,
		Headers: []kafka.Header{
			{Key: "type", Value: []byte(e.Type)},
		},
	}

	if err := kp.writer.WriteMessages(ctx, msg); err != nil {
		metrics.RecordPublish(string(e.Type), metrics.ResultError)
		return fmt.Errorf("failed to write message to kafka: %w", err)
	}

	metrics.RecordPublish(string(e.Type), metrics.ResultOK)
	return nil
}

func (kp *KafkaPublisher) Close() error {
	if err := kp.writer.Close(); err != nil {
		return fmt.Errorf("failed to close kafka writer: %w", err)
	}
	return nil
}
