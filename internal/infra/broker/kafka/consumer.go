package kafka

import (
	"context"
	"log/slog"

	"github.com/IBM/sarama"
)

// Message is a broker record stripped down to what event subscribers need.
type Message struct {
	Topic   string
	Key     []byte
	Value   []byte
	Headers map[string]string
}

type HandlerFunc func(ctx context.Context, msg Message) error

// GroupConsumer runs a sarama consumer group and feeds every record to a
// single handler. Handler failures are logged and the offset is committed
// anyway: subscribers here are notification-style and must not wedge a
// partition on one bad event.
type GroupConsumer struct {
	group   sarama.ConsumerGroup
	handler HandlerFunc
	logger  *slog.Logger
}

func NewGroupConsumer(brokers []string, groupID string, handler HandlerFunc, logger *slog.Logger) (*GroupConsumer, error) {
	cfg := sarama.NewConfig()
	cfg.Version = sarama.V2_5_0_0
	cfg.Consumer.Offsets.Initial = sarama.OffsetOldest
	group, err := sarama.NewConsumerGroup(brokers, groupID, cfg)
	if err != nil {
		return nil, err
	}
	return &GroupConsumer{group: group, handler: handler, logger: logger}, nil
}

func (c *GroupConsumer) Run(ctx context.Context, topics ...string) error {
	for {
		if err := c.group.Consume(ctx, topics, groupHandler{consumer: c}); err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
	}
}

func (c *GroupConsumer) Close() error {
	return c.group.Close()
}

type groupHandler struct {
	consumer *GroupConsumer
}

func (groupHandler) Setup(sarama.ConsumerGroupSession) error   { return nil }
func (groupHandler) Cleanup(sarama.ConsumerGroupSession) error { return nil }

func (h groupHandler) ConsumeClaim(sess sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for record := range claim.Messages() {
		msg := Message{
			Topic:   record.Topic,
			Key:     record.Key,
			Value:   record.Value,
			Headers: make(map[string]string, len(record.Headers)),
		}
		for _, header := range record.Headers {
			msg.Headers[string(header.Key)] = string(header.Value)
		}
		if err := h.consumer.handler(sess.Context(), msg); err != nil {
			if h.consumer.logger != nil {
				h.consumer.logger.Warn("event handler failed",
					"topic", record.Topic, "partition", record.Partition, "offset", record.Offset, "error", err)
			}
		}
		sess.MarkMessage(record, "")
	}
	return nil
}
