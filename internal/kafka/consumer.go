package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/IBM/sarama"

	"boliche-os/internal/models"
)

// Consumer ingests reservation events from the online booking channel and
// feeds them into the scheduler as pending reservations.
type Consumer struct {
	consumer sarama.ConsumerGroup
	topics   []string
}

func NewReservationConsumer(brokers []string, groupID string) (*Consumer, error) {
	config := sarama.NewConfig()
	config.Consumer.Group.Rebalance.Strategy = sarama.BalanceStrategyRoundRobin
	config.Consumer.Offsets.Initial = sarama.OffsetNewest

	consumer, err := sarama.NewConsumerGroup(brokers, groupID, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create consumer group: %w", err)
	}

	return &Consumer{
		consumer: consumer,
		topics:   []string{"booking-reservations"},
	}, nil
}

func (c *Consumer) ConsumeReservations(ctx context.Context, handler func(*models.ReservationEvent) error) error {
	consumerHandler := &ReservationConsumerHandler{Handler: handler}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
			if err := c.consumer.Consume(ctx, c.topics, consumerHandler); err != nil {
				log.Printf("Error consuming messages: %v", err)
				return err
			}
		}
	}
}

func (c *Consumer) Close() error {
	return c.consumer.Close()
}

// ReservationConsumerHandler is exported for testing purposes.
type ReservationConsumerHandler struct {
	Handler func(*models.ReservationEvent) error
}

func (h *ReservationConsumerHandler) Setup(sarama.ConsumerGroupSession) error   { return nil }
func (h *ReservationConsumerHandler) Cleanup(sarama.ConsumerGroupSession) error { return nil }

func (h *ReservationConsumerHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for message := range claim.Messages() {
		var event models.ReservationEvent
		if err := json.Unmarshal(message.Value, &event); err != nil {
			log.Printf("Failed to unmarshal message: %v", err)
			continue
		}

		if err := h.Handler(&event); err != nil {
			log.Printf("Failed to handle reservation event: %v", err)
			continue
		}

		session.MarkMessage(message, "")
	}

	return nil
}
