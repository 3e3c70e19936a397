package kafka

import (
	"context"
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"boliche-os/internal/logger"
	"boliche-os/internal/models"
	"boliche-os/internal/utils"
)

func TestMockProducerPublishes(t *testing.T) {
	producer, err := NewProducer(nil, true, logger.NewLogger())
	require.NoError(t, err)
	defer producer.Close()

	entry := &models.AuditEntry{
		ID:        utils.GenerateUUID(),
		Timestamp: time.Now(),
		UserID:    "op-1",
		UserName:  "Caixa",
		Action:    models.ActionOpenLane,
		Context:   "Pista 01, comanda #12",
	}

	assert.NoError(t, producer.PublishAuditEntry(entry))
}

func TestTopicRouting(t *testing.T) {
	producer := &Producer{mockMode: true, log: logger.NewLogger()}

	cases := []struct {
		action models.AuditAction
		topic  string
	}{
		{models.ActionOpenLane, "venue-lane-events"},
		{models.ActionCloseLane, "venue-lane-events"},
		{models.ActionTimeCorrection, "venue-lane-events"},
		{models.ActionReservationNew, "venue-booking-events"},
		{models.ActionWaitingAdded, "venue-booking-events"},
		{models.ActionPricingUpdated, "venue-events"},
		{models.AuditAction("noseparator"), "venue-events"},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.topic, producer.getTopicForAction(tc.action), "action %s", tc.action)
	}
}

// TestReservationConsumerIntegration needs a reachable Kafka broker and is
// skipped otherwise.
func TestReservationConsumerIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	brokers := os.Getenv("KAFKA_BROKERS")
	if brokers == "" {
		brokers = "localhost:9092"
	}

	config := sarama.NewConfig()
	config.Producer.Return.Successes = true
	config.Net.DialTimeout = 5 * time.Second

	producer, err := sarama.NewSyncProducer([]string{brokers}, config)
	if err != nil {
		t.Skip("Skipping test because Kafka is not available:", err)
		return
	}
	defer producer.Close()

	expectedID := utils.GenerateUUID()
	event := models.ReservationEvent{
		Type: "reservation.created",
		Reservation: &models.Reservation{
			ID:           expectedID,
			CustomerName: "Cliente do app",
			StartTime:    time.Now().Add(time.Hour),
		},
		Timestamp: time.Now(),
	}
	payload, err := json.Marshal(event)
	require.NoError(t, err)

	_, _, err = producer.SendMessage(&sarama.ProducerMessage{
		Topic: "booking-reservations",
		Value: sarama.ByteEncoder(payload),
	})
	require.NoError(t, err)

	consumer, err := NewReservationConsumer([]string{brokers}, "boliche-os-test")
	require.NoError(t, err)
	defer consumer.Close()

	received := make(chan struct{}, 1)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	go func() {
		_ = consumer.ConsumeReservations(ctx, func(got *models.ReservationEvent) error {
			if got.Reservation != nil && got.Reservation.ID == expectedID {
				received <- struct{}{}
			}
			return nil
		})
	}()

	select {
	case <-received:
	case <-ctx.Done():
		t.Fatal("Timed out waiting for the reservation event")
	}
}
