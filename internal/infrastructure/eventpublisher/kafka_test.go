package eventpublisher

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/bankledger/internal/domain"
)

type fakeWriter struct {
	messages []kafka.Message
	err      error
	closed   bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.messages = append(w.messages, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func TestKafkaPublisher_PublishesEnvelope(t *testing.T) {
	writer := &fakeWriter{}
	p := newKafkaPublisher(context.Background(), writer, KafkaConfig{Topic: "ledger.transactions"})

	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	err := p.Publish(context.Background(), &domain.OutboxEvent{
		ID:            "evt-1",
		AggregateID:   "acc-1",
		AggregateType: domain.AggregateTypeAccount,
		EventType:     domain.EventTypeAccountDeposited,
		Payload:       map[string]any{"conta": float64(12345), "saldo": "300.50"},
		CreatedAt:     created,
	})
	require.NoError(t, err)
	require.Len(t, writer.messages, 1)

	msg := writer.messages[0]
	assert.Equal(t, "acc-1", string(msg.Key))

	var env Envelope
	require.NoError(t, json.Unmarshal(msg.Value, &env))
	assert.Equal(t, "evt-1", env.ID)
	assert.Equal(t, domain.EventTypeAccountDeposited, env.Type)
	assert.Equal(t, "300.50", env.Payload["saldo"])
	assert.True(t, env.CreatedAt.Equal(created))

	require.NoError(t, p.Close())
	assert.True(t, writer.closed)
}

func TestKafkaPublisher_BreakerOpensAfterFailures(t *testing.T) {
	writer := &fakeWriter{err: errors.New("broker down")}
	p := newKafkaPublisher(context.Background(), writer, KafkaConfig{
		Topic:               "ledger.transactions",
		ConsecutiveFailures: 2,
		OpenTimeout:         time.Minute,
	})

	event := &domain.OutboxEvent{ID: "evt-1", AggregateID: "acc-1"}
	for i := 0; i < 2; i++ {
		err := p.Publish(context.Background(), event)
		require.Error(t, err)
		assert.NotErrorIs(t, err, gobreaker.ErrOpenState)
	}

	assert.Equal(t, gobreaker.StateOpen, p.State())

	err := p.Publish(context.Background(), event)
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
}

func TestNewKafkaPublisherValidates(t *testing.T) {
	_, err := NewKafkaPublisher(context.Background(), KafkaConfig{Topic: "t"})
	assert.Error(t, err)

	_, err = NewKafkaPublisher(context.Background(), KafkaConfig{Brokers: []string{"localhost:9092"}})
	assert.Error(t, err)

	p, err := NewKafkaPublisher(context.Background(), KafkaConfig{Brokers: []string{"localhost:9092"}, Topic: "t"})
	require.NoError(t, err)
	assert.Equal(t, gobreaker.StateClosed, p.State())
}
