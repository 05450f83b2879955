package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/bankledger/internal/infrastructure/config"
	"github.com/iho/bankledger/internal/infrastructure/eventpublisher"
)

func TestListenAddr(t *testing.T) {
	assert.Equal(t, ":8080", listenAddr("8080"))
}

func TestOutboxPublisher_LogsWithoutBrokers(t *testing.T) {
	pub, closeFn, err := outboxPublisher(context.Background(), &config.Config{})
	require.NoError(t, err)
	defer closeFn()

	_, ok := pub.(*eventpublisher.LogPublisher)
	assert.True(t, ok, "expected log publisher, got %T", pub)
}

func TestOutboxPublisher_Kafka(t *testing.T) {
	pub, closeFn, err := outboxPublisher(context.Background(), &config.Config{
		KafkaBrokers: []string{"localhost:9092"},
		KafkaTopic:   "ledger.transactions",
	})
	require.NoError(t, err)
	defer closeFn()

	_, ok := pub.(*eventpublisher.KafkaPublisher)
	assert.True(t, ok, "expected kafka publisher, got %T", pub)
}

func TestOutboxPublisher_KafkaRequiresTopic(t *testing.T) {
	_, _, err := outboxPublisher(context.Background(), &config.Config{KafkaBrokers: []string{"localhost:9092"}})
	assert.Error(t, err)
}

func TestOpenStorage_RejectsUnknownDriver(t *testing.T) {
	_, err := openStorage(context.Background(), &config.Config{DatabaseDriver: "sqlite"})
	assert.ErrorContains(t, err, "unsupported database driver")
}
