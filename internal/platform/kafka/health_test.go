package kafka

import (
	"context"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"privid/internal/platform/config"
)

func closedAddr(t *testing.T) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())
	return addr
}

func TestHealthChecker(t *testing.T) {
	t.Run("no brokers configured", func(t *testing.T) {
		err := NewHealthChecker([]string{" ", ""}).Check(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no kafka brokers configured")
	})

	t.Run("one reachable broker is enough", func(t *testing.T) {
		ln, err := net.Listen("tcp", "127.0.0.1:0")
		require.NoError(t, err)
		defer ln.Close()

		h := NewHealthChecker([]string{closedAddr(t), ln.Addr().String()})
		assert.NoError(t, h.Check(context.Background()))
		assert.Equal(t, "kafka", h.Name())
	})

	t.Run("every broker down", func(t *testing.T) {
		a, b := closedAddr(t), closedAddr(t)
		err := NewHealthChecker([]string{a, b}).Check(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no kafka brokers reachable")
		assert.Contains(t, err.Error(), a)
		assert.Contains(t, err.Error(), b)
	})
}

func TestProducerConfigFor(t *testing.T) {
	brokers := []string{"localhost:9092"}

	t.Run("defaults to all acks", func(t *testing.T) {
		pc, err := ProducerConfigFor(config.KafkaConfig{Brokers: brokers})
		require.NoError(t, err)
		assert.Equal(t, AcksAll, pc.Acks)
		assert.True(t, pc.Idempotent())
	})

	t.Run("leader acks disable idempotence", func(t *testing.T) {
		pc, err := ProducerConfigFor(config.KafkaConfig{Brokers: brokers, Acks: AcksLeader})
		require.NoError(t, err)
		assert.False(t, pc.Idempotent())
	})

	t.Run("rejects unknown acks", func(t *testing.T) {
		_, err := ProducerConfigFor(config.KafkaConfig{Brokers: brokers, Acks: "2"})
		assert.Error(t, err)
	})

	t.Run("requires brokers", func(t *testing.T) {
		_, err := ProducerConfigFor(config.KafkaConfig{})
		assert.Error(t, err)
	})
}
