package kafka

import (
	"fmt"
	"time"

	"privid/internal/platform/config"
)

// Acknowledgement levels accepted in KAFKA_ACKS.
const (
	AcksNone   = "0"
	AcksLeader = "1"
	AcksAll    = "all"
)

// ProducerConfig holds configuration for the Kafka producer.
type ProducerConfig struct {
	Brokers         []string
	ClientID        string
	Acks            string
	Retries         int
	DeliveryTimeout time.Duration
}

// DefaultProducerConfig waits for all in-sync replicas and retries three
// times within a 30s delivery window.
func DefaultProducerConfig(brokers []string) ProducerConfig {
	return ProducerConfig{
		Brokers:         brokers,
		ClientID:        "privid",
		Acks:            AcksAll,
		Retries:         3,
		DeliveryTimeout: 30 * time.Second,
	}
}

// ProducerConfigFor derives the event sink producer settings from server config.
func ProducerConfigFor(cfg config.KafkaConfig) (ProducerConfig, error) {
	if len(cfg.Brokers) == 0 {
		return ProducerConfig{}, fmt.Errorf("kafka brokers not configured")
	}
	pc := DefaultProducerConfig(cfg.Brokers)
	switch cfg.Acks {
	case "":
	case AcksNone, AcksLeader, AcksAll:
		pc.Acks = cfg.Acks
	default:
		return ProducerConfig{}, fmt.Errorf("unsupported KAFKA_ACKS %q", cfg.Acks)
	}
	return pc, nil
}

// Idempotent reports whether the producer can enable idempotent writes,
// which the broker only accepts with acks=all.
func (c ProducerConfig) Idempotent() bool {
	return c.Acks != AcksNone && c.Acks != AcksLeader
}
