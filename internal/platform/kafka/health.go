package kafka

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"sync"
	"time"
)

// DefaultDialTimeout bounds each broker probe.
const DefaultDialTimeout = 5 * time.Second

// HealthChecker reports the event sink healthy while any broker accepts
// TCP connections.
type HealthChecker struct {
	brokers []string
	timeout time.Duration
}

func NewHealthChecker(brokers []string) *HealthChecker {
	var cleaned []string
	for _, b := range brokers {
		if b = strings.TrimSpace(b); b != "" {
			cleaned = append(cleaned, b)
		}
	}
	return &HealthChecker{brokers: cleaned, timeout: DefaultDialTimeout}
}

// Check probes all brokers in parallel and returns nil once one answers.
func (h *HealthChecker) Check(ctx context.Context) error {
	if len(h.brokers) == 0 {
		return fmt.Errorf("no kafka brokers configured")
	}
	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	results := make(chan error, len(h.brokers))
	var wg sync.WaitGroup
	for _, broker := range h.brokers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- probe(ctx, broker)
		}()
	}
	go func() {
		wg.Wait()
		close(results)
	}()

	var errs []error
	for err := range results {
		if err == nil {
			return nil
		}
		errs = append(errs, err)
	}
	return fmt.Errorf("no kafka brokers reachable: %w", errors.Join(errs...))
}

func probe(ctx context.Context, broker string) error {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", broker)
	if err != nil {
		return fmt.Errorf("%s: %w", broker, err)
	}
	return conn.Close()
}

func (h *HealthChecker) Name() string {
	return "kafka"
}
