// Package redis connects the reputation cache to Redis.
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"privid/internal/platform/config"
)

// ConnectAttempts bounds the startup ping retries.
const ConnectAttempts = 3

// Client wraps the go-redis client with health checking.
type Client struct {
	*redis.Client
}

// New dials Redis and pings it, retrying briefly while the server comes up.
// Returns nil when no URL is configured.
func New(ctx context.Context, cfg config.RedisConfig) (*Client, error) {
	if cfg.URL == "" {
		return nil, nil
	}
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}
	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns
	opts.DialTimeout = cfg.DialTimeout
	opts.ReadTimeout = cfg.ReadTimeout
	opts.WriteTimeout = cfg.WriteTimeout

	c := &Client{Client: redis.NewClient(opts)}
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = 200 * time.Millisecond
	ping := func() error { return c.Ping(ctx).Err() }
	if err := backoff.Retry(ping, backoff.WithContext(backoff.WithMaxRetries(policy, ConnectAttempts), ctx)); err != nil {
		c.Client.Close() //nolint:errcheck // best-effort cleanup on init failure
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	if err := registerPoolCollector(prometheus.DefaultRegisterer, c.Client); err != nil {
		c.Client.Close() //nolint:errcheck // best-effort cleanup on init failure
		return nil, err
	}
	return c, nil
}

// Health checks if the Redis connection is healthy.
func (c *Client) Health(ctx context.Context) error {
	return c.Ping(ctx).Err()
}

// poolCollector exports go-redis pool statistics at scrape time.
type poolCollector struct {
	stats interface{ PoolStats() *redis.PoolStats }

	hits, misses, timeouts, stale *prometheus.Desc
	total, idle                   *prometheus.Desc
}

func newPoolCollector(stats interface{ PoolStats() *redis.PoolStats }) *poolCollector {
	desc := func(name, help string) *prometheus.Desc {
		return prometheus.NewDesc("privid_redis_pool_"+name, help, nil, nil)
	}
	return &poolCollector{
		stats:    stats,
		hits:     desc("hits_total", "Number of times a connection was found in the pool"),
		misses:   desc("misses_total", "Number of times a connection was not found in the pool"),
		timeouts: desc("timeouts_total", "Number of times a connection was not obtained due to timeout"),
		stale:    desc("stale_conns_total", "Number of stale connections removed from the pool"),
		total:    desc("total_conns", "Number of total connections in the pool"),
		idle:     desc("idle_conns", "Number of idle connections in the pool"),
	}
}

func registerPoolCollector(reg prometheus.Registerer, stats interface{ PoolStats() *redis.PoolStats }) error {
	err := reg.Register(newPoolCollector(stats))
	var already prometheus.AlreadyRegisteredError
	if errors.As(err, &already) {
		return nil
	}
	return err
}

func (p *poolCollector) Describe(ch chan<- *prometheus.Desc) {
	for _, d := range []*prometheus.Desc{p.hits, p.misses, p.timeouts, p.stale, p.total, p.idle} {
		ch <- d
	}
}

func (p *poolCollector) Collect(ch chan<- prometheus.Metric) {
	s := p.stats.PoolStats()
	ch <- prometheus.MustNewConstMetric(p.hits, prometheus.CounterValue, float64(s.Hits))
	ch <- prometheus.MustNewConstMetric(p.misses, prometheus.CounterValue, float64(s.Misses))
	ch <- prometheus.MustNewConstMetric(p.timeouts, prometheus.CounterValue, float64(s.Timeouts))
	ch <- prometheus.MustNewConstMetric(p.stale, prometheus.CounterValue, float64(s.StaleConns))
	ch <- prometheus.MustNewConstMetric(p.total, prometheus.GaugeValue, float64(s.TotalConns))
	ch <- prometheus.MustNewConstMetric(p.idle, prometheus.GaugeValue, float64(s.IdleConns))
}
