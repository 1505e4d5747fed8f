// Package cache is a Redis-backed read-through cache for gateway
// snapshots. A run with a warm cache skips the Table API entirely for
// unchanged windows; cache failures degrade to a direct fetch.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
)

// Config defines the cache connection and behavior.
type Config struct {
	Enabled  bool          `mapstructure:"enabled"`
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	TTL      time.Duration `mapstructure:"ttl"`
	Prefix   string        `mapstructure:"prefix"`
}

// Metrics tracks cache performance.
type Metrics struct {
	hits    prometheus.Counter
	misses  prometheus.Counter
	errors  prometheus.Counter
	sets    prometheus.Counter
	latency prometheus.Histogram
}

func newMetrics() *Metrics {
	return &Metrics{
		hits: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: "snowgate",
			Name:      "cache_hits_total",
			Help:      "Total number of cache hits",
		}),
		misses: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: "snowgate",
			Name:      "cache_misses_total",
			Help:      "Total number of cache misses",
		}),
		errors: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: "snowgate",
			Name:      "cache_errors_total",
			Help:      "Total number of cache errors",
		}),
		sets: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: "snowgate",
			Name:      "cache_sets_total",
			Help:      "Total number of cache sets",
		}),
		latency: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: "snowgate",
			Name:      "cache_operation_duration_seconds",
			Help:      "Cache operation latency",
			Buckets:   prometheus.DefBuckets,
		}),
	}
}

// RedisCache stores JSON-encoded gateway snapshots in Redis.
type RedisCache struct {
	client     *redis.Client
	defaultTTL time.Duration
	keyPrefix  string
	metrics    *Metrics
}

// NewRedisCache connects to Redis and verifies the connection.
func NewRedisCache(cfg Config) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	prefix := cfg.Prefix
	if prefix == "" {
		prefix = "snowgate:"
	}
	return &RedisCache{
		client:     client,
		defaultTTL: ttl,
		keyPrefix:  prefix,
		metrics:    newMetrics(),
	}, nil
}

// Get retrieves raw bytes; a miss returns (nil, nil).
func (rc *RedisCache) Get(ctx context.Context, key string) ([]byte, error) {
	timer := prometheus.NewTimer(rc.metrics.latency)
	defer timer.ObserveDuration()

	val, err := rc.client.Get(ctx, rc.keyPrefix+key).Bytes()
	if err != nil {
		if err == redis.Nil {
			rc.metrics.misses.Inc()
			return nil, nil
		}
		rc.metrics.errors.Inc()
		return nil, err
	}
	rc.metrics.hits.Inc()
	return val, nil
}

// Set stores raw bytes under the default TTL.
func (rc *RedisCache) Set(ctx context.Context, key string, value []byte) error {
	timer := prometheus.NewTimer(rc.metrics.latency)
	defer timer.ObserveDuration()

	if err := rc.client.Set(ctx, rc.keyPrefix+key, value, rc.defaultTTL).Err(); err != nil {
		rc.metrics.errors.Inc()
		return err
	}
	rc.metrics.sets.Inc()
	return nil
}

// Close releases the Redis connection.
func (rc *RedisCache) Close() error {
	return rc.client.Close()
}
