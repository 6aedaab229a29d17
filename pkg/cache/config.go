package cache

import (
	"time"

	"SignalDesk/pkg/logger"
)

// RedisOption configures the Redis store.
type RedisOption func(*RedisConfig)

// RedisConfig holds Redis configuration.
type RedisConfig struct {
	Addr         string
	Password     string
	DB           int
	PoolSize     int
	PoolTimeout  time.Duration
	DialTimeout  time.Duration
	MinIdleConns int
	Prefix       string
}

// WithRedisAddr sets the host:port of the Redis server.
func WithRedisAddr(addr string) RedisOption {
	return func(c *RedisConfig) {
		c.Addr = addr
	}
}

// WithRedisPassword sets Redis password.
func WithRedisPassword(password string) RedisOption {
	return func(c *RedisConfig) {
		c.Password = password
	}
}

// WithRedisDB sets Redis database number.
func WithRedisDB(db int) RedisOption {
	return func(c *RedisConfig) {
		c.DB = db
	}
}

// WithRedisPool sets connection pool settings.
func WithRedisPool(poolSize, minIdleConns int, timeout time.Duration) RedisOption {
	return func(c *RedisConfig) {
		c.PoolSize = poolSize
		c.MinIdleConns = minIdleConns
		c.PoolTimeout = timeout
	}
}

// WithRedisDialTimeout bounds connection attempts.
func WithRedisDialTimeout(d time.Duration) RedisOption {
	return func(c *RedisConfig) {
		c.DialTimeout = d
	}
}

// WithRedisPrefix sets key prefix.
func WithRedisPrefix(prefix string) RedisOption {
	return func(c *RedisConfig) {
		c.Prefix = prefix
	}
}

// MemoryOption configures the memory store.
type MemoryOption func(*MemoryConfig)

// MemoryConfig holds memory store configuration.
type MemoryConfig struct {
	MaxSize int
	Clock   func() time.Time
}

// WithMemoryMaxSize sets max number of entries.
func WithMemoryMaxSize(size int) MemoryOption {
	return func(c *MemoryConfig) {
		c.MaxSize = size
	}
}

// WithMemoryClock replaces time.Now.
func WithMemoryClock(now func() time.Time) MemoryOption {
	return func(c *MemoryConfig) {
		c.Clock = now
	}
}

// TieredOption configures the tiered cache.
type TieredOption func(*TieredConfig)

// TieredConfig holds tiered cache configuration.
type TieredConfig struct {
	RetryAfter time.Duration
	Logger     *logger.Logger
	Observer   Observer
	Clock      func() time.Time
}

// WithRetryAfter sets how long the shared tier is bypassed after a failure.
func WithRetryAfter(d time.Duration) TieredOption {
	return func(c *TieredConfig) {
		c.RetryAfter = d
	}
}

// WithLogger sets the logger used for degradation events.
func WithLogger(l *logger.Logger) TieredOption {
	return func(c *TieredConfig) {
		c.Logger = l
	}
}

// WithObserver sets the metrics sink.
func WithObserver(o Observer) TieredOption {
	return func(c *TieredConfig) {
		c.Observer = o
	}
}

// WithTieredClock replaces time.Now.
func WithTieredClock(now func() time.Time) TieredOption {
	return func(c *TieredConfig) {
		c.Clock = now
	}
}
