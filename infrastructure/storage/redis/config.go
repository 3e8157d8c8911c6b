// Package redis shares greedy steps between solver processes through Redis.
package redis

import (
	"time"

	"github.com/redis/go-redis/v9"
)

// Config describes the connection. When URL is set it takes precedence over
// Address, Password and DB.
type Config struct {
	URL      string
	Address  string
	Password string
	DB       int

	MaxRetries   int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	PoolSize     int

	// KeyPrefix scopes every key this cache writes, scans or clears.
	KeyPrefix string
}

// ConfigOption adjusts a Config.
type ConfigOption func(*Config)

func WithURL(url string) ConfigOption {
	return func(c *Config) { c.URL = url }
}

func WithAddress(addr string) ConfigOption {
	return func(c *Config) { c.Address = addr }
}

func WithPassword(password string) ConfigOption {
	return func(c *Config) { c.Password = password }
}

func WithDB(db int) ConfigOption {
	return func(c *Config) { c.DB = db }
}

func WithKeyPrefix(prefix string) ConfigOption {
	return func(c *Config) { c.KeyPrefix = prefix }
}

// DefaultConfig targets a local server.
func DefaultConfig() Config {
	return Config{
		Address:      "localhost:6379",
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		KeyPrefix:    "maker:",
	}
}

func (c Config) options() (*redis.Options, error) {
	opts := &redis.Options{Addr: c.Address, Password: c.Password, DB: c.DB}
	if c.URL != "" {
		parsed, err := redis.ParseURL(c.URL)
		if err != nil {
			return nil, err
		}
		opts = parsed
	}
	opts.MaxRetries = c.MaxRetries
	opts.DialTimeout = c.DialTimeout
	opts.ReadTimeout = c.ReadTimeout
	opts.WriteTimeout = c.WriteTimeout
	opts.PoolSize = c.PoolSize
	return opts, nil
}
