// Package invalidation listens for tenant-changed signals and drops the
// matching validation cache entries.
package invalidation

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/belovedchibuikem/smart-housing-pro-sub007/internal/core/tenant"
	"github.com/belovedchibuikem/smart-housing-pro-sub007/internal/shell/metrics"
	"github.com/redis/go-redis/v9"
)

// PurgeAll is the payload that empties the whole cache.
const PurgeAll = "*"

// Invalidator is the cache surface the listener drives.
type Invalidator interface {
	Invalidate(host string) int
	InvalidateSlug(slug string) int
	Purge()
}

// Config configures the listener.
type Config struct {
	RedisURL string // e.g., "redis://localhost:6379/0"
	Channel  string // pub/sub channel, default "tenant.changed"
}

// DefaultConfig returns default configuration.
func DefaultConfig() Config {
	return Config{
		Channel: "tenant.changed",
	}
}

// Message is a tenant-changed signal. Either field may be empty.
type Message struct {
	Host string `json:"host,omitempty"`
	Slug string `json:"slug,omitempty"`
}

// Listener subscribes to the tenant-changed channel.
type Listener struct {
	client *redis.Client
	cache  Invalidator
	config Config
	logger *slog.Logger
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewListener creates a listener. The Redis connection is opened lazily by
// go-redis on Start.
func NewListener(cfg Config, cache Invalidator, logger *slog.Logger) (*Listener, error) {
	if cfg.Channel == "" {
		cfg.Channel = DefaultConfig().Channel
	}
	if logger == nil {
		logger = slog.Default()
	}

	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	return &Listener{
		client: redis.NewClient(opts),
		cache:  cache,
		config: cfg,
		logger: logger.With("component", "invalidation_listener"),
	}, nil
}

// Start subscribes and begins consuming messages in the background.
func (l *Listener) Start() error {
	l.ctx, l.cancel = context.WithCancel(context.Background())

	pubsub := l.client.Subscribe(l.ctx, l.config.Channel)
	// Wait for the subscription confirmation so no message published after
	// Start returns is missed.
	if _, err := pubsub.Receive(l.ctx); err != nil {
		pubsub.Close()
		l.cancel()
		return fmt.Errorf("subscribe %s: %w", l.config.Channel, err)
	}

	l.wg.Add(1)
	go l.run(pubsub)
	l.logger.Info("invalidation listener started", "channel", l.config.Channel)
	return nil
}

// Stop unsubscribes and waits for the consumer to exit.
func (l *Listener) Stop() {
	if l.cancel != nil {
		l.cancel()
	}
	l.wg.Wait()
	if err := l.client.Close(); err != nil {
		l.logger.Warn("failed to close redis client", "error", err)
	}
	l.logger.Info("invalidation listener stopped")
}

func (l *Listener) run(pubsub *redis.PubSub) {
	defer l.wg.Done()
	defer pubsub.Close()

	ch := pubsub.Channel()
	for {
		select {
		case <-l.ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			l.Handle(msg.Payload)
		}
	}
}

// Handle applies one payload to the cache.
func (l *Listener) Handle(payload string) {
	payload = strings.TrimSpace(payload)
	if payload == PurgeAll {
		l.cache.Purge()
		metrics.RecordInvalidation("redis")
		l.logger.Info("validation cache purged")
		return
	}

	var msg Message
	if err := json.Unmarshal([]byte(payload), &msg); err != nil {
		l.logger.Warn("malformed tenant-changed message", "payload", payload, "error", err)
		return
	}

	host := tenant.NormalizeHost(msg.Host)
	slug := strings.ToLower(strings.TrimSpace(msg.Slug))
	if host == "" && slug == "" {
		l.logger.Warn("empty tenant-changed message", "payload", payload)
		return
	}

	removed := 0
	if host != "" {
		removed += l.cache.Invalidate(host)
	}
	if slug != "" {
		removed += l.cache.InvalidateSlug(slug)
	}
	metrics.RecordInvalidation("redis")
	l.logger.Info("validation cache invalidated", "host", host, "slug", slug, "removed", removed)
}
