package cache

import (
	"context"
	"crypto/md5"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"github.com/thomas-vilte/mateticket/internal/config"
	"github.com/thomas-vilte/mateticket/internal/logger"
)

// Store is a TTL key/value store holding JSON documents.
type Store interface {
	// Get decodes the value stored at key into dst. It reports false on a miss.
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	// Increment adds one to the counter at key. The ttl is only applied when
	// the counter is created, so the window does not slide.
	Increment(ctx context.Context, key string, ttl time.Duration) (int64, error)
	Ping(ctx context.Context) error
	Close() error
}

// Key builds "prefix:md5(parts joined by |)".
func Key(prefix string, parts ...string) string {
	sum := md5.Sum([]byte(strings.Join(parts, "|")))
	return prefix + ":" + hex.EncodeToString(sum[:])
}

// GenerateHash returns the SHA256 hex digest of content.
func GenerateHash(content string) string {
	hash := sha256.Sum256([]byte(content))
	return hex.EncodeToString(hash[:])
}

const pingTimeout = 2 * time.Second

// New returns a Redis store when Redis is configured and reachable, and the
// in-memory store otherwise.
func New(ctx context.Context, cfg *config.Config) Store {
	log := logger.FromContext(ctx)

	addr := cfg.RedisAddr()
	if addr == "" {
		log.Info("redis not configured, using in-memory cache")
		return NewMemoryStore()
	}

	store := NewRedisStore(RedisOptions{
		Addr:     addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := store.Ping(pingCtx); err != nil {
		log.Warn("redis unreachable, falling back to in-memory cache",
			"addr", addr,
			"error", err)
		_ = store.Close()
		return NewMemoryStore()
	}

	log.Info("connected to redis", "addr", addr)
	return store
}
