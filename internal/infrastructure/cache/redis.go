package cache

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"

	"hirepath/internal/infrastructure/storage"
)

const defaultKeyPrefix = "hirepath:"

type Options struct {
	Host     string
	Port     string
	Password string
	DB       int
	Prefix   string
	TTL      time.Duration
}

// Redis is a storage.Store backed by redis. When redis cannot be reached at construction time, or a
// command fails with a connection error, reads and writes are served by the fallback store so the
// client keeps working with local-only persistence. A key whose redis write or delete failed is
// read from the fallback until redis has been brought back in line with it.
type Redis struct {
	client   *redis.Client
	fallback storage.Store
	logger   *log.Logger
	prefix   string
	ttl      time.Duration

	warnedUnavailable atomic.Bool
	diverged          sync.Map
}

func NewRedis(opts Options, fallback storage.Store, logger *log.Logger) *Redis {
	if logger == nil {
		logger = log.Default()
	}
	if fallback == nil {
		fallback = storage.NewMemory()
	}

	host := strings.TrimSpace(opts.Host)
	if host == "" {
		host = "localhost"
	}
	port := strings.TrimSpace(opts.Port)
	if port == "" {
		port = "6379"
	}
	prefix := opts.Prefix
	if prefix == "" {
		prefix = defaultKeyPrefix
	}

	addr := fmt.Sprintf("%s:%s", host, port)
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Printf("[Cache] Redis unavailable, using local storage: %v", err)
		_ = client.Close()
		return &Redis{fallback: fallback, logger: logger, prefix: prefix, ttl: opts.TTL}
	}

	return newRedisWithClient(client, fallback, logger, prefix, opts.TTL)
}

func newRedisWithClient(client *redis.Client, fallback storage.Store, logger *log.Logger, prefix string, ttl time.Duration) *Redis {
	return &Redis{client: client, fallback: fallback, logger: logger, prefix: prefix, ttl: ttl}
}

func (r *Redis) isUnavailable() bool {
	return r == nil || r.client == nil
}

func (r *Redis) warnUnavailableOnce(err error) {
	if r == nil || r.logger == nil {
		return
	}
	if r.warnedUnavailable.CompareAndSwap(false, true) {
		r.logger.Printf("[Cache] Redis unavailable, using local storage: %v", err)
	}
}

func (r *Redis) Ping(ctx context.Context) error {
	if r.isUnavailable() {
		return errors.New("redis unavailable")
	}
	return r.client.Ping(ctx).Err()
}

func (r *Redis) Close() error {
	if r.isUnavailable() {
		return nil
	}
	return r.client.Close()
}

func (r *Redis) Get(ctx context.Context, key string) ([]byte, error) {
	if r.isUnavailable() {
		return r.fallback.Get(ctx, key)
	}
	if _, stale := r.diverged.Load(key); stale {
		return r.reconcile(ctx, key)
	}
	b, err := r.client.Get(ctx, r.prefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, storage.ErrNotFound
		}
		r.warnUnavailableOnce(err)
		return r.fallback.Get(ctx, key)
	}
	if len(b) == 0 {
		return nil, storage.ErrNotFound
	}
	return b, nil
}

// reconcile serves key from the fallback and pushes that state back to redis.
func (r *Redis) reconcile(ctx context.Context, key string) ([]byte, error) {
	b, err := r.fallback.Get(ctx, key)
	switch {
	case err == nil:
		r.track(key, r.client.Set(ctx, r.prefix+key, b, r.ttl).Err())
	case errors.Is(err, storage.ErrNotFound):
		r.track(key, r.client.Del(ctx, r.prefix+key).Err())
	}
	return b, err
}

func (r *Redis) track(key string, err error) {
	if err != nil {
		r.warnUnavailableOnce(err)
		r.diverged.Store(key, struct{}{})
		return
	}
	r.diverged.Delete(key)
}

// Put writes through to the fallback as well so a later redis outage still finds the record.
func (r *Redis) Put(ctx context.Context, key string, value []byte) error {
	if err := r.fallback.Put(ctx, key, value); err != nil {
		return err
	}
	if r.isUnavailable() {
		return nil
	}
	r.track(key, r.client.Set(ctx, r.prefix+key, value, r.ttl).Err())
	return nil
}

func (r *Redis) Delete(ctx context.Context, key string) error {
	if err := r.fallback.Delete(ctx, key); err != nil {
		return err
	}
	if r.isUnavailable() {
		return nil
	}
	r.track(key, r.client.Del(ctx, r.prefix+key).Err())
	return nil
}
