package runlock

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/catalogops/catalog-scraper/internal/models"
)

// ErrHeld is returned when another run already holds the supplier lock.
var ErrHeld = fmt.Errorf("run lock already held")

// RedisClient is the subset of redis operations the lock needs (for testing).
type RedisClient interface {
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
	Get(ctx context.Context, key string) *redis.StringCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// Lock enforces at most one active run per supplier across hosts. The TTL
// guards against locks orphaned by a crashed holder; the checkpoint record is
// what actually survives a crash.
type Lock struct {
	client RedisClient
	token  string
	ttl    time.Duration
	logger *slog.Logger
}

func New(client RedisClient, ttl time.Duration) *Lock {
	return &Lock{
		client: client,
		token:  uuid.New().String(),
		ttl:    ttl,
		logger: slog.Default().With("component", "runlock"),
	}
}

func key(supplier models.Supplier) string {
	return "catalog-scraper:run:" + string(supplier)
}

// Acquire takes the supplier lock or returns ErrHeld.
func (l *Lock) Acquire(ctx context.Context, supplier models.Supplier) error {
	ok, err := l.client.SetNX(ctx, key(supplier), l.token, l.ttl).Result()
	if err != nil {
		return fmt.Errorf("failed to acquire run lock: %w", err)
	}
	if !ok {
		return ErrHeld
	}

	l.logger.Info("run lock acquired", "supplier", supplier, "ttl", l.ttl)
	return nil
}

// Release drops the lock when this process still owns it.
func (l *Lock) Release(ctx context.Context, supplier models.Supplier) error {
	holder, err := l.client.Get(ctx, key(supplier)).Result()
	if err == redis.Nil {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read run lock: %w", err)
	}

	if holder != l.token {
		l.logger.Warn("run lock held by another process, leaving it", "supplier", supplier)
		return nil
	}

	if err := l.client.Del(ctx, key(supplier)).Err(); err != nil {
		return fmt.Errorf("failed to release run lock: %w", err)
	}

	return nil
}
