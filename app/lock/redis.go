package lock

import (
	"context"
	"time"

	"github.com/google/uuid"
	redis "github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const lockReleaseScript = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
  return redis.call("DEL", KEYS[1])
end
return 0
`

const acquireRetryInterval = 50 * time.Millisecond

// RedisLocker is a cross-process lease keyed by entity identity. The lease
// carries a token so only its holder can release it; the TTL bounds how long
// a crashed holder can block an entity.
type RedisLocker struct {
	client *redis.Client
	script *redis.Script
	ttl    time.Duration
	logger logrus.FieldLogger
}

func NewRedisLocker(client *redis.Client, ttl time.Duration, logger logrus.FieldLogger) *RedisLocker {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &RedisLocker{
		client: client,
		script: redis.NewScript(lockReleaseScript),
		ttl:    ttl,
		logger: logger,
	}
}

func (l *RedisLocker) Acquire(ctx context.Context, key string, timeout time.Duration) (func(), error) {
	token := uuid.NewString()
	deadline := time.Now().Add(timeout)

	for {
		ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil {
			return nil, err
		}
		if ok {
			return func() { l.release(key, token) }, nil
		}
		if time.Now().After(deadline) {
			return nil, ErrNotAcquired
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(acquireRetryInterval):
		}
	}
}

func (l *RedisLocker) release(key, token string) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := l.script.Run(ctx, l.client, []string{key}, token).Err(); err != nil && err != redis.Nil {
		l.logger.WithError(err).WithField("key", key).Warn("Releasing entity lock failed")
	}
}
