package cache

import (
	"context"
	"time"

	"trendscope-backend/services"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const (
	maintenanceKey = "trendscope:maintenance"
	DefaultLockTTL = time.Minute
)

// Only the holder's token may delete the key.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLocker is a services.Locker shared by every instance pointing at the
// same redis. The key expires after TTL so a crashed holder cannot block
// maintenance forever; TTL must exceed the bulk transaction timeout.
type RedisLocker struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

func NewRedisLocker(client *redis.Client, ttl time.Duration) *RedisLocker {
	if ttl <= 0 {
		ttl = DefaultLockTTL
	}
	return &RedisLocker{client: client, key: maintenanceKey, ttl: ttl}
}

func (l *RedisLocker) TryLock(ctx context.Context) (func(), error) {
	token := uuid.NewString()
	ok, err := l.client.SetNX(ctx, l.key, token, l.ttl).Result()
	if err != nil {
		return nil, errors.Wrap(err, "failed to acquire maintenance lock")
	}
	if !ok {
		return nil, services.ErrMaintenanceInProgress
	}

	return func() {
		// The caller's context may already be done when the work finished.
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := releaseScript.Run(ctx, l.client, []string{l.key}, token).Err(); err != nil {
			logrus.WithError(err).Warn("failed to release maintenance lock")
		}
	}, nil
}
