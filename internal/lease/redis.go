// Package lease provides a redis-backed lease that keeps scheduler ticks of
// several processes from running at the same time.
package lease

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

// releaseScript deletes the key only while it still holds our token, so an
// expired lease taken over by another process is never released by us.
const releaseScript = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`

//go:generate mockgen -source=redis.go -destination=../mocks/lease/mock.go -package=mocks
type redisClient interface {
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
	Eval(ctx context.Context, script string, keys []string, args ...interface{}) *redis.Cmd
}

// Redis is a single-holder lease stored under one redis key.
type Redis struct {
	client redisClient
	key    string
	ttl    time.Duration
	token  string
}

// NewRedis creates a lease on key that expires after ttl unless released.
//
// Every instance gets its own token, so two processes sharing a key never
// mistake each other's lease for their own.
func NewRedis(client redisClient, key string, ttl time.Duration) *Redis {
	return &Redis{
		client: client,
		key:    key,
		ttl:    ttl,
		token:  uuid.NewString(),
	}
}

// Acquire tries to take the lease. It reports false without error when another
// holder owns it.
func (l *Redis) Acquire(ctx context.Context) (bool, error) {
	ok, err := l.client.SetNX(ctx, l.key, l.token, l.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("acquire lease %s: %w", l.key, err)
	}

	return ok, nil
}

// Release gives the lease up if it is still held by this instance.
func (l *Redis) Release(ctx context.Context) error {
	if err := l.client.Eval(ctx, releaseScript, []string{l.key}, l.token).Err(); err != nil {
		return fmt.Errorf("release lease %s: %w", l.key, err)
	}

	return nil
}
