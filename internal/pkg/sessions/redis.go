package sessions

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

type redisStore struct {
	client *redis.Client
	key    string
}

// NewRedisStore returns a Store backed by Redis, for deployments where
// several gateway replicas must share the session. serviceName prefixes
// the key so instances of different storefronts can share one Redis.
func NewRedisStore(addr, serviceName string) Store {
	return &redisStore{
		client: redis.NewClient(&redis.Options{Addr: addr}),
		key:    fmt.Sprintf("%s:session:token", serviceName),
	}
}

func (r *redisStore) Save(ctx context.Context, token string) error {
	return r.client.Set(ctx, r.key, token, 0).Err()
}

func (r *redisStore) Load(ctx context.Context) (string, error) {
	token, err := r.client.Get(ctx, r.key).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return token, nil
}

func (r *redisStore) Clear(ctx context.Context) error {
	return r.client.Del(ctx, r.key).Err()
}
