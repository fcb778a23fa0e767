package storage

import (
	"context"

	"github.com/redis/rueidis"
)

// RedisStore keeps each key as a plain redis string. It does not track versions.
type RedisStore struct {
	client rueidis.Client
}

func NewRedisStore(client rueidis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (r *RedisStore) Get(ctx context.Context, key string) (string, bool, error) {
	cmd := r.client.B().Get().Key(key).Build()
	value, err := r.client.Do(ctx, cmd).ToString()

	if err != nil {
		if rueidis.IsRedisNil(err) {
			return "", false, nil
		}
		return "", false, err
	}

	return value, true, nil
}

func (r *RedisStore) Set(ctx context.Context, key, value string) error {
	cmd := r.client.B().Set().Key(key).Value(value).Build()
	return r.client.Do(ctx, cmd).Error()
}
