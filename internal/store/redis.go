package store

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rotisserie/eris"
)

// RedisRepository is a Repository backed by Redis. Each account is one string
// key; a set indexes the ids.
type RedisRepository struct {
	client *redis.Client
	prefix string
	index  string
}

// NewRedis connects to redisURL and verifies the connection.
func NewRedis(ctx context.Context, redisURL string) (*RedisRepository, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, eris.Wrap(err, "redis: parse url")
	}
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close() //nolint:errcheck
		return nil, eris.Wrap(err, "redis: ping")
	}
	return NewRedisWithClient(client), nil
}

// NewRedisWithClient wraps an existing client.
func NewRedisWithClient(client *redis.Client) *RedisRepository {
	return &RedisRepository{client: client, prefix: "account:", index: "accounts"}
}

func (r *RedisRepository) key(id string) string { return r.prefix + id }

// Init is a no-op; Redis needs no schema.
func (r *RedisRepository) Init(context.Context) error { return nil }

func (r *RedisRepository) Read(ctx context.Context, key string) ([]byte, error) {
	data, err := r.client.Get(ctx, r.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, eris.Wrapf(ErrNotFound, "redis: read %s", key)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "redis: read %s", key)
	}
	return data, nil
}

// Write sets the document and indexes its id in one MULTI/EXEC.
func (r *RedisRepository) Write(ctx context.Context, key string, value []byte) error {
	_, err := r.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Set(ctx, r.key(key), value, 0)
		p.SAdd(ctx, r.index, key)
		return nil
	})
	return eris.Wrapf(err, "redis: write %s", key)
}

func (r *RedisRepository) Delete(ctx context.Context, key string) error {
	var del *redis.IntCmd
	_, err := r.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		del = p.Del(ctx, r.key(key))
		p.SRem(ctx, r.index, key)
		return nil
	})
	if err != nil {
		return eris.Wrapf(err, "redis: delete %s", key)
	}
	if del.Val() == 0 {
		return eris.Wrapf(ErrNotFound, "redis: delete %s", key)
	}
	return nil
}

func (r *RedisRepository) Keys(ctx context.Context) ([]string, error) {
	keys, err := r.client.SMembers(ctx, r.index).Result()
	return keys, eris.Wrap(err, "redis: list keys")
}

func (r *RedisRepository) Clear(ctx context.Context) error {
	keys, err := r.Keys(ctx)
	if err != nil {
		return err
	}
	_, err = r.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		for _, k := range keys {
			p.Del(ctx, r.key(k))
		}
		p.Del(ctx, r.index)
		return nil
	})
	return eris.Wrap(err, "redis: clear")
}

func (r *RedisRepository) Close() error {
	return r.client.Close()
}
