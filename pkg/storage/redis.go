package storage

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"slices"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/matzehuels/kintree/pkg/errors"
	"github.com/matzehuels/kintree/pkg/person"
)

const (
	redisKeyPrefix = "kintree:dataset:"
	redisIndexKey  = "kintree:datasets"
)

// RedisConfig holds connection settings for [NewRedisStore].
type RedisConfig struct {
	Addr     string
	Password string
	DB       int

	// Prefix overrides the key prefix. Defaults to "kintree:".
	Prefix string
}

// RedisStore keeps each dataset as a JSON string value. A set indexes the
// stored names.
type RedisStore struct {
	client *redis.Client
	prefix string
	index  string
}

// NewRedisStore connects to redis and verifies the connection with PING.
func NewRedisStore(ctx context.Context, cfg RedisConfig) (*RedisStore, error) {
	addr := cfg.Addr
	if addr == "" {
		addr = "localhost:6379"
	}
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect redis %s: %w", addr, err)
	}
	return newRedisStore(client, cfg.Prefix), nil
}

func newRedisStore(client *redis.Client, prefix string) *RedisStore {
	if prefix == "" {
		return &RedisStore{client: client, prefix: redisKeyPrefix, index: redisIndexKey}
	}
	return &RedisStore{client: client, prefix: prefix + "dataset:", index: prefix + "datasets"}
}

func (s *RedisStore) key(name string) string {
	return s.prefix + name
}

func (s *RedisStore) Load(ctx context.Context, name string) (*Dataset, error) {
	if err := errors.ValidateDatasetName(name); err != nil {
		return nil, err
	}
	data, err := s.client.Get(ctx, s.key(name)).Bytes()
	if stderrors.Is(err, redis.Nil) {
		return nil, notFound(name)
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", name, err)
	}
	var ds Dataset
	if err := json.Unmarshal(data, &ds); err != nil {
		return nil, errors.Wrap(errors.ErrCodeMalformedJSON, err, "parse dataset %s", name)
	}
	return &ds, nil
}

func (s *RedisStore) Save(ctx context.Context, name string, people []person.Person) error {
	if err := errors.ValidateDatasetName(name); err != nil {
		return err
	}
	ds, err := newDataset(name, people)
	if err != nil {
		return err
	}
	data, err := json.Marshal(ds)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "encode dataset %s", name)
	}
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, s.key(name), data, 0)
		pipe.SAdd(ctx, s.index, name)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis set %s: %w", name, err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, name string) error {
	if err := errors.ValidateDatasetName(name); err != nil {
		return err
	}
	var del *redis.IntCmd
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		del = pipe.Del(ctx, s.key(name))
		pipe.SRem(ctx, s.index, name)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis del %s: %w", name, err)
	}
	if del.Val() == 0 {
		return notFound(name)
	}
	return nil
}

func (s *RedisStore) List(ctx context.Context) ([]string, error) {
	names, err := s.client.SMembers(ctx, s.index).Result()
	if err != nil {
		return nil, fmt.Errorf("redis list datasets: %w", err)
	}
	slices.Sort(names)
	return names, nil
}

// Close closes the underlying client.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

// Ensure RedisStore implements Repository.
var _ Repository = (*RedisStore)(nil)
