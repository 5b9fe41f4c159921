package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-redis/redis/v8"

	"github.com/UkralStul/academic-feed/internal/storage"
)

// Store реализует интерфейс Storage поверх Redis. Все ключи получают
// общий префикс, чтобы не пересекаться с другими данными в той же базе.
type Store struct {
	inner  *redis.Client
	prefix string
}

type Options struct {
	Host     string
	Port     string
	Password string
	DB       int
	Prefix   string
}

// New подключается к Redis и проверяет соединение.
func New(ctx context.Context, opts Options) (*Store, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", opts.Host, opts.Port),
		Password: opts.Password,
		DB:       opts.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return &Store{inner: client, prefix: opts.Prefix}, nil
}

func (s *Store) key(k string) string { return s.prefix + k }

func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	v, err := s.inner.Get(ctx, s.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, storage.ErrNotFound
	}
	return v, err
}

func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	return s.inner.Set(ctx, s.key(key), value, 0).Err()
}

func (s *Store) Delete(ctx context.Context, key string) error {
	return s.inner.Del(ctx, s.key(key)).Err()
}

func (s *Store) Close() error { return s.inner.Close() }
