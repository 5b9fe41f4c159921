package inmemory

import (
	"context"
	"slices"
	"sync"

	"github.com/UkralStul/academic-feed/internal/storage"
)

// Store реализует интерфейс Storage в памяти.
type Store struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// New создает новый экземпляр in-memory хранилища.
func New() *Store {
	return &Store{data: make(map[string][]byte)}
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.data[key]
	if !ok {
		return nil, storage.ErrNotFound
	}
	// Отдаем копию, чтобы вызывающий код не мог изменить хранимое значение.
	return slices.Clone(v), nil
}

func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data[key] = slices.Clone(value)
	return nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.data, key)
	return nil
}

// Keys возвращает отсортированный список ключей. Используется в тестах.
func (s *Store) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]string, 0, len(s.data))
	for k := range s.data {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

func (s *Store) Close() error { return nil }
