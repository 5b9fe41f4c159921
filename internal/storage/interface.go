package storage

import (
	"context"
	"errors"
)

// ErrNotFound возвращается, если ключа нет в хранилище.
var ErrNotFound = errors.New("key not found")

// Ключи хранилища. Значения - JSON документы.
const (
	KeyUsers   = "users"
	KeyEntries = "entries"

	sessionPrefix  = "session:"
	bookmarkPrefix = "bookmarks:"
	viewPrefix     = "view:"
)

// SessionKey - ключ текущего пользователя сессии.
func SessionKey(sessionID string) string { return sessionPrefix + sessionID }

// BookmarksKey - ключ набора закладок пользователя.
func BookmarksKey(userID string) string { return bookmarkPrefix + userID }

// ViewKey - ключ состояния просмотра пользователя.
func ViewKey(userID string) string { return viewPrefix + userID }

// Store определяет контракт для хранилищ ключ-значение.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Close() error
}
