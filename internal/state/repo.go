// Package state хранит снимки ленты, каталога пользователей, сессий, закладок
// и ViewState в хранилище ключ-значение в виде JSON документов.
package state

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/UkralStul/academic-feed/internal/domain"
	"github.com/UkralStul/academic-feed/internal/storage"
)

type Repo struct {
	store    storage.Store
	seedUser string
	now      func() time.Time
}

// NewRepo создает репозиторий. seedAuthorID становится автором стартовых записей.
func NewRepo(store storage.Store, seedAuthorID string) *Repo {
	return &Repo{store: store, seedUser: seedAuthorID, now: time.Now}
}

// load читает JSON значение. found=false, если ключа нет.
func (r *Repo) load(ctx context.Context, key string, dst any) (bool, error) {
	raw, err := r.store.Get(ctx, key)
	if errors.Is(err, storage.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("load %s: %w", key, err)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

func (r *Repo) save(ctx context.Context, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := r.store.Set(ctx, key, raw); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

func (r *Repo) Users(ctx context.Context) ([]domain.User, error) {
	var users []domain.User
	_, err := r.load(ctx, storage.KeyUsers, &users)
	return users, err
}

func (r *Repo) SaveUsers(ctx context.Context, users []domain.User) error {
	return r.save(ctx, storage.KeyUsers, users)
}

// Entries возвращает ленту. Если ленты еще нет, стартовое наполнение
// сохраняется при первом чтении и дальше читается как обычная лента.
func (r *Repo) Entries(ctx context.Context) ([]domain.Entry, error) {
	var entries []domain.Entry
	found, err := r.load(ctx, storage.KeyEntries, &entries)
	if err != nil {
		return nil, err
	}
	if !found {
		entries = SeedEntries(r.now(), r.seedUser)
		if err := r.SaveEntries(ctx, entries); err != nil {
			return nil, err
		}
	}
	return entries, nil
}

func (r *Repo) SaveEntries(ctx context.Context, entries []domain.Entry) error {
	if entries == nil {
		entries = []domain.Entry{}
	}
	return r.save(ctx, storage.KeyEntries, entries)
}

// Session возвращает пользователя сессии или domain.ErrUnauthorized.
func (r *Repo) Session(ctx context.Context, sessionID string) (domain.User, error) {
	var u domain.User
	found, err := r.load(ctx, storage.SessionKey(sessionID), &u)
	if err != nil {
		return domain.User{}, err
	}
	if !found {
		return domain.User{}, domain.ErrUnauthorized
	}
	return u, nil
}

// SaveSession сохраняет публичную копию пользователя, без хеша пароля.
func (r *Repo) SaveSession(ctx context.Context, sessionID string, u domain.User) error {
	return r.save(ctx, storage.SessionKey(sessionID), u.Public())
}

func (r *Repo) DeleteSession(ctx context.Context, sessionID string) error {
	return r.store.Delete(ctx, storage.SessionKey(sessionID))
}

func (r *Repo) Bookmarks(ctx context.Context, userID string) ([]string, error) {
	set := []string{}
	_, err := r.load(ctx, storage.BookmarksKey(userID), &set)
	return set, err
}

func (r *Repo) SaveBookmarks(ctx context.Context, userID string, set []string) error {
	if set == nil {
		set = []string{}
	}
	return r.save(ctx, storage.BookmarksKey(userID), set)
}

func (r *Repo) View(ctx context.Context, userID string) (domain.ViewState, error) {
	var v domain.ViewState
	_, err := r.load(ctx, storage.ViewKey(userID), &v)
	return v, err
}

func (r *Repo) SaveView(ctx context.Context, userID string, v domain.ViewState) error {
	return r.save(ctx, storage.ViewKey(userID), v)
}
