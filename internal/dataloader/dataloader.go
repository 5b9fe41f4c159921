package dataloader

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/graph-gophers/dataloader"

	"github.com/UkralStul/academic-feed/internal/domain"
	"github.com/UkralStul/academic-feed/internal/feed"
)

type contextKey string

const key = contextKey("dataloaders")

var errNoLoaders = errors.New("dataloaders are missing from context")

// UserSource загружает пользователей по списку id одним обращением.
// Отсутствующие id просто не попадают в результат.
type UserSource func(ctx context.Context, ids []string) (map[string]domain.User, error)

// Loaders содержит все дата-лоадеры приложения.
type Loaders struct {
	UserByID *dataloader.Loader
}

// NewLoaders создает лоадеры на время одного запроса.
func NewLoaders(source UserSource) *Loaders {
	// Создаем батч-функцию для лоадера
	batchFn := func(ctx context.Context, keys dataloader.Keys) []*dataloader.Result {
		ids := keys.Keys()

		// Вызываем источник, который делает ОДНО чтение каталога
		users, err := source(ctx, ids)
		if err != nil {
			// В случае ошибки, возвращаем ее для всех ключей
			results := make([]*dataloader.Result, len(keys))
			for i := range results {
				results[i] = &dataloader.Result{Error: err}
			}
			return results
		}

		// Формируем результат в том же порядке, что и ключи
		results := make([]*dataloader.Result, len(keys))
		for i, id := range ids {
			if u, ok := users[id]; ok {
				results[i] = &dataloader.Result{Data: u}
			} else {
				results[i] = &dataloader.Result{}
			}
		}
		return results
	}

	return &Loaders{
		UserByID: dataloader.NewBatchedLoader(batchFn, dataloader.WithWait(time.Millisecond*1)),
	}
}

// Middleware для внедрения лоадеров в контекст запроса.
func Middleware(source UserSource) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := WithLoaders(r.Context(), NewLoaders(source))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func WithLoaders(ctx context.Context, l *Loaders) context.Context {
	return context.WithValue(ctx, key, l)
}

// For извлекает лоадеры из контекста.
func For(ctx context.Context) *Loaders {
	l, _ := ctx.Value(key).(*Loaders)
	return l
}

// Authors загружает авторов комментариев и возвращает функцию поиска для
// feed.PresentComments.
func Authors(ctx context.Context, comments []domain.Comment) (feed.AuthorLookup, error) {
	ids := feed.AuthorIDs(comments)
	found := make(map[string]domain.User, len(ids))
	lookup := func(id string) (domain.User, bool) {
		u, ok := found[id]
		return u, ok
	}
	if len(ids) == 0 {
		return lookup, nil
	}

	loaders := For(ctx)
	if loaders == nil {
		return nil, errNoLoaders
	}

	data, errs := loaders.UserByID.LoadMany(ctx, dataloader.NewKeysFromStrings(ids))()
	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	for _, d := range data {
		if u, ok := d.(domain.User); ok {
			found[u.ID] = u
		}
	}
	return lookup, nil
}
