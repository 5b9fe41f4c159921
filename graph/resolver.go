package graph

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/99designs/gqlgen/graphql"
	"github.com/99designs/gqlgen/graphql/handler"
	"github.com/99designs/gqlgen/graphql/handler/extension"
	"github.com/99designs/gqlgen/graphql/handler/lru"
	"github.com/99designs/gqlgen/graphql/handler/transport"
	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"
	"github.com/vektah/gqlparser/v2/gqlerror"

	"github.com/UkralStul/academic-feed/internal/app"
	"github.com/UkralStul/academic-feed/internal/domain"
	"github.com/UkralStul/academic-feed/internal/events"
)

// Resolver - это корневая структура резолвера.
// Она содержит все зависимости, которые нужны для выполнения запросов.
type Resolver struct {
	Service *app.Service
	Hub     *events.Hub
}

// NewHandler собирает GraphQL сервер. Websocket транспорт идет первым,
// чтобы подписки получали upgrader без проверки Origin.
func NewHandler(svc *app.Service, hub *events.Hub) http.Handler {
	srv := handler.New(NewExecutableSchema(Config{Resolvers: &Resolver{Service: svc, Hub: hub}}))

	srv.AddTransport(transport.Websocket{
		Upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		KeepAlivePingInterval: 10 * time.Second,
	})
	srv.AddTransport(transport.Options{})
	srv.AddTransport(transport.GET{})
	srv.AddTransport(transport.POST{})

	srv.SetQueryCache(lru.New(1000))
	srv.Use(extension.Introspection{})
	srv.SetErrorPresenter(presentError)
	return srv
}

// presentError добавляет код AppError в extensions. Прочие ошибки резолверов
// уходят в журнал, клиент видит только "internal error".
func presentError(ctx context.Context, err error) *gqlerror.Error {
	gqlErr := graphql.DefaultErrorPresenter(ctx, err)

	var appErr *domain.AppError
	switch {
	case errors.As(err, &appErr):
		if gqlErr.Extensions == nil {
			gqlErr.Extensions = map[string]interface{}{}
		}
		gqlErr.Extensions["code"] = appErr.Code
		if appErr.Code == domain.CodeInternal {
			log.Errorf("[graph] %v: %v", gqlErr.Path, err)
			gqlErr.Message = "internal error"
		} else {
			gqlErr.Message = appErr.Message
		}
	case errors.Unwrap(gqlErr) != nil:
		log.Errorf("[graph] %v: %v", gqlErr.Path, err)
		gqlErr.Message = "internal error"
	}
	return gqlErr
}

func currentUser(ctx context.Context) (domain.User, error) {
	sess, ok := app.SessionFrom(ctx)
	if !ok {
		return domain.User{}, domain.ErrUnauthorized
	}
	return sess.User, nil
}
