// Package api - HTTP интерфейс ленты: REST и GraphQL поверх chi, поток событий по websocket.
package api

import (
	"net/http"
	"time"

	"github.com/99designs/gqlgen/graphql/playground"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"

	"github.com/UkralStul/academic-feed/graph"
	"github.com/UkralStul/academic-feed/internal/app"
	"github.com/UkralStul/academic-feed/internal/dataloader"
	"github.com/UkralStul/academic-feed/internal/events"
)

type API struct {
	r         chi.Router
	svc       *app.Service
	hub       *events.Hub
	tokens    *Tokens
	upgrader  websocket.Upgrader
	pingEvery time.Duration
}

func New(svc *app.Service, hub *events.Hub, tokens *Tokens) *API {
	api := &API{
		r:      chi.NewRouter(),
		svc:    svc,
		hub:    hub,
		tokens: tokens,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		pingEvery: 10 * time.Second,
	}
	api.endpoints()
	return api
}

func (api *API) Router() chi.Router {
	return api.r
}

func (api *API) endpoints() {
	api.r.Use(middleware.RequestID)
	api.r.Use(api.loggingMiddleware)
	api.r.Use(middleware.Recoverer)
	api.r.Use(api.headerMiddleware)

	api.r.Get("/health", api.health)
	api.r.Post("/auth/register", api.register)
	api.r.Post("/auth/login", api.login)
	api.r.Get("/playground", api.playground)

	api.r.Group(func(r chi.Router) {
		r.Use(api.authMiddleware)
		r.Use(dataloader.Middleware(api.svc.UsersByID))

		r.Post("/auth/logout", api.logout)

		r.Route("/me", func(r chi.Router) {
			r.Get("/", api.me)
			r.Patch("/profile", api.updateProfile)
			r.Put("/password", api.changePassword)
			r.Get("/bookmarks", api.bookmarks)
			r.Get("/view", api.view)
			r.Put("/view", api.setView)
		})

		r.Route("/entries", func(r chi.Router) {
			r.Get("/", api.listEntries)
			r.Post("/", api.createEntry)
			r.Get("/categories", api.categories)
			r.Get("/suggestions", api.suggestions)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", api.getEntry)
				r.Patch("/", api.updateEntry)
				r.Delete("/", api.deleteEntry)
				r.Post("/like", api.react)
				r.Post("/dislike", api.react)
				r.Post("/bookmark", api.toggleBookmark)
				r.Post("/comments", api.addComment)
				r.Post("/comments/{commentId}/like", api.likeComment)
			})
		})

		r.Post("/verify", api.verify)
		r.Get("/ws", api.stream)
		r.Handle("/query", graph.NewHandler(api.svc, api.hub))
	})
}

// playground отдает HTML страницу редактора запросов.
func (api *API) playground(w http.ResponseWriter, r *http.Request) {
	w.Header().Del("Content-Type")
	playground.Handler("Academic Feed", "/query").ServeHTTP(w, r)
}
