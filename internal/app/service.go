// Package app связывает движок ленты, каталог пользователей и хранилище.
//
// Все мутации выполняются последовательно под одним мьютексом: каждая
// операция читает текущий снимок, вычисляет новый и сохраняет его целиком.
package app

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/UkralStul/academic-feed/internal/domain"
	"github.com/UkralStul/academic-feed/internal/events"
	"github.com/UkralStul/academic-feed/internal/identity"
	"github.com/UkralStul/academic-feed/internal/state"
	"github.com/UkralStul/academic-feed/internal/verify"
)

type Service struct {
	mu sync.Mutex

	repo     *state.Repo
	identity *identity.Service
	verifier verify.Verifier
	events   events.Publisher

	now   func() time.Time
	newID func() string
}

type Option func(*Service)

// WithClock подменяет источник времени.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithIDGenerator подменяет генератор id записей, комментариев и сессий.
func WithIDGenerator(fn func() string) Option {
	return func(s *Service) { s.newID = fn }
}

// WithEvents задает получателя событий.
func WithEvents(p events.Publisher) Option {
	return func(s *Service) { s.events = p }
}

func New(repo *state.Repo, ids *identity.Service, verifier verify.Verifier, opts ...Option) *Service {
	s := &Service{
		repo:     repo,
		identity: ids,
		verifier: verifier,
		events:   events.Multi{},
		now:      time.Now,
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Startup гарантирует наличие администратора в каталоге и сохраненной ленты.
func (s *Service) Startup(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.repo.Users(ctx)
	if err != nil {
		return err
	}
	users, err = s.identity.EnsureAdminSeed(users)
	if err != nil {
		return err
	}
	if err := s.repo.SaveUsers(ctx, users); err != nil {
		return err
	}
	log.Infof("[app] directory ready, %d users", len(users))

	entries, err := s.repo.Entries(ctx)
	if err != nil {
		return err
	}
	log.Infof("[app] feed ready, %d entries", len(entries))
	return nil
}

func (s *Service) publish(ctx context.Context, t events.Type, entryID, commentID string, actor domain.User) {
	s.events.Publish(ctx, events.Event{
		Type:      t,
		EntryID:   entryID,
		CommentID: commentID,
		ActorID:   actor.ID,
		At:        s.now(),
	})
}

func requireAdmin(actor domain.User) error {
	if actor.Role != domain.RoleAdmin {
		return domain.ErrForbidden
	}
	return nil
}

// Verify проверяет пару вопрос/ответ внешней моделью.
func (s *Service) Verify(ctx context.Context, question, answer string) (string, error) {
	if question == "" || answer == "" {
		return "", domain.Invalid("question and answer are required")
	}
	return s.verifier.Verify(ctx, question, answer), nil
}
