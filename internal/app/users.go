package app

import (
	"context"

	log "github.com/sirupsen/logrus"

	"github.com/UkralStul/academic-feed/internal/domain"
	"github.com/UkralStul/academic-feed/internal/identity"
)

// Session - авторизованный клиент.
type Session struct {
	ID   string      `json:"-"`
	User domain.User `json:"user"`
}

type ctxKeySession struct{}

// WithSession кладет сессию в контекст запроса.
func WithSession(ctx context.Context, sess Session) context.Context {
	return context.WithValue(ctx, ctxKeySession{}, sess)
}

// SessionFrom достает сессию из контекста запроса.
func SessionFrom(ctx context.Context) (Session, bool) {
	sess, ok := ctx.Value(ctxKeySession{}).(Session)
	return sess, ok
}

// Register создает пользователя и сразу открывает для него сессию.
func (s *Service) Register(ctx context.Context, username, password string) (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.repo.Users(ctx)
	if err != nil {
		return Session{}, err
	}
	users, user, err := s.identity.Register(users, username, password)
	if err != nil {
		return Session{}, err
	}
	if err := s.repo.SaveUsers(ctx, users); err != nil {
		return Session{}, err
	}
	log.Infof("[app] registered user %s", user.ID)
	return s.openSession(ctx, user)
}

func (s *Service) Login(ctx context.Context, username, password string) (Session, error) {
	users, err := s.repo.Users(ctx)
	if err != nil {
		return Session{}, err
	}
	user, err := s.identity.Authenticate(users, username, password)
	if err != nil {
		return Session{}, err
	}
	return s.openSession(ctx, user)
}

func (s *Service) openSession(ctx context.Context, user domain.User) (Session, error) {
	sess := Session{ID: s.newID(), User: user.Public()}
	if err := s.repo.SaveSession(ctx, sess.ID, sess.User); err != nil {
		return Session{}, err
	}
	return sess, nil
}

// Logout удаляет сессию. Повторный выход не ошибка.
func (s *Service) Logout(ctx context.Context, sessionID string) error {
	return s.repo.DeleteSession(ctx, sessionID)
}

// Session возвращает пользователя сессии в актуальном виде из каталога.
func (s *Service) Session(ctx context.Context, sessionID string) (Session, error) {
	user, err := s.repo.Session(ctx, sessionID)
	if err != nil {
		return Session{}, err
	}
	users, err := s.repo.Users(ctx)
	if err != nil {
		return Session{}, err
	}
	if fresh, ok := identity.FindByID(users, user.ID); ok {
		user = fresh.Public()
	}
	return Session{ID: sessionID, User: user}, nil
}

// UpdateProfile меняет отображаемое имя, картинку и приватность.
func (s *Service) UpdateProfile(ctx context.Context, sess Session, p identity.ProfilePatch) (domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.repo.Users(ctx)
	if err != nil {
		return domain.User{}, err
	}
	users, user, err := s.identity.UpdateProfile(users, sess.User.ID, p)
	if err != nil {
		return domain.User{}, err
	}
	if err := s.repo.SaveUsers(ctx, users); err != nil {
		return domain.User{}, err
	}
	if err := s.repo.SaveSession(ctx, sess.ID, user); err != nil {
		return domain.User{}, err
	}
	return user.Public(), nil
}

// ChangePassword меняет пароль текущего пользователя.
func (s *Service) ChangePassword(ctx context.Context, actor domain.User, current, next, confirm string) error {
	if next != confirm {
		return domain.Invalid("passwords do not match")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.repo.Users(ctx)
	if err != nil {
		return err
	}
	users, err = s.identity.ChangePassword(users, actor.Username, current, next)
	if err != nil {
		return err
	}
	return s.repo.SaveUsers(ctx, users)
}

// UsersByID читает каталог один раз и отдает найденных пользователей.
func (s *Service) UsersByID(ctx context.Context, ids []string) (map[string]domain.User, error) {
	users, err := s.repo.Users(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[string]domain.User, len(ids))
	for _, id := range ids {
		if u, ok := identity.FindByID(users, id); ok {
			out[id] = u.Public()
		}
	}
	return out, nil
}
