// Package identity регистрирует и аутентифицирует пользователей по каталогу.
//
// Каталог передается явно и возвращается измененной копией, сам сервис
// состояния не хранит.
package identity

import (
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/UkralStul/academic-feed/internal/domain"
)

// MaxProfilePicSize - предельный размер картинки профиля (data URL).
const MaxProfilePicSize = 2 * 1024 * 1024

// AdminSeed описывает привилегированную учетную запись, которая
// восстанавливается при каждом старте.
type AdminSeed struct {
	ID          string
	Username    string
	Password    string
	DisplayName string
}

// Service выполняет операции над каталогом пользователей.
type Service struct {
	admin AdminSeed
	cost  int
	newID func() string
}

type Option func(*Service)

// WithCost задает стоимость bcrypt. В тестах удобно использовать bcrypt.MinCost.
func WithCost(cost int) Option {
	return func(s *Service) { s.cost = cost }
}

// WithIDGenerator подменяет генератор id пользователей.
func WithIDGenerator(fn func() string) Option {
	return func(s *Service) { s.newID = fn }
}

func New(admin AdminSeed, opts ...Option) *Service {
	s := &Service{
		admin: admin,
		cost:  bcrypt.DefaultCost,
		newID: func() string { return "u-" + uuid.NewString() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register добавляет нового пользователя с ролью User.
func (s *Service) Register(dir []domain.User, username, password string) ([]domain.User, domain.User, error) {
	if strings.TrimSpace(username) == "" || password == "" {
		return dir, domain.User{}, domain.Invalid("username and password are required")
	}
	if indexByUsername(dir, username) >= 0 {
		return dir, domain.User{}, domain.ErrDuplicateUsername
	}

	hash, err := s.hash(password)
	if err != nil {
		return dir, domain.User{}, err
	}
	user := domain.User{
		ID:           s.newID(),
		Username:     username,
		PasswordHash: hash,
		Role:         domain.RoleUser,
		DisplayName:  username,
	}

	out := make([]domain.User, 0, len(dir)+1)
	out = append(out, dir...)
	return append(out, user), user, nil
}

// Authenticate возвращает пользователя, если логин и пароль совпадают.
func (s *Service) Authenticate(dir []domain.User, username, password string) (domain.User, error) {
	idx := indexByUsername(dir, username)
	if idx < 0 || !checkPassword(dir[idx].PasswordHash, password) {
		return domain.User{}, domain.ErrInvalidCredentials
	}
	return dir[idx], nil
}

// EnsureAdminSeed создает администратора, если его нет. Если он есть, его
// пароль всегда сбрасывается на значение из конфигурации.
func (s *Service) EnsureAdminSeed(dir []domain.User) ([]domain.User, error) {
	hash, err := s.hash(s.admin.Password)
	if err != nil {
		return dir, err
	}

	out := slices.Clone(dir)
	if idx := indexByUsername(out, s.admin.Username); idx >= 0 {
		out[idx].PasswordHash = hash
		return out, nil
	}
	return append(out, domain.User{
		ID:           s.admin.ID,
		Username:     s.admin.Username,
		PasswordHash: hash,
		Role:         domain.RoleAdmin,
		DisplayName:  s.admin.DisplayName,
	}), nil
}

// ChangePassword меняет пароль, если текущий пароль верен.
func (s *Service) ChangePassword(dir []domain.User, username, current, next string) ([]domain.User, error) {
	idx := indexByUsername(dir, username)
	if idx < 0 || !checkPassword(dir[idx].PasswordHash, current) {
		return dir, domain.ErrInvalidCredentials
	}
	if next == "" {
		return dir, domain.Invalid("new password is required")
	}

	hash, err := s.hash(next)
	if err != nil {
		return dir, err
	}
	out := slices.Clone(dir)
	out[idx].PasswordHash = hash
	return out, nil
}

// ProfilePatch - изменяемые настройки профиля. nil означает "не менять".
type ProfilePatch struct {
	DisplayName *string `json:"displayName,omitempty"`
	ProfilePic  *string `json:"profilePic,omitempty"`
	IsPrivate   *bool   `json:"isPrivate,omitempty"`
}

// UpdateProfile применяет настройки профиля и приватности.
func (s *Service) UpdateProfile(dir []domain.User, userID string, p ProfilePatch) ([]domain.User, domain.User, error) {
	idx := slices.IndexFunc(dir, func(u domain.User) bool { return u.ID == userID })
	if idx < 0 {
		return dir, domain.User{}, fmt.Errorf("user %s: %w", userID, domain.ErrNotFound)
	}
	if p.ProfilePic != nil && len(*p.ProfilePic) > MaxProfilePicSize {
		return dir, domain.User{}, domain.Invalid("image size must be less than 2MB")
	}

	out := slices.Clone(dir)
	u := &out[idx]
	if p.DisplayName != nil {
		u.DisplayName = *p.DisplayName
	}
	if p.ProfilePic != nil {
		u.ProfilePic = *p.ProfilePic
	}
	if p.IsPrivate != nil {
		u.IsPrivate = *p.IsPrivate
	}
	return out, *u, nil
}

// FindByID ищет пользователя по id.
func FindByID(dir []domain.User, id string) (domain.User, bool) {
	idx := slices.IndexFunc(dir, func(u domain.User) bool { return u.ID == id })
	if idx < 0 {
		return domain.User{}, false
	}
	return dir[idx], true
}

func (s *Service) hash(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return "", domain.NewAppError(domain.CodeInternal, "hash password", err)
	}
	return string(b), nil
}

func checkPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

func indexByUsername(dir []domain.User, username string) int {
	return slices.IndexFunc(dir, func(u domain.User) bool { return u.Username == username })
}
