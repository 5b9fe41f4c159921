package domain

import (
	"strings"
	"time"
)

// Role определяет права пользователя.
type Role string

const (
	RoleAdmin Role = "Admin"
	RoleUser  Role = "User"
)

// User - учетная запись в каталоге пользователей.
type User struct {
	ID           string `json:"id"`
	Username     string `json:"username"`
	PasswordHash string `json:"passwordHash,omitempty"`
	Role         Role   `json:"role"`
	DisplayName  string `json:"displayName,omitempty"`
	ProfilePic   string `json:"profilePic,omitempty"`
	IsPrivate    bool   `json:"isPrivate,omitempty"`
}

// Name возвращает отображаемое имя, а если его нет - логин.
func (u User) Name() string {
	if u.DisplayName != "" {
		return u.DisplayName
	}
	return u.Username
}

// Public возвращает копию пользователя без хеша пароля.
func (u User) Public() User {
	u.PasswordHash = ""
	return u
}

type MediaKind string

const (
	MediaNone     MediaKind = "none"
	MediaImage    MediaKind = "image"
	MediaVideo    MediaKind = "video"
	MediaDocument MediaKind = "document"
)

// MediaKindFromMIME определяет тип медиа по MIME-типу загруженного файла.
func MediaKindFromMIME(mime string) MediaKind {
	switch {
	case mime == "":
		return MediaNone
	case strings.HasPrefix(mime, "image/"):
		return MediaImage
	case strings.HasPrefix(mime, "video/"):
		return MediaVideo
	default:
		return MediaDocument
	}
}

// Entry - пост вопрос/ответ в ленте.
type Entry struct {
	ID          string    `json:"id"`
	AuthorID    string    `json:"authorId"`
	Category    string    `json:"category"`
	SubCategory string    `json:"subCategory"`
	Topic       string    `json:"topic"`
	Question    string    `json:"question"`
	Answer      string    `json:"answer"`
	Source      string    `json:"source"`
	CreatedAt   time.Time `json:"createdAt"`
	Likes       []string  `json:"likes"`
	Dislikes    []string  `json:"dislikes"`
	Comments    []Comment `json:"comments"`
	MediaURL    string    `json:"mediaUrl,omitempty"`
	MediaKind   MediaKind `json:"mediaType,omitempty"`
	MediaName   string    `json:"mediaName,omitempty"`
}

// Comment - узел дерева комментариев. Каждый узел владеет своим поддеревом.
type Comment struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Username  string    `json:"username"` // имя автора на момент создания
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt"`
	Likes     []string  `json:"likes"`
	Replies   []Comment `json:"replies"`
}

// EntryPatch - редактируемые поля Entry. nil означает "оставить как есть".
type EntryPatch struct {
	Category    *string    `json:"category,omitempty"`
	SubCategory *string    `json:"subCategory,omitempty"`
	Topic       *string    `json:"topic,omitempty"`
	Question    *string    `json:"question,omitempty"`
	Answer      *string    `json:"answer,omitempty"`
	Source      *string    `json:"source,omitempty"`
	MediaURL    *string    `json:"mediaUrl,omitempty"`
	MediaKind   *MediaKind `json:"mediaType,omitempty"`
	MediaName   *string    `json:"mediaName,omitempty"`
}

// ReactionKind - лайк или дизлайк.
type ReactionKind string

const (
	Like    ReactionKind = "like"
	Dislike ReactionKind = "dislike"
)

type SortMode string

const (
	SortNewest    SortMode = "newest"
	SortMostLiked SortMode = "mostLiked"
)

// AllCategories - значение фильтра, под которое подходит любая категория.
const AllCategories = "All"

// ViewState хранит ссылки "редактируется" и "открыт в просмотре" для пользователя.
type ViewState struct {
	EditingID string `json:"editingId,omitempty"`
	ZoomedID  string `json:"zoomedId,omitempty"`
}
