package feed

import (
	"slices"
	"time"

	"github.com/UkralStul/academic-feed/internal/domain"
)

// NewComment собирает комментарий с пустыми лайками и ответами.
func NewComment(id string, author domain.User, text string, now time.Time) domain.Comment {
	return domain.Comment{
		ID:        id,
		UserID:    author.ID,
		Username:  author.Name(),
		Text:      text,
		CreatedAt: now,
		Likes:     []string{},
		Replies:   []domain.Comment{},
	}
}

// AddComment добавляет комментарий к записи. При пустом parentID комментарий
// становится корневым, иначе - ответом на узел parentID на любой глубине.
// Если родитель не найден, лента возвращается без изменений.
func AddComment(list []domain.Entry, entryID string, comment domain.Comment, parentID string) []domain.Entry {
	return mapEntry(list, entryID, func(e domain.Entry) (domain.Entry, bool) {
		if parentID == "" {
			e.Comments = appendComment(e.Comments, comment)
			return e, true
		}
		comments, changed := walk(e.Comments, parentID, func(c domain.Comment) domain.Comment {
			c.Replies = appendComment(c.Replies, comment)
			return c
		})
		e.Comments = comments
		return e, changed
	})
}

// ToggleCommentLike переключает лайк userID у комментария commentID.
func ToggleCommentLike(list []domain.Entry, entryID, userID, commentID string) []domain.Entry {
	if userID == "" {
		return list
	}
	return mapEntry(list, entryID, func(e domain.Entry) (domain.Entry, bool) {
		comments, changed := walk(e.Comments, commentID, func(c domain.Comment) domain.Comment {
			if slices.Contains(c.Likes, userID) {
				c.Likes = without(c.Likes, userID)
			} else {
				c.Likes = appendCopy(c.Likes, userID)
			}
			return c
		})
		e.Comments = comments
		return e, changed
	})
}

// FindComment ищет комментарий в дереве обходом в глубину.
func FindComment(comments []domain.Comment, id string) (domain.Comment, bool) {
	for _, c := range comments {
		if c.ID == id {
			return c, true
		}
		if found, ok := FindComment(c.Replies, id); ok {
			return found, true
		}
	}
	return domain.Comment{}, false
}

// CountComments возвращает число узлов в дереве.
func CountComments(comments []domain.Comment) int {
	n := len(comments)
	for _, c := range comments {
		n += CountComments(c.Replies)
	}
	return n
}

// walk обходит дерево в глубину и применяет fn к первому узлу с нужным id.
// Пересобираются только предки измененного узла; если ничего не найдено,
// возвращается исходный срез и false.
func walk(comments []domain.Comment, id string, fn func(domain.Comment) domain.Comment) ([]domain.Comment, bool) {
	for i, c := range comments {
		var (
			updated domain.Comment
			changed bool
		)
		if c.ID == id {
			updated, changed = fn(c), true
		} else if len(c.Replies) > 0 {
			var replies []domain.Comment
			if replies, changed = walk(c.Replies, id, fn); changed {
				updated = c
				updated.Replies = replies
			}
		}
		if changed {
			out := slices.Clone(comments)
			out[i] = updated
			return out, true
		}
	}
	return comments, false
}

func appendComment(comments []domain.Comment, c domain.Comment) []domain.Comment {
	out := make([]domain.Comment, 0, len(comments)+1)
	out = append(out, comments...)
	return append(out, c)
}
