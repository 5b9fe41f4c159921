package feed

import (
	"slices"
	"time"

	"github.com/UkralStul/academic-feed/internal/domain"
)

// PrivateUserName показывается вместо имени автора с приватным профилем.
const PrivateUserName = "Private User"

// CommentView - комментарий в том виде, в котором его видят другие пользователи.
type CommentView struct {
	ID         string        `json:"id"`
	UserID     string        `json:"userId,omitempty"`
	AuthorName string        `json:"authorName"`
	ProfilePic string        `json:"profilePic,omitempty"`
	IsPrivate  bool          `json:"isPrivate"`
	Text       string        `json:"text"`
	CreatedAt  time.Time     `json:"createdAt"`
	LikeCount  int           `json:"likeCount"`
	Liked      bool          `json:"liked"` // лайк зрителя
	Replies    []CommentView `json:"replies"`
}

// AuthorLookup возвращает текущую запись автора по id.
type AuthorLookup func(userID string) (domain.User, bool)

// PresentComments строит представление дерева комментариев для viewerID.
// Комментарии чужих авторов с приватным профилем маскируются, их id не
// раскрывается. Свои комментарии пользователь видит как есть. Id лайкнувших
// не отдаются никому, только их число и отметка самого зрителя.
func PresentComments(comments []domain.Comment, viewerID string, lookup AuthorLookup) []CommentView {
	out := make([]CommentView, 0, len(comments))
	for _, c := range comments {
		v := CommentView{
			ID:         c.ID,
			UserID:     c.UserID,
			AuthorName: c.Username,
			Text:       c.Text,
			CreatedAt:  c.CreatedAt,
			LikeCount:  len(c.Likes),
			Liked:      slices.Contains(c.Likes, viewerID),
			Replies:    PresentComments(c.Replies, viewerID, lookup),
		}
		if author, ok := lookup(c.UserID); ok {
			if author.IsPrivate && author.ID != viewerID {
				v.UserID = ""
				v.AuthorName = PrivateUserName
				v.IsPrivate = true
			} else {
				v.AuthorName = author.Name()
				v.ProfilePic = author.ProfilePic
			}
		}
		out = append(out, v)
	}
	return out
}

// AuthorIDs собирает id всех авторов дерева без повторов.
func AuthorIDs(comments []domain.Comment) []string {
	var ids distinct
	var collect func([]domain.Comment)
	collect = func(cs []domain.Comment) {
		for _, c := range cs {
			ids.add(c.UserID)
			collect(c.Replies)
		}
	}
	collect(comments)
	return ids.values()
}
