package app

import (
	"context"
	"strings"

	"github.com/UkralStul/academic-feed/internal/domain"
	"github.com/UkralStul/academic-feed/internal/events"
	"github.com/UkralStul/academic-feed/internal/feed"
)

// MaxCommentLength - предельная длина текста комментария в байтах.
const MaxCommentLength = 2000

func validateComment(text string) error {
	if strings.TrimSpace(text) == "" {
		return domain.Invalid("comment content cannot be empty")
	}
	if len(text) > MaxCommentLength {
		return domain.Invalid("comment content is too long")
	}
	return nil
}

// AddComment добавляет комментарий actor к записи entryID. Непустой parentID
// делает его ответом. Если родителя нет, запись возвращается без изменений.
func (s *Service) AddComment(ctx context.Context, actor domain.User, entryID, text, parentID string) (domain.Entry, error) {
	if err := validateComment(text); err != nil {
		return domain.Entry{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.repo.Entries(ctx)
	if err != nil {
		return domain.Entry{}, err
	}
	before, ok := feed.FindEntry(entries, entryID)
	if !ok {
		return domain.Entry{}, entryNotFound(entryID)
	}

	comment := feed.NewComment(s.newID(), actor, text, s.now())
	entries = feed.AddComment(entries, entryID, comment, parentID)
	after, _ := feed.FindEntry(entries, entryID)
	if feed.CountComments(after.Comments) == feed.CountComments(before.Comments) {
		return before, nil
	}

	if err := s.repo.SaveEntries(ctx, entries); err != nil {
		return domain.Entry{}, err
	}
	s.publish(ctx, events.CommentAdded, entryID, comment.ID, actor)
	return after, nil
}

// ToggleCommentLike переключает лайк actor на комментарии. Отсутствующий
// комментарий ничего не меняет.
func (s *Service) ToggleCommentLike(ctx context.Context, actor domain.User, entryID, commentID string) (domain.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.repo.Entries(ctx)
	if err != nil {
		return domain.Entry{}, err
	}
	before, ok := feed.FindEntry(entries, entryID)
	if !ok {
		return domain.Entry{}, entryNotFound(entryID)
	}
	if _, ok := feed.FindComment(before.Comments, commentID); !ok {
		return before, nil
	}

	entries = feed.ToggleCommentLike(entries, entryID, actor.ID, commentID)
	if err := s.repo.SaveEntries(ctx, entries); err != nil {
		return domain.Entry{}, err
	}

	after, _ := feed.FindEntry(entries, entryID)
	s.publish(ctx, events.CommentLiked, entryID, commentID, actor)
	return after, nil
}
