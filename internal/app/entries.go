package app

import (
	"context"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/UkralStul/academic-feed/internal/domain"
	"github.com/UkralStul/academic-feed/internal/events"
	"github.com/UkralStul/academic-feed/internal/feed"
)

// EntryInput - поля новой записи. MediaMIME используется, если MediaKind не задан.
type EntryInput struct {
	Category    string           `json:"category"`
	SubCategory string           `json:"subCategory"`
	Topic       string           `json:"topic"`
	Question    string           `json:"question"`
	Answer      string           `json:"answer"`
	Source      string           `json:"source"`
	MediaURL    string           `json:"mediaUrl"`
	MediaKind   domain.MediaKind `json:"mediaType"`
	MediaMIME   string           `json:"mediaMime"`
	MediaName   string           `json:"mediaName"`
}

func entryNotFound(id string) error {
	return fmt.Errorf("entry %s: %w", id, domain.ErrNotFound)
}

func validMediaKind(k domain.MediaKind) bool {
	switch k {
	case domain.MediaNone, domain.MediaImage, domain.MediaVideo, domain.MediaDocument:
		return true
	}
	return false
}

// Feed возвращает ленту по запросу. Закладки берутся у actor.
func (s *Service) Feed(ctx context.Context, actor domain.User, q feed.Query) ([]domain.Entry, error) {
	entries, err := s.repo.Entries(ctx)
	if err != nil {
		return nil, err
	}
	if q.OnlyBookmarked {
		q.Bookmarks, err = s.repo.Bookmarks(ctx, actor.ID)
		if err != nil {
			return nil, err
		}
	}
	return feed.FilteredAndSorted(entries, q), nil
}

func (s *Service) Categories(ctx context.Context) ([]string, error) {
	entries, err := s.repo.Entries(ctx)
	if err != nil {
		return nil, err
	}
	return feed.Categories(entries), nil
}

// Suggestions возвращает уже использованные значения полей для форм ввода.
func (s *Service) Suggestions(ctx context.Context) (feed.Suggestions, error) {
	entries, err := s.repo.Entries(ctx)
	if err != nil {
		return feed.Suggestions{}, err
	}
	return feed.BuildSuggestions(entries), nil
}

func (s *Service) Entry(ctx context.Context, id string) (domain.Entry, error) {
	entries, err := s.repo.Entries(ctx)
	if err != nil {
		return domain.Entry{}, err
	}
	e, ok := feed.FindEntry(entries, id)
	if !ok {
		return domain.Entry{}, entryNotFound(id)
	}
	return e, nil
}

// CreateEntry добавляет запись в начало ленты. Только для администратора.
func (s *Service) CreateEntry(ctx context.Context, actor domain.User, in EntryInput) (domain.Entry, error) {
	if err := requireAdmin(actor); err != nil {
		return domain.Entry{}, err
	}
	if strings.TrimSpace(in.Category) == "" || strings.TrimSpace(in.Question) == "" || strings.TrimSpace(in.Answer) == "" {
		return domain.Entry{}, domain.Invalid("category, question and answer are required")
	}
	kind := in.MediaKind
	if kind == "" {
		kind = domain.MediaKindFromMIME(in.MediaMIME)
	}
	if !validMediaKind(kind) {
		return domain.Entry{}, domain.Invalid("unknown media type")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.repo.Entries(ctx)
	if err != nil {
		return domain.Entry{}, err
	}
	entries = feed.AddEntry(entries, domain.Entry{
		ID:          s.newID(),
		AuthorID:    actor.ID,
		Category:    in.Category,
		SubCategory: in.SubCategory,
		Topic:       in.Topic,
		Question:    in.Question,
		Answer:      in.Answer,
		Source:      in.Source,
		CreatedAt:   s.now(),
		MediaURL:    in.MediaURL,
		MediaKind:   kind,
		MediaName:   in.MediaName,
	})
	if err := s.repo.SaveEntries(ctx, entries); err != nil {
		return domain.Entry{}, err
	}

	created := entries[0]
	log.Infof("[app] entry %s created by %s", created.ID, actor.ID)
	s.publish(ctx, events.EntryCreated, created.ID, "", actor)
	return created, nil
}

// UpdateEntry применяет patch к записи. Только для администратора.
func (s *Service) UpdateEntry(ctx context.Context, actor domain.User, id string, patch domain.EntryPatch) (domain.Entry, error) {
	if err := requireAdmin(actor); err != nil {
		return domain.Entry{}, err
	}
	for _, f := range []*string{patch.Category, patch.Question, patch.Answer} {
		if f != nil && strings.TrimSpace(*f) == "" {
			return domain.Entry{}, domain.Invalid("category, question and answer cannot be empty")
		}
	}
	if patch.MediaKind != nil && !validMediaKind(*patch.MediaKind) {
		return domain.Entry{}, domain.Invalid("unknown media type")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.repo.Entries(ctx)
	if err != nil {
		return domain.Entry{}, err
	}
	if _, ok := feed.FindEntry(entries, id); !ok {
		return domain.Entry{}, entryNotFound(id)
	}
	entries = feed.UpdateEntry(entries, id, patch)
	if err := s.repo.SaveEntries(ctx, entries); err != nil {
		return domain.Entry{}, err
	}

	updated, _ := feed.FindEntry(entries, id)
	s.publish(ctx, events.EntryUpdated, id, "", actor)
	return updated, nil
}

// DeleteEntry удаляет запись и все ссылки на нее: закладки и ViewState
// каждого пользователя каталога. Только для администратора.
func (s *Service) DeleteEntry(ctx context.Context, actor domain.User, id string) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.repo.Entries(ctx)
	if err != nil {
		return err
	}
	if _, ok := feed.FindEntry(entries, id); !ok {
		return entryNotFound(id)
	}

	// Сначала ссылки, потом сама запись: при сбое удаление можно повторить.
	users, err := s.repo.Users(ctx)
	if err != nil {
		return err
	}
	for _, u := range users {
		if err := s.clearUserReferences(ctx, u.ID, id); err != nil {
			return err
		}
	}
	if err := s.repo.SaveEntries(ctx, feed.DeleteEntry(entries, id)); err != nil {
		return err
	}

	log.Infof("[app] entry %s deleted by %s", id, actor.ID)
	s.publish(ctx, events.EntryDeleted, id, "", actor)
	return nil
}

func (s *Service) clearUserReferences(ctx context.Context, userID, entryID string) error {
	set, err := s.repo.Bookmarks(ctx, userID)
	if err != nil {
		return err
	}
	if next := feed.RemoveID(set, entryID); len(next) != len(set) {
		if err := s.repo.SaveBookmarks(ctx, userID, next); err != nil {
			return err
		}
	}

	view, err := s.repo.View(ctx, userID)
	if err != nil {
		return err
	}
	if next := feed.ClearReferences(view, entryID); next != view {
		return s.repo.SaveView(ctx, userID, next)
	}
	return nil
}

// React переключает лайк или дизлайк actor на записи.
func (s *Service) React(ctx context.Context, actor domain.User, id string, kind domain.ReactionKind) (domain.Entry, error) {
	if kind != domain.Like && kind != domain.Dislike {
		return domain.Entry{}, domain.Invalid("unknown reaction")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.repo.Entries(ctx)
	if err != nil {
		return domain.Entry{}, err
	}
	if _, ok := feed.FindEntry(entries, id); !ok {
		return domain.Entry{}, entryNotFound(id)
	}
	entries = feed.ToggleReaction(entries, id, actor.ID, kind)
	if err := s.repo.SaveEntries(ctx, entries); err != nil {
		return domain.Entry{}, err
	}

	updated, _ := feed.FindEntry(entries, id)
	s.publish(ctx, events.EntryReacted, id, "", actor)
	return updated, nil
}

// ToggleBookmark добавляет запись в закладки actor или убирает ее оттуда.
func (s *Service) ToggleBookmark(ctx context.Context, actor domain.User, id string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.repo.Entries(ctx)
	if err != nil {
		return nil, err
	}
	if _, ok := feed.FindEntry(entries, id); !ok {
		return nil, entryNotFound(id)
	}

	set, err := s.repo.Bookmarks(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	set = feed.ToggleBookmark(set, id)
	if err := s.repo.SaveBookmarks(ctx, actor.ID, set); err != nil {
		return nil, err
	}
	return set, nil
}

func (s *Service) Bookmarks(ctx context.Context, actor domain.User) ([]string, error) {
	return s.repo.Bookmarks(ctx, actor.ID)
}
