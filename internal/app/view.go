package app

import (
	"context"

	"github.com/UkralStul/academic-feed/internal/domain"
	"github.com/UkralStul/academic-feed/internal/feed"
)

func (s *Service) View(ctx context.Context, actor domain.User) (domain.ViewState, error) {
	return s.repo.View(ctx, actor.ID)
}

// SetView запоминает редактируемую и открытую записи. Редактировать может
// только администратор, обе ссылки должны указывать на существующие записи.
func (s *Service) SetView(ctx context.Context, actor domain.User, v domain.ViewState) (domain.ViewState, error) {
	if v.EditingID != "" {
		if err := requireAdmin(actor); err != nil {
			return domain.ViewState{}, err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.repo.Entries(ctx)
	if err != nil {
		return domain.ViewState{}, err
	}
	for _, id := range []string{v.EditingID, v.ZoomedID} {
		if id == "" {
			continue
		}
		if _, ok := feed.FindEntry(entries, id); !ok {
			return domain.ViewState{}, entryNotFound(id)
		}
	}
	if err := s.repo.SaveView(ctx, actor.ID, v); err != nil {
		return domain.ViewState{}, err
	}
	return v, nil
}
