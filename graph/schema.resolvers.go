package graph

import (
	"context"
	"slices"

	"github.com/UkralStul/academic-feed/internal/dataloader"
	"github.com/UkralStul/academic-feed/internal/domain"
	"github.com/UkralStul/academic-feed/internal/events"
	"github.com/UkralStul/academic-feed/internal/feed"
)

// === Entry Resolvers ===

// Comments отдает дерево комментариев с маскировкой приватных авторов.
// Авторы подгружаются пачкой через Dataloader из контекста запроса.
func (r *entryResolver) Comments(ctx context.Context, obj *domain.Entry) ([]feed.CommentView, error) {
	user, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	lookup, err := dataloader.Authors(ctx, obj.Comments)
	if err != nil {
		return nil, err
	}
	return feed.PresentComments(obj.Comments, user.ID, lookup), nil
}

func (r *entryResolver) Bookmarked(ctx context.Context, obj *domain.Entry) (bool, error) {
	user, err := currentUser(ctx)
	if err != nil {
		return false, err
	}
	ids, err := r.Service.Bookmarks(ctx, user)
	if err != nil {
		return false, err
	}
	return slices.Contains(ids, obj.ID), nil
}

// === Mutation Resolvers ===

func (r *mutationResolver) React(ctx context.Context, entryID string, reaction domain.ReactionKind) (domain.Entry, error) {
	user, err := currentUser(ctx)
	if err != nil {
		return domain.Entry{}, err
	}
	return r.Service.React(ctx, user, entryID, reaction)
}

func (r *mutationResolver) ToggleBookmark(ctx context.Context, entryID string) ([]string, error) {
	user, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	return r.Service.ToggleBookmark(ctx, user, entryID)
}

// AddComment добавляет комментарий или ответ, если указан parentID.
func (r *mutationResolver) AddComment(ctx context.Context, entryID string, text string, parentID *string) (domain.Entry, error) {
	user, err := currentUser(ctx)
	if err != nil {
		return domain.Entry{}, err
	}
	parent := ""
	if parentID != nil {
		parent = *parentID
	}
	return r.Service.AddComment(ctx, user, entryID, text, parent)
}

func (r *mutationResolver) LikeComment(ctx context.Context, entryID string, commentID string) (domain.Entry, error) {
	user, err := currentUser(ctx)
	if err != nil {
		return domain.Entry{}, err
	}
	return r.Service.ToggleCommentLike(ctx, user, entryID, commentID)
}

func (r *mutationResolver) Verify(ctx context.Context, question string, answer string) (string, error) {
	if _, err := currentUser(ctx); err != nil {
		return "", err
	}
	return r.Service.Verify(ctx, question, answer)
}

// === Query Resolvers ===

func (r *queryResolver) Me(ctx context.Context) (domain.User, error) {
	user, err := currentUser(ctx)
	if err != nil {
		return domain.User{}, err
	}
	return user.Public(), nil
}

func (r *queryResolver) Entries(ctx context.Context, q *string, category *string, bookmarked *bool, sort *domain.SortMode) ([]domain.Entry, error) {
	user, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	query := feed.Query{Sort: domain.SortNewest}
	if q != nil {
		query.Text = *q
	}
	if category != nil {
		query.Category = *category
	}
	if bookmarked != nil {
		query.OnlyBookmarked = *bookmarked
	}
	if sort != nil {
		query.Sort = *sort
	}
	return r.Service.Feed(ctx, user, query)
}

func (r *queryResolver) Entry(ctx context.Context, id string) (domain.Entry, error) {
	if _, err := currentUser(ctx); err != nil {
		return domain.Entry{}, err
	}
	return r.Service.Entry(ctx, id)
}

func (r *queryResolver) Categories(ctx context.Context) ([]string, error) {
	if _, err := currentUser(ctx); err != nil {
		return nil, err
	}
	return r.Service.Categories(ctx)
}

func (r *queryResolver) Suggestions(ctx context.Context) (feed.Suggestions, error) {
	if _, err := currentUser(ctx); err != nil {
		return feed.Suggestions{}, err
	}
	return r.Service.Suggestions(ctx)
}

func (r *queryResolver) Bookmarks(ctx context.Context) ([]string, error) {
	user, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	return r.Service.Bookmarks(ctx, user)
}

// === Subscription Resolvers ===

// FeedEvents подписывает на события одной записи или всей ленты.
// Канал закрывается вместе с контекстом подписки.
func (r *subscriptionResolver) FeedEvents(ctx context.Context, entryID *string) (<-chan events.Event, error) {
	if _, err := currentUser(ctx); err != nil {
		return nil, err
	}
	id := events.AllEntries
	if entryID != nil && *entryID != "" {
		// Проверяем, что запись существует
		if _, err := r.Service.Entry(ctx, *entryID); err != nil {
			return nil, err
		}
		id = *entryID
	}
	return r.Hub.Subscribe(ctx, id), nil
}

// Entry returns EntryResolver implementation.
func (r *Resolver) Entry() EntryResolver { return &entryResolver{r} }

// Mutation returns MutationResolver implementation.
func (r *Resolver) Mutation() MutationResolver { return &mutationResolver{r} }

// Query returns QueryResolver implementation.
func (r *Resolver) Query() QueryResolver { return &queryResolver{r} }

// Subscription returns SubscriptionResolver implementation.
func (r *Resolver) Subscription() SubscriptionResolver { return &subscriptionResolver{r} }

type entryResolver struct{ *Resolver }
type mutationResolver struct{ *Resolver }
type queryResolver struct{ *Resolver }
type subscriptionResolver struct{ *Resolver }
