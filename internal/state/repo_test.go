package state

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/UkralStul/academic-feed/internal/domain"
	"github.com/UkralStul/academic-feed/internal/storage"
	"github.com/UkralStul/academic-feed/internal/storage/inmemory"
)

func newTestRepo() (*Repo, *inmemory.Store) {
	store := inmemory.New()
	repo := NewRepo(store, "admin-id")
	repo.now = func() time.Time { return time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC) }
	return repo, store
}

func TestRepo_EntriesSeededWhenAbsent(t *testing.T) {
	repo, store := newTestRepo()
	ctx := context.Background()

	entries, err := repo.Entries(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "1", entries[0].ID)
	assert.Equal(t, "admin-id", entries[0].AuthorID)
	assert.True(t, entries[0].CreatedAt.Before(entries[1].CreatedAt))
	assert.Equal(t, []string{storage.KeyEntries}, store.Keys())

	// Сохраненная пустая лента не подменяется стартовым наполнением.
	require.NoError(t, repo.SaveEntries(ctx, nil))
	entries, err = repo.Entries(ctx)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestRepo_SeedCreatedAtIsStable(t *testing.T) {
	repo, _ := newTestRepo()
	ctx := context.Background()

	clock := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	repo.now = func() time.Time {
		clock = clock.Add(20 * time.Millisecond)
		return clock
	}

	first, err := repo.Entries(ctx)
	require.NoError(t, err)
	second, err := repo.Entries(ctx)
	require.NoError(t, err)

	require.Len(t, second, len(first))
	for i := range first {
		assert.True(t, first[i].CreatedAt.Equal(second[i].CreatedAt), first[i].ID)
	}
}

func TestRepo_EntriesRoundTrip(t *testing.T) {
	repo, _ := newTestRepo()
	ctx := context.Background()

	at := time.Date(2024, 2, 3, 4, 5, 6, 0, time.UTC)
	in := []domain.Entry{{
		ID:       "e1",
		Question: "Q",
		Likes:    []string{"u1"},
		Dislikes: []string{},
		Comments: []domain.Comment{{
			ID: "c1", UserID: "u1", Text: "hi", CreatedAt: at,
			Likes: []string{}, Replies: []domain.Comment{},
		}},
		CreatedAt: at,
		MediaKind: domain.MediaNone,
	}}
	require.NoError(t, repo.SaveEntries(ctx, in))

	out, err := repo.Entries(ctx)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestRepo_Sessions(t *testing.T) {
	repo, store := newTestRepo()
	ctx := context.Background()

	_, err := repo.Session(ctx, "s1")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	u := domain.User{ID: "u1", Username: "alice", PasswordHash: "secret", Role: domain.RoleUser}
	require.NoError(t, repo.SaveSession(ctx, "s1", u))
	assert.Contains(t, store.Keys(), storage.SessionKey("s1"))

	got, err := repo.Session(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Username)
	assert.Empty(t, got.PasswordHash)

	require.NoError(t, repo.DeleteSession(ctx, "s1"))
	_, err = repo.Session(ctx, "s1")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestRepo_BookmarksAndView(t *testing.T) {
	repo, _ := newTestRepo()
	ctx := context.Background()

	set, err := repo.Bookmarks(ctx, "u1")
	require.NoError(t, err)
	assert.NotNil(t, set)
	assert.Empty(t, set)

	require.NoError(t, repo.SaveBookmarks(ctx, "u1", []string{"1", "2"}))
	set, err = repo.Bookmarks(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2"}, set)

	view, err := repo.View(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, domain.ViewState{}, view)

	require.NoError(t, repo.SaveView(ctx, "u1", domain.ViewState{ZoomedID: "2"}))
	view, err = repo.View(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "2", view.ZoomedID)
}

func TestRepo_CorruptValue(t *testing.T) {
	repo, store := newTestRepo()
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, storage.KeyUsers, []byte("{not json")))
	_, err := repo.Users(ctx)
	assert.Error(t, err)
}
